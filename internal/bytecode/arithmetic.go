package bytecode

import (
	"fmt"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 算术指令
// ============================================================================

// Arithmetic 算术、位运算和移位指令
//
// 操作数类型完全由操作码决定。二元运算消耗 2 个值产生 1 个，取负消耗 1 个产生 1 个。
type Arithmetic struct {
	base
}

// NewArithmetic 创建算术指令
func NewArithmetic(op Opcode) (*Arithmetic, error) {
	if op.Family() != FamArithmetic {
		return nil, constructionErrorf(op, "not an arithmetic opcode")
	}
	return &Arithmetic{base: newBase(op)}, nil
}

// IsUnary 是否为一元运算（取负）
func (a *Arithmetic) IsUnary() bool {
	switch a.op {
	case OpIneg, OpLneg, OpFneg, OpDneg:
		return true
	}
	return false
}

func (a *Arithmetic) Type(constpool.Accessor) (types.Type, error) {
	return typeForPrefix(a.op), nil
}

// Exceptions 整数除法和取余可能除零
func (a *Arithmetic) Exceptions() []string {
	switch a.op {
	case OpIdiv, OpIrem, OpLdiv, OpLrem:
		return []string{ExcArithmetic}
	}
	return nil
}

func (a *Arithmetic) Copy() Instruction {
	c := *a
	return &c
}

// ============================================================================
// 类型转换指令
// ============================================================================

// Conversion 基本类型之间的转换指令
type Conversion struct {
	base
}

type conversionPair struct {
	from, to types.Tag
}

var conversions = map[conversionPair]Opcode{
	{types.TInt, types.TLong}:     OpI2l,
	{types.TInt, types.TFloat}:    OpI2f,
	{types.TInt, types.TDouble}:   OpI2d,
	{types.TLong, types.TInt}:     OpL2i,
	{types.TLong, types.TFloat}:   OpL2f,
	{types.TLong, types.TDouble}:  OpL2d,
	{types.TFloat, types.TInt}:    OpF2i,
	{types.TFloat, types.TLong}:   OpF2l,
	{types.TFloat, types.TDouble}: OpF2d,
	{types.TDouble, types.TInt}:   OpD2i,
	{types.TDouble, types.TLong}:  OpD2l,
	{types.TDouble, types.TFloat}: OpD2f,
	{types.TInt, types.TByte}:     OpI2b,
	{types.TInt, types.TChar}:     OpI2c,
	{types.TInt, types.TShort}:    OpI2s,
}

// NewConversion 创建 from 到 to 的转换指令
//
// 只支持 JVM 指令集中存在的 15 种组合，其余组合返回 ConstructionError。
func NewConversion(from, to types.Type) (*Conversion, error) {
	op, ok := conversions[conversionPair{from.Tag(), to.Tag()}]
	if !ok {
		return nil, &ConstructionError{Name: "conversion", Reason: fmt.Sprintf("no conversion from %s to %s", from, to)}
	}
	return &Conversion{base: newBase(op)}, nil
}

// SourceType 转换前的类型
func (c *Conversion) SourceType() types.Type {
	return typeForPrefix(c.op)
}

// Type 转换后的类型
func (c *Conversion) Type(constpool.Accessor) (types.Type, error) {
	switch c.op.String()[2] {
	case 'i':
		return types.Int, nil
	case 'l':
		return types.Long, nil
	case 'f':
		return types.Float, nil
	case 'd':
		return types.Double, nil
	case 'b':
		return types.Byte, nil
	case 'c':
		return types.Char, nil
	case 's':
		return types.Short, nil
	}
	mustKnowType(c.op)
	return nil, nil
}

func (c *Conversion) Copy() Instruction {
	cp := *c
	return &cp
}

// ============================================================================
// 比较指令
// ============================================================================

// Compare lcmp/fcmpl/fcmpg/dcmpl/dcmpg，比较两个值并压入 int 结果
type Compare struct {
	base
}

// NewCompare 创建比较指令
func NewCompare(op Opcode) (*Compare, error) {
	if op.Family() != FamCompare {
		return nil, constructionErrorf(op, "not a compare opcode")
	}
	return &Compare{base: newBase(op)}, nil
}

func (c *Compare) Type(constpool.Accessor) (types.Type, error) {
	return typeForPrefix(c.op), nil
}

func (c *Compare) Copy() Instruction {
	cp := *c
	return &cp
}
