package bytecode

import (
	"fmt"
	"math"
	"strings"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 引用常量池类的指令
// ============================================================================

// classRef 带 16 位常量池下标的公共部分
type classRef struct {
	base
	index int
}

func (c *classRef) Index() int { return c.index }

func (c *classRef) SetIndex(index int) error {
	if index < 1 || index > math.MaxUint16 {
		return constructionErrorf(c.op, "constant pool index %d outside 1..65535", index)
	}
	c.index = index
	return nil
}

// LoadClassType 常量池中引用的类；数组类以描述符形式出现
func (c *classRef) LoadClassType(cp constpool.Accessor) (types.Type, error) {
	if cp == nil {
		return nil, constpool.ErrNoPool
	}
	name, err := cp.ClassName(uint16(c.index))
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(name, "[") {
		return types.TypeFromDescriptor(name)
	}
	return types.NewObjectType(name), nil
}

func (c *classRef) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(c.op))
	w.WriteU16(uint16(c.index))
	return nil
}

func (c *classRef) decode(r *ByteReader, _ bool) error {
	v, err := r.ReadU16()
	c.index = int(v)
	return err
}

func (c *classRef) String() string {
	return fmt.Sprintf("%s #%d", c.op, c.index)
}

// ClassRef new/anewarray/checkcast/instanceof
type ClassRef struct {
	classRef
}

// NewClassRef 创建引用类常量的指令
func NewClassRef(op Opcode, index int) (*ClassRef, error) {
	switch op {
	case OpNew, OpAnewarray, OpCheckcast, OpInstanceof:
	default:
		return nil, constructionErrorf(op, "not a class reference opcode")
	}
	c := &ClassRef{classRef{base: newBase(op)}}
	if err := c.SetIndex(index); err != nil {
		return nil, err
	}
	return c, nil
}

// Type new/checkcast 为引用的类，anewarray 为其一维数组，instanceof 为 int
func (c *ClassRef) Type(cp constpool.Accessor) (types.Type, error) {
	if c.op == OpInstanceof {
		return types.Int, nil
	}
	t, err := c.LoadClassType(cp)
	if err != nil {
		return nil, err
	}
	if c.op == OpAnewarray {
		return types.NewArrayType(t, 1), nil
	}
	return t, nil
}

func (c *ClassRef) Exceptions() []string {
	switch c.op {
	case OpNew:
		return concatExceptions(excClassAndInterfaceResolution, []string{ExcIllegalAccess, ExcInstantiation})
	case OpAnewarray:
		return concatExceptions(excClassAndInterfaceResolution, []string{ExcNegativeArraySize})
	case OpCheckcast:
		return concatExceptions(excClassAndInterfaceResolution, []string{ExcClassCast})
	}
	return excClassAndInterfaceResolution
}

func (c *ClassRef) Copy() Instruction {
	cp := *c
	return &cp
}

// ============================================================================
// 无操作数指令
// ============================================================================

// Simple nop/aconst_null/arraylength/athrow/monitorenter/monitorexit/breakpoint/impdep
type Simple struct {
	base
}

// NewSimple 创建无操作数指令，op 必须属于 FamSimple
func NewSimple(op Opcode) *Simple {
	if op.Family() != FamSimple {
		panic(constructionErrorf(op, "not a simple opcode"))
	}
	return &Simple{base: newBase(op)}
}

// Type aconst_null 压入 null 引用
func (s *Simple) Type(constpool.Accessor) (types.Type, error) {
	if s.op == OpAconstNull {
		return types.Null, nil
	}
	mustKnowType(s.op)
	return nil, nil
}

func (s *Simple) Exceptions() []string {
	switch s.op {
	case OpArraylength, OpMonitorenter:
		return []string{ExcNullPointer}
	case OpMonitorexit:
		return []string{ExcNullPointer, ExcIllegalMonitorState}
	case OpAthrow:
		return []string{ExcThrowable}
	}
	return nil
}

func (s *Simple) Copy() Instruction {
	c := *s
	return &c
}

// ============================================================================
// 栈操作
// ============================================================================

// StackOp pop/pop2/dup/dup_x1/dup_x2/dup2/dup2_x1/dup2_x2/swap
//
// 这些指令不关心值的类型，栈效应按栈字计数。
type StackOp struct {
	base
}

// NewStackOp 创建栈操作指令
func NewStackOp(op Opcode) (*StackOp, error) {
	if op.Family() != FamStack {
		return nil, constructionErrorf(op, "not a stack opcode")
	}
	return &StackOp{base: newBase(op)}, nil
}

func (s *StackOp) Copy() Instruction {
	c := *s
	return &c
}

// ============================================================================
// 返回
// ============================================================================

// Return ireturn/lreturn/freturn/dreturn/areturn/return
type Return struct {
	base
}

// NewReturn 按返回值类型选择操作码
func NewReturn(t types.Type) (*Return, error) {
	var op Opcode
	switch t.Tag() {
	case types.TVoid:
		op = OpReturn
	case types.TBoolean, types.TByte, types.TChar, types.TShort, types.TInt:
		op = OpIreturn
	case types.TLong:
		op = OpLreturn
	case types.TFloat:
		op = OpFreturn
	case types.TDouble:
		op = OpDreturn
	case types.TObject, types.TArray:
		op = OpAreturn
	default:
		return nil, &ConstructionError{Name: "return", Reason: fmt.Sprintf("cannot return %s", t)}
	}
	return &Return{base: newBase(op)}, nil
}

func (r *Return) Type(constpool.Accessor) (types.Type, error) {
	if r.op == OpReturn {
		return types.Void, nil
	}
	return typeForPrefix(r.op), nil
}

// Exceptions 同步方法返回时未正确释放监视器
func (r *Return) Exceptions() []string {
	return []string{ExcIllegalMonitorState}
}

func (r *Return) Copy() Instruction {
	c := *r
	return &c
}
