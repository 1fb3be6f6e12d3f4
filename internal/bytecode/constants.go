package bytecode

import (
	"fmt"
	"math"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 常量压栈指令
// ============================================================================

// ConstantPush iconst/lconst/fconst/dconst/bipush/sipush
//
// 每个操作码只接受固定的取值范围，超出范围时构造失败，不会退化为 ldc。
type ConstantPush struct {
	base
	value interface{} // int32 / int64 / float32 / float64
}

// NewIconst iconst_<n>，n 取 -1..5
func NewIconst(v int) (*ConstantPush, error) {
	if v < -1 || v > 5 {
		return nil, constructionErrorf(OpIconst0, "value %d outside -1..5", v)
	}
	return &ConstantPush{base: newBase(OpIconst0 + Opcode(v)), value: int32(v)}, nil
}

// NewLconst lconst_<n>，n 取 0 或 1
func NewLconst(v int64) (*ConstantPush, error) {
	if v != 0 && v != 1 {
		return nil, constructionErrorf(OpLconst0, "value %d outside 0..1", v)
	}
	return &ConstantPush{base: newBase(OpLconst0 + Opcode(v)), value: v}, nil
}

// NewFconst fconst_<n>，n 取 0.0、1.0、2.0
func NewFconst(v float32) (*ConstantPush, error) {
	if (v != 0 && v != 1 && v != 2) || math.Signbit(float64(v)) {
		return nil, constructionErrorf(OpFconst0, "value %v not in {0.0, 1.0, 2.0}", v)
	}
	return &ConstantPush{base: newBase(OpFconst0 + Opcode(v)), value: v}, nil
}

// NewDconst dconst_<n>，n 取 0.0 或 1.0
func NewDconst(v float64) (*ConstantPush, error) {
	if (v != 0 && v != 1) || math.Signbit(v) {
		return nil, constructionErrorf(OpDconst0, "value %v not in {0.0, 1.0}", v)
	}
	return &ConstantPush{base: newBase(OpDconst0 + Opcode(v)), value: v}, nil
}

// NewBipush bipush，值为有符号 8 位
func NewBipush(v int) (*ConstantPush, error) {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return nil, constructionErrorf(OpBipush, "value %d does not fit in a byte", v)
	}
	return &ConstantPush{base: newBase(OpBipush), value: int32(v)}, nil
}

// NewSipush sipush，值为有符号 16 位
func NewSipush(v int) (*ConstantPush, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return nil, constructionErrorf(OpSipush, "value %d does not fit in a short", v)
	}
	return &ConstantPush{base: newBase(OpSipush), value: int32(v)}, nil
}

// newConstantPushOp 解码用的原始构造，值由操作码或后续 decode 填充
func newConstantPushOp(op Opcode) *ConstantPush {
	c := &ConstantPush{base: newBase(op)}
	switch {
	case op >= OpIconstM1 && op <= OpIconst5:
		c.value = int32(op) - int32(OpIconst0)
	case op == OpLconst0 || op == OpLconst1:
		c.value = int64(op - OpLconst0)
	case op >= OpFconst0 && op <= OpFconst2:
		c.value = float32(op - OpFconst0)
	case op == OpDconst0 || op == OpDconst1:
		c.value = float64(op - OpDconst0)
	}
	return c
}

// Value 压入的常量：int32、int64、float32 或 float64
func (c *ConstantPush) Value() interface{} {
	return c.value
}

func (c *ConstantPush) Type(constpool.Accessor) (types.Type, error) {
	switch c.op {
	case OpBipush, OpSipush:
		return types.Int, nil
	}
	return typeForPrefix(c.op), nil
}

func (c *ConstantPush) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(c.op))
	switch c.op {
	case OpBipush:
		w.WriteI8(int8(c.value.(int32)))
	case OpSipush:
		w.WriteI16(int16(c.value.(int32)))
	}
	return nil
}

func (c *ConstantPush) decode(r *ByteReader, _ bool) error {
	switch c.op {
	case OpBipush:
		v, err := r.ReadI8()
		if err != nil {
			return err
		}
		c.value = int32(v)
	case OpSipush:
		v, err := r.ReadI16()
		if err != nil {
			return err
		}
		c.value = int32(v)
	}
	return nil
}

func (c *ConstantPush) String() string {
	switch c.op {
	case OpBipush, OpSipush:
		return fmt.Sprintf("%s %d", c.op, c.value)
	}
	return c.op.String()
}

func (c *ConstantPush) Copy() Instruction {
	cp := *c
	return &cp
}

// ============================================================================
// ldc 系列
// ============================================================================

// Ldc ldc/ldc_w/ldc2_w，从常量池加载常量
type Ldc struct {
	base
	index int
}

// NewLdc 按下标大小选择 ldc 或 ldc_w
func NewLdc(index int) (*Ldc, error) {
	if index <= math.MaxUint8 {
		return NewLdcOp(OpLdc, index)
	}
	return NewLdcOp(OpLdcW, index)
}

// NewLdc2W ldc2_w，加载 long/double 常量
func NewLdc2W(index int) (*Ldc, error) {
	return NewLdcOp(OpLdc2W, index)
}

// NewLdcOp 使用指定的 ldc 操作码
func NewLdcOp(op Opcode, index int) (*Ldc, error) {
	l := &Ldc{base: newBase(op)}
	if op.Family() != FamLdc {
		return nil, constructionErrorf(op, "not an ldc opcode")
	}
	if err := l.SetIndex(index); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ldc) Index() int { return l.index }

// SetIndex 设置常量池下标；ldc 只能编码 1..255
func (l *Ldc) SetIndex(index int) error {
	limit := math.MaxUint16
	if l.op == OpLdc {
		limit = math.MaxUint8
	}
	if index < 1 || index > limit {
		return constructionErrorf(l.op, "constant pool index %d outside 1..%d", index, limit)
	}
	l.index = index
	return nil
}

// Type 由常量池条目类型决定
func (l *Ldc) Type(cp constpool.Accessor) (types.Type, error) {
	if cp == nil {
		return nil, constpool.ErrNoPool
	}
	tag, err := cp.Tag(uint16(l.index))
	if err != nil {
		return nil, err
	}
	switch tag {
	case constpool.TagInteger:
		return types.Int, nil
	case constpool.TagFloat:
		return types.Float, nil
	case constpool.TagLong:
		return types.Long, nil
	case constpool.TagDouble:
		return types.Double, nil
	case constpool.TagString:
		return types.String, nil
	case constpool.TagClass:
		return types.Class, nil
	case constpool.TagMethodType:
		return types.NewObjectType("java/lang/invoke/MethodType"), nil
	case constpool.TagMethodHandle:
		return types.NewObjectType("java/lang/invoke/MethodHandle"), nil
	case constpool.TagDynamic:
		sig, err := constpool.Signature(cp, uint16(l.index))
		if err != nil {
			return nil, err
		}
		return types.TypeFromDescriptor(sig)
	}
	return nil, fmt.Errorf("%w: %d is %s, not loadable", constpool.ErrBadIndex, l.index, tag)
}

// Exceptions 加载类常量时可能触发类解析
func (l *Ldc) Exceptions() []string {
	return excClassAndInterfaceResolution
}

func (l *Ldc) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(l.op))
	if l.op == OpLdc {
		w.WriteU8(uint8(l.index))
	} else {
		w.WriteU16(uint16(l.index))
	}
	return nil
}

func (l *Ldc) decode(r *ByteReader, _ bool) error {
	if l.op == OpLdc {
		v, err := r.ReadU8()
		l.index = int(v)
		return err
	}
	v, err := r.ReadU16()
	l.index = int(v)
	return err
}

func (l *Ldc) String() string {
	return fmt.Sprintf("%s #%d", l.op, l.index)
}

func (l *Ldc) Copy() Instruction {
	c := *l
	return &c
}

// ============================================================================
// Push 选择最短编码
// ============================================================================

// Push 为常量选择最短的压栈指令，必要时向常量池追加条目
//
// 支持 nil、bool、int、int32、int64、float32、float64、string 和 *types.ObjectType。
func Push(cp *constpool.Pool, value interface{}) (Instruction, error) {
	switch v := value.(type) {
	case nil:
		return NewSimple(OpAconstNull), nil
	case bool:
		if v {
			return NewIconst(1)
		}
		return NewIconst(0)
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return pushLong(cp, int64(v))
		}
		return pushInt(cp, int32(v))
	case int32:
		return pushInt(cp, v)
	case int64:
		return pushLong(cp, v)
	case float32:
		if inst, err := NewFconst(v); err == nil {
			return inst, nil
		}
		return NewLdc(int(cp.AddFloat(v)))
	case float64:
		if inst, err := NewDconst(v); err == nil {
			return inst, nil
		}
		return NewLdc2W(int(cp.AddDouble(v)))
	case string:
		return NewLdc(int(cp.AddString(v)))
	case *types.ObjectType:
		return NewLdc(int(cp.AddClass(v.ClassName())))
	}
	return nil, &ConstructionError{Name: "push", Reason: fmt.Sprintf("unsupported constant %T", value)}
}

func pushInt(cp *constpool.Pool, v int32) (Instruction, error) {
	switch {
	case v >= -1 && v <= 5:
		return NewIconst(int(v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return NewBipush(int(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return NewSipush(int(v))
	}
	return NewLdc(int(cp.AddInteger(v)))
}

func pushLong(cp *constpool.Pool, v int64) (Instruction, error) {
	if v == 0 || v == 1 {
		return NewLconst(v)
	}
	return NewLdc2W(int(cp.AddLong(v)))
}
