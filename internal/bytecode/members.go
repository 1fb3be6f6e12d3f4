package bytecode

import (
	"fmt"
	"math"
	"strings"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 字段和方法引用
// ============================================================================

// memberRef 引用 Fieldref/Methodref/InterfaceMethodref/InvokeDynamic 条目
type memberRef struct {
	base
	index int
}

func (m *memberRef) Index() int { return m.index }

func (m *memberRef) SetIndex(index int) error {
	if index < 1 || index > math.MaxUint16 {
		return constructionErrorf(m.op, "constant pool index %d outside 1..65535", index)
	}
	m.index = index
	return nil
}

// Member 解析引用的成员
func (m *memberRef) Member(cp constpool.Accessor) (constpool.Member, error) {
	return constpool.ResolveMember(cp, uint16(m.index))
}

// LoadClassType 成员所属的类，invokedynamic 没有所属类，返回 java/lang/Object
func (m *memberRef) LoadClassType(cp constpool.Accessor) (types.Type, error) {
	mem, err := m.Member(cp)
	if err != nil {
		return nil, err
	}
	switch {
	case mem.ClassName == "":
		return types.Object, nil
	case strings.HasPrefix(mem.ClassName, "["):
		return types.TypeFromDescriptor(mem.ClassName)
	}
	return types.NewObjectType(mem.ClassName), nil
}

func (m *memberRef) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(m.op))
	w.WriteU16(uint16(m.index))
	return nil
}

func (m *memberRef) decode(r *ByteReader, _ bool) error {
	v, err := r.ReadU16()
	m.index = int(v)
	return err
}

func (m *memberRef) String() string {
	return fmt.Sprintf("%s #%d", m.op, m.index)
}

// ============================================================================
// 字段访问
// ============================================================================

// FieldAccess getstatic/putstatic/getfield/putfield
type FieldAccess struct {
	memberRef
}

// NewFieldAccess 创建字段访问指令，index 指向 Fieldref
func NewFieldAccess(op Opcode, index int) (*FieldAccess, error) {
	if op.Family() != FamField {
		return nil, constructionErrorf(op, "not a field opcode")
	}
	f := &FieldAccess{memberRef{base: newBase(op)}}
	if err := f.SetIndex(index); err != nil {
		return nil, err
	}
	return f, nil
}

// IsStatic 是否访问静态字段
func (f *FieldAccess) IsStatic() bool {
	return f.op == OpGetstatic || f.op == OpPutstatic
}

// IsPut 是否写字段
func (f *FieldAccess) IsPut() bool {
	return f.op == OpPutstatic || f.op == OpPutfield
}

// Type 字段类型
func (f *FieldAccess) Type(cp constpool.Accessor) (types.Type, error) {
	sig, err := constpool.Signature(cp, uint16(f.index))
	if err != nil {
		return nil, err
	}
	return types.TypeFromDescriptor(sig)
}

// StackEffect 字段值的栈字数取自描述符，实例字段另有一个对象引用
func (f *FieldAccess) StackEffect(cp constpool.Accessor) (StackEffect, error) {
	t, err := f.Type(cp)
	if err != nil {
		return StackEffect{}, err
	}
	var e StackEffect
	if !f.IsStatic() {
		e.Consume, e.ConsumeWords = 1, 1
	}
	if f.IsPut() {
		e.Consume++
		e.ConsumeWords += t.Size()
	} else {
		e.Produce, e.ProduceWords = 1, t.Size()
	}
	return e, nil
}

func (f *FieldAccess) Exceptions() []string {
	excs := concatExceptions(excFieldAndMethodResolution, []string{ExcIncompatibleClassChange})
	if f.IsStatic() {
		return append(excs, ExcExceptionInInitializer)
	}
	return append(excs, ExcNullPointer)
}

func (f *FieldAccess) Copy() Instruction {
	c := *f
	return &c
}

// ============================================================================
// 方法调用
// ============================================================================

// Invoke invokevirtual/invokespecial/invokestatic/invokeinterface/invokedynamic
//
// invokeinterface 额外编码参数栈字数（含接收者）和一个零字节，
// invokedynamic 额外编码两个零字节。
type Invoke struct {
	memberRef
	count int
}

// NewInvoke 创建除 invokeinterface 以外的调用指令
func NewInvoke(op Opcode, index int) (*Invoke, error) {
	if op.Family() != FamInvoke {
		return nil, constructionErrorf(op, "not an invoke opcode")
	}
	if op == OpInvokeinterface {
		return nil, constructionErrorf(op, "use NewInvokeInterface")
	}
	inv := &Invoke{memberRef: memberRef{base: newBase(op)}}
	if err := inv.SetIndex(index); err != nil {
		return nil, err
	}
	return inv, nil
}

// NewInvokeInterface 创建 invokeinterface，count 为参数栈字数加 1
func NewInvokeInterface(index, count int) (*Invoke, error) {
	inv := &Invoke{memberRef: memberRef{base: newBase(OpInvokeinterface)}}
	if err := inv.SetIndex(index); err != nil {
		return nil, err
	}
	if count < 1 || count > math.MaxUint8 {
		return nil, constructionErrorf(OpInvokeinterface, "count %d outside 1..255", count)
	}
	inv.count = count
	return inv, nil
}

// Count invokeinterface 的 count 操作数，其他调用为 0
func (inv *Invoke) Count() int {
	return inv.count
}

func (inv *Invoke) hasReceiver() bool {
	return inv.op != OpInvokestatic && inv.op != OpInvokedynamic
}

func (inv *Invoke) descriptor(cp constpool.Accessor) (*types.MethodDescriptor, error) {
	sig, err := constpool.Signature(cp, uint16(inv.index))
	if err != nil {
		return nil, err
	}
	return types.ParseMethodDescriptor(sig)
}

// ArgumentTypes 参数类型，不含接收者
func (inv *Invoke) ArgumentTypes(cp constpool.Accessor) ([]types.Type, error) {
	md, err := inv.descriptor(cp)
	if err != nil {
		return nil, err
	}
	return md.Args, nil
}

// Type 返回值类型
func (inv *Invoke) Type(cp constpool.Accessor) (types.Type, error) {
	md, err := inv.descriptor(cp)
	if err != nil {
		return nil, err
	}
	return md.Return, nil
}

// StackEffect 参数栈字数加接收者；void 方法不产生值
func (inv *Invoke) StackEffect(cp constpool.Accessor) (StackEffect, error) {
	md, err := inv.descriptor(cp)
	if err != nil {
		return StackEffect{}, err
	}
	e := StackEffect{Consume: len(md.Args), ConsumeWords: md.ArgWords}
	if inv.hasReceiver() {
		e.Consume++
		e.ConsumeWords++
	}
	if md.Return.Tag() != types.TVoid {
		e.Produce, e.ProduceWords = 1, md.Return.Size()
	}
	return e, nil
}

func (inv *Invoke) Exceptions() []string {
	switch inv.op {
	case OpInvokevirtual:
		return concatExceptions(excFieldAndMethodResolution,
			[]string{ExcIncompatibleClassChange, ExcNullPointer, ExcAbstractMethod, ExcUnsatisfiedLink})
	case OpInvokespecial:
		return concatExceptions(excFieldAndMethodResolution,
			[]string{ExcIncompatibleClassChange, ExcNullPointer, ExcAbstractMethod, ExcUnsatisfiedLink})
	case OpInvokestatic:
		return concatExceptions(excFieldAndMethodResolution,
			[]string{ExcIncompatibleClassChange, ExcUnsatisfiedLink, ExcExceptionInInitializer})
	case OpInvokeinterface:
		return concatExceptions(excFieldAndMethodResolution,
			[]string{ExcIncompatibleClassChange, ExcIllegalAccess, ExcAbstractMethod, ExcUnsatisfiedLink, ExcNullPointer})
	}
	return concatExceptions(excClassAndInterfaceResolution, []string{ExcBootstrapMethod})
}

func (inv *Invoke) encode(w *ByteWriter, pos int) error {
	if err := inv.memberRef.encode(w, pos); err != nil {
		return err
	}
	switch inv.op {
	case OpInvokeinterface:
		w.WriteU8(uint8(inv.count))
		w.WriteU8(0)
	case OpInvokedynamic:
		w.WriteU16(0)
	}
	return nil
}

func (inv *Invoke) decode(r *ByteReader, wide bool) error {
	if err := inv.memberRef.decode(r, wide); err != nil {
		return err
	}
	switch inv.op {
	case OpInvokeinterface:
		count, err := r.ReadU8()
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("invokeinterface with zero count")
		}
		inv.count = int(count)
		_, err = r.ReadU8()
		return err
	case OpInvokedynamic:
		_, err := r.ReadU16()
		return err
	}
	return nil
}

func (inv *Invoke) String() string {
	if inv.op == OpInvokeinterface {
		return fmt.Sprintf("%s #%d %d", inv.op, inv.index, inv.count)
	}
	return inv.memberRef.String()
}

func (inv *Invoke) Copy() Instruction {
	c := *inv
	return &c
}
