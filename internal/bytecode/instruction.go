// Package bytecode 实现 JVM 指令模型、可变指令列表以及字节码编解码
package bytecode

import (
	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 指令接口
// ============================================================================

// Instruction JVM 指令
//
// 操作码空间是封闭的，所有实现都在本包内。指令的能力由 Capabilities()
// 给出的标记集合决定，访问者派发也只依据这组标记和指令族。
type Instruction interface {
	Opcode() Opcode
	Name() string
	Family() Family
	Capabilities() Capability
	// Length 当前编码长度（字节），变长指令在布局后才准确
	Length() int
	// StackEffect 栈效应，字段/方法类指令需要常量池
	StackEffect(cp constpool.Accessor) (StackEffect, error)
	// Copy 浅拷贝，跳转指令的拷贝指向同一目标并登记为新的引用者
	Copy() Instruction
	String() string

	encode(w *ByteWriter, pos int) error
	decode(r *ByteReader, wide bool) error
	instBase() *base
}

// StackEffect 指令对操作数栈的影响
//
// Consume/Produce 以栈值个数计（long 算一个值），
// ConsumeWords/ProduceWords 以 JVM 栈字计（long/double 占两个字）。
// 栈操作指令（dup2 等）按字计数，两组数值相同。
type StackEffect struct {
	Consume      int
	Produce      int
	ConsumeWords int
	ProduceWords int
}

// Delta 栈字数的净变化
func (e StackEffect) Delta() int {
	return e.ProduceWords - e.ConsumeWords
}

// ============================================================================
// 能力视图
// ============================================================================

// TypedInstruction 操作数或结果带类型的指令
type TypedInstruction interface {
	Instruction
	Type(cp constpool.Accessor) (types.Type, error)
}

// ExceptionThrower 可能抛出异常的指令
type ExceptionThrower interface {
	Instruction
	// Exceptions 可能抛出的异常类名
	Exceptions() []string
}

// LoadClass 引用常量池类并可能触发类加载的指令
type LoadClass interface {
	Instruction
	LoadClassType(cp constpool.Accessor) (types.Type, error)
}

// IndexedInstruction 带常量池下标或局部变量下标的指令
type IndexedInstruction interface {
	Instruction
	Index() int
	SetIndex(idx int) error
}

// BranchInstruction 持有跳转目标的指令
type BranchInstruction interface {
	Instruction
	Targeter
	Target() *Handle
	SetTarget(h *Handle)
}

// ============================================================================
// 公共实现
// ============================================================================

// base 所有指令共享的字段：操作码和当前编码长度
type base struct {
	op     Opcode
	length int
}

func newBase(op Opcode) base {
	return base{op: op, length: op.info().length}
}

func (b *base) Opcode() Opcode           { return b.op }
func (b *base) Name() string             { return b.op.String() }
func (b *base) Family() Family           { return b.op.Family() }
func (b *base) Capabilities() Capability { return b.op.Capabilities() }
func (b *base) Length() int              { return b.length }
func (b *base) String() string           { return b.op.String() }
func (b *base) instBase() *base          { return b }

// StackEffect 默认取操作码表中的数值
func (b *base) StackEffect(constpool.Accessor) (StackEffect, error) {
	info := b.op.info()
	return StackEffect{
		Consume:      info.cvalues,
		Produce:      info.pvalues,
		ConsumeWords: info.consume,
		ProduceWords: info.produce,
	}, nil
}

func (b *base) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(b.op))
	return nil
}

func (b *base) decode(*ByteReader, bool) error {
	return nil
}

// Is 判断指令是否具备给定能力
func Is(inst Instruction, caps Capability) bool {
	return inst.Capabilities().Has(caps)
}

// ExceptionsOf 指令可能抛出的异常，不抛异常的指令返回 nil
func ExceptionsOf(inst Instruction) []string {
	if !Is(inst, CapExceptionThrower) {
		return nil
	}
	if et, ok := inst.(ExceptionThrower); ok {
		return et.Exceptions()
	}
	return nil
}

// TypeOf 指令的类型，不带类型的指令返回 types.Unknown
func TypeOf(inst Instruction, cp constpool.Accessor) (types.Type, error) {
	if ti, ok := inst.(TypedInstruction); ok && Is(inst, CapTyped) {
		return ti.Type(cp)
	}
	return types.Unknown, nil
}

// typeForPrefix 按助记符首字母推导类型，适用于 i/l/f/d/a/b/c/s 前缀的指令族
func typeForPrefix(op Opcode) types.Type {
	switch op.String()[0] {
	case 'i':
		return types.Int
	case 'l':
		return types.Long
	case 'f':
		return types.Float
	case 'd':
		return types.Double
	case 'a':
		return types.Object
	case 'b':
		return types.Byte
	case 'c':
		return types.Char
	case 's':
		return types.Short
	}
	mustKnowType(op)
	return nil
}
