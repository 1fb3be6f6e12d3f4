package bytecode

import (
	"fmt"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 数组访问
// ============================================================================

// ArrayAccess xaload/xastore
//
// 加载消耗 2 个值（数组引用、下标）产生 1 个；存储消耗 3 个值。
type ArrayAccess struct {
	base
}

// NewArrayAccess 创建数组加载或存储指令
func NewArrayAccess(op Opcode) (*ArrayAccess, error) {
	switch op.Family() {
	case FamArrayLoad, FamArrayStore:
		return &ArrayAccess{base: newBase(op)}, nil
	}
	return nil, constructionErrorf(op, "not an array access opcode")
}

// IsStore 是否为存储指令
func (a *ArrayAccess) IsStore() bool {
	return a.op.Family() == FamArrayStore
}

// Type 元素类型，baload/bastore 同时用于 boolean 数组，统一报告为 byte
func (a *ArrayAccess) Type(constpool.Accessor) (types.Type, error) {
	return typeForPrefix(a.op), nil
}

func (a *ArrayAccess) Exceptions() []string {
	if a.op == OpAastore {
		return concatExceptions(excArrayAccess, []string{ExcArrayStore})
	}
	return excArrayAccess
}

func (a *ArrayAccess) Copy() Instruction {
	c := *a
	return &c
}

// ============================================================================
// 数组创建
// ============================================================================

// newarray 的元素类型编码
const (
	ArrayTypeBoolean uint8 = 4
	ArrayTypeChar    uint8 = 5
	ArrayTypeFloat   uint8 = 6
	ArrayTypeDouble  uint8 = 7
	ArrayTypeByte    uint8 = 8
	ArrayTypeShort   uint8 = 9
	ArrayTypeInt     uint8 = 10
	ArrayTypeLong    uint8 = 11
)

// NewArray newarray，创建基本类型一维数组
type NewArray struct {
	base
	atype uint8
}

// NewNewArray 按元素类型创建 newarray
func NewNewArray(elem types.Type) (*NewArray, error) {
	n := &NewArray{base: newBase(OpNewarray)}
	if err := n.setAtype(uint8(elem.Tag())); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NewArray) setAtype(atype uint8) error {
	if atype < ArrayTypeBoolean || atype > ArrayTypeLong {
		return constructionErrorf(OpNewarray, "invalid array element type %d", atype)
	}
	n.atype = atype
	return nil
}

// ElementType 元素类型
func (n *NewArray) ElementType() types.Type {
	t, _ := types.BasicTypeFor(types.Tag(n.atype))
	return t
}

// Type 创建出的数组类型
func (n *NewArray) Type(constpool.Accessor) (types.Type, error) {
	return types.NewArrayType(n.ElementType(), 1), nil
}

func (n *NewArray) Exceptions() []string {
	return []string{ExcNegativeArraySize}
}

func (n *NewArray) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(n.op))
	w.WriteU8(n.atype)
	return nil
}

func (n *NewArray) decode(r *ByteReader, _ bool) error {
	v, err := r.ReadU8()
	if err != nil {
		return err
	}
	return n.setAtype(v)
}

func (n *NewArray) String() string {
	return fmt.Sprintf("%s %s", n.op, n.ElementType())
}

func (n *NewArray) Copy() Instruction {
	c := *n
	return &c
}

// MultiANewArray multianewarray，消耗 dimensions 个长度产生 1 个数组引用
type MultiANewArray struct {
	classRef
	dimensions int
}

// NewMultiANewArray 创建多维数组指令，维度取 1..255
func NewMultiANewArray(index, dimensions int) (*MultiANewArray, error) {
	m := &MultiANewArray{classRef: classRef{base: newBase(OpMultianewarray)}}
	if err := m.SetIndex(index); err != nil {
		return nil, err
	}
	if dimensions < 1 || dimensions > 255 {
		return nil, constructionErrorf(OpMultianewarray, "dimensions %d outside 1..255", dimensions)
	}
	m.dimensions = dimensions
	return m, nil
}

// Dimensions 创建的维数
func (m *MultiANewArray) Dimensions() int {
	return m.dimensions
}

func (m *MultiANewArray) StackEffect(constpool.Accessor) (StackEffect, error) {
	return StackEffect{Consume: m.dimensions, Produce: 1, ConsumeWords: m.dimensions, ProduceWords: 1}, nil
}

// Type 常量池中引用的就是数组类型本身
func (m *MultiANewArray) Type(cp constpool.Accessor) (types.Type, error) {
	return m.LoadClassType(cp)
}

func (m *MultiANewArray) Exceptions() []string {
	return concatExceptions(excClassAndInterfaceResolution, []string{ExcIllegalAccess, ExcNegativeArraySize})
}

func (m *MultiANewArray) encode(w *ByteWriter, _ int) error {
	w.WriteU8(uint8(m.op))
	w.WriteU16(uint16(m.index))
	w.WriteU8(uint8(m.dimensions))
	return nil
}

func (m *MultiANewArray) decode(r *ByteReader, wide bool) error {
	if err := m.classRef.decode(r, wide); err != nil {
		return err
	}
	v, err := r.ReadU8()
	if err != nil {
		return err
	}
	if v == 0 {
		return fmt.Errorf("multianewarray with zero dimensions")
	}
	m.dimensions = int(v)
	return nil
}

func (m *MultiANewArray) String() string {
	return fmt.Sprintf("%s #%d %d", m.op, m.index, m.dimensions)
}

func (m *MultiANewArray) Copy() Instruction {
	c := *m
	return &c
}
