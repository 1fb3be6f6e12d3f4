package bytecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ErrNoTarget 跳转指令尚未设置目标
var ErrNoTarget = errors.New("branch has no target")

// ============================================================================
// 跳转指令
// ============================================================================

// Branch if 系列、goto/goto_w、jsr/jsr_w
//
// 目标以句柄表示；解码阶段先记录原始偏移，整段方法读完后再解析为句柄。
type Branch struct {
	base
	target *Handle
	offset int // 解码得到的相对偏移
}

// NewBranch 创建跳转指令并登记为 target 的引用者
//
// goto/jsr 以短形式创建，布局时偏移超出 16 位会自动升级为 goto_w/jsr_w。
func NewBranch(op Opcode, target *Handle) (*Branch, error) {
	switch op.Family() {
	case FamIf, FamGoto, FamJsr:
	default:
		return nil, constructionErrorf(op, "not a branch opcode")
	}
	b := &Branch{base: newBase(op)}
	b.SetTarget(target)
	return b, nil
}

// NewGoto goto
func NewGoto(target *Handle) *Branch {
	b, _ := NewBranch(OpGoto, target)
	return b
}

// NewJsr jsr
func NewJsr(target *Handle) *Branch {
	b, _ := NewBranch(OpJsr, target)
	return b
}

// Target 跳转目标
func (b *Branch) Target() *Handle { return b.target }

// SetTarget 修改目标，同时维护双方的引用登记
func (b *Branch) SetTarget(h *Handle) {
	retarget(b, b.target, h)
	b.target = h
}

// ContainsTarget 实现 Targeter
func (b *Branch) ContainsTarget(h *Handle) bool {
	return b.target == h
}

// UpdateTarget 实现 Targeter
func (b *Branch) UpdateTarget(old, new *Handle) error {
	if b.target != old {
		return fmt.Errorf("%s does not target %s", b.op, old)
	}
	b.SetTarget(new)
	return nil
}

func (b *Branch) dispose() {
	b.SetTarget(nil)
}

// IsConditional 是否为条件跳转
func (b *Branch) IsConditional() bool {
	return b.op.Capabilities().Has(CapConditional)
}

// IsJsr 是否为子程序调用
func (b *Branch) IsJsr() bool {
	return b.op.Capabilities().Has(CapJsr)
}

// IsWide 是否使用 32 位偏移
func (b *Branch) IsWide() bool {
	return b.op == OpGotoW || b.op == OpJsrW
}

// Offset 相对偏移；目标已布局时由位置计算，否则为解码时读到的值
func (b *Branch) Offset(pos int) int {
	if b.target != nil && b.target.pos >= 0 {
		return b.target.pos - pos
	}
	return b.offset
}

// widen goto/jsr 升级为 32 位偏移形式，返回是否发生了变化
func (b *Branch) widen() bool {
	switch b.op {
	case OpGoto:
		b.op = OpGotoW
	case OpJsr:
		b.op = OpJsrW
	default:
		return false
	}
	b.length = b.op.info().length
	return true
}

// Type jsr 压入返回地址
func (b *Branch) Type(constpool.Accessor) (types.Type, error) {
	if !b.IsJsr() {
		mustKnowType(b.op)
	}
	var id uint64
	if b.target != nil {
		id = b.target.id
	}
	return types.NewReturnAddressType(id), nil
}

// Negate 返回条件相反、目标相同的新跳转指令
func (b *Branch) Negate() (*Branch, error) {
	op, ok := b.op.Negate()
	if !ok {
		return nil, constructionErrorf(b.op, "not a conditional branch")
	}
	return NewBranch(op, b.target)
}

func (b *Branch) encode(w *ByteWriter, pos int) error {
	if b.target == nil {
		return ErrNoTarget
	}
	off := b.target.pos - pos
	w.WriteU8(uint8(b.op))
	if b.IsWide() {
		w.WriteI32(int32(off))
		return nil
	}
	if off < math.MinInt16 || off > math.MaxInt16 {
		return &BranchRangeError{Offset: off}
	}
	w.WriteI16(int16(off))
	return nil
}

func (b *Branch) decode(r *ByteReader, _ bool) error {
	if b.IsWide() {
		v, err := r.ReadI32()
		b.offset = int(v)
		return err
	}
	v, err := r.ReadI16()
	b.offset = int(v)
	return err
}

func (b *Branch) String() string {
	switch {
	case b.target == nil:
		return fmt.Sprintf("%s <none>", b.op)
	case b.target.pos >= 0:
		return fmt.Sprintf("%s %d", b.op, b.target.pos)
	}
	return fmt.Sprintf("%s #%d", b.op, b.target.id)
}

// Copy 拷贝指向同一目标，并作为新的引用者登记
func (b *Branch) Copy() Instruction {
	c := *b
	c.target = nil
	c.SetTarget(b.target)
	return &c
}

// ============================================================================
// 条件取反
// ============================================================================

var negations = map[Opcode]Opcode{
	OpIfeq:      OpIfne,
	OpIfne:      OpIfeq,
	OpIflt:      OpIfge,
	OpIfge:      OpIflt,
	OpIfgt:      OpIfle,
	OpIfle:      OpIfgt,
	OpIfIcmpeq:  OpIfIcmpne,
	OpIfIcmpne:  OpIfIcmpeq,
	OpIfIcmplt:  OpIfIcmpge,
	OpIfIcmpge:  OpIfIcmplt,
	OpIfIcmpgt:  OpIfIcmple,
	OpIfIcmple:  OpIfIcmpgt,
	OpIfAcmpeq:  OpIfAcmpne,
	OpIfAcmpne:  OpIfAcmpeq,
	OpIfnull:    OpIfnonnull,
	OpIfnonnull: OpIfnull,
}

// Negate 条件跳转的相反操作码
func (op Opcode) Negate() (Opcode, bool) {
	n, ok := negations[op]
	return n, ok
}
