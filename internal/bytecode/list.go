package bytecode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrLayoutDiverged 布局迭代超过上界仍未收敛
var ErrLayoutDiverged = errors.New("instruction layout did not converge")

var logger = zap.NewNop()

// SetLogger 设置包内日志，nil 恢复为空日志
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// ============================================================================
// 指令列表
// ============================================================================

// InstructionList 可变的指令双向链表
//
// 插入、删除、移动都会使位置失效，编码前需要 SetPositions（Bytes 会自动调用）。
// 非并发安全。
type InstructionList struct {
	head       *Handle
	tail       *Handle
	length     int
	byteLength int
	stale      bool
}

// NewInstructionList 创建指令列表，可选地依次追加指令
func NewInstructionList(insts ...Instruction) *InstructionList {
	l := &InstructionList{}
	for _, inst := range insts {
		l.Append(inst)
	}
	return l
}

// First 第一个句柄
func (l *InstructionList) First() *Handle { return l.head }

// Last 最后一个句柄
func (l *InstructionList) Last() *Handle { return l.tail }

// Len 指令条数
func (l *InstructionList) Len() int { return l.length }

// IsEmpty 列表是否为空
func (l *InstructionList) IsEmpty() bool { return l.head == nil }

// Contains 句柄是否属于本列表
func (l *InstructionList) Contains(h *Handle) bool {
	return h != nil && h.list == l
}

func (l *InstructionList) invalidate() {
	l.stale = true
}

func (l *InstructionList) own(h *Handle) error {
	if !l.Contains(h) {
		return &ForeignHandleError{Handle: h}
	}
	return nil
}

// link 把 h 链接在 prev 之后，prev 为 nil 时放在开头
func (l *InstructionList) link(prev, h *Handle) {
	h.prev = prev
	if prev == nil {
		h.next = l.head
		l.head = h
	} else {
		h.next = prev.next
		prev.next = h
	}
	if h.next == nil {
		l.tail = h
	} else {
		h.next.prev = h
	}
	h.list = l
	l.length++
	l.stale = true
}

// unlink 从链表中摘下 [from, to]，n 为区间长度
func (l *InstructionList) unlink(from, to *Handle, n int) {
	if from.prev == nil {
		l.head = to.next
	} else {
		from.prev.next = to.next
	}
	if to.next == nil {
		l.tail = from.prev
	} else {
		to.next.prev = from.prev
	}
	from.prev, to.next = nil, nil
	l.length -= n
	l.stale = true
}

// Append 追加指令到末尾
func (l *InstructionList) Append(inst Instruction) *Handle {
	h := newHandle(l, inst)
	l.link(l.tail, h)
	return h
}

// AppendList 把 other 的全部句柄移到本列表末尾，返回第一个移入的句柄
func (l *InstructionList) AppendList(other *InstructionList) *Handle {
	if other == nil || other.head == nil || other == l {
		return nil
	}
	first := other.head
	for h := first; h != nil; h = h.next {
		h.list = l
	}
	first.prev = l.tail
	if l.tail == nil {
		l.head = first
	} else {
		l.tail.next = first
	}
	l.tail = other.tail
	l.length += other.length
	l.stale = true
	*other = InstructionList{}
	return first
}

// Insert 插入到开头
func (l *InstructionList) Insert(inst Instruction) *Handle {
	h := newHandle(l, inst)
	l.link(nil, h)
	return h
}

// InsertBefore 插入到 target 之前
func (l *InstructionList) InsertBefore(target *Handle, inst Instruction) (*Handle, error) {
	if err := l.own(target); err != nil {
		return nil, err
	}
	h := newHandle(l, inst)
	l.link(target.prev, h)
	return h, nil
}

// InsertAfter 插入到 target 之后
func (l *InstructionList) InsertAfter(target *Handle, inst Instruction) (*Handle, error) {
	if err := l.own(target); err != nil {
		return nil, err
	}
	h := newHandle(l, inst)
	l.link(target, h)
	return h, nil
}

// span 收集 [from, to] 区间内的句柄
func (l *InstructionList) span(from, to *Handle) ([]*Handle, error) {
	if err := l.own(from); err != nil {
		return nil, err
	}
	if err := l.own(to); err != nil {
		return nil, err
	}
	var hs []*Handle
	for h := from; ; h = h.next {
		if h == nil {
			return nil, fmt.Errorf("%s does not follow %s", to, from)
		}
		hs = append(hs, h)
		if h == to {
			return hs, nil
		}
	}
}

// Delete 删除单个句柄
func (l *InstructionList) Delete(h *Handle) error {
	return l.DeleteRange(h, h)
}

// DeleteRange 删除 [from, to] 区间
//
// 区间内任何句柄仍被区间外的对象引用时，返回 TargetedHandleError（多个时合并），
// 列表保持不变。区间内跳转指令之间的引用不算。删除成功后句柄失效。
func (l *InstructionList) DeleteRange(from, to *Handle) error {
	hs, err := l.span(from, to)
	if err != nil {
		return err
	}

	internal := make(map[Targeter]bool)
	for _, h := range hs {
		if t, ok := h.inst.(Targeter); ok {
			internal[t] = true
		}
	}
	for _, h := range hs {
		var outside []Targeter
		for _, t := range h.Targeters() {
			if !internal[t] {
				outside = append(outside, t)
			}
		}
		if len(outside) > 0 {
			err = multierr.Append(err, &TargetedHandleError{Handle: h, Targeters: outside})
		}
	}
	if err != nil {
		return err
	}

	l.unlink(from, to, len(hs))
	for _, h := range hs {
		disposeInstruction(h.inst)
	}
	for _, h := range hs {
		h.inst = nil
		h.list = nil
		h.prev, h.next = nil, nil
		h.pos = -1
		h.targeters = nil
	}
	return nil
}

// Move 把 [start, end] 移到 target 之后，target 为 nil 时移到开头
func (l *InstructionList) Move(start, end, target *Handle) error {
	hs, err := l.span(start, end)
	if err != nil {
		return err
	}
	if target != nil {
		if err := l.own(target); err != nil {
			return err
		}
		for _, h := range hs {
			if h == target {
				return fmt.Errorf("cannot move %s into its own range", target)
			}
		}
	}
	l.unlink(start, end, len(hs))

	var next *Handle
	if target == nil {
		next = l.head
		l.head = start
	} else {
		next = target.next
		target.next = start
	}
	start.prev = target
	end.next = next
	if next == nil {
		l.tail = end
	} else {
		next.prev = end
	}
	l.length += len(hs)
	return nil
}

// ============================================================================
// 重定向
// ============================================================================

// RedirectBranches 把所有指向 old 的跳转指令改为指向 new
func (l *InstructionList) RedirectBranches(old, new *Handle) error {
	var err error
	for _, t := range old.Targeters() {
		if _, ok := t.(BranchInstruction); ok && t.ContainsTarget(old) {
			err = multierr.Append(err, t.UpdateTarget(old, new))
		}
	}
	return err
}

// RedirectLocalVariables 把 ranges 中对 old 的引用改为 new
func (l *InstructionList) RedirectLocalVariables(ranges []*LocalVariableRange, old, new *Handle) error {
	var err error
	for _, r := range ranges {
		if r.ContainsTarget(old) {
			err = multierr.Append(err, r.UpdateTarget(old, new))
		}
	}
	return err
}

// RedirectExceptionHandlers 把 handlers 中对 old 的引用改为 new
func (l *InstructionList) RedirectExceptionHandlers(handlers []*ExceptionHandler, old, new *Handle) error {
	var err error
	for _, eh := range handlers {
		if eh.ContainsTarget(old) {
			err = multierr.Append(err, eh.UpdateTarget(old, new))
		}
	}
	return err
}

// ============================================================================
// 布局
// ============================================================================

// SetPositions 计算每条指令的字节偏移
//
// 每一轮按当前长度分配位置（switch 的填充随位置变化），然后检查跳转偏移。
// goto/jsr 偏移超出 16 位时升级为 goto_w/jsr_w，升级后重新布局。
// 升级只会发生一次，因此轮数不超过可升级跳转数加 1。
// 条件跳转偏移超出 16 位时返回 BranchRangeError。
func (l *InstructionList) SetPositions() error {
	limit := 1
	for h := l.head; h != nil; h = h.next {
		if b, ok := h.inst.(*Branch); ok {
			if b.target == nil {
				return fmt.Errorf("%s: %w", h, ErrNoTarget)
			}
			if b.target.list != l {
				return &ForeignHandleError{Handle: b.target}
			}
			if b.op == OpGoto || b.op == OpJsr {
				limit++
			}
		}
		if s, ok := h.inst.(*Switch); ok {
			if err := l.checkSwitch(h, s); err != nil {
				return err
			}
		}
	}

	widened := 0
	for pass := 1; ; pass++ {
		if pass > limit {
			return ErrLayoutDiverged
		}
		pos := 0
		for h := l.head; h != nil; h = h.next {
			h.pos = pos
			if s, ok := h.inst.(*Switch); ok {
				s.updateLength(pos)
			}
			pos += h.inst.Length()
		}
		l.byteLength = pos

		changed := false
		for h := l.head; h != nil; h = h.next {
			b, ok := h.inst.(*Branch)
			if !ok || b.IsWide() {
				continue
			}
			off := b.target.pos - h.pos
			if off >= math.MinInt16 && off <= math.MaxInt16 {
				continue
			}
			if !b.widen() {
				return &BranchRangeError{Handle: h, Offset: off}
			}
			widened++
			changed = true
		}
		if !changed {
			logger.Debug("instruction layout",
				zap.Int("passes", pass),
				zap.Int("widened", widened),
				zap.Int("bytes", pos))
			break
		}
	}
	l.stale = false
	return nil
}

func (l *InstructionList) checkSwitch(h *Handle, s *Switch) error {
	targets := append(s.Targets(), s.def)
	for _, t := range targets {
		if t == nil {
			return fmt.Errorf("%s: %w", h, ErrNoTarget)
		}
		if t.list != l {
			return &ForeignHandleError{Handle: t}
		}
	}
	return nil
}

// ByteLength 最近一次布局得到的编码总长度
func (l *InstructionList) ByteLength() int { return l.byteLength }

// Positions 各指令的字节偏移，需要先布局
func (l *InstructionList) Positions() []int {
	out := make([]int, 0, l.length)
	for h := l.head; h != nil; h = h.next {
		out = append(out, h.pos)
	}
	return out
}

// FindHandle 按字节偏移查找句柄
func (l *InstructionList) FindHandle(pos int) *Handle {
	for h := l.head; h != nil; h = h.next {
		if h.pos == pos {
			return h
		}
	}
	return nil
}

// Handles 全部句柄
func (l *InstructionList) Handles() []*Handle {
	out := make([]*Handle, 0, l.length)
	for h := l.head; h != nil; h = h.next {
		out = append(out, h)
	}
	return out
}

// Instructions 全部指令
func (l *InstructionList) Instructions() []Instruction {
	out := make([]Instruction, 0, l.length)
	for h := l.head; h != nil; h = h.next {
		out = append(out, h.inst)
	}
	return out
}

// Copy 深拷贝，跳转目标映射到新列表中对应的句柄
func (l *InstructionList) Copy() *InstructionList {
	out := NewInstructionList()
	mapping := make(map[*Handle]*Handle, l.length)
	for h := l.head; h != nil; h = h.next {
		mapping[h] = out.Append(h.inst.Copy())
	}
	for _, nh := range mapping {
		switch c := nh.inst.(type) {
		case *Branch:
			if m, ok := mapping[c.target]; ok {
				c.SetTarget(m)
			}
		case *Switch:
			if m, ok := mapping[c.def]; ok {
				c.SetDefault(m)
			}
			for i, t := range c.targets {
				if m, ok := mapping[t]; ok {
					c.setTargetAt(i, m)
				}
			}
		}
	}
	return out
}

func (l *InstructionList) String() string {
	var sb strings.Builder
	for h := l.head; h != nil; h = h.next {
		sb.WriteString(h.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
