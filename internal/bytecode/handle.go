package bytecode

import (
	"fmt"

	"go.uber.org/atomic"
)

// ============================================================================
// 指令句柄
// ============================================================================

// handleIDs 进程内唯一的句柄 ID 计数器，ID 从 1 开始且不复用
var handleIDs = atomic.NewUint64(0)

// Targeter 持有句柄引用的对象：跳转指令、局部变量范围、异常处理器
type Targeter interface {
	// ContainsTarget 是否引用了 h
	ContainsTarget(h *Handle) bool
	// UpdateTarget 把对 old 的引用替换为 new
	UpdateTarget(old, new *Handle) error
}

// Handle 指令在列表中的位置
//
// 句柄在整个生命周期内保持同一个 ID。被删除的句柄进入失效状态，
// 其指令被清空，不能再插入任何列表。
type Handle struct {
	id        uint64
	inst      Instruction
	prev      *Handle
	next      *Handle
	pos       int
	list      *InstructionList
	targeters []Targeter
}

func newHandle(list *InstructionList, inst Instruction) *Handle {
	return &Handle{
		id:   handleIDs.Inc(),
		inst: inst,
		pos:  -1,
		list: list,
	}
}

// ID 句柄标识
func (h *Handle) ID() uint64 { return h.id }

// Instruction 句柄持有的指令，已删除的句柄返回 nil
func (h *Handle) Instruction() Instruction { return h.inst }

// Position 最近一次布局得到的字节偏移，未布局时为 -1
func (h *Handle) Position() int { return h.pos }

// Next 下一个句柄
func (h *Handle) Next() *Handle { return h.next }

// Prev 上一个句柄
func (h *Handle) Prev() *Handle { return h.prev }

// SetInstruction 替换指令，旧的跳转指令解除对目标的引用
func (h *Handle) SetInstruction(inst Instruction) {
	if h.inst != nil {
		disposeInstruction(h.inst)
	}
	h.inst = inst
	if h.list != nil {
		h.list.invalidate()
	}
}

// Targeters 引用该句柄的对象，按首次登记顺序，每个对象只出现一次
func (h *Handle) Targeters() []Targeter {
	return uniqueTargeters(h.targeters)
}

// uniqueTargeters 去重并保持顺序；switch 的多个槽位指向同一句柄时会重复登记
func uniqueTargeters(ts []Targeter) []Targeter {
	out := make([]Targeter, 0, len(ts))
	seen := make(map[Targeter]bool, len(ts))
	for _, t := range ts {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// IsTargeted 是否仍被引用
func (h *Handle) IsTargeted() bool {
	return len(h.targeters) > 0
}

func (h *Handle) addTargeter(t Targeter) {
	h.targeters = append(h.targeters, t)
}

// removeTargeter 只移除第一次出现，同一个 switch 可能多次登记同一目标
func (h *Handle) removeTargeter(t Targeter) {
	for i, x := range h.targeters {
		if x == t {
			h.targeters = append(h.targeters[:i], h.targeters[i+1:]...)
			return
		}
	}
}

func (h *Handle) String() string {
	if h.inst == nil {
		return fmt.Sprintf("#%d <deleted>", h.id)
	}
	if h.pos < 0 {
		return fmt.Sprintf("#%d %s", h.id, h.inst)
	}
	return fmt.Sprintf("%4d: %s", h.pos, h.inst)
}

// retarget 把 t 对 old 的引用登记转移到 new
func retarget(t Targeter, old, new *Handle) {
	if old != nil {
		old.removeTargeter(t)
	}
	if new != nil {
		new.addTargeter(t)
	}
}

// disposeInstruction 跳转指令删除前解除对目标的引用
func disposeInstruction(inst Instruction) {
	switch b := inst.(type) {
	case *Branch:
		b.dispose()
	case *Switch:
		b.dispose()
	}
}

func describeTargeter(t Targeter) string {
	switch v := t.(type) {
	case *Branch:
		return "branch " + v.op.String()
	case *Switch:
		return "switch " + v.op.String()
	case *LocalVariableRange:
		return fmt.Sprintf("local variable %s (slot %d)", v.Name, v.Index)
	case *ExceptionHandler:
		return "exception handler " + v.catchName()
	}
	return fmt.Sprintf("%T", t)
}
