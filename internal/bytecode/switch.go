package bytecode

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ============================================================================
// tableswitch / lookupswitch
// ============================================================================

// Switch tableswitch 或 lookupswitch
//
// 两种形式都以 (匹配值, 目标) 列表加默认目标表示；tableswitch 的匹配值
// 连续递增。操作码后的填充使操作数从 4 字节对齐处开始，长度随位置变化。
type Switch struct {
	base
	match   []int32
	targets []*Handle
	def     *Handle
	padding int

	// 解码时的原始偏移
	defOffset int
	offsets   []int
}

// NewTableSwitch low 起连续的匹配值依次对应 targets，至少需要一个目标
func NewTableSwitch(low int32, targets []*Handle, def *Handle) (*Switch, error) {
	if len(targets) == 0 {
		return nil, constructionErrorf(OpTableswitch, "no targets, high would be below low")
	}
	if int64(low)+int64(len(targets))-1 > math.MaxInt32 {
		return nil, constructionErrorf(OpTableswitch, "range overflows int32")
	}
	match := make([]int32, len(targets))
	for i := range match {
		match[i] = low + int32(i)
	}
	return newSwitch(OpTableswitch, match, targets, def), nil
}

// NewLookupSwitch 匹配值必须严格递增
func NewLookupSwitch(match []int32, targets []*Handle, def *Handle) (*Switch, error) {
	if len(match) != len(targets) {
		return nil, constructionErrorf(OpLookupswitch, "%d keys but %d targets", len(match), len(targets))
	}
	for i := 1; i < len(match); i++ {
		if match[i] <= match[i-1] {
			return nil, constructionErrorf(OpLookupswitch, "keys not strictly increasing at %d", i)
		}
	}
	return newSwitch(OpLookupswitch, append([]int32(nil), match...), targets, def), nil
}

// NewSwitch 按空间和时间代价在 tableswitch 与 lookupswitch 之间选择
//
// 匹配值可以无序，但不能重复。tableswitch 中的空缺跳到默认目标。
func NewSwitch(match []int32, targets []*Handle, def *Handle) (*Switch, error) {
	if len(match) != len(targets) {
		return nil, &ConstructionError{Name: "switch", Reason: fmt.Sprintf("%d keys but %d targets", len(match), len(targets))}
	}
	idx := make([]int, len(match))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return match[idx[a]] < match[idx[b]] })
	keys := make([]int32, len(match))
	dests := make([]*Handle, len(match))
	for i, j := range idx {
		keys[i], dests[i] = match[j], targets[j]
		if i > 0 && keys[i] == keys[i-1] {
			return nil, &ConstructionError{Name: "switch", Reason: fmt.Sprintf("duplicate key %d", keys[i])}
		}
	}
	if len(keys) == 0 {
		return NewLookupSwitch(nil, nil, def)
	}

	lo, hi := int64(keys[0]), int64(keys[len(keys)-1])
	n := int64(len(keys))
	tableSpace, tableTime := 4+(hi-lo+1), int64(3)
	lookupSpace, lookupTime := 3+2*n, n
	if tableSpace+3*tableTime > lookupSpace+3*lookupTime {
		return NewLookupSwitch(keys, dests, def)
	}

	filled := make([]*Handle, hi-lo+1)
	for i := range filled {
		filled[i] = def
	}
	for i, k := range keys {
		filled[int64(k)-lo] = dests[i]
	}
	return NewTableSwitch(int32(lo), filled, def)
}

func newSwitch(op Opcode, match []int32, targets []*Handle, def *Handle) *Switch {
	s := &Switch{base: newBase(op), match: match, targets: make([]*Handle, len(targets))}
	for i, t := range targets {
		s.setTargetAt(i, t)
	}
	s.SetDefault(def)
	s.updateLength(0)
	return s
}

// Match 匹配值
func (s *Switch) Match() []int32 {
	return append([]int32(nil), s.match...)
}

// Targets 与匹配值一一对应的目标
func (s *Switch) Targets() []*Handle {
	return append([]*Handle(nil), s.targets...)
}

// Default 默认目标
func (s *Switch) Default() *Handle { return s.def }

// Target 默认目标，满足 BranchInstruction
func (s *Switch) Target() *Handle { return s.def }

// SetTarget 修改默认目标，满足 BranchInstruction
func (s *Switch) SetTarget(h *Handle) { s.SetDefault(h) }

// SetDefault 修改默认目标
func (s *Switch) SetDefault(h *Handle) {
	retarget(s, s.def, h)
	s.def = h
}

// SetTargetAt 修改第 i 个目标
func (s *Switch) SetTargetAt(i int, h *Handle) error {
	if i < 0 || i >= len(s.targets) {
		return fmt.Errorf("switch target %d out of range", i)
	}
	s.setTargetAt(i, h)
	return nil
}

func (s *Switch) setTargetAt(i int, h *Handle) {
	retarget(s, s.targets[i], h)
	s.targets[i] = h
}

// ContainsTarget 实现 Targeter
func (s *Switch) ContainsTarget(h *Handle) bool {
	if s.def == h {
		return true
	}
	for _, t := range s.targets {
		if t == h {
			return true
		}
	}
	return false
}

// UpdateTarget 实现 Targeter，替换所有出现
func (s *Switch) UpdateTarget(old, new *Handle) error {
	found := false
	if s.def == old {
		s.SetDefault(new)
		found = true
	}
	for i, t := range s.targets {
		if t == old {
			s.setTargetAt(i, new)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%s does not target %s", s.op, old)
	}
	return nil
}

func (s *Switch) dispose() {
	s.SetDefault(nil)
	for i := range s.targets {
		s.setTargetAt(i, nil)
	}
}

// Padding 当前填充字节数
func (s *Switch) Padding() int { return s.padding }

// updateLength 按指令位置重新计算填充和长度
func (s *Switch) updateLength(pos int) {
	s.padding = (4 - (pos+1)%4) % 4
	if s.op == OpTableswitch {
		s.length = 1 + s.padding + 12 + 4*len(s.targets)
	} else {
		s.length = 1 + s.padding + 8 + 8*len(s.targets)
	}
}

func (s *Switch) encode(w *ByteWriter, pos int) error {
	s.updateLength(pos)
	if s.def == nil {
		return ErrNoTarget
	}
	w.WriteU8(uint8(s.op))
	for i := 0; i < s.padding; i++ {
		w.WriteU8(0)
	}
	w.WriteI32(int32(s.def.pos - pos))
	if s.op == OpTableswitch {
		low := int32(0)
		if len(s.match) > 0 {
			low = s.match[0]
		}
		w.WriteI32(low)
		w.WriteI32(low + int32(len(s.match)) - 1)
		for _, t := range s.targets {
			if t == nil {
				return ErrNoTarget
			}
			w.WriteI32(int32(t.pos - pos))
		}
		return nil
	}
	w.WriteI32(int32(len(s.match)))
	for i, t := range s.targets {
		if t == nil {
			return ErrNoTarget
		}
		w.WriteI32(s.match[i])
		w.WriteI32(int32(t.pos - pos))
	}
	return nil
}

func (s *Switch) decode(r *ByteReader, _ bool) error {
	pos := r.Pos() - 1
	s.padding = (4 - r.Pos()%4) % 4
	if err := r.Skip(s.padding); err != nil {
		return err
	}
	def, err := r.ReadI32()
	if err != nil {
		return err
	}
	s.defOffset = int(def)

	if s.op == OpTableswitch {
		low, err := r.ReadI32()
		if err != nil {
			return err
		}
		high, err := r.ReadI32()
		if err != nil {
			return err
		}
		if high < low {
			return fmt.Errorf("tableswitch high %d below low %d", high, low)
		}
		n := int64(high) - int64(low) + 1
		if n*4 > int64(r.Remaining()) {
			return fmt.Errorf("tableswitch with %d entries exceeds code length", n)
		}
		s.match = make([]int32, n)
		s.offsets = make([]int, n)
		for i := range s.offsets {
			off, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.match[i] = low + int32(i)
			s.offsets[i] = int(off)
		}
	} else {
		npairs, err := r.ReadI32()
		if err != nil {
			return err
		}
		if npairs < 0 || int64(npairs)*8 > int64(r.Remaining()) {
			return fmt.Errorf("lookupswitch with %d pairs exceeds code length", npairs)
		}
		s.match = make([]int32, npairs)
		s.offsets = make([]int, npairs)
		for i := range s.offsets {
			key, err := r.ReadI32()
			if err != nil {
				return err
			}
			off, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.match[i], s.offsets[i] = key, int(off)
		}
	}
	s.targets = make([]*Handle, len(s.match))
	s.updateLength(pos)
	return nil
}

func (s *Switch) String() string {
	var sb strings.Builder
	sb.WriteString(s.op.String())
	sb.WriteString(" {")
	for i, k := range s.match {
		fmt.Fprintf(&sb, " %d: %s;", k, targetString(s.targets[i]))
	}
	fmt.Fprintf(&sb, " default: %s }", targetString(s.def))
	return sb.String()
}

func targetString(h *Handle) string {
	switch {
	case h == nil:
		return "<none>"
	case h.pos >= 0:
		return fmt.Sprint(h.pos)
	}
	return fmt.Sprintf("#%d", h.id)
}

// Copy 拷贝指向同一组目标，并作为新的引用者登记
func (s *Switch) Copy() Instruction {
	c := *s
	c.match = append([]int32(nil), s.match...)
	c.offsets = nil
	c.def = nil
	c.targets = make([]*Handle, len(s.targets))
	for i, t := range s.targets {
		c.setTargetAt(i, t)
	}
	c.SetDefault(s.def)
	return &c
}
