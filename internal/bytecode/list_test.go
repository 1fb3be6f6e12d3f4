package bytecode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/tangzhangming/jvmbc/internal/types"
)

func appendNops(l *InstructionList, n int) {
	for i := 0; i < n; i++ {
		l.Append(NewSimple(OpNop))
	}
}

func opcodes(l *InstructionList) []Opcode {
	var out []Opcode
	for _, inst := range l.Instructions() {
		out = append(out, inst.Opcode())
	}
	return out
}

func TestHandleIDsAreUnique(t *testing.T) {
	l := NewInstructionList()
	seen := make(map[uint64]bool)
	var last uint64
	for i := 0; i < 100; i++ {
		h := l.Append(NewSimple(OpNop))
		require.False(t, seen[h.ID()])
		require.Greater(t, h.ID(), last)
		seen[h.ID()] = true
		last = h.ID()
	}
	other := NewInstructionList(NewSimple(OpNop))
	require.False(t, seen[other.First().ID()])
}

func TestInsertOrder(t *testing.T) {
	l := NewInstructionList()
	b := l.Append(NewSimple(OpNop))
	a := l.Insert(NewSimple(OpAconstNull))
	_, err := l.InsertAfter(b, NewSimple(OpAthrow))
	require.NoError(t, err)
	_, err = l.InsertBefore(b, must(NewStackOp(OpPop))(t))
	require.NoError(t, err)

	require.Equal(t, []Opcode{OpAconstNull, OpPop, OpNop, OpAthrow}, opcodes(l))
	require.Same(t, a, l.First())
	require.Equal(t, 4, l.Len())
	require.Same(t, b, l.Last().Prev())

	foreign := NewInstructionList(NewSimple(OpNop)).First()
	_, err = l.InsertBefore(foreign, NewSimple(OpNop))
	var fe *ForeignHandleError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 4, l.Len())
}

func TestAppendListMovesHandles(t *testing.T) {
	l := NewInstructionList(NewSimple(OpNop))
	other := NewInstructionList(must(NewIconst(1))(t), must(NewReturn(types.Int))(t))
	moved := other.First()

	first := l.AppendList(other)
	require.Same(t, moved, first)
	require.True(t, l.Contains(moved))
	require.True(t, other.IsEmpty())
	require.Equal(t, 3, l.Len())
	require.Equal(t, []Opcode{OpNop, OpIconst1, OpIreturn}, opcodes(l))
}

func TestDeleteTargetedHandle(t *testing.T) {
	l := NewInstructionList()
	l.Append(must(NewIconst(0))(t))
	br := l.Append(NewSimple(OpNop))
	alt := l.Append(NewSimple(OpNop))
	target := l.Append(must(NewReturn(types.Void))(t))
	b := must(NewBranch(OpIfeq, target))(t)
	br.SetInstruction(b)

	err := l.Delete(target)
	var the *TargetedHandleError
	require.True(t, errors.As(err, &the), "got %v", err)
	require.Same(t, target, the.Handle)
	require.Equal(t, []Targeter{b}, the.Targeters)
	require.Equal(t, 4, l.Len())
	require.Same(t, target, b.Target())

	require.NoError(t, l.RedirectBranches(target, alt))
	require.Same(t, alt, b.Target())
	require.False(t, target.IsTargeted())
	require.NoError(t, l.Delete(target))

	require.Equal(t, 3, l.Len())
	require.Nil(t, target.Instruction())
	require.Equal(t, -1, target.Position())
	require.False(t, l.Contains(target))
	require.NoError(t, Check(nil, l))
}

func TestDeleteRangeInternalBranch(t *testing.T) {
	l := NewInstructionList()
	head := l.Append(NewSimple(OpNop))
	from := l.Append(NewSimple(OpNop))
	inner := l.Append(NewSimple(OpNop))
	l.Append(must(NewReturn(types.Void))(t))
	from.SetInstruction(NewGoto(inner))

	require.NoError(t, l.DeleteRange(from, inner))
	require.Equal(t, []Opcode{OpNop, OpReturn}, opcodes(l))
	require.Same(t, head.Next(), l.Last())
}

func TestDeleteRangeAggregatesErrors(t *testing.T) {
	l := NewInstructionList()
	a := l.Append(NewSimple(OpNop))
	b := l.Append(NewSimple(OpNop))
	c := l.Append(NewSimple(OpNop))
	d := l.Append(must(NewReturn(types.Void))(t))
	a.SetInstruction(must(NewBranch(OpIfnull, c))(t))
	eh := NewExceptionHandler(b, c, d, "")

	err := l.DeleteRange(b, c)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		var the *TargetedHandleError
		require.True(t, errors.As(e, &the))
	}
	require.Equal(t, 4, l.Len())

	require.NoError(t, l.RedirectBranches(c, d))
	require.NoError(t, l.RedirectExceptionHandlers([]*ExceptionHandler{eh}, b, a))
	require.NoError(t, l.RedirectExceptionHandlers([]*ExceptionHandler{eh}, c, a))
	require.Same(t, a, eh.Start())
	require.Same(t, a, eh.End())
	require.NoError(t, l.DeleteRange(b, c))
	require.Equal(t, 2, l.Len())
}

func TestRedirectSwitchWithRepeatedTarget(t *testing.T) {
	l := NewInstructionList()
	first := l.Append(NewSimple(OpNop))
	a := l.Append(NewSimple(OpNop))
	b := l.Append(must(NewReturn(types.Void))(t))
	sw := must(NewSwitch([]int32{1, 2, 4, 5}, []*Handle{a, a, a, a}, b))(t)
	require.Equal(t, OpTableswitch, sw.Opcode())
	l.Insert(sw)

	require.Equal(t, []Targeter{sw}, a.Targeters())
	err := l.Delete(a)
	var the *TargetedHandleError
	require.True(t, errors.As(err, &the))
	require.Equal(t, 1, strings.Count(err.Error(), "switch tableswitch"), err.Error())

	require.NoError(t, l.RedirectBranches(a, first))
	require.False(t, a.IsTargeted())
	require.Equal(t, []*Handle{first, first, b, first, first}, sw.Targets())
	require.Same(t, b, sw.Default())
	require.Equal(t, []Targeter{sw}, first.Targeters())

	require.NoError(t, l.Delete(a))
	require.Equal(t, 3, l.Len())
	_, err = l.Bytes()
	require.NoError(t, err)
}

func TestRedirectLocalVariables(t *testing.T) {
	l := NewInstructionList()
	start := l.Append(must(NewStore(types.Int, 1))(t))
	end := l.Append(must(NewLoad(types.Int, 1))(t))
	ret := l.Append(must(NewReturn(types.Int))(t))
	lv := NewLocalVariableRange("x", "I", 1, start, end)

	err := l.Delete(end)
	var the *TargetedHandleError
	require.True(t, errors.As(err, &the))

	require.NoError(t, l.RedirectLocalVariables([]*LocalVariableRange{lv}, end, ret))
	require.Same(t, ret, lv.End())
	require.NoError(t, l.Delete(end))

	lv.Dispose()
	require.False(t, start.IsTargeted())
	require.False(t, ret.IsTargeted())
}

func TestMove(t *testing.T) {
	l := NewInstructionList()
	a := l.Append(must(NewIconst(0))(t))
	b := l.Append(must(NewIconst(1))(t))
	c := l.Append(must(NewIconst(2))(t))
	d := l.Append(must(NewIconst(3))(t))

	require.NoError(t, l.Move(c, d, a))
	require.Equal(t, []Opcode{OpIconst0, OpIconst2, OpIconst3, OpIconst1}, opcodes(l))
	require.Same(t, b, l.Last())

	require.NoError(t, l.Move(b, b, nil))
	require.Equal(t, []Opcode{OpIconst1, OpIconst0, OpIconst2, OpIconst3}, opcodes(l))
	require.Same(t, b, l.First())
	require.Nil(t, b.Prev())
	require.Equal(t, 4, l.Len())

	require.Error(t, l.Move(a, d, c))
	require.Error(t, l.Move(d, a, nil))
}

func TestSetInstructionReleasesTarget(t *testing.T) {
	l := NewInstructionList()
	target := l.Append(NewSimple(OpNop))
	h := l.Append(NewGoto(target))
	require.True(t, target.IsTargeted())

	h.SetInstruction(must(NewReturn(types.Void))(t))
	require.False(t, target.IsTargeted())
}

func TestCopyRemapsTargets(t *testing.T) {
	l := NewInstructionList()
	loop := l.Append(must(NewIinc(1, 1))(t))
	l.Append(must(NewLoad(types.Int, 1))(t))
	l.Append(must(NewBranch(OpIfne, loop))(t))
	exit := l.Append(must(NewReturn(types.Void))(t))
	sw := must(NewSwitch([]int32{0, 10}, []*Handle{loop, exit}, exit))(t)
	_, err := l.InsertBefore(exit, sw)
	require.NoError(t, err)

	c := l.Copy()
	require.Equal(t, opcodes(l), opcodes(c))

	cb := c.First().Next().Next().Instruction().(*Branch)
	require.Same(t, c.First(), cb.Target())
	require.True(t, c.Contains(cb.Target()))

	cs := c.Last().Prev().Instruction().(*Switch)
	require.Same(t, c.Last(), cs.Default())
	require.Same(t, c.First(), cs.Targets()[0])

	require.Len(t, loop.Targeters(), 2)
	require.Len(t, c.First().Targeters(), 2)

	orig, err := l.Bytes()
	require.NoError(t, err)
	copied, err := c.Bytes()
	require.NoError(t, err)
	require.Equal(t, orig, copied)
}

func TestFindHandleAfterLayout(t *testing.T) {
	l := NewInstructionList(
		must(NewBipush(10))(t),
		must(NewStore(types.Int, 1))(t),
		must(NewIinc(1, -1))(t),
		must(NewReturn(types.Void))(t),
	)
	require.NoError(t, l.SetPositions())
	require.Equal(t, []int{0, 2, 3, 6}, l.Positions())
	require.Equal(t, 7, l.ByteLength())
	require.Same(t, l.Last(), l.FindHandle(6))
	require.Nil(t, l.FindHandle(1))
}

func TestGotoStaysShortAtThreshold(t *testing.T) {
	l := NewInstructionList()
	g := l.Append(NewSimple(OpNop))
	appendNops(l, 32764)
	target := l.Append(must(NewReturn(types.Void))(t))
	b := NewGoto(target)
	g.SetInstruction(b)

	code, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, OpGoto, b.Opcode())
	require.Equal(t, 32767, target.Position())
	require.Equal(t, []byte{0xa7, 0x7f, 0xff}, code[:3])
}

func TestGotoWidensPastThreshold(t *testing.T) {
	l := NewInstructionList()
	g := l.Append(NewSimple(OpNop))
	appendNops(l, 32765)
	target := l.Append(must(NewReturn(types.Void))(t))
	b := NewGoto(target)
	g.SetInstruction(b)

	code, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, OpGotoW, b.Opcode())
	require.True(t, b.IsWide())
	require.Equal(t, 5+32765, target.Position())
	require.Equal(t, len(code), l.ByteLength())
	require.Equal(t, []byte{0xc8, 0x00, 0x00, 0x80, 0x02}, code[:5])

	back, err := Decode(code)
	require.NoError(t, err)
	require.Equal(t, OpGotoW, back.First().Instruction().Opcode())
	require.Same(t, back.Last(), back.First().Instruction().(*Branch).Target())
}

func TestBackwardJsrWidens(t *testing.T) {
	l := NewInstructionList()
	sub := l.Append(must(NewStore(types.Object, 1))(t))
	l.Append(must(NewRet(1))(t))
	appendNops(l, 40000)
	jsr := NewJsr(sub)
	l.Append(jsr)
	l.Append(must(NewReturn(types.Void))(t))

	_, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, OpJsrW, jsr.Opcode())
	require.Equal(t, 5, jsr.Length())
}

func TestConditionalBranchOutOfRange(t *testing.T) {
	l := NewInstructionList()
	l.Append(must(NewIconst(0))(t))
	h := l.Append(NewSimple(OpNop))
	appendNops(l, 40000)
	target := l.Append(must(NewReturn(types.Void))(t))
	h.SetInstruction(must(NewBranch(OpIfeq, target))(t))

	_, err := l.Bytes()
	var bre *BranchRangeError
	require.True(t, errors.As(err, &bre), "got %v", err)
	require.Same(t, h, bre.Handle)
	require.Greater(t, bre.Offset, 32767)
}

func TestSetPositionsRejectsForeignTarget(t *testing.T) {
	other := NewInstructionList(NewSimple(OpNop))
	l := NewInstructionList(NewGoto(other.First()))
	err := l.SetPositions()
	var fe *ForeignHandleError
	require.True(t, errors.As(err, &fe))

	nl := NewInstructionList(NewGoto(nil))
	require.ErrorIs(t, nl.SetPositions(), ErrNoTarget)
}

func TestSwitchLayoutConverges(t *testing.T) {
	// goto 升级改变 switch 的位置和填充，布局仍然收敛
	l := NewInstructionList()
	g := l.Append(NewSimple(OpNop))
	def := l.Append(NewSimple(OpNop))
	sw := must(NewLookupSwitch([]int32{-5, 100}, []*Handle{def, def}, def))(t)
	l.Append(sw)
	appendNops(l, 33000)
	target := l.Append(must(NewReturn(types.Void))(t))
	g.SetInstruction(NewGoto(target))

	code, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, 6, l.First().Next().Next().Position())
	require.Equal(t, 1, sw.Padding())

	back, err := Decode(code)
	require.NoError(t, err)
	again, err := back.Bytes()
	require.NoError(t, err)
	require.Equal(t, code, again)
}
