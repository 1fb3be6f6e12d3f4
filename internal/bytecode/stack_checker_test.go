package bytecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

func TestMaxStackStraightLine(t *testing.T) {
	tests := []struct {
		name  string
		insts func() []Instruction
		want  int
	}{
		{"int add", func() []Instruction {
			return []Instruction{must(NewIconst(3))(t), must(NewIconst(4))(t), must(NewArithmetic(OpIadd))(t), must(NewReturn(types.Int))(t)}
		}, 2},
		{"long add", func() []Instruction {
			return []Instruction{must(NewLconst(1))(t), must(NewLconst(1))(t), must(NewArithmetic(OpLadd))(t), must(NewReturn(types.Long))(t)}
		}, 4},
		{"dup2 of double", func() []Instruction {
			return []Instruction{must(NewDconst(1))(t), must(NewStackOp(OpDup2))(t), must(NewArithmetic(OpDmul))(t), must(NewReturn(types.Double))(t)}
		}, 4},
		{"empty", func() []Instruction { return nil }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxStack(nil, NewInstructionList(tt.insts()...), nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMaxStackFollowsBranches(t *testing.T) {
	l := NewInstructionList()
	l.Append(must(NewLoad(types.Int, 0))(t))
	br := l.Append(NewSimple(OpNop))
	l.Append(must(NewIconst(1))(t))
	l.Append(must(NewReturn(types.Int))(t))
	target := l.Append(must(NewIconst(0))(t))
	l.Append(must(NewReturn(types.Int))(t))
	br.SetInstruction(must(NewBranch(OpIfeq, target))(t))

	got, err := MaxStack(nil, l, nil)
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestMaxStackWithConstantPool(t *testing.T) {
	cp := constpool.New()
	indexOf := cp.AddMethodref("java/lang/String", "indexOf", "(Ljava/lang/String;I)I")
	str, err := Push(cp, "needle")
	require.NoError(t, err)

	l := NewInstructionList(
		must(NewLoad(types.String, 0))(t),
		str,
		must(NewIconst(0))(t),
		must(NewInvoke(OpInvokevirtual, int(indexOf)))(t),
		must(NewReturn(types.Int))(t),
	)
	got, err := MaxStack(cp, l, nil)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	_, err = MaxStack(nil, l, nil)
	require.Error(t, err)
}

func TestMaxStackExceptionHandler(t *testing.T) {
	l := NewInstructionList()
	start := l.Append(NewSimple(OpNop))
	l.Append(must(NewReturn(types.Void))(t))
	handler := l.Append(must(NewStackOp(OpDup))(t))
	l.Append(must(NewStackOp(OpPop))(t))
	l.Append(NewSimple(OpAthrow))
	eh := NewExceptionHandler(start, start, handler, "java/lang/Exception")

	got, err := MaxStack(nil, l, []*ExceptionHandler{eh})
	require.NoError(t, err)
	require.Equal(t, 2, got)

	got, err = MaxStack(nil, l, nil)
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

func TestMaxStackSubroutine(t *testing.T) {
	l := NewInstructionList()
	call := l.Append(NewSimple(OpNop))
	l.Append(must(NewReturn(types.Void))(t))
	sub := l.Append(must(NewStore(types.Object, 1))(t))
	l.Append(must(NewRet(1))(t))
	call.SetInstruction(NewJsr(sub))

	got, err := MaxStack(nil, l, nil)
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestStackCheckerReportsProblems(t *testing.T) {
	// 两条路径到达 ireturn 时栈深度不同
	l := NewInstructionList()
	l.Append(must(NewLoad(types.Int, 0))(t))
	br := l.Append(NewSimple(OpNop))
	l.Append(must(NewIconst(1))(t))
	join := l.Append(must(NewReturn(types.Int))(t))
	br.SetInstruction(must(NewBranch(OpIfeq, join))(t))

	res, err := NewStackChecker(nil, l, nil).Check()
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	require.Error(t, res.Err())

	under := NewInstructionList(must(NewStackOp(OpPop))(t), must(NewReturn(types.Void))(t))
	_, err = MaxStack(nil, under, nil)
	require.Error(t, err)

	l.Append(must(NewStackOp(OpPop))(t))
	_, err = MaxStack(nil, l, nil)
	require.Len(t, multierr.Errors(err), 1)
}

func TestMaxLocals(t *testing.T) {
	tests := []struct {
		name     string
		insts    func() []Instruction
		argWords int
		want     int
	}{
		{"args only", func() []Instruction { return []Instruction{must(NewReturn(types.Void))(t)} }, 2, 2},
		{"long slot", func() []Instruction { return []Instruction{must(NewLoad(types.Long, 2))(t)} }, 1, 4},
		{"iinc", func() []Instruction { return []Instruction{must(NewIinc(5, 1))(t)} }, 0, 6},
		{"wide store", func() []Instruction { return []Instruction{must(NewStore(types.Double, 300))(t)} }, 0, 302},
		{"short form", func() []Instruction { return []Instruction{must(NewStore(types.Int, 3))(t)} }, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MaxLocals(NewInstructionList(tt.insts()...), tt.argWords))
		})
	}
}

func TestCheckConstantPoolTags(t *testing.T) {
	cp := constpool.New()
	field := cp.AddFieldref("app/Point", "x", "I")
	method := cp.AddMethodref("app/Point", "norm", "()D")
	class := cp.AddClass("app/Point")

	good := NewInstructionList(
		must(NewClassRef(OpNew, int(class)))(t),
		must(NewStackOp(OpDup))(t),
		must(NewFieldAccess(OpGetfield, int(field)))(t),
		must(NewReturn(types.Int))(t),
	)
	require.NoError(t, Check(cp, good))

	bad := NewInstructionList(
		must(NewFieldAccess(OpGetfield, int(class)))(t),
		must(NewInvoke(OpInvokevirtual, int(field)))(t),
		must(NewLdc(int(method)))(t),
		must(NewClassRef(OpCheckcast, int(method)))(t),
		must(NewReturn(types.Void))(t),
	)
	err := Check(cp, bad)
	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	var ce *CheckError
	require.True(t, errors.As(errs[0], &ce))
	require.Same(t, bad.First(), ce.Handle)

	require.NoError(t, Check(nil, bad))
}

func TestCheckBranchTargets(t *testing.T) {
	other := NewInstructionList(NewSimple(OpNop))
	l := NewInstructionList(NewGoto(other.First()), NewGoto(nil))
	errs := multierr.Errors(Check(nil, l))
	require.Len(t, errs, 2)
}
