package bytecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/jvmbc/internal/types"
)

// sampleCode 为每个操作码构造一段最小的合法编码，跳转目标指向自身
func sampleCode(op Opcode) []byte {
	switch op {
	case OpTableswitch:
		// 位置 0，填充 3 字节；default=0 low=0 high=0 一个目标
		return []byte{
			byte(op), 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
		}
	case OpLookupswitch:
		return []byte{
			byte(op), 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 1,
			0, 0, 0, 7, 0, 0, 0, 0,
		}
	}
	code := make([]byte, op.FixedLength())
	code[0] = byte(op)
	switch op {
	case OpNewarray:
		code[1] = ArrayTypeInt
	case OpMultianewarray:
		code[2], code[3] = 1, 2
	case OpInvokeinterface:
		code[2], code[3] = 1, 1
	case OpLdc, OpBipush:
		code[1] = 9
	case OpSipush, OpLdcW, OpLdc2W, OpGetfield, OpNew, OpInvokestatic:
		code[2] = 3
	}
	return code
}

func TestRoundTripEveryOpcode(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := Opcode(i)
		if !op.Valid() || op == OpWide {
			continue
		}
		t.Run(op.String(), func(t *testing.T) {
			code := sampleCode(op)
			l, err := Decode(code)
			require.NoError(t, err)
			require.Equal(t, 1, l.Len())
			require.Equal(t, op, l.First().Instruction().Opcode())
			require.Equal(t, len(code), l.First().Instruction().Length())

			out, err := l.Bytes()
			require.NoError(t, err)
			require.Equal(t, code, out)
		})
	}
}

func TestDecodePreservesForm(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		op   Opcode
		wide bool
	}{
		{"iload 3 long form", []byte{0x15, 0x03}, OpIload, false},
		{"iload_3", []byte{0x1d}, OpIload3, false},
		{"wide iload", []byte{0xc4, 0x15, 0x00, 0x03}, OpIload, true},
		{"wide astore", []byte{0xc4, 0x3a, 0x01, 0x00}, OpAstore, true},
		{"wide ret", []byte{0xc4, 0xa9, 0x00, 0x02}, OpRet, true},
		{"wide iinc", []byte{0xc4, 0x84, 0x00, 0x01, 0x00, 0x02}, OpIinc, true},
		{"ldc_w small index", []byte{0x13, 0x00, 0x01}, OpLdcW, false},
		{"goto_w", []byte{0xc8, 0x00, 0x00, 0x00, 0x00}, OpGotoW, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Decode(tt.code)
			require.NoError(t, err)
			inst := l.First().Instruction()
			require.Equal(t, tt.op, inst.Opcode())
			switch x := inst.(type) {
			case *LocalVariable:
				require.Equal(t, tt.wide, x.IsWide())
			case *Iinc:
				require.Equal(t, tt.wide, x.IsWide())
				require.Equal(t, 1, x.Index())
				require.Equal(t, 2, x.Increment())
			}

			out, err := l.Bytes()
			require.NoError(t, err)
			require.Equal(t, tt.code, out)
		})
	}
}

func TestEndToEndAddition(t *testing.T) {
	l := NewInstructionList(
		must(NewIconst(3))(t),
		must(NewIconst(4))(t),
		must(NewArithmetic(OpIadd))(t),
		must(NewReturn(types.Int))(t),
	)
	code, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0x06, 0x07, 0x60, 0xac}, code)
	require.Equal(t, []int{0, 1, 2, 3}, l.Positions())

	back, err := Decode(code)
	require.NoError(t, err)
	var names []string
	for _, inst := range back.Instructions() {
		names = append(names, inst.Name())
	}
	require.Equal(t, []string{"iconst_3", "iconst_4", "iadd", "ireturn"}, names)
	require.Equal(t, int32(3), back.First().Instruction().(*ConstantPush).Value())
}

func TestDecodeBranches(t *testing.T) {
	// 0: iload_0  1: ifeq +7  4: iconst_1  5: ireturn  6: nop  7: nop  8: iconst_0  9: ireturn
	code := []byte{0x1a, 0x99, 0x00, 0x07, 0x04, 0xac, 0x00, 0x00, 0x03, 0xac}
	l, err := Decode(code)
	require.NoError(t, err)

	ifeq := l.FindHandle(1)
	require.NotNil(t, ifeq)
	b := ifeq.Instruction().(*Branch)
	require.Same(t, l.FindHandle(8), b.Target())
	require.Equal(t, []Targeter{b}, l.FindHandle(8).Targeters())

	out, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, code, out)
}

func TestDecodeBackwardBranch(t *testing.T) {
	// 0: nop  1: goto -1
	code := []byte{0x00, 0xa7, 0xff, 0xff}
	l, err := Decode(code)
	require.NoError(t, err)
	require.Same(t, l.First(), l.Last().Instruction().(*Branch).Target())
	out, err := l.Bytes()
	require.NoError(t, err)
	require.Equal(t, code, out)
}

func TestSwitchPaddingRoundTrip(t *testing.T) {
	for prefix := 0; prefix < 4; prefix++ {
		l := NewInstructionList()
		for i := 0; i < prefix; i++ {
			l.Append(NewSimple(OpNop))
		}
		target := l.Append(must(NewReturn(types.Void))(t))
		sw := must(NewSwitch([]int32{3, 1, 2}, []*Handle{target, target, target}, target))(t)
		sh, err := l.InsertBefore(target, sw)
		require.NoError(t, err)

		code, err := l.Bytes()
		require.NoError(t, err)
		require.Equal(t, OpTableswitch, sw.Opcode())
		require.Equal(t, (4-(prefix+1)%4)%4, sw.Padding(), "prefix %d", prefix)
		require.Equal(t, 0, (sh.Position()+1+sw.Padding())%4)
		require.Equal(t, 1+sw.Padding()+12+4*3, sw.Length())

		back, err := Decode(code)
		require.NoError(t, err)
		again, err := back.Bytes()
		require.NoError(t, err)
		require.Equal(t, code, again)

		bs := back.FindHandle(prefix).Instruction().(*Switch)
		require.Equal(t, []int32{1, 2, 3}, bs.Match())
		require.Same(t, back.Last(), bs.Default())
	}
}

func TestEmptySwitch(t *testing.T) {
	l := NewInstructionList()
	target := l.Append(must(NewReturn(types.Void))(t))

	_, err := NewTableSwitch(0, nil, target)
	requireConstructionError(t, err)

	sw := must(NewSwitch(nil, nil, target))(t)
	require.Equal(t, OpLookupswitch, sw.Opcode())
	l.Insert(sw)

	code, err := l.Bytes()
	require.NoError(t, err)
	back, err := Decode(code)
	require.NoError(t, err)
	require.Empty(t, back.First().Instruction().(*Switch).Match())
	again, err := back.Bytes()
	require.NoError(t, err)
	require.Equal(t, code, again)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"unknown opcode", []byte{0xcb}},
		{"unassigned opcode", []byte{0xe0}},
		{"truncated sipush", []byte{0x11, 0x00}},
		{"truncated goto", []byte{0xa7, 0x00}},
		{"target inside instruction", []byte{0xa7, 0x00, 0x01, 0x00}},
		{"target past end", []byte{0xa7, 0x00, 0x10}},
		{"wide before nop", []byte{0xc4, 0x00}},
		{"wide short form", []byte{0xc4, 0x1a, 0x00, 0x00}},
		{"dangling wide", []byte{0xc4}},
		{"bad newarray type", []byte{0xbc, 0x02}},
		{"multianewarray zero dims", []byte{0xc5, 0x00, 0x01, 0x00}},
		{"invokeinterface zero count", []byte{0xb9, 0x00, 0x01, 0x00, 0x00}},
		{"tableswitch high below low", []byte{
			0xaa, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 5,
			0, 0, 0, 1,
		}},
		{"lookupswitch truncated pairs", []byte{
			0xab, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 4,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code)
			var mb *MalformedBytecode
			require.True(t, errors.As(err, &mb), "want MalformedBytecode, got %v", err)
		})
	}
}

func TestStreamReaderEOF(t *testing.T) {
	r := NewByteReader([]byte{0x01, 0x02, 0x03})
	v, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), v)
	_, err = r.ReadU16()
	require.Error(t, err)
	require.Equal(t, 1, r.Remaining())

	w := NewByteWriter()
	w.WriteI16(-2)
	w.WriteU32(0xcafebabe)
	require.Equal(t, []byte{0xff, 0xfe, 0xca, 0xfe, 0xba, 0xbe}, w.Bytes())
}
