package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

func TestListing(t *testing.T) {
	cp := constpool.New()
	hello, err := Push(cp, "hello")
	require.NoError(t, err)
	out := cp.AddFieldref("java/lang/System", "out", "Ljava/io/PrintStream;")

	l := NewInstructionList(
		must(NewFieldAccess(OpGetstatic, int(out)))(t),
		hello,
		must(NewStore(types.Object, 300))(t),
		must(NewReturn(types.Void))(t),
	)
	require.NoError(t, l.SetPositions())

	lines := Listing(cp, l)
	require.Len(t, lines, 4)

	require.Equal(t, "getstatic", lines[0].Opcode)
	require.Equal(t, "java/lang/System.out:Ljava/io/PrintStream;", lines[0].Comment)
	require.Equal(t, 3, lines[0].Length)

	require.Equal(t, 3, lines[1].Offset)
	require.Equal(t, "ldc", lines[1].Opcode)
	require.Equal(t, `"hello"`, lines[1].Comment)

	require.Equal(t, "wide astore", lines[2].Opcode)
	require.Equal(t, "300", lines[2].Operands)
	require.Empty(t, lines[2].Comment)

	require.Equal(t, "return", lines[3].Opcode)
	require.Equal(t, 9, lines[3].Offset)
}

func TestFormat(t *testing.T) {
	l := NewInstructionList()
	top := l.Append(must(NewIinc(1, 1))(t))
	l.Append(NewGoto(top))
	_, err := l.Bytes()
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Format(&sb, nil, l, true))
	require.Equal(t, "     0: iinc 1 1\n     3: goto 0\n", sb.String())

	sb.Reset()
	require.NoError(t, Format(&sb, nil, l, false))
	require.Equal(t, "iinc 1 1\ngoto 0\n", sb.String())
}
