package jvmgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/jvmbc/internal/bytecode"
	"github.com/tangzhangming/jvmbc/internal/types"
)

func methodByName(t *testing.T, cf *ClassFile, name string) *MemberInfo {
	t.Helper()
	for i := range cf.Methods {
		n, _, err := cf.MemberName(&cf.Methods[i])
		require.NoError(t, err)
		if n == name {
			return &cf.Methods[i]
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func classBytes(t *testing.T, c *Class) []byte {
	t.Helper()
	data, err := c.Bytes()
	require.NoError(t, err)
	return data
}

func TestHelloClassRoundTrip(t *testing.T) {
	c := NewClass("demo/Hello", "")
	require.NoError(t, c.AddDefaultConstructor())
	require.NoError(t, c.AddPrintMain([]string{"hello", "world"}))

	data, err := c.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe, 0x00, 0x00, 0x00, 0x34}, data[:8])

	cf, err := ReadClassFile(data)
	require.NoError(t, err)
	name, err := cf.ClassName()
	require.NoError(t, err)
	require.Equal(t, "demo/Hello", name)
	super, err := cf.Pool.ClassName(cf.SuperClass)
	require.NoError(t, err)
	require.Equal(t, "java/lang/Object", super)
	require.Len(t, cf.Methods, 2)

	mainMethod := methodByName(t, cf, "main")
	require.Equal(t, uint16(AccPublic|AccStatic), mainMethod.AccessFlags)
	code, err := cf.MethodCode(mainMethod)
	require.NoError(t, err)
	require.Equal(t, uint16(2), code.MaxStack)
	require.Equal(t, uint16(1), code.MaxLocals)

	list, handlers, err := code.Decode(cf.Pool)
	require.NoError(t, err)
	require.Empty(t, handlers)
	require.Equal(t, 7, list.Len())
	require.Equal(t, bytecode.OpGetstatic, list.First().Instruction().Opcode())
	require.Equal(t, bytecode.OpReturn, list.Last().Instruction().Opcode())
	require.NoError(t, bytecode.Check(cf.Pool, list))

	again, err := cf.ToBytes()
	require.NoError(t, err)
	require.Equal(t, data, again)

	ctor := methodByName(t, cf, "<init>")
	code, err = cf.MethodCode(ctor)
	require.NoError(t, err)
	require.Len(t, code.Code, 5)
	require.Equal(t, byte(0x2a), code.Code[0])
	require.Equal(t, byte(0xb7), code.Code[1])
	require.Equal(t, byte(0xb1), code.Code[4])
	require.Equal(t, uint16(1), code.MaxLocals)
}

func TestMaxMethodLoop(t *testing.T) {
	c := NewClass("demo/Numbers", "")
	require.NoError(t, c.AddMaxMethod())

	cf, err := ReadClassFile(classBytes(t, c))
	require.NoError(t, err)
	code, err := cf.MethodCode(methodByName(t, cf, "max"))
	require.NoError(t, err)
	require.Equal(t, uint16(3), code.MaxStack)
	require.Equal(t, uint16(3), code.MaxLocals)

	list, _, err := code.Decode(cf.Pool)
	require.NoError(t, err)
	var gotoInst *bytecode.Branch
	for _, inst := range list.Instructions() {
		if inst.Opcode() == bytecode.OpGoto {
			gotoInst = inst.(*bytecode.Branch)
		}
	}
	require.NotNil(t, gotoInst)
	require.Equal(t, bytecode.OpIload2, gotoInst.Target().Instruction().Opcode())
}

func TestExceptionTable(t *testing.T) {
	c := NewClass("demo/Guard", "")
	list := bytecode.NewInstructionList()
	start := list.Append(bytecode.NewSimple(bytecode.OpAconstNull))
	end := list.Append(bytecode.NewSimple(bytecode.OpAthrow))
	handler := list.Append(must(bytecode.NewStore(types.Throwable, 0)))
	list.Append(must(bytecode.NewReturn(types.Void)))
	eh := bytecode.NewExceptionHandler(start, end, handler, "java/lang/RuntimeException")

	require.NoError(t, c.AddMethod(AccStatic, "guard", "()V", list, []*bytecode.ExceptionHandler{eh}))

	cf, err := ReadClassFile(classBytes(t, c))
	require.NoError(t, err)
	code, err := cf.MethodCode(methodByName(t, cf, "guard"))
	require.NoError(t, err)
	require.Len(t, code.ExceptionTable, 1)
	entry := code.ExceptionTable[0]
	require.Equal(t, ExceptionEntry{StartPC: 0, EndPC: 2, HandlerPC: 2, CatchType: entry.CatchType}, entry)
	require.Equal(t, uint16(1), code.MaxStack)

	decoded, handlers, err := code.Decode(cf.Pool)
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	require.Equal(t, "java/lang/RuntimeException", handlers[0].CatchType)
	require.Same(t, decoded.First(), handlers[0].Start())
	require.Same(t, decoded.First().Next(), handlers[0].End())
	require.True(t, handlers[0].Handler().IsTargeted())
}

func TestDecodeRejectsEmptyHandlerRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end uint16
	}{
		{"empty", 1, 1},
		{"inverted", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := &CodeAttribute{
				MaxStack: 1,
				Code:     []byte{0x01, 0xbf, 0xb1}, // aconst_null athrow return
				ExceptionTable: []ExceptionEntry{
					{StartPC: tt.start, EndPC: tt.end, HandlerPC: 2},
				},
			}
			_, _, err := attr.Decode(nil)
			var mb *bytecode.MalformedBytecode
			require.True(t, errors.As(err, &mb), "got %v", err)
			require.Equal(t, int(tt.start), mb.Offset)
		})
	}
}

func TestReadClassFileRejectsGarbage(t *testing.T) {
	_, err := ReadClassFile([]byte{0xde, 0xad, 0xbe, 0xef})
	require.True(t, errors.Is(err, ErrNotClassFile))

	c := NewClass("demo/Short", "")
	data := classBytes(t, c)
	_, err = ReadClassFile(data[:len(data)-1])
	require.Error(t, err)
}

func TestAbstractMethodHasNoCode(t *testing.T) {
	c := NewClass("demo/Shape", "")
	cf := c.File()
	cf.Methods = append(cf.Methods, MemberInfo{
		AccessFlags:     AccPublic | AccAbstract,
		NameIndex:       c.Pool().AddUtf8("area"),
		DescriptorIndex: c.Pool().AddUtf8("()D"),
	})
	_, err := cf.MethodCode(&cf.Methods[0])
	require.ErrorIs(t, err, ErrNoCode)
}

func TestLookupJDKMethod(t *testing.T) {
	m, err := LookupJDKMethod("parse_int")
	require.NoError(t, err)
	c := NewClass("demo/X", "")
	inv, err := m.Invoke(c.Pool())
	require.NoError(t, err)
	require.Equal(t, bytecode.OpInvokestatic, inv.Opcode())
	e, err := inv.StackEffect(c.Pool())
	require.NoError(t, err)
	require.Equal(t, 1, e.Consume)

	_, err = LookupJDKMethod("no_such")
	require.Error(t, err)
}
