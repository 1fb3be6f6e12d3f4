package jvmgen

import (
	"fmt"

	"github.com/tangzhangming/jvmbc/internal/bytecode"
	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// JDKMethod 常用 JDK 方法
type JDKMethod struct {
	// Class 所属类（内部名称格式，如 java/io/PrintStream）
	Class string
	// Name 方法名
	Name string
	// Descriptor 方法描述符
	Descriptor string
	// IsStatic 是否是静态方法
	IsStatic bool
}

// JDKMethods 按简称索引的 JDK 方法表
var JDKMethods = map[string]*JDKMethod{
	// ============================================================
	// 输出 - java.io.PrintStream
	// ============================================================
	"println": {
		Class:      "java/io/PrintStream",
		Name:       "println",
		Descriptor: "(Ljava/lang/String;)V",
	},
	"println_int": {
		Class:      "java/io/PrintStream",
		Name:       "println",
		Descriptor: "(I)V",
	},
	"println_long": {
		Class:      "java/io/PrintStream",
		Name:       "println",
		Descriptor: "(J)V",
	},

	// ============================================================
	// 数学 - java.lang.Math
	// ============================================================
	"max": {
		Class:      "java/lang/Math",
		Name:       "max",
		Descriptor: "(II)I",
		IsStatic:   true,
	},
	"min": {
		Class:      "java/lang/Math",
		Name:       "min",
		Descriptor: "(II)I",
		IsStatic:   true,
	},
	"abs": {
		Class:      "java/lang/Math",
		Name:       "abs",
		Descriptor: "(I)I",
		IsStatic:   true,
	},

	// ============================================================
	// 字符串 - java.lang.String / java.lang.Integer
	// ============================================================
	"string_valueof_int": {
		Class:      "java/lang/String",
		Name:       "valueOf",
		Descriptor: "(I)Ljava/lang/String;",
		IsStatic:   true,
	},
	"string_length": {
		Class:      "java/lang/String",
		Name:       "length",
		Descriptor: "()I",
	},
	"parse_int": {
		Class:      "java/lang/Integer",
		Name:       "parseInt",
		Descriptor: "(Ljava/lang/String;)I",
		IsStatic:   true,
	},
}

// LookupJDKMethod 按简称查找
func LookupJDKMethod(name string) (*JDKMethod, error) {
	m, ok := JDKMethods[name]
	if !ok {
		return nil, fmt.Errorf("unknown JDK method %q", name)
	}
	return m, nil
}

// Invoke 生成调用该方法的指令，方法引用加入常量池
func (m *JDKMethod) Invoke(cp *constpool.Pool) (*bytecode.Invoke, error) {
	op := bytecode.OpInvokevirtual
	if m.IsStatic {
		op = bytecode.OpInvokestatic
	}
	return bytecode.NewInvoke(op, int(cp.AddMethodref(m.Class, m.Name, m.Descriptor)))
}

// ============================================================================
// 示例方法
// ============================================================================

// AddPrintMain 添加 main 方法，逐行打印 lines 中的字符串
func (c *Class) AddPrintMain(lines []string) error {
	list := bytecode.NewInstructionList()
	out, err := bytecode.NewFieldAccess(bytecode.OpGetstatic,
		int(c.pool.AddFieldref("java/lang/System", "out", "Ljava/io/PrintStream;")))
	if err != nil {
		return err
	}
	printCall, err := JDKMethods["println"].Invoke(c.pool)
	if err != nil {
		return err
	}
	for _, line := range lines {
		str, err := bytecode.Push(c.pool, line)
		if err != nil {
			return err
		}
		list.Append(out.Copy())
		list.Append(str)
		list.Append(printCall.Copy())
	}
	ret, err := bytecode.NewReturn(types.Void)
	if err != nil {
		return err
	}
	list.Append(ret)
	return c.AddMethod(AccPublic|AccStatic, "main", "([Ljava/lang/String;)V", list, nil)
}

// AddMaxMethod 添加 static int max(int[] values)，空数组返回 Integer.MIN_VALUE
func (c *Class) AddMaxMethod() error {
	maxCall, err := JDKMethods["max"].Invoke(c.pool)
	if err != nil {
		return err
	}

	intArray := types.NewArrayType(types.Int, 1)
	build := []func() (bytecode.Instruction, error){
		func() (bytecode.Instruction, error) { return bytecode.Push(c.pool, int32(-1<<31)) },
		func() (bytecode.Instruction, error) { return bytecode.NewStore(types.Int, 1) },
		func() (bytecode.Instruction, error) { return bytecode.NewIconst(0) },
		func() (bytecode.Instruction, error) { return bytecode.NewStore(types.Int, 2) },
	}
	list := bytecode.NewInstructionList()
	for _, f := range build {
		inst, err := f()
		if err != nil {
			return err
		}
		list.Append(inst)
	}

	// 循环条件：i < values.length
	cond := list.Append(must(bytecode.NewLoad(types.Int, 2)))
	list.Append(must(bytecode.NewLoad(intArray, 0)))
	list.Append(bytecode.NewSimple(bytecode.OpArraylength))
	exitBranch := list.Append(bytecode.NewSimple(bytecode.OpNop))

	// 循环体：m = Math.max(m, values[i]); i++
	list.Append(must(bytecode.NewLoad(types.Int, 1)))
	list.Append(must(bytecode.NewLoad(intArray, 0)))
	list.Append(must(bytecode.NewLoad(types.Int, 2)))
	list.Append(must(bytecode.NewArrayAccess(bytecode.OpIaload)))
	list.Append(maxCall)
	list.Append(must(bytecode.NewStore(types.Int, 1)))
	list.Append(must(bytecode.NewIinc(2, 1)))
	list.Append(bytecode.NewGoto(cond))

	exit := list.Append(must(bytecode.NewLoad(types.Int, 1)))
	list.Append(must(bytecode.NewReturn(types.Int)))

	branch, err := bytecode.NewBranch(bytecode.OpIfIcmpge, exit)
	if err != nil {
		return err
	}
	exitBranch.SetInstruction(branch)

	return c.AddMethod(AccPublic|AccStatic, "max", "([I)I", list, nil)
}

// must 用于操作数在编译期已知合法的指令
func must[T bytecode.Instruction](inst T, err error) T {
	if err != nil {
		panic(err)
	}
	return inst
}
