package bytecode

import "fmt"

// ============================================================================
// JVM 操作码
// ============================================================================

// Opcode JVM 操作码
type Opcode uint8

// 操作码常量，按 JVM 指令集表排列
const (
	OpNop             Opcode = 0x00
	OpAconstNull      Opcode = 0x01
	OpIconstM1        Opcode = 0x02
	OpIconst0         Opcode = 0x03
	OpIconst1         Opcode = 0x04
	OpIconst2         Opcode = 0x05
	OpIconst3         Opcode = 0x06
	OpIconst4         Opcode = 0x07
	OpIconst5         Opcode = 0x08
	OpLconst0         Opcode = 0x09
	OpLconst1         Opcode = 0x0a
	OpFconst0         Opcode = 0x0b
	OpFconst1         Opcode = 0x0c
	OpFconst2         Opcode = 0x0d
	OpDconst0         Opcode = 0x0e
	OpDconst1         Opcode = 0x0f
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpLload           Opcode = 0x16
	OpFload           Opcode = 0x17
	OpDload           Opcode = 0x18
	OpAload           Opcode = 0x19
	OpIload0          Opcode = 0x1a
	OpIload1          Opcode = 0x1b
	OpIload2          Opcode = 0x1c
	OpIload3          Opcode = 0x1d
	OpLload0          Opcode = 0x1e
	OpLload1          Opcode = 0x1f
	OpLload2          Opcode = 0x20
	OpLload3          Opcode = 0x21
	OpFload0          Opcode = 0x22
	OpFload1          Opcode = 0x23
	OpFload2          Opcode = 0x24
	OpFload3          Opcode = 0x25
	OpDload0          Opcode = 0x26
	OpDload1          Opcode = 0x27
	OpDload2          Opcode = 0x28
	OpDload3          Opcode = 0x29
	OpAload0          Opcode = 0x2a
	OpAload1          Opcode = 0x2b
	OpAload2          Opcode = 0x2c
	OpAload3          Opcode = 0x2d
	OpIaload          Opcode = 0x2e
	OpLaload          Opcode = 0x2f
	OpFaload          Opcode = 0x30
	OpDaload          Opcode = 0x31
	OpAaload          Opcode = 0x32
	OpBaload          Opcode = 0x33
	OpCaload          Opcode = 0x34
	OpSaload          Opcode = 0x35
	OpIstore          Opcode = 0x36
	OpLstore          Opcode = 0x37
	OpFstore          Opcode = 0x38
	OpDstore          Opcode = 0x39
	OpAstore          Opcode = 0x3a
	OpIstore0         Opcode = 0x3b
	OpIstore1         Opcode = 0x3c
	OpIstore2         Opcode = 0x3d
	OpIstore3         Opcode = 0x3e
	OpLstore0         Opcode = 0x3f
	OpLstore1         Opcode = 0x40
	OpLstore2         Opcode = 0x41
	OpLstore3         Opcode = 0x42
	OpFstore0         Opcode = 0x43
	OpFstore1         Opcode = 0x44
	OpFstore2         Opcode = 0x45
	OpFstore3         Opcode = 0x46
	OpDstore0         Opcode = 0x47
	OpDstore1         Opcode = 0x48
	OpDstore2         Opcode = 0x49
	OpDstore3         Opcode = 0x4a
	OpAstore0         Opcode = 0x4b
	OpAstore1         Opcode = 0x4c
	OpAstore2         Opcode = 0x4d
	OpAstore3         Opcode = 0x4e
	OpIastore         Opcode = 0x4f
	OpLastore         Opcode = 0x50
	OpFastore         Opcode = 0x51
	OpDastore         Opcode = 0x52
	OpAastore         Opcode = 0x53
	OpBastore         Opcode = 0x54
	OpCastore         Opcode = 0x55
	OpSastore         Opcode = 0x56
	OpPop             Opcode = 0x57
	OpPop2            Opcode = 0x58
	OpDup             Opcode = 0x59
	OpDupX1           Opcode = 0x5a
	OpDupX2           Opcode = 0x5b
	OpDup2            Opcode = 0x5c
	OpDup2X1          Opcode = 0x5d
	OpDup2X2          Opcode = 0x5e
	OpSwap            Opcode = 0x5f
	OpIadd            Opcode = 0x60
	OpLadd            Opcode = 0x61
	OpFadd            Opcode = 0x62
	OpDadd            Opcode = 0x63
	OpIsub            Opcode = 0x64
	OpLsub            Opcode = 0x65
	OpFsub            Opcode = 0x66
	OpDsub            Opcode = 0x67
	OpImul            Opcode = 0x68
	OpLmul            Opcode = 0x69
	OpFmul            Opcode = 0x6a
	OpDmul            Opcode = 0x6b
	OpIdiv            Opcode = 0x6c
	OpLdiv            Opcode = 0x6d
	OpFdiv            Opcode = 0x6e
	OpDdiv            Opcode = 0x6f
	OpIrem            Opcode = 0x70
	OpLrem            Opcode = 0x71
	OpFrem            Opcode = 0x72
	OpDrem            Opcode = 0x73
	OpIneg            Opcode = 0x74
	OpLneg            Opcode = 0x75
	OpFneg            Opcode = 0x76
	OpDneg            Opcode = 0x77
	OpIshl            Opcode = 0x78
	OpLshl            Opcode = 0x79
	OpIshr            Opcode = 0x7a
	OpLshr            Opcode = 0x7b
	OpIushr           Opcode = 0x7c
	OpLushr           Opcode = 0x7d
	OpIand            Opcode = 0x7e
	OpLand            Opcode = 0x7f
	OpIor             Opcode = 0x80
	OpLor             Opcode = 0x81
	OpIxor            Opcode = 0x82
	OpLxor            Opcode = 0x83
	OpIinc            Opcode = 0x84
	OpI2l             Opcode = 0x85
	OpI2f             Opcode = 0x86
	OpI2d             Opcode = 0x87
	OpL2i             Opcode = 0x88
	OpL2f             Opcode = 0x89
	OpL2d             Opcode = 0x8a
	OpF2i             Opcode = 0x8b
	OpF2l             Opcode = 0x8c
	OpF2d             Opcode = 0x8d
	OpD2i             Opcode = 0x8e
	OpD2l             Opcode = 0x8f
	OpD2f             Opcode = 0x90
	OpI2b             Opcode = 0x91
	OpI2c             Opcode = 0x92
	OpI2s             Opcode = 0x93
	OpLcmp            Opcode = 0x94
	OpFcmpl           Opcode = 0x95
	OpFcmpg           Opcode = 0x96
	OpDcmpl           Opcode = 0x97
	OpDcmpg           Opcode = 0x98
	OpIfeq            Opcode = 0x99
	OpIfne            Opcode = 0x9a
	OpIflt            Opcode = 0x9b
	OpIfge            Opcode = 0x9c
	OpIfgt            Opcode = 0x9d
	OpIfle            Opcode = 0x9e
	OpIfIcmpeq        Opcode = 0x9f
	OpIfIcmpne        Opcode = 0xa0
	OpIfIcmplt        Opcode = 0xa1
	OpIfIcmpge        Opcode = 0xa2
	OpIfIcmpgt        Opcode = 0xa3
	OpIfIcmple        Opcode = 0xa4
	OpIfAcmpeq        Opcode = 0xa5
	OpIfAcmpne        Opcode = 0xa6
	OpGoto            Opcode = 0xa7
	OpJsr             Opcode = 0xa8
	OpRet             Opcode = 0xa9
	OpTableswitch     Opcode = 0xaa
	OpLookupswitch    Opcode = 0xab
	OpIreturn         Opcode = 0xac
	OpLreturn         Opcode = 0xad
	OpFreturn         Opcode = 0xae
	OpDreturn         Opcode = 0xaf
	OpAreturn         Opcode = 0xb0
	OpReturn          Opcode = 0xb1
	OpGetstatic       Opcode = 0xb2
	OpPutstatic       Opcode = 0xb3
	OpGetfield        Opcode = 0xb4
	OpPutfield        Opcode = 0xb5
	OpInvokevirtual   Opcode = 0xb6
	OpInvokespecial   Opcode = 0xb7
	OpInvokestatic    Opcode = 0xb8
	OpInvokeinterface Opcode = 0xb9
	OpInvokedynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpNewarray        Opcode = 0xbc
	OpAnewarray       Opcode = 0xbd
	OpArraylength     Opcode = 0xbe
	OpAthrow          Opcode = 0xbf
	OpCheckcast       Opcode = 0xc0
	OpInstanceof      Opcode = 0xc1
	OpMonitorenter    Opcode = 0xc2
	OpMonitorexit     Opcode = 0xc3
	OpWide            Opcode = 0xc4
	OpMultianewarray  Opcode = 0xc5
	OpIfnull          Opcode = 0xc6
	OpIfnonnull       Opcode = 0xc7
	OpGotoW           Opcode = 0xc8
	OpJsrW            Opcode = 0xc9
	OpBreakpoint      Opcode = 0xca
	OpImpdep1         Opcode = 0xfe
	OpImpdep2         Opcode = 0xff
)

// unpredictable 栈效应依赖常量池（字段/方法描述符、维度）
const unpredictable = -1

// Family 指令族，决定访问者派发中的族钩子
type Family uint8

const (
	FamSimple Family = iota
	FamConstantPush
	FamLdc
	FamLoad
	FamStore
	FamIinc
	FamRet
	FamArrayLoad
	FamArrayStore
	FamStack
	FamArithmetic
	FamConversion
	FamCompare
	FamIf
	FamGoto
	FamJsr
	FamSelect
	FamReturn
	FamField
	FamInvoke
	FamAllocation
	FamTypeCheck
	FamWide
	famInvalid
)

var familyNames = [...]string{
	"simple", "constant-push", "ldc", "load", "store", "iinc", "ret",
	"array-load", "array-store", "stack", "arithmetic", "conversion", "compare",
	"if", "goto", "jsr", "select", "return", "field", "invoke", "allocation",
	"type-check", "wide", "invalid",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// Capability 指令能力标记
type Capability uint16

const (
	CapExceptionThrower Capability = 1 << iota // 可能抛出异常
	CapStackConsumer                           // 消耗栈值
	CapStackProducer                           // 产生栈值
	CapTyped                                   // 操作数/结果带类型
	CapLoadClass                               // 引用常量池中的类，可能触发类加载
	CapVariableLength                          // 长度依赖布局
	CapIndexed                                 // 带常量池下标
	CapLocalVariable                           // 带局部变量下标
	CapBranch                                  // 持有跳转目标
	CapConditional                             // 条件跳转
	CapUnconditional                           // 无条件转移控制
	CapJsr                                     // 子程序调用
)

var capabilityNames = [...]string{
	"exception-thrower", "stack-consumer", "stack-producer", "typed", "load-class",
	"variable-length", "indexed", "local-variable", "branch", "conditional",
	"unconditional", "jsr",
}

// Has 是否包含全部给定能力
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var s string
	for i, name := range capabilityNames {
		if c&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// opInfo 操作码静态属性
type opInfo struct {
	name    string
	length  int // 编码字节数（含操作码），0 表示变长
	consume int // 消耗的栈字数
	produce int // 产生的栈字数
	cvalues int // 消耗的栈值个数
	pvalues int // 产生的栈值个数
	family  Family
	caps    Capability
}

func (op Opcode) info() *opInfo {
	return &opcodeTable[op]
}

// Valid 是否为已定义的操作码
func (op Opcode) Valid() bool {
	return opcodeTable[op].name != ""
}

func (op Opcode) String() string {
	if name := opcodeTable[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("opcode(0x%02x)", uint8(op))
}

// Family 操作码所属指令族
func (op Opcode) Family() Family {
	if !op.Valid() {
		return famInvalid
	}
	return opcodeTable[op].family
}

// Capabilities 操作码声明的能力
func (op Opcode) Capabilities() Capability {
	return opcodeTable[op].caps
}

// FixedLength 固定编码长度，变长指令返回 0
func (op Opcode) FixedLength() int {
	return opcodeTable[op].length
}

var opcodeByName map[string]Opcode

func init() {
	opcodeByName = make(map[string]Opcode, 256)
	for i := range opcodeTable {
		if opcodeTable[i].name != "" {
			opcodeByName[opcodeTable[i].name] = Opcode(i)
		}
	}
}

// LookupOpcode 按助记符查找操作码
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

var opcodeTable = [256]opInfo{
	OpNop:             {"nop", 1, 0, 0, 0, 0, FamSimple, 0},
	OpAconstNull:      {"aconst_null", 1, 0, 1, 0, 1, FamSimple, CapTyped|CapStackProducer},
	OpIconstM1:        {"iconst_m1", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst0:         {"iconst_0", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst1:         {"iconst_1", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst2:         {"iconst_2", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst3:         {"iconst_3", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst4:         {"iconst_4", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpIconst5:         {"iconst_5", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpLconst0:         {"lconst_0", 1, 0, 2, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpLconst1:         {"lconst_1", 1, 0, 2, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpFconst0:         {"fconst_0", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpFconst1:         {"fconst_1", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpFconst2:         {"fconst_2", 1, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpDconst0:         {"dconst_0", 1, 0, 2, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpDconst1:         {"dconst_1", 1, 0, 2, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpBipush:          {"bipush", 2, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpSipush:          {"sipush", 3, 0, 1, 0, 1, FamConstantPush, CapTyped|CapStackProducer},
	OpLdc:             {"ldc", 2, 0, 1, 0, 1, FamLdc, CapTyped|CapExceptionThrower|CapIndexed|CapStackProducer},
	OpLdcW:            {"ldc_w", 3, 0, 1, 0, 1, FamLdc, CapTyped|CapExceptionThrower|CapIndexed|CapStackProducer},
	OpLdc2W:           {"ldc2_w", 3, 0, 2, 0, 1, FamLdc, CapTyped|CapIndexed|CapStackProducer},
	OpIload:           {"iload", 2, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpLload:           {"lload", 2, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpFload:           {"fload", 2, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpDload:           {"dload", 2, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpAload:           {"aload", 2, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpIload0:          {"iload_0", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpIload1:          {"iload_1", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpIload2:          {"iload_2", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpIload3:          {"iload_3", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpLload0:          {"lload_0", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpLload1:          {"lload_1", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpLload2:          {"lload_2", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpLload3:          {"lload_3", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpFload0:          {"fload_0", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpFload1:          {"fload_1", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpFload2:          {"fload_2", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpFload3:          {"fload_3", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpDload0:          {"dload_0", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpDload1:          {"dload_1", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpDload2:          {"dload_2", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpDload3:          {"dload_3", 1, 0, 2, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpAload0:          {"aload_0", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpAload1:          {"aload_1", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpAload2:          {"aload_2", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpAload3:          {"aload_3", 1, 0, 1, 0, 1, FamLoad, CapTyped|CapLocalVariable|CapStackProducer},
	OpIaload:          {"iaload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpLaload:          {"laload", 1, 2, 2, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpFaload:          {"faload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpDaload:          {"daload", 1, 2, 2, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpAaload:          {"aaload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpBaload:          {"baload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpCaload:          {"caload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpSaload:          {"saload", 1, 2, 1, 2, 1, FamArrayLoad, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpIstore:          {"istore", 2, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpLstore:          {"lstore", 2, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpFstore:          {"fstore", 2, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpDstore:          {"dstore", 2, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpAstore:          {"astore", 2, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpIstore0:         {"istore_0", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpIstore1:         {"istore_1", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpIstore2:         {"istore_2", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpIstore3:         {"istore_3", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpLstore0:         {"lstore_0", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpLstore1:         {"lstore_1", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpLstore2:         {"lstore_2", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpLstore3:         {"lstore_3", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpFstore0:         {"fstore_0", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpFstore1:         {"fstore_1", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpFstore2:         {"fstore_2", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpFstore3:         {"fstore_3", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpDstore0:         {"dstore_0", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpDstore1:         {"dstore_1", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpDstore2:         {"dstore_2", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpDstore3:         {"dstore_3", 1, 2, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpAstore0:         {"astore_0", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpAstore1:         {"astore_1", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpAstore2:         {"astore_2", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpAstore3:         {"astore_3", 1, 1, 0, 1, 0, FamStore, CapTyped|CapLocalVariable|CapStackConsumer},
	OpIastore:         {"iastore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpLastore:         {"lastore", 1, 4, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpFastore:         {"fastore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpDastore:         {"dastore", 1, 4, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpAastore:         {"aastore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpBastore:         {"bastore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpCastore:         {"castore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpSastore:         {"sastore", 1, 3, 0, 3, 0, FamArrayStore, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpPop:             {"pop", 1, 1, 0, 1, 0, FamStack, CapStackConsumer},
	OpPop2:            {"pop2", 1, 2, 0, 2, 0, FamStack, CapStackConsumer},
	OpDup:             {"dup", 1, 1, 2, 1, 2, FamStack, CapStackConsumer|CapStackProducer},
	OpDupX1:           {"dup_x1", 1, 2, 3, 2, 3, FamStack, CapStackConsumer|CapStackProducer},
	OpDupX2:           {"dup_x2", 1, 3, 4, 3, 4, FamStack, CapStackConsumer|CapStackProducer},
	OpDup2:            {"dup2", 1, 2, 4, 2, 4, FamStack, CapStackConsumer|CapStackProducer},
	OpDup2X1:          {"dup2_x1", 1, 3, 5, 3, 5, FamStack, CapStackConsumer|CapStackProducer},
	OpDup2X2:          {"dup2_x2", 1, 4, 6, 4, 6, FamStack, CapStackConsumer|CapStackProducer},
	OpSwap:            {"swap", 1, 2, 2, 2, 2, FamStack, CapStackConsumer|CapStackProducer},
	OpIadd:            {"iadd", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLadd:            {"ladd", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpFadd:            {"fadd", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDadd:            {"dadd", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIsub:            {"isub", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLsub:            {"lsub", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpFsub:            {"fsub", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDsub:            {"dsub", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpImul:            {"imul", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLmul:            {"lmul", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpFmul:            {"fmul", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDmul:            {"dmul", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIdiv:            {"idiv", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpLdiv:            {"ldiv", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpFdiv:            {"fdiv", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDdiv:            {"ddiv", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIrem:            {"irem", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpLrem:            {"lrem", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpFrem:            {"frem", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDrem:            {"drem", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIneg:            {"ineg", 1, 1, 1, 1, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLneg:            {"lneg", 1, 2, 2, 1, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpFneg:            {"fneg", 1, 1, 1, 1, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpDneg:            {"dneg", 1, 2, 2, 1, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIshl:            {"ishl", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLshl:            {"lshl", 1, 3, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIshr:            {"ishr", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLshr:            {"lshr", 1, 3, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIushr:           {"iushr", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLushr:           {"lushr", 1, 3, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIand:            {"iand", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLand:            {"land", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIor:             {"ior", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLor:             {"lor", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIxor:            {"ixor", 1, 2, 1, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpLxor:            {"lxor", 1, 4, 2, 2, 1, FamArithmetic, CapTyped|CapStackConsumer|CapStackProducer},
	OpIinc:            {"iinc", 3, 0, 0, 0, 0, FamIinc, CapTyped|CapLocalVariable},
	OpI2l:             {"i2l", 1, 1, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpI2f:             {"i2f", 1, 1, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpI2d:             {"i2d", 1, 1, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpL2i:             {"l2i", 1, 2, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpL2f:             {"l2f", 1, 2, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpL2d:             {"l2d", 1, 2, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpF2i:             {"f2i", 1, 1, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpF2l:             {"f2l", 1, 1, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpF2d:             {"f2d", 1, 1, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpD2i:             {"d2i", 1, 2, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpD2l:             {"d2l", 1, 2, 2, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpD2f:             {"d2f", 1, 2, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpI2b:             {"i2b", 1, 1, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpI2c:             {"i2c", 1, 1, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpI2s:             {"i2s", 1, 1, 1, 1, 1, FamConversion, CapTyped|CapStackConsumer|CapStackProducer},
	OpLcmp:            {"lcmp", 1, 4, 1, 2, 1, FamCompare, CapTyped|CapStackConsumer|CapStackProducer},
	OpFcmpl:           {"fcmpl", 1, 2, 1, 2, 1, FamCompare, CapTyped|CapStackConsumer|CapStackProducer},
	OpFcmpg:           {"fcmpg", 1, 2, 1, 2, 1, FamCompare, CapTyped|CapStackConsumer|CapStackProducer},
	OpDcmpl:           {"dcmpl", 1, 4, 1, 2, 1, FamCompare, CapTyped|CapStackConsumer|CapStackProducer},
	OpDcmpg:           {"dcmpg", 1, 4, 1, 2, 1, FamCompare, CapTyped|CapStackConsumer|CapStackProducer},
	OpIfeq:            {"ifeq", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfne:            {"ifne", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIflt:            {"iflt", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfge:            {"ifge", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfgt:            {"ifgt", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfle:            {"ifle", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmpeq:        {"if_icmpeq", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmpne:        {"if_icmpne", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmplt:        {"if_icmplt", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmpge:        {"if_icmpge", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmpgt:        {"if_icmpgt", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfIcmple:        {"if_icmple", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfAcmpeq:        {"if_acmpeq", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfAcmpne:        {"if_acmpne", 3, 2, 0, 2, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpGoto:            {"goto", 3, 0, 0, 0, 0, FamGoto, CapBranch|CapUnconditional|CapVariableLength},
	OpJsr:             {"jsr", 3, 0, 1, 0, 1, FamJsr, CapTyped|CapBranch|CapUnconditional|CapJsr|CapVariableLength|CapStackProducer},
	OpRet:             {"ret", 2, 0, 0, 0, 0, FamRet, CapTyped|CapLocalVariable},
	OpTableswitch:     {"tableswitch", 0, 1, 0, 1, 0, FamSelect, CapBranch|CapVariableLength|CapStackConsumer},
	OpLookupswitch:    {"lookupswitch", 0, 1, 0, 1, 0, FamSelect, CapBranch|CapVariableLength|CapStackConsumer},
	OpIreturn:         {"ireturn", 1, 1, 0, 1, 0, FamReturn, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpLreturn:         {"lreturn", 1, 2, 0, 1, 0, FamReturn, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpFreturn:         {"freturn", 1, 1, 0, 1, 0, FamReturn, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpDreturn:         {"dreturn", 1, 2, 0, 1, 0, FamReturn, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpAreturn:         {"areturn", 1, 1, 0, 1, 0, FamReturn, CapTyped|CapExceptionThrower|CapStackConsumer},
	OpReturn:          {"return", 1, 0, 0, 0, 0, FamReturn, CapTyped|CapExceptionThrower},
	OpGetstatic:       {"getstatic", 3, 0, unpredictable, 0, 1, FamField, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackProducer},
	OpPutstatic:       {"putstatic", 3, unpredictable, 0, 1, 0, FamField, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer},
	OpGetfield:        {"getfield", 3, 1, unpredictable, 1, 1, FamField, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpPutfield:        {"putfield", 3, unpredictable, 0, 2, 0, FamField, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer},
	OpInvokevirtual:   {"invokevirtual", 3, unpredictable, unpredictable, unpredictable, unpredictable, FamInvoke, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpInvokespecial:   {"invokespecial", 3, unpredictable, unpredictable, unpredictable, unpredictable, FamInvoke, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpInvokestatic:    {"invokestatic", 3, unpredictable, unpredictable, unpredictable, unpredictable, FamInvoke, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpInvokeinterface: {"invokeinterface", 5, unpredictable, unpredictable, unpredictable, unpredictable, FamInvoke, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpInvokedynamic:   {"invokedynamic", 5, unpredictable, unpredictable, unpredictable, unpredictable, FamInvoke, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpNew:             {"new", 3, 0, 1, 0, 1, FamAllocation, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackProducer},
	OpNewarray:        {"newarray", 2, 1, 1, 1, 1, FamAllocation, CapTyped|CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpAnewarray:       {"anewarray", 3, 1, 1, 1, 1, FamAllocation, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpArraylength:     {"arraylength", 1, 1, 1, 1, 1, FamSimple, CapExceptionThrower|CapStackConsumer|CapStackProducer},
	OpAthrow:          {"athrow", 1, 1, 1, 1, 1, FamSimple, CapExceptionThrower|CapUnconditional|CapStackConsumer|CapStackProducer},
	OpCheckcast:       {"checkcast", 3, 1, 1, 1, 1, FamTypeCheck, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpInstanceof:      {"instanceof", 3, 1, 1, 1, 1, FamTypeCheck, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpMonitorenter:    {"monitorenter", 1, 1, 0, 1, 0, FamSimple, CapExceptionThrower|CapStackConsumer},
	OpMonitorexit:     {"monitorexit", 1, 1, 0, 1, 0, FamSimple, CapExceptionThrower|CapStackConsumer},
	OpWide:            {"wide", 0, 0, 0, 0, 0, FamWide, 0},
	OpMultianewarray:  {"multianewarray", 4, unpredictable, 1, unpredictable, 1, FamAllocation, CapTyped|CapExceptionThrower|CapIndexed|CapLoadClass|CapStackConsumer|CapStackProducer},
	OpIfnull:          {"ifnull", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpIfnonnull:       {"ifnonnull", 3, 1, 0, 1, 0, FamIf, CapBranch|CapConditional|CapStackConsumer},
	OpGotoW:           {"goto_w", 5, 0, 0, 0, 0, FamGoto, CapBranch|CapUnconditional},
	OpJsrW:            {"jsr_w", 5, 0, 1, 0, 1, FamJsr, CapTyped|CapBranch|CapUnconditional|CapJsr|CapStackProducer},
	OpBreakpoint:      {"breakpoint", 1, 0, 0, 0, 0, FamSimple, 0},
	OpImpdep1:         {"impdep1", 1, 0, 0, 0, 0, FamSimple, 0},
	OpImpdep2:         {"impdep2", 1, 0, 0, 0, 0, FamSimple, 0},
}
