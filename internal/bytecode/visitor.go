package bytecode

// ============================================================================
// 访问者
// ============================================================================

// Visitor 指令访问者
//
// Accept 按固定顺序调用钩子：先是能力钩子（从一般到特殊），
// 然后是指令族钩子，再是具体指令类型钩子，最后是 VisitOpcode。
type Visitor interface {
	// 能力
	VisitExceptionThrower(inst ExceptionThrower)
	VisitStackConsumer(inst Instruction)
	VisitStackProducer(inst Instruction)
	VisitTypedInstruction(inst TypedInstruction)
	VisitLoadClass(inst LoadClass)
	VisitVariableLength(inst Instruction)
	VisitUnconditionalBranch(inst Instruction)

	// 指令族
	VisitCPInstruction(inst IndexedInstruction)
	VisitLocalVariableInstruction(inst IndexedInstruction)
	VisitBranchInstruction(inst BranchInstruction)
	VisitFieldOrMethod(inst LoadClass)

	// 具体指令
	VisitArithmetic(inst *Arithmetic)
	VisitArrayAccess(inst *ArrayAccess)
	VisitConversion(inst *Conversion)
	VisitCompare(inst *Compare)
	VisitFieldAccess(inst *FieldAccess)
	VisitInvoke(inst *Invoke)
	VisitConstantPush(inst *ConstantPush)
	VisitLdc(inst *Ldc)
	VisitLocalVariable(inst *LocalVariable)
	VisitIinc(inst *Iinc)
	VisitBranch(inst *Branch)
	VisitSwitch(inst *Switch)
	VisitStackOp(inst *StackOp)
	VisitReturn(inst *Return)
	VisitClassRef(inst *ClassRef)
	VisitNewArray(inst *NewArray)
	VisitMultiANewArray(inst *MultiANewArray)
	VisitSimple(inst *Simple)

	// VisitOpcode 最后调用，用于按操作码处理
	VisitOpcode(inst Instruction)
}

// EmptyVisitor 所有钩子为空操作，嵌入后只需覆盖关心的方法
type EmptyVisitor struct{}

func (EmptyVisitor) VisitExceptionThrower(ExceptionThrower)           {}
func (EmptyVisitor) VisitStackConsumer(Instruction)                   {}
func (EmptyVisitor) VisitStackProducer(Instruction)                   {}
func (EmptyVisitor) VisitTypedInstruction(TypedInstruction)           {}
func (EmptyVisitor) VisitLoadClass(LoadClass)                         {}
func (EmptyVisitor) VisitVariableLength(Instruction)                  {}
func (EmptyVisitor) VisitUnconditionalBranch(Instruction)             {}
func (EmptyVisitor) VisitCPInstruction(IndexedInstruction)            {}
func (EmptyVisitor) VisitLocalVariableInstruction(IndexedInstruction) {}
func (EmptyVisitor) VisitBranchInstruction(BranchInstruction)         {}
func (EmptyVisitor) VisitFieldOrMethod(LoadClass)                     {}
func (EmptyVisitor) VisitArithmetic(*Arithmetic)                      {}
func (EmptyVisitor) VisitArrayAccess(*ArrayAccess)                    {}
func (EmptyVisitor) VisitConversion(*Conversion)                      {}
func (EmptyVisitor) VisitCompare(*Compare)                            {}
func (EmptyVisitor) VisitFieldAccess(*FieldAccess)                    {}
func (EmptyVisitor) VisitInvoke(*Invoke)                              {}
func (EmptyVisitor) VisitConstantPush(*ConstantPush)                  {}
func (EmptyVisitor) VisitLdc(*Ldc)                                    {}
func (EmptyVisitor) VisitLocalVariable(*LocalVariable)                {}
func (EmptyVisitor) VisitIinc(*Iinc)                                  {}
func (EmptyVisitor) VisitBranch(*Branch)                              {}
func (EmptyVisitor) VisitSwitch(*Switch)                              {}
func (EmptyVisitor) VisitStackOp(*StackOp)                            {}
func (EmptyVisitor) VisitReturn(*Return)                              {}
func (EmptyVisitor) VisitClassRef(*ClassRef)                          {}
func (EmptyVisitor) VisitNewArray(*NewArray)                          {}
func (EmptyVisitor) VisitMultiANewArray(*MultiANewArray)              {}
func (EmptyVisitor) VisitSimple(*Simple)                              {}
func (EmptyVisitor) VisitOpcode(Instruction)                          {}

// ============================================================================
// 派发计划
// ============================================================================

type visitStep uint8

const (
	stepExceptionThrower visitStep = iota
	stepStackConsumer
	stepStackProducer
	stepTyped
	stepLoadClass
	stepVariableLength
	stepUnconditionalBranch
	stepCPInstruction
	stepLocalVariableInstruction
	stepBranchInstruction
	stepFieldOrMethod
	stepArithmetic
	stepArrayAccess
	stepConversion
	stepCompare
	stepFieldAccess
	stepInvoke
	stepConstantPush
	stepLdc
	stepLocalVariable
	stepIinc
	stepBranch
	stepSwitch
	stepStackOp
	stepReturn
	stepClassRef
	stepNewArray
	stepMultiANewArray
	stepSimple
	stepOpcode
)

var stepFuncs = [...]func(Visitor, Instruction){
	stepExceptionThrower:         func(v Visitor, i Instruction) { v.VisitExceptionThrower(i.(ExceptionThrower)) },
	stepStackConsumer:            func(v Visitor, i Instruction) { v.VisitStackConsumer(i) },
	stepStackProducer:            func(v Visitor, i Instruction) { v.VisitStackProducer(i) },
	stepTyped:                    func(v Visitor, i Instruction) { v.VisitTypedInstruction(i.(TypedInstruction)) },
	stepLoadClass:                func(v Visitor, i Instruction) { v.VisitLoadClass(i.(LoadClass)) },
	stepVariableLength:           func(v Visitor, i Instruction) { v.VisitVariableLength(i) },
	stepUnconditionalBranch:      func(v Visitor, i Instruction) { v.VisitUnconditionalBranch(i) },
	stepCPInstruction:            func(v Visitor, i Instruction) { v.VisitCPInstruction(i.(IndexedInstruction)) },
	stepLocalVariableInstruction: func(v Visitor, i Instruction) { v.VisitLocalVariableInstruction(i.(IndexedInstruction)) },
	stepBranchInstruction:        func(v Visitor, i Instruction) { v.VisitBranchInstruction(i.(BranchInstruction)) },
	stepFieldOrMethod:            func(v Visitor, i Instruction) { v.VisitFieldOrMethod(i.(LoadClass)) },
	stepArithmetic:               func(v Visitor, i Instruction) { v.VisitArithmetic(i.(*Arithmetic)) },
	stepArrayAccess:              func(v Visitor, i Instruction) { v.VisitArrayAccess(i.(*ArrayAccess)) },
	stepConversion:               func(v Visitor, i Instruction) { v.VisitConversion(i.(*Conversion)) },
	stepCompare:                  func(v Visitor, i Instruction) { v.VisitCompare(i.(*Compare)) },
	stepFieldAccess:              func(v Visitor, i Instruction) { v.VisitFieldAccess(i.(*FieldAccess)) },
	stepInvoke:                   func(v Visitor, i Instruction) { v.VisitInvoke(i.(*Invoke)) },
	stepConstantPush:             func(v Visitor, i Instruction) { v.VisitConstantPush(i.(*ConstantPush)) },
	stepLdc:                      func(v Visitor, i Instruction) { v.VisitLdc(i.(*Ldc)) },
	stepLocalVariable:            func(v Visitor, i Instruction) { v.VisitLocalVariable(i.(*LocalVariable)) },
	stepIinc:                     func(v Visitor, i Instruction) { v.VisitIinc(i.(*Iinc)) },
	stepBranch:                   func(v Visitor, i Instruction) { v.VisitBranch(i.(*Branch)) },
	stepSwitch:                   func(v Visitor, i Instruction) { v.VisitSwitch(i.(*Switch)) },
	stepStackOp:                  func(v Visitor, i Instruction) { v.VisitStackOp(i.(*StackOp)) },
	stepReturn:                   func(v Visitor, i Instruction) { v.VisitReturn(i.(*Return)) },
	stepClassRef:                 func(v Visitor, i Instruction) { v.VisitClassRef(i.(*ClassRef)) },
	stepNewArray:                 func(v Visitor, i Instruction) { v.VisitNewArray(i.(*NewArray)) },
	stepMultiANewArray:           func(v Visitor, i Instruction) { v.VisitMultiANewArray(i.(*MultiANewArray)) },
	stepSimple:                   func(v Visitor, i Instruction) { v.VisitSimple(i.(*Simple)) },
	stepOpcode:                   func(v Visitor, i Instruction) { v.VisitOpcode(i) },
}

// capabilitySteps 能力钩子的顺序
var capabilitySteps = []struct {
	cap  Capability
	step visitStep
}{
	{CapExceptionThrower, stepExceptionThrower},
	{CapStackConsumer, stepStackConsumer},
	{CapStackProducer, stepStackProducer},
	{CapTyped, stepTyped},
	{CapLoadClass, stepLoadClass},
	{CapVariableLength, stepVariableLength},
	{CapUnconditional, stepUnconditionalBranch},
	{CapIndexed, stepCPInstruction},
	{CapLocalVariable, stepLocalVariableInstruction},
	{CapBranch, stepBranchInstruction},
}

// familySteps 指令族对应的具体类型钩子
var familySteps = [...]visitStep{
	FamSimple:       stepSimple,
	FamConstantPush: stepConstantPush,
	FamLdc:          stepLdc,
	FamLoad:         stepLocalVariable,
	FamStore:        stepLocalVariable,
	FamIinc:         stepIinc,
	FamRet:          stepLocalVariable,
	FamArrayLoad:    stepArrayAccess,
	FamArrayStore:   stepArrayAccess,
	FamStack:        stepStackOp,
	FamArithmetic:   stepArithmetic,
	FamConversion:   stepConversion,
	FamCompare:      stepCompare,
	FamIf:           stepBranch,
	FamGoto:         stepBranch,
	FamJsr:          stepBranch,
	FamSelect:       stepSwitch,
	FamReturn:       stepReturn,
	FamField:        stepFieldAccess,
	FamInvoke:       stepInvoke,
	FamAllocation:   stepClassRef,
	FamTypeCheck:    stepClassRef,
}

// dispatchPlan 每个操作码的钩子序列，由能力标记和指令族推导
var dispatchPlan [256][]visitStep

func init() {
	for i := range opcodeTable {
		op := Opcode(i)
		if !op.Valid() || op == OpWide {
			continue
		}
		var plan []visitStep
		caps := op.Capabilities()
		for _, cs := range capabilitySteps {
			if caps.Has(cs.cap) {
				plan = append(plan, cs.step)
			}
		}
		if f := op.Family(); f == FamField || f == FamInvoke {
			plan = append(plan, stepFieldOrMethod)
		}
		leaf := familySteps[op.Family()]
		switch op {
		case OpNewarray:
			leaf = stepNewArray
		case OpMultianewarray:
			leaf = stepMultiANewArray
		}
		dispatchPlan[i] = append(plan, leaf, stepOpcode)
	}
}

// Accept 按派发计划依次调用 v 的钩子
func Accept(inst Instruction, v Visitor) {
	for _, s := range dispatchPlan[inst.Opcode()] {
		stepFuncs[s](v, inst)
	}
}
