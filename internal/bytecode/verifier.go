package bytecode

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tangzhangming/jvmbc/internal/constpool"
)

// CheckError 指令列表结构检查发现的问题
type CheckError struct {
	Handle  *Handle // 出问题的指令
	Message string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check failed at %s: %s", e.Handle, e.Message)
}

// Check 检查指令列表的结构完整性
//
// 只检查句柄与引用者之间的双向登记、跳转目标归属，以及常量池下标的条目类型；
// 不做类型推导或控制流验证。cp 为 nil 时跳过常量池检查。所有问题合并返回。
func Check(cp constpool.Accessor, list *InstructionList) error {
	var err error
	for h := list.First(); h != nil; h = h.Next() {
		if h.list != list || h.inst == nil {
			err = multierr.Append(err, &CheckError{Handle: h, Message: "handle not owned by list"})
			continue
		}
		for _, t := range h.targeters {
			if !t.ContainsTarget(h) {
				err = multierr.Append(err, &CheckError{Handle: h, Message: describeTargeter(t) + " registered but does not target it"})
			}
		}
		cv := &checkVisitor{cp: cp, h: h, list: list}
		Accept(h.inst, cv)
		err = multierr.Append(err, cv.err)
	}
	return err
}

// checkVisitor 单条指令的检查
type checkVisitor struct {
	EmptyVisitor
	cp   constpool.Accessor
	h    *Handle
	list *InstructionList
	err  error
}

func (v *checkVisitor) fail(format string, args ...interface{}) {
	v.err = multierr.Append(v.err, &CheckError{Handle: v.h, Message: fmt.Sprintf(format, args...)})
}

func (v *checkVisitor) checkTarget(t Targeter, target *Handle) {
	switch {
	case target == nil:
		v.fail("branch has no target")
	case target.list != v.list:
		v.fail("branch target %s is outside the list", target)
	default:
		for _, x := range target.targeters {
			if x == t {
				return
			}
		}
		v.fail("branch target %s does not list the branch as targeter", target)
	}
}

func (v *checkVisitor) VisitBranch(b *Branch) {
	v.checkTarget(b, b.Target())
}

func (v *checkVisitor) VisitSwitch(s *Switch) {
	v.checkTarget(s, s.Default())
	for _, t := range s.Targets() {
		v.checkTarget(s, t)
	}
}

func (v *checkVisitor) expectTag(idx int, allowed ...constpool.Tag) {
	if v.cp == nil {
		return
	}
	tag, err := v.cp.Tag(uint16(idx))
	if err != nil {
		v.fail("%v", err)
		return
	}
	for _, a := range allowed {
		if tag == a {
			return
		}
	}
	v.fail("constant #%d is %s, want one of %v", idx, tag, allowed)
}

func (v *checkVisitor) VisitLdc(l *Ldc) {
	if l.Opcode() == OpLdc2W {
		v.expectTag(l.Index(), constpool.TagLong, constpool.TagDouble, constpool.TagDynamic)
		return
	}
	v.expectTag(l.Index(), constpool.TagInteger, constpool.TagFloat, constpool.TagString,
		constpool.TagClass, constpool.TagMethodType, constpool.TagMethodHandle, constpool.TagDynamic)
}

func (v *checkVisitor) VisitFieldAccess(f *FieldAccess) {
	v.expectTag(f.Index(), constpool.TagFieldref)
}

func (v *checkVisitor) VisitInvoke(inv *Invoke) {
	switch inv.Opcode() {
	case OpInvokevirtual:
		v.expectTag(inv.Index(), constpool.TagMethodref)
	case OpInvokespecial, OpInvokestatic:
		v.expectTag(inv.Index(), constpool.TagMethodref, constpool.TagInterfaceMethodref)
	case OpInvokeinterface:
		v.expectTag(inv.Index(), constpool.TagInterfaceMethodref)
	case OpInvokedynamic:
		v.expectTag(inv.Index(), constpool.TagInvokeDynamic)
	}
}

func (v *checkVisitor) VisitClassRef(c *ClassRef) {
	v.expectTag(c.Index(), constpool.TagClass)
}

func (v *checkVisitor) VisitMultiANewArray(m *MultiANewArray) {
	v.expectTag(m.Index(), constpool.TagClass)
}
