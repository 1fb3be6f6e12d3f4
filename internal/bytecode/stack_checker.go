package bytecode

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tangzhangming/jvmbc/internal/constpool"
)

// ============================================================================
// 操作数栈深度与局部变量槽位
// ============================================================================

// StackChecker 计算方法的最大栈深度
//
// 沿控制流图做工作列表遍历，每条指令按栈字数累加栈效应。
// 异常处理器入口的栈深度为 1（被捕获的异常引用）。
type StackChecker struct {
	cp       constpool.Accessor
	list     *InstructionList
	handlers []*ExceptionHandler
	maxDepth int
	errs     []error
}

// StackCheckResult 栈检查结果
type StackCheckResult struct {
	MaxDepth int     // 最大栈深度（栈字）
	IsValid  bool    // 是否无下溢且各路径深度一致
	Errors   []error // 检查中发现的问题
}

// Err 合并后的错误，没有问题时为 nil
func (r StackCheckResult) Err() error {
	return multierr.Combine(r.Errors...)
}

// NewStackChecker 创建栈检查器
func NewStackChecker(cp constpool.Accessor, list *InstructionList, handlers []*ExceptionHandler) *StackChecker {
	return &StackChecker{cp: cp, list: list, handlers: handlers}
}

type stackWorkItem struct {
	h     *Handle
	depth int
}

// Check 执行检查；常量池解析失败时直接返回错误
func (sc *StackChecker) Check() (StackCheckResult, error) {
	sc.maxDepth = 0
	sc.errs = nil
	if sc.list.IsEmpty() {
		return StackCheckResult{IsValid: true}, nil
	}

	depths := make(map[*Handle]int, sc.list.Len())
	worklist := []stackWorkItem{{sc.list.First(), 0}}
	for _, eh := range sc.handlers {
		worklist = append(worklist, stackWorkItem{eh.Handler(), 1})
		if sc.maxDepth < 1 {
			sc.maxDepth = 1
		}
	}

	for len(worklist) > 0 {
		item := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		depth := item.depth
		for h := item.h; h != nil; {
			if d, ok := depths[h]; ok {
				if d != depth {
					sc.errs = append(sc.errs, fmt.Errorf("inconsistent stack depth at %s: %d and %d", h, d, depth))
				}
				break
			}
			depths[h] = depth

			eff, err := h.inst.StackEffect(sc.cp)
			if err != nil {
				return StackCheckResult{}, fmt.Errorf("stack effect of %s: %w", h, err)
			}
			depth -= eff.ConsumeWords
			if depth < 0 {
				sc.errs = append(sc.errs, fmt.Errorf("stack underflow at %s", h))
				depth = 0
			}
			depth += eff.ProduceWords
			if depth > sc.maxDepth {
				sc.maxDepth = depth
			}

			fv := &flowVisitor{h: h, depth: depth}
			Accept(h.inst, fv)
			worklist = append(worklist, fv.branches...)
			if fv.terminal {
				break
			}
			h = h.next
		}
	}

	return StackCheckResult{
		MaxDepth: sc.maxDepth,
		IsValid:  len(sc.errs) == 0,
		Errors:   sc.errs,
	}, nil
}

// flowVisitor 收集一条指令的控制流后继
type flowVisitor struct {
	EmptyVisitor
	h        *Handle
	depth    int
	branches []stackWorkItem
	terminal bool
}

func (v *flowVisitor) VisitBranch(b *Branch) {
	v.branches = append(v.branches, stackWorkItem{b.Target(), v.depth})
	if b.IsConditional() {
		return
	}
	if b.IsJsr() {
		// 子程序返回后返回地址已被弹出
		v.branches = append(v.branches, stackWorkItem{v.h.next, v.depth - 1})
	}
	v.terminal = true
}

func (v *flowVisitor) VisitSwitch(s *Switch) {
	for _, t := range s.Targets() {
		v.branches = append(v.branches, stackWorkItem{t, v.depth})
	}
	v.branches = append(v.branches, stackWorkItem{s.Default(), v.depth})
	v.terminal = true
}

func (v *flowVisitor) VisitReturn(*Return) {
	v.terminal = true
}

func (v *flowVisitor) VisitLocalVariable(lv *LocalVariable) {
	if lv.Opcode() == OpRet {
		v.terminal = true
	}
}

func (v *flowVisitor) VisitSimple(s *Simple) {
	if s.Opcode() == OpAthrow {
		v.terminal = true
	}
}

// MaxStack 计算最大栈深度，发现栈不一致时返回合并后的错误
func MaxStack(cp constpool.Accessor, list *InstructionList, handlers []*ExceptionHandler) (int, error) {
	res, err := NewStackChecker(cp, list, handlers).Check()
	if err != nil {
		return 0, err
	}
	return res.MaxDepth, res.Err()
}

// localsVisitor 记录访问到的最大局部变量槽位
type localsVisitor struct {
	EmptyVisitor
	max int
}

func (v *localsVisitor) VisitLocalVariable(lv *LocalVariable) {
	size := 1
	if t, err := lv.Type(nil); err == nil && t.Size() == 2 {
		size = 2
	}
	if n := lv.Index() + size; n > v.max {
		v.max = n
	}
}

func (v *localsVisitor) VisitIinc(i *Iinc) {
	if n := i.Index() + 1; n > v.max {
		v.max = n
	}
}

// MaxLocals 局部变量槽位数，至少为参数占用的栈字数（含 this）
func MaxLocals(list *InstructionList, argWords int) int {
	v := &localsVisitor{max: argWords}
	for h := list.First(); h != nil; h = h.Next() {
		Accept(h.Instruction(), v)
	}
	return v.max
}
