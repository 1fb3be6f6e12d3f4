package bytecode

import (
	"fmt"
	"strings"
)

// ============================================================================
// 错误类型
// ============================================================================

// ConstructionError 操作数超出操作码的合法取值范围，在构造时立即返回
type ConstructionError struct {
	Name   string // 操作码助记符或指令族名
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s: %s", e.Name, e.Reason)
}

func constructionErrorf(op Opcode, format string, args ...interface{}) error {
	return &ConstructionError{Name: op.String(), Reason: fmt.Sprintf(format, args...)}
}

// MalformedBytecode 解码时遇到未知操作码、截断的操作数或无效的跳转目标
type MalformedBytecode struct {
	Offset int // 出错指令的字节偏移
	Reason string
}

func (e *MalformedBytecode) Error() string {
	return fmt.Sprintf("malformed bytecode at offset %d: %s", e.Offset, e.Reason)
}

// TargetedHandleError 试图删除仍被引用的指令句柄
//
// 调用方需要先把 Targeters 重定向到保留的句柄再删除。
type TargetedHandleError struct {
	Handle    *Handle
	Targeters []Targeter
}

func (e *TargetedHandleError) Error() string {
	targeters := uniqueTargeters(e.Targeters)
	names := make([]string, 0, len(targeters))
	for _, t := range targeters {
		names = append(names, describeTargeter(t))
	}
	return fmt.Sprintf("handle %s is still targeted by %s", e.Handle, strings.Join(names, ", "))
}

// UnknownTypeError 类型推导未覆盖的操作码，属于内部不变量被破坏
type UnknownTypeError struct {
	Op Opcode
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no type derivation for opcode %s", e.Op)
}

// BranchRangeError 条件跳转的偏移超出 16 位范围，无法编码
type BranchRangeError struct {
	Handle *Handle
	Offset int
}

func (e *BranchRangeError) Error() string {
	return fmt.Sprintf("branch at %s: offset %d does not fit in 16 bits", e.Handle, e.Offset)
}

// ForeignHandleError 句柄不属于当前指令列表
type ForeignHandleError struct {
	Handle *Handle
}

func (e *ForeignHandleError) Error() string {
	return fmt.Sprintf("handle %s does not belong to this instruction list", e.Handle)
}

// mustKnowType 类型推导 switch 的兜底分支
func mustKnowType(op Opcode) {
	panic(&UnknownTypeError{Op: op})
}
