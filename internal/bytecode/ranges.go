package bytecode

import "fmt"

// ============================================================================
// 局部变量范围与异常处理器
// ============================================================================

// LocalVariableRange LocalVariableTable 中的一项，[Start, End] 区间内 Index 号槽位有效
type LocalVariableRange struct {
	Name      string
	Signature string
	Index     int
	start     *Handle
	end       *Handle
}

// NewLocalVariableRange 创建局部变量范围并登记为 start/end 的引用者
func NewLocalVariableRange(name, signature string, index int, start, end *Handle) *LocalVariableRange {
	lv := &LocalVariableRange{Name: name, Signature: signature, Index: index}
	lv.SetStart(start)
	lv.SetEnd(end)
	return lv
}

func (lv *LocalVariableRange) Start() *Handle { return lv.start }
func (lv *LocalVariableRange) End() *Handle   { return lv.end }

func (lv *LocalVariableRange) SetStart(h *Handle) {
	retarget(lv, lv.start, h)
	lv.start = h
}

func (lv *LocalVariableRange) SetEnd(h *Handle) {
	retarget(lv, lv.end, h)
	lv.end = h
}

func (lv *LocalVariableRange) ContainsTarget(h *Handle) bool {
	return lv.start == h || lv.end == h
}

func (lv *LocalVariableRange) UpdateTarget(old, new *Handle) error {
	found := false
	if lv.start == old {
		lv.SetStart(new)
		found = true
	}
	if lv.end == old {
		lv.SetEnd(new)
		found = true
	}
	if !found {
		return fmt.Errorf("local variable %s does not target %s", lv.Name, old)
	}
	return nil
}

// Dispose 解除对句柄的引用
func (lv *LocalVariableRange) Dispose() {
	lv.SetStart(nil)
	lv.SetEnd(nil)
}

// ExceptionHandler 异常表中的一项，[Start, End] 内抛出的 CatchType 跳到 Handler
//
// CatchType 为空表示捕获所有异常（finally）。
type ExceptionHandler struct {
	CatchType string
	start     *Handle
	end       *Handle
	handler   *Handle
}

// NewExceptionHandler 创建异常处理器并登记引用
func NewExceptionHandler(start, end, handler *Handle, catchType string) *ExceptionHandler {
	eh := &ExceptionHandler{CatchType: catchType}
	eh.SetStart(start)
	eh.SetEnd(end)
	eh.SetHandler(handler)
	return eh
}

func (eh *ExceptionHandler) Start() *Handle   { return eh.start }
func (eh *ExceptionHandler) End() *Handle     { return eh.end }
func (eh *ExceptionHandler) Handler() *Handle { return eh.handler }

func (eh *ExceptionHandler) SetStart(h *Handle) {
	retarget(eh, eh.start, h)
	eh.start = h
}

func (eh *ExceptionHandler) SetEnd(h *Handle) {
	retarget(eh, eh.end, h)
	eh.end = h
}

func (eh *ExceptionHandler) SetHandler(h *Handle) {
	retarget(eh, eh.handler, h)
	eh.handler = h
}

func (eh *ExceptionHandler) ContainsTarget(h *Handle) bool {
	return eh.start == h || eh.end == h || eh.handler == h
}

func (eh *ExceptionHandler) UpdateTarget(old, new *Handle) error {
	found := false
	if eh.start == old {
		eh.SetStart(new)
		found = true
	}
	if eh.end == old {
		eh.SetEnd(new)
		found = true
	}
	if eh.handler == old {
		eh.SetHandler(new)
		found = true
	}
	if !found {
		return fmt.Errorf("exception handler %s does not target %s", eh.catchName(), old)
	}
	return nil
}

// Covers 句柄是否落在保护区间内，需要先布局
func (eh *ExceptionHandler) Covers(h *Handle) bool {
	return h.pos >= eh.start.pos && h.pos <= eh.end.pos
}

// Dispose 解除对句柄的引用
func (eh *ExceptionHandler) Dispose() {
	eh.SetStart(nil)
	eh.SetEnd(nil)
	eh.SetHandler(nil)
}

func (eh *ExceptionHandler) catchName() string {
	if eh.CatchType == "" {
		return "<any>"
	}
	return eh.CatchType
}
