package bytecode

import (
	"errors"
	"fmt"
)

// ============================================================================
// 编码
// ============================================================================

// Bytes 布局并编码整个列表
//
// 跳转写入 目标位置 - 当前位置；wide 形式先写 wide 前缀再写操作码和 16 位操作数。
func (l *InstructionList) Bytes() ([]byte, error) {
	if err := l.SetPositions(); err != nil {
		return nil, err
	}
	w := NewByteWriter()
	for h := l.head; h != nil; h = h.next {
		if err := WriteInstruction(w, h.inst, h.pos); err != nil {
			var bre *BranchRangeError
			if errors.As(err, &bre) {
				bre.Handle = h
				return nil, bre
			}
			return nil, fmt.Errorf("encode %s: %w", h, err)
		}
	}
	if w.Len() != l.byteLength {
		return nil, fmt.Errorf("encoded %d bytes, layout expected %d", w.Len(), l.byteLength)
	}
	return w.Bytes(), nil
}

// Encode 等价于 l.Bytes()
func Encode(l *InstructionList) ([]byte, error) {
	return l.Bytes()
}

// WriteInstruction 把一条指令写到 pos 处
//
// pos 决定 switch 的填充和跳转的相对偏移，跳转目标必须已经布局。
func WriteInstruction(w *ByteWriter, inst Instruction, pos int) error {
	start := w.Len()
	if err := inst.encode(w, pos); err != nil {
		return err
	}
	if n := w.Len() - start; n != inst.Length() {
		return fmt.Errorf("%s wrote %d bytes, expected %d", inst.Name(), n, inst.Length())
	}
	return nil
}
