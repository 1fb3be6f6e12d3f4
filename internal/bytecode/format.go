package bytecode

import (
	"fmt"
	"io"
	"strings"

	"github.com/tangzhangming/jvmbc/internal/constpool"
)

// ============================================================================
// 反汇编输出
// ============================================================================

// Line 反汇编的一行
type Line struct {
	Offset   int    `json:"offset"`
	Opcode   string `json:"opcode"`
	Operands string `json:"operands,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Length   int    `json:"length"`
}

// Listing 生成反汇编行，常量池下标附带解析后的注释
//
// 列表需要已经布局；cp 为 nil 时注释为空。
func Listing(cp constpool.Accessor, list *InstructionList) []Line {
	lines := make([]Line, 0, list.Len())
	for h := list.First(); h != nil; h = h.Next() {
		inst := h.Instruction()
		text, name := inst.String(), inst.Name()
		line := Line{Offset: h.Position(), Opcode: name, Length: inst.Length()}
		// wide 形式的文本以 "wide " 开头
		if i := strings.Index(text, name); i >= 0 {
			line.Opcode = text[:i+len(name)]
			line.Operands = strings.TrimSpace(text[i+len(name):])
		}
		if ii, ok := inst.(IndexedInstruction); ok && cp != nil && Is(inst, CapIndexed) {
			line.Comment = constpool.Describe(cp, uint16(ii.Index()))
		}
		lines = append(lines, line)
	}
	return lines
}

// Format 以文本形式写出反汇编
func Format(w io.Writer, cp constpool.Accessor, list *InstructionList, showOffsets bool) error {
	for _, line := range Listing(cp, list) {
		var sb strings.Builder
		if showOffsets {
			fmt.Fprintf(&sb, "%6d: ", line.Offset)
		}
		sb.WriteString(line.Opcode)
		if line.Operands != "" {
			sb.WriteByte(' ')
			sb.WriteString(line.Operands)
		}
		if line.Comment != "" {
			sb.WriteString(" // ")
			sb.WriteString(line.Comment)
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
