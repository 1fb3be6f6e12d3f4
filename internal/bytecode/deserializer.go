package bytecode

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ============================================================================
// 解码
// ============================================================================

// Decode 把方法的 code 字节解码为指令列表
//
// 跳转偏移在整段代码读完后解析为句柄；目标不在指令边界上时返回 MalformedBytecode。
// 解码保留原始编码形式（短/长形式、wide、goto_w、ldc_w），
// 未修改的列表重新编码后与输入逐字节相同。
func Decode(code []byte) (*InstructionList, error) {
	r := NewByteReader(code)
	l := NewInstructionList()
	byPos := make(map[int]*Handle)

	for r.Remaining() > 0 {
		start := r.Pos()
		inst, err := ReadInstruction(r)
		if err != nil {
			return nil, err
		}
		h := l.Append(inst)
		h.pos = start
		byPos[start] = h
	}

	resolve := func(h *Handle, off int) (*Handle, error) {
		t, ok := byPos[h.pos+off]
		if !ok {
			return nil, &MalformedBytecode{
				Offset: h.pos,
				Reason: fmt.Sprintf("branch target %d is not an instruction boundary", h.pos+off),
			}
		}
		return t, nil
	}
	for h := l.head; h != nil; h = h.next {
		switch inst := h.inst.(type) {
		case *Branch:
			t, err := resolve(h, inst.offset)
			if err != nil {
				return nil, err
			}
			inst.SetTarget(t)
		case *Switch:
			def, err := resolve(h, inst.defOffset)
			if err != nil {
				return nil, err
			}
			inst.SetDefault(def)
			for i, off := range inst.offsets {
				t, err := resolve(h, off)
				if err != nil {
					return nil, err
				}
				inst.setTargetAt(i, t)
			}
			inst.offsets = nil
		}
	}

	l.byteLength = len(code)
	l.stale = false
	logger.Debug("decoded method code",
		zap.Int("bytes", len(code)),
		zap.Int("instructions", l.length))
	return l, nil
}

// ReadInstruction 从 r 读取一条指令，处理 wide 前缀
//
// 返回的跳转指令尚未解析目标。
func ReadInstruction(r *ByteReader) (Instruction, error) {
	start := r.Pos()
	b, err := r.ReadU8()
	if err != nil {
		return nil, &MalformedBytecode{Offset: start, Reason: "unexpected end of code"}
	}
	op := Opcode(b)
	wide := false
	if op == OpWide {
		wide = true
		b, err = r.ReadU8()
		if err != nil {
			return nil, &MalformedBytecode{Offset: start, Reason: "wide prefix at end of code"}
		}
		op = Opcode(b)
		if !wideAllowed(op) {
			return nil, &MalformedBytecode{Offset: start, Reason: fmt.Sprintf("wide prefix before %s", op)}
		}
	}
	if !op.Valid() || op == OpWide {
		return nil, &MalformedBytecode{Offset: start, Reason: fmt.Sprintf("unknown opcode 0x%02x", uint8(op))}
	}

	inst := newInstruction(op)
	if err := inst.decode(r, wide); err != nil {
		reason := err.Error()
		if errors.Is(err, io.ErrUnexpectedEOF) {
			reason = "truncated operands of " + op.String()
		}
		return nil, &MalformedBytecode{Offset: start, Reason: reason}
	}
	return inst, nil
}

func wideAllowed(op Opcode) bool {
	switch op.Family() {
	case FamLoad, FamStore, FamRet, FamIinc:
		return localFormOf(op).n < 0
	}
	return false
}

// newInstruction 按操作码创建空指令，操作数由 decode 填充
func newInstruction(op Opcode) Instruction {
	b := newBase(op)
	switch op.Family() {
	case FamConstantPush:
		return newConstantPushOp(op)
	case FamLdc:
		return &Ldc{base: b}
	case FamLoad, FamStore, FamRet:
		return newLocalVariableOp(op)
	case FamIinc:
		return &Iinc{base: b}
	case FamArrayLoad, FamArrayStore:
		return &ArrayAccess{base: b}
	case FamStack:
		return &StackOp{base: b}
	case FamArithmetic:
		return &Arithmetic{base: b}
	case FamConversion:
		return &Conversion{base: b}
	case FamCompare:
		return &Compare{base: b}
	case FamIf, FamGoto, FamJsr:
		return &Branch{base: b}
	case FamSelect:
		return &Switch{base: b}
	case FamReturn:
		return &Return{base: b}
	case FamField:
		return &FieldAccess{memberRef{base: b}}
	case FamInvoke:
		return &Invoke{memberRef: memberRef{base: b}}
	case FamAllocation, FamTypeCheck:
		switch op {
		case OpNewarray:
			return &NewArray{base: b}
		case OpMultianewarray:
			return &MultiANewArray{classRef: classRef{base: b}}
		}
		return &ClassRef{classRef{base: b}}
	}
	return &Simple{base: b}
}
