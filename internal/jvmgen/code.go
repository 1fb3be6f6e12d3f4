package jvmgen

import (
	"errors"
	"fmt"

	"github.com/tangzhangming/jvmbc/internal/bytecode"
	"github.com/tangzhangming/jvmbc/internal/constpool"
)

// ErrNoCode 方法没有 Code 属性（abstract 或 native）
var ErrNoCode = errors.New("method has no Code attribute")

// ExceptionEntry 异常表条目，EndPC 不包含在保护区间内
type ExceptionEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // 0 表示捕获所有异常
}

// CodeAttribute 方法的 Code 属性
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionEntry
	Attributes     []AttributeInfo
}

// Bytes 属性内容（不含属性名和长度）
func (a *CodeAttribute) Bytes() []byte {
	w := bytecode.NewByteWriter()
	w.WriteU16(a.MaxStack)
	w.WriteU16(a.MaxLocals)
	w.WriteU32(uint32(len(a.Code)))
	w.WriteBytes(a.Code)
	w.WriteU16(uint16(len(a.ExceptionTable)))
	for _, e := range a.ExceptionTable {
		w.WriteU16(e.StartPC)
		w.WriteU16(e.EndPC)
		w.WriteU16(e.HandlerPC)
		w.WriteU16(e.CatchType)
	}
	w.WriteU16(uint16(len(a.Attributes)))
	for _, attr := range a.Attributes {
		w.WriteU16(attr.NameIndex)
		w.WriteU32(uint32(len(attr.Info)))
		w.WriteBytes(attr.Info)
	}
	return w.Bytes()
}

// ParseCodeAttribute 解析 Code 属性内容
func ParseCodeAttribute(info []byte) (*CodeAttribute, error) {
	r := bytecode.NewByteReader(info)
	a := &CodeAttribute{}
	var err error
	if a.MaxStack, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if a.MaxLocals, err = r.ReadU16(); err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Remaining()) {
		return nil, fmt.Errorf("code length %d exceeds attribute", n)
	}
	a.Code = append([]byte(nil), info[r.Pos():r.Pos()+int(n)]...)
	if err := r.Skip(int(n)); err != nil {
		return nil, err
	}

	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	a.ExceptionTable = make([]ExceptionEntry, count)
	for i := range a.ExceptionTable {
		e := &a.ExceptionTable[i]
		for _, p := range []*uint16{&e.StartPC, &e.EndPC, &e.HandlerPC, &e.CatchType} {
			if *p, err = r.ReadU16(); err != nil {
				return nil, err
			}
		}
	}

	if count, err = r.ReadU16(); err != nil {
		return nil, err
	}
	a.Attributes = make([]AttributeInfo, count)
	for i := range a.Attributes {
		if a.Attributes[i].NameIndex, err = r.ReadU16(); err != nil {
			return nil, err
		}
		length, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if int64(length) > int64(r.Remaining()) {
			return nil, fmt.Errorf("attribute length %d exceeds Code attribute", length)
		}
		a.Attributes[i].Info = append([]byte(nil), info[r.Pos():r.Pos()+int(length)]...)
		if err := r.Skip(int(length)); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// MethodCode 方法的 Code 属性
func (cf *ClassFile) MethodCode(m *MemberInfo) (*CodeAttribute, error) {
	attr, ok := cf.FindAttribute(m.Attributes, codeAttributeName)
	if !ok {
		return nil, ErrNoCode
	}
	return ParseCodeAttribute(attr.Info)
}

// Decode 把 Code 属性解码为指令列表，异常表转换为引用句柄的处理器
func (a *CodeAttribute) Decode(cp constpool.Accessor) (*bytecode.InstructionList, []*bytecode.ExceptionHandler, error) {
	list, err := bytecode.Decode(a.Code)
	if err != nil {
		return nil, nil, err
	}
	handlers := make([]*bytecode.ExceptionHandler, 0, len(a.ExceptionTable))
	for i, e := range a.ExceptionTable {
		if e.EndPC <= e.StartPC {
			return nil, nil, &bytecode.MalformedBytecode{
				Offset: int(e.StartPC),
				Reason: fmt.Sprintf("exception table entry %d has empty range [%d, %d)", i, e.StartPC, e.EndPC),
			}
		}
		start := list.FindHandle(int(e.StartPC))
		handler := list.FindHandle(int(e.HandlerPC))
		end := list.Last()
		if int(e.EndPC) < len(a.Code) {
			if next := list.FindHandle(int(e.EndPC)); next != nil {
				end = next.Prev()
			} else {
				end = nil
			}
		}
		if start == nil || end == nil || handler == nil {
			return nil, nil, &bytecode.MalformedBytecode{
				Offset: int(e.StartPC),
				Reason: fmt.Sprintf("exception table entry %d is not on instruction boundaries", i),
			}
		}
		catchType := ""
		if e.CatchType != 0 {
			if catchType, err = cp.ClassName(e.CatchType); err != nil {
				return nil, nil, err
			}
		}
		handlers = append(handlers, bytecode.NewExceptionHandler(start, end, handler, catchType))
	}
	return list, handlers, nil
}
