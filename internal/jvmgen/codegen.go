package jvmgen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tangzhangming/jvmbc/internal/bytecode"
	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

const codeAttributeName = "Code"

// Class class 文件构建器
type Class struct {
	name   string
	pool   *constpool.Pool
	file   *ClassFile
	logger *zap.Logger
}

// NewClass 创建类，super 为空时继承 java/lang/Object
func NewClass(name, super string) *Class {
	if super == "" {
		super = "java/lang/Object"
	}
	pool := constpool.New()
	cf := NewClassFile(pool)
	cf.ThisClass = pool.AddClass(name)
	cf.SuperClass = pool.AddClass(super)
	return &Class{name: name, pool: pool, file: cf, logger: zap.NewNop()}
}

// WithLogger 设置日志
func (c *Class) WithLogger(l *zap.Logger) *Class {
	if l != nil {
		c.logger = l
	}
	return c
}

// Name 类的内部名称
func (c *Class) Name() string { return c.name }

// Pool 类的常量池，构造指令时向其中添加常量
func (c *Class) Pool() *constpool.Pool { return c.pool }

// AddMethod 添加方法
//
// 列表会被布局和编码；max_stack 由控制流计算，max_locals 取参数和局部变量槽位的最大值。
func (c *Class) AddMethod(access uint16, name, desc string, list *bytecode.InstructionList, handlers []*bytecode.ExceptionHandler) error {
	argWords, err := types.ArgumentWords(desc)
	if err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}
	if access&AccStatic == 0 {
		argWords++
	}

	code, err := list.Bytes()
	if err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}
	maxStack, err := bytecode.MaxStack(c.pool, list, handlers)
	if err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}

	attr := &CodeAttribute{
		MaxStack:  uint16(maxStack),
		MaxLocals: uint16(bytecode.MaxLocals(list, argWords)),
		Code:      code,
	}
	for _, eh := range handlers {
		entry, err := c.exceptionEntry(eh)
		if err != nil {
			return fmt.Errorf("method %s: %w", name, err)
		}
		attr.ExceptionTable = append(attr.ExceptionTable, entry)
	}

	c.file.Methods = append(c.file.Methods, MemberInfo{
		AccessFlags:     access,
		NameIndex:       c.pool.AddUtf8(name),
		DescriptorIndex: c.pool.AddUtf8(desc),
		Attributes: []AttributeInfo{{
			NameIndex: c.pool.AddUtf8(codeAttributeName),
			Info:      attr.Bytes(),
		}},
	})
	c.logger.Debug("method assembled",
		zap.String("class", c.name),
		zap.String("method", name+desc),
		zap.Int("code_length", len(code)),
		zap.Uint16("max_stack", attr.MaxStack),
		zap.Uint16("max_locals", attr.MaxLocals))
	return nil
}

// exceptionEntry 异常表条目；end 句柄包含在保护区间内，end_pc 为其后一条指令的偏移
func (c *Class) exceptionEntry(eh *bytecode.ExceptionHandler) (ExceptionEntry, error) {
	start, end, handler := eh.Start(), eh.End(), eh.Handler()
	if start == nil || end == nil || handler == nil {
		return ExceptionEntry{}, fmt.Errorf("exception handler has unset handles")
	}
	e := ExceptionEntry{
		StartPC:   uint16(start.Position()),
		EndPC:     uint16(end.Position() + end.Instruction().Length()),
		HandlerPC: uint16(handler.Position()),
	}
	if eh.CatchType != "" {
		e.CatchType = c.pool.AddClass(eh.CatchType)
	}
	return e, nil
}

// AddDefaultConstructor 添加调用父类无参构造的 <init>
func (c *Class) AddDefaultConstructor() error {
	super, err := c.pool.ClassName(c.file.SuperClass)
	if err != nil {
		return err
	}
	superInit, err := bytecode.NewInvoke(bytecode.OpInvokespecial, int(c.pool.AddMethodref(super, "<init>", "()V")))
	if err != nil {
		return err
	}
	this, err := bytecode.NewLoad(types.NewObjectType(c.name), 0)
	if err != nil {
		return err
	}
	ret, err := bytecode.NewReturn(types.Void)
	if err != nil {
		return err
	}
	return c.AddMethod(AccPublic, "<init>", "()V", bytecode.NewInstructionList(this, superInit, ret), nil)
}

// File 已组装的 class 文件结构
func (c *Class) File() *ClassFile { return c.file }

// Bytes 输出 class 文件
func (c *Class) Bytes() ([]byte, error) {
	return c.file.ToBytes()
}
