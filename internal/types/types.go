// Package types 定义 JVM 指令操作数和结果使用的类型体系
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// 类型标签
// ============================================================================

// Tag 类型标签，数值与 newarray 指令的 atype 操作数一致
type Tag uint8

const (
	TBoolean Tag = 4
	TChar    Tag = 5
	TFloat   Tag = 6
	TDouble  Tag = 7
	TByte    Tag = 8
	TShort   Tag = 9
	TInt     Tag = 10
	TLong    Tag = 11
	TVoid    Tag = 12
	TArray   Tag = 13
	TObject  Tag = 14
	TUnknown Tag = 15
	TAddress Tag = 16
)

var tagNames = map[Tag]string{
	TBoolean: "boolean",
	TChar:    "char",
	TFloat:   "float",
	TDouble:  "double",
	TByte:    "byte",
	TShort:   "short",
	TInt:     "int",
	TLong:    "long",
	TVoid:    "void",
	TArray:   "array",
	TObject:  "object",
	TUnknown: "<unknown>",
	TAddress: "<return address>",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// ErrInvalidType 非法的基本类型标签
var ErrInvalidType = errors.New("invalid type")

// ============================================================================
// Type 接口
// ============================================================================

// Type JVM 类型
type Type interface {
	// Tag 类型标签
	Tag() Tag
	// Signature 字段描述符形式，如 I、Ljava/lang/String;、[[D
	Signature() string
	// Size 占用的栈字数：long/double 为 2，void 为 0，其余为 1
	Size() int
	// Key 用于哈希和相等比较的规范键
	Key() string
	String() string
}

// Equal 判断两个类型是否相等
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// ============================================================================
// 基本类型
// ============================================================================

// BasicType 基本类型，全局唯一实例
type BasicType struct {
	tag Tag
	sig string
}

var (
	Boolean = &BasicType{TBoolean, "Z"}
	Char    = &BasicType{TChar, "C"}
	Float   = &BasicType{TFloat, "F"}
	Double  = &BasicType{TDouble, "D"}
	Byte    = &BasicType{TByte, "B"}
	Short   = &BasicType{TShort, "S"}
	Int     = &BasicType{TInt, "I"}
	Long    = &BasicType{TLong, "J"}
	Void    = &BasicType{TVoid, "V"}
)

var basicTypes = [...]*BasicType{Boolean, Char, Float, Double, Byte, Short, Int, Long, Void}

// BasicTypeFor 返回标签对应的基本类型单例
func BasicTypeFor(tag Tag) (*BasicType, error) {
	if tag < TBoolean || tag > TVoid {
		return nil, fmt.Errorf("%w: tag %d is not a basic type", ErrInvalidType, uint8(tag))
	}
	return basicTypes[tag-TBoolean], nil
}

func (b *BasicType) Tag() Tag          { return b.tag }
func (b *BasicType) Signature() string { return b.sig }
func (b *BasicType) Key() string       { return b.sig }
func (b *BasicType) String() string    { return b.tag.String() }

func (b *BasicType) Size() int {
	switch b.tag {
	case TLong, TDouble:
		return 2
	case TVoid:
		return 0
	default:
		return 1
	}
}

// ============================================================================
// 引用类型
// ============================================================================

// ObjectType 类类型，类名使用内部形式（java/lang/String）
type ObjectType struct {
	className string
}

// 常用的类类型
var (
	Object    = NewObjectType("java/lang/Object")
	String    = NewObjectType("java/lang/String")
	Class     = NewObjectType("java/lang/Class")
	Throwable = NewObjectType("java/lang/Throwable")
)

// NewObjectType 创建类类型，接受点分或斜杠分隔的类名
func NewObjectType(className string) *ObjectType {
	return &ObjectType{className: strings.ReplaceAll(className, ".", "/")}
}

// ClassName 内部形式的类名
func (o *ObjectType) ClassName() string { return o.className }

func (o *ObjectType) Tag() Tag          { return TObject }
func (o *ObjectType) Size() int         { return 1 }
func (o *ObjectType) Signature() string { return "L" + o.className + ";" }
func (o *ObjectType) Key() string       { return o.Signature() }
func (o *ObjectType) String() string    { return strings.ReplaceAll(o.className, "/", ".") }

// ArrayType 数组类型
type ArrayType struct {
	elem Type
	dims int
}

// NewArrayType 创建数组类型；元素本身是数组时维度叠加
func NewArrayType(elem Type, dims int) *ArrayType {
	if dims < 1 {
		dims = 1
	}
	if at, ok := elem.(*ArrayType); ok {
		return &ArrayType{elem: at.elem, dims: at.dims + dims}
	}
	return &ArrayType{elem: elem, dims: dims}
}

// Element 最内层元素类型
func (a *ArrayType) Element() Type { return a.elem }

// Dimensions 维度
func (a *ArrayType) Dimensions() int { return a.dims }

// ComponentType 去掉一维后的类型
func (a *ArrayType) ComponentType() Type {
	if a.dims == 1 {
		return a.elem
	}
	return &ArrayType{elem: a.elem, dims: a.dims - 1}
}

func (a *ArrayType) Tag() Tag    { return TArray }
func (a *ArrayType) Size() int   { return 1 }
func (a *ArrayType) Key() string { return a.Signature() }

func (a *ArrayType) Signature() string {
	return strings.Repeat("[", a.dims) + a.elem.Signature()
}

func (a *ArrayType) String() string {
	return a.elem.String() + strings.Repeat("[]", a.dims)
}

// ============================================================================
// 特殊类型
// ============================================================================

// ReturnAddressType jsr/ret 使用的返回地址类型
//
// target 为目标指令句柄的 ID，0 表示未指定目标。
type ReturnAddressType struct {
	target uint64
}

// NewReturnAddressType 创建返回地址类型
func NewReturnAddressType(target uint64) *ReturnAddressType {
	return &ReturnAddressType{target: target}
}

// Target 目标句柄 ID
func (r *ReturnAddressType) Target() uint64 { return r.target }

func (r *ReturnAddressType) Tag() Tag          { return TAddress }
func (r *ReturnAddressType) Size() int         { return 1 }
func (r *ReturnAddressType) Signature() string { return "<return address>" }

func (r *ReturnAddressType) Key() string {
	if r.target == 0 {
		return "<return address>"
	}
	return fmt.Sprintf("<return address %d>", r.target)
}

func (r *ReturnAddressType) String() string { return r.Key() }

type specialType struct {
	tag  Tag
	sig  string
	name string
}

func (s *specialType) Tag() Tag          { return s.tag }
func (s *specialType) Size() int         { return 1 }
func (s *specialType) Signature() string { return s.sig }
func (s *specialType) Key() string       { return s.name }
func (s *specialType) String() string    { return s.name }

var (
	// Null aconst_null 压入的 null 引用类型
	Null Type = &specialType{TObject, "Ljava/lang/Object;", "<null object>"}
	// Unknown 栈操作等无法确定类型时使用
	Unknown Type = &specialType{TUnknown, "<unknown>", "<unknown object>"}
)

// IsReference 是否为引用类型
func IsReference(t Type) bool {
	switch t.Tag() {
	case TObject, TArray:
		return true
	}
	return false
}
