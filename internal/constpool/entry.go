// Package constpool 实现指令引用的 JVM 常量池
package constpool

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Tag 常量池条目标签
type Tag uint8

// 常量池标签
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
)

var tagNames = map[Tag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Entry 常量池条目
type Entry interface {
	Tag() Tag
	Write(w io.Writer) error
}

// Utf8 UTF8 字符串常量
type Utf8 struct {
	Value string
}

func (c *Utf8) Tag() Tag { return TagUtf8 }
func (c *Utf8) Write(w io.Writer) error {
	return writeAll(w, uint8(TagUtf8), uint16(len(c.Value)), []byte(c.Value))
}

// Integer int 常量
type Integer struct {
	Value int32
}

func (c *Integer) Tag() Tag                { return TagInteger }
func (c *Integer) Write(w io.Writer) error { return writeAll(w, uint8(TagInteger), c.Value) }

// Float float 常量
type Float struct {
	Value float32
}

func (c *Float) Tag() Tag { return TagFloat }
func (c *Float) Write(w io.Writer) error {
	return writeAll(w, uint8(TagFloat), math.Float32bits(c.Value))
}

// Long long 常量，占两个槽位
type Long struct {
	Value int64
}

func (c *Long) Tag() Tag                { return TagLong }
func (c *Long) Write(w io.Writer) error { return writeAll(w, uint8(TagLong), c.Value) }

// Double double 常量，占两个槽位
type Double struct {
	Value float64
}

func (c *Double) Tag() Tag { return TagDouble }
func (c *Double) Write(w io.Writer) error {
	return writeAll(w, uint8(TagDouble), math.Float64bits(c.Value))
}

// Class 类引用常量
type Class struct {
	NameIndex uint16
}

func (c *Class) Tag() Tag                { return TagClass }
func (c *Class) Write(w io.Writer) error { return writeAll(w, uint8(TagClass), c.NameIndex) }

// String 字符串常量
type String struct {
	StringIndex uint16
}

func (c *String) Tag() Tag                { return TagString }
func (c *String) Write(w io.Writer) error { return writeAll(w, uint8(TagString), c.StringIndex) }

// Ref 字段、方法、接口方法引用
type Ref struct {
	Kind             Tag // TagFieldref / TagMethodref / TagInterfaceMethodref
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *Ref) Tag() Tag { return c.Kind }
func (c *Ref) Write(w io.Writer) error {
	return writeAll(w, uint8(c.Kind), c.ClassIndex, c.NameAndTypeIndex)
}

// NameAndType 名称和类型描述符常量
type NameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *NameAndType) Tag() Tag { return TagNameAndType }
func (c *NameAndType) Write(w io.Writer) error {
	return writeAll(w, uint8(TagNameAndType), c.NameIndex, c.DescriptorIndex)
}

// MethodHandle 方法句柄常量
type MethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (c *MethodHandle) Tag() Tag { return TagMethodHandle }
func (c *MethodHandle) Write(w io.Writer) error {
	return writeAll(w, uint8(TagMethodHandle), c.ReferenceKind, c.ReferenceIndex)
}

// MethodType 方法类型常量
type MethodType struct {
	DescriptorIndex uint16
}

func (c *MethodType) Tag() Tag { return TagMethodType }
func (c *MethodType) Write(w io.Writer) error {
	return writeAll(w, uint8(TagMethodType), c.DescriptorIndex)
}

// Dynamic Dynamic / InvokeDynamic 常量
type Dynamic struct {
	Kind                     Tag // TagDynamic / TagInvokeDynamic
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *Dynamic) Tag() Tag { return c.Kind }
func (c *Dynamic) Write(w io.Writer) error {
	return writeAll(w, uint8(c.Kind), c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
}

func writeAll(w io.Writer, fields ...interface{}) error {
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}
