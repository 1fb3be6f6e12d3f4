// Package jvmgen 把指令列表组装成 JVM class 文件
package jvmgen

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tangzhangming/jvmbc/internal/constpool"
)

// Class 文件常量
const (
	ClassFileMagic    = 0xCAFEBABE
	ClassMajorVersion = 52 // Java 8
	ClassMinorVersion = 0
)

// 访问标志
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccVolatile   = 0x0040
	AccTransient  = 0x0080
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// ErrNotClassFile 输入不是 class 文件
var ErrNotClassFile = errors.New("not a class file")

// ClassFile JVM class 文件结构
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *constpool.Pool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
	Attributes   []AttributeInfo
}

// MemberInfo 字段或方法信息
type MemberInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// AttributeInfo 属性信息
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// NewClassFile 创建新的 class 文件
func NewClassFile(pool *constpool.Pool) *ClassFile {
	return &ClassFile{
		MinorVersion: ClassMinorVersion,
		MajorVersion: ClassMajorVersion,
		Pool:         pool,
		AccessFlags:  AccPublic | AccSuper,
	}
}

// Write 将 class 文件写入 io.Writer
func (cf *ClassFile) Write(w io.Writer) error {
	// Magic number 和版本
	if err := writeBE(w, uint32(ClassFileMagic), cf.MinorVersion, cf.MajorVersion); err != nil {
		return err
	}

	if err := cf.Pool.Write(w); err != nil {
		return err
	}

	if err := writeBE(w, cf.AccessFlags, cf.ThisClass, cf.SuperClass, uint16(len(cf.Interfaces))); err != nil {
		return err
	}
	for _, iface := range cf.Interfaces {
		if err := writeBE(w, iface); err != nil {
			return err
		}
	}

	if err := writeMembers(w, cf.Fields); err != nil {
		return err
	}
	if err := writeMembers(w, cf.Methods); err != nil {
		return err
	}
	return writeAttributes(w, cf.Attributes)
}

// ToBytes 将 class 文件转换为字节数组
func (cf *ClassFile) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := cf.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ClassName 本类的内部名称
func (cf *ClassFile) ClassName() (string, error) {
	return cf.Pool.ClassName(cf.ThisClass)
}

// MemberName 成员的名称和描述符
func (cf *ClassFile) MemberName(m *MemberInfo) (name, descriptor string, err error) {
	if name, err = cf.Pool.Utf8(m.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = cf.Pool.Utf8(m.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// FindAttribute 按名称查找属性
func (cf *ClassFile) FindAttribute(attrs []AttributeInfo, name string) (*AttributeInfo, bool) {
	for i := range attrs {
		if n, err := cf.Pool.Utf8(attrs[i].NameIndex); err == nil && n == name {
			return &attrs[i], true
		}
	}
	return nil, false
}

func writeBE(w io.Writer, values ...interface{}) error {
	for _, v := range values {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func writeMembers(w io.Writer, members []MemberInfo) error {
	if err := writeBE(w, uint16(len(members))); err != nil {
		return err
	}
	for i := range members {
		m := &members[i]
		if err := writeBE(w, m.AccessFlags, m.NameIndex, m.DescriptorIndex); err != nil {
			return err
		}
		if err := writeAttributes(w, m.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func writeAttributes(w io.Writer, attrs []AttributeInfo) error {
	if err := writeBE(w, uint16(len(attrs))); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := writeBE(w, a.NameIndex, uint32(len(a.Info))); err != nil {
			return err
		}
		if _, err := w.Write(a.Info); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// 读取
// ============================================================================

// ReadClassFile 解析 class 文件
func ReadClassFile(data []byte) (*ClassFile, error) {
	r := bytes.NewReader(data)
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil || magic != ClassFileMagic {
		return nil, ErrNotClassFile
	}

	cf := &ClassFile{}
	if err := readBE(r, &cf.MinorVersion, &cf.MajorVersion); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	pool, err := constpool.Read(r)
	if err != nil {
		return nil, err
	}
	cf.Pool = pool

	var ifaceCount uint16
	if err := readBE(r, &cf.AccessFlags, &cf.ThisClass, &cf.SuperClass, &ifaceCount); err != nil {
		return nil, fmt.Errorf("read class header: %w", err)
	}
	cf.Interfaces = make([]uint16, ifaceCount)
	for i := range cf.Interfaces {
		if err := readBE(r, &cf.Interfaces[i]); err != nil {
			return nil, fmt.Errorf("read interfaces: %w", err)
		}
	}

	if cf.Fields, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	if cf.Methods, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("read methods: %w", err)
	}
	if cf.Attributes, err = readAttributes(r); err != nil {
		return nil, fmt.Errorf("read class attributes: %w", err)
	}
	return cf, nil
}

func readBE(r io.Reader, ptrs ...interface{}) error {
	for _, p := range ptrs {
		if err := binary.Read(r, binary.BigEndian, p); err != nil {
			return err
		}
	}
	return nil
}

func readMembers(r *bytes.Reader) ([]MemberInfo, error) {
	var count uint16
	if err := readBE(r, &count); err != nil {
		return nil, err
	}
	members := make([]MemberInfo, count)
	for i := range members {
		m := &members[i]
		if err := readBE(r, &m.AccessFlags, &m.NameIndex, &m.DescriptorIndex); err != nil {
			return nil, err
		}
		attrs, err := readAttributes(r)
		if err != nil {
			return nil, err
		}
		m.Attributes = attrs
	}
	return members, nil
}

func readAttributes(r *bytes.Reader) ([]AttributeInfo, error) {
	var count uint16
	if err := readBE(r, &count); err != nil {
		return nil, err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		var length uint32
		if err := readBE(r, &attrs[i].NameIndex, &length); err != nil {
			return nil, err
		}
		if int64(length) > int64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		attrs[i].Info = make([]byte, length)
		if _, err := io.ReadFull(r, attrs[i].Info); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}
