package constpool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ErrBadIndex 索引越界或条目类型不符
var ErrBadIndex = errors.New("bad constant pool index")

// ErrNoPool 需要解析常量却没有提供常量池
var ErrNoPool = errors.New("constant pool required")

// Accessor 指令访问常量池所需的最小接口
//
// 同一个类的所有指令共享一个常量池，实现不要求并发安全。
type Accessor interface {
	// Tag 返回条目标签
	Tag(idx uint16) (Tag, error)
	// Utf8 解析 UTF8 条目
	Utf8(idx uint16) (string, error)
	// ClassName 解析 Class 条目的类名（内部形式）
	ClassName(idx uint16) (string, error)
	// NameAndType 解析 NameAndType 条目
	NameAndType(idx uint16) (nameIdx, sigIdx uint16, err error)
	// Ref 解析字段/方法/接口方法引用，以及 (Invoke)Dynamic 条目
	// 对于 Dynamic 条目 classIdx 为引导方法下标
	Ref(idx uint16) (classIdx, natIdx uint16, err error)
	// AddUtf8 追加或复用一个 UTF8 条目
	AddUtf8(s string) uint16
}

// Pool 常量池
//
// 下标从 1 开始；long/double 占两个槽位，第二个槽位为 nil。
type Pool struct {
	entries []Entry           // entries[0] 始终为 nil
	index   map[string]uint16 // 条目去重缓存
}

// New 创建空常量池
func New() *Pool {
	return &Pool{
		entries: []Entry{nil},
		index:   make(map[string]uint16),
	}
}

// Size 常量池计数（class 文件中的 constant_pool_count）
func (p *Pool) Size() int {
	return len(p.entries)
}

// Entry 返回下标对应的条目
func (p *Pool) Entry(idx uint16) (Entry, error) {
	if idx == 0 || int(idx) >= len(p.entries) || p.entries[idx] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadIndex, idx)
	}
	return p.entries[idx], nil
}

func (p *Pool) add(key string, e Entry) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint16(len(p.entries))
	p.entries = append(p.entries, e)
	if e.Tag() == TagLong || e.Tag() == TagDouble {
		p.entries = append(p.entries, nil)
	}
	p.index[key] = idx
	return idx
}

// ============================================================================
// 追加条目
// ============================================================================

func (p *Pool) AddUtf8(value string) uint16 {
	return p.add("utf8:"+value, &Utf8{Value: value})
}

func (p *Pool) AddClass(name string) uint16 {
	name = strings.ReplaceAll(name, ".", "/")
	key := "class:" + name
	if idx, ok := p.index[key]; ok {
		return idx
	}
	return p.add(key, &Class{NameIndex: p.AddUtf8(name)})
}

func (p *Pool) AddString(value string) uint16 {
	key := "string:" + value
	if idx, ok := p.index[key]; ok {
		return idx
	}
	return p.add(key, &String{StringIndex: p.AddUtf8(value)})
}

func (p *Pool) AddInteger(v int32) uint16 {
	return p.add(fmt.Sprintf("int:%d", v), &Integer{Value: v})
}

func (p *Pool) AddFloat(v float32) uint16 {
	return p.add(fmt.Sprintf("float:%08x", math.Float32bits(v)), &Float{Value: v})
}

func (p *Pool) AddLong(v int64) uint16 {
	return p.add(fmt.Sprintf("long:%d", v), &Long{Value: v})
}

func (p *Pool) AddDouble(v float64) uint16 {
	return p.add(fmt.Sprintf("double:%016x", math.Float64bits(v)), &Double{Value: v})
}

func (p *Pool) AddNameAndType(name, descriptor string) uint16 {
	key := "nameandtype:" + name + ":" + descriptor
	if idx, ok := p.index[key]; ok {
		return idx
	}
	nameIdx := p.AddUtf8(name)
	descIdx := p.AddUtf8(descriptor)
	return p.add(key, &NameAndType{NameIndex: nameIdx, DescriptorIndex: descIdx})
}

func (p *Pool) addRef(kind Tag, className, name, descriptor string) uint16 {
	className = strings.ReplaceAll(className, ".", "/")
	key := fmt.Sprintf("%s:%s.%s:%s", kind, className, name, descriptor)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	classIdx := p.AddClass(className)
	natIdx := p.AddNameAndType(name, descriptor)
	return p.add(key, &Ref{Kind: kind, ClassIndex: classIdx, NameAndTypeIndex: natIdx})
}

func (p *Pool) AddFieldref(className, name, descriptor string) uint16 {
	return p.addRef(TagFieldref, className, name, descriptor)
}

func (p *Pool) AddMethodref(className, name, descriptor string) uint16 {
	return p.addRef(TagMethodref, className, name, descriptor)
}

func (p *Pool) AddInterfaceMethodref(className, name, descriptor string) uint16 {
	return p.addRef(TagInterfaceMethodref, className, name, descriptor)
}

func (p *Pool) AddMethodType(descriptor string) uint16 {
	key := "methodtype:" + descriptor
	if idx, ok := p.index[key]; ok {
		return idx
	}
	return p.add(key, &MethodType{DescriptorIndex: p.AddUtf8(descriptor)})
}

func (p *Pool) AddMethodHandle(kind uint8, refIdx uint16) uint16 {
	return p.add(fmt.Sprintf("methodhandle:%d:%d", kind, refIdx),
		&MethodHandle{ReferenceKind: kind, ReferenceIndex: refIdx})
}

func (p *Pool) AddInvokeDynamic(bootstrap uint16, name, descriptor string) uint16 {
	key := fmt.Sprintf("indy:%d:%s:%s", bootstrap, name, descriptor)
	if idx, ok := p.index[key]; ok {
		return idx
	}
	natIdx := p.AddNameAndType(name, descriptor)
	return p.add(key, &Dynamic{Kind: TagInvokeDynamic, BootstrapMethodAttrIndex: bootstrap, NameAndTypeIndex: natIdx})
}

// ============================================================================
// Accessor 实现
// ============================================================================

func (p *Pool) Tag(idx uint16) (Tag, error) {
	e, err := p.Entry(idx)
	if err != nil {
		return 0, err
	}
	return e.Tag(), nil
}

func (p *Pool) Utf8(idx uint16) (string, error) {
	e, err := p.Entry(idx)
	if err != nil {
		return "", err
	}
	u, ok := e.(*Utf8)
	if !ok {
		return "", fmt.Errorf("%w: %d is %s, want Utf8", ErrBadIndex, idx, e.Tag())
	}
	return u.Value, nil
}

func (p *Pool) ClassName(idx uint16) (string, error) {
	e, err := p.Entry(idx)
	if err != nil {
		return "", err
	}
	c, ok := e.(*Class)
	if !ok {
		return "", fmt.Errorf("%w: %d is %s, want Class", ErrBadIndex, idx, e.Tag())
	}
	return p.Utf8(c.NameIndex)
}

func (p *Pool) NameAndType(idx uint16) (uint16, uint16, error) {
	e, err := p.Entry(idx)
	if err != nil {
		return 0, 0, err
	}
	nt, ok := e.(*NameAndType)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d is %s, want NameAndType", ErrBadIndex, idx, e.Tag())
	}
	return nt.NameIndex, nt.DescriptorIndex, nil
}

func (p *Pool) Ref(idx uint16) (uint16, uint16, error) {
	e, err := p.Entry(idx)
	if err != nil {
		return 0, 0, err
	}
	switch r := e.(type) {
	case *Ref:
		return r.ClassIndex, r.NameAndTypeIndex, nil
	case *Dynamic:
		return r.BootstrapMethodAttrIndex, r.NameAndTypeIndex, nil
	}
	return 0, 0, fmt.Errorf("%w: %d is %s, want a member reference", ErrBadIndex, idx, e.Tag())
}

// ============================================================================
// 读写
// ============================================================================

// Write 按 class 文件格式写出 constant_pool_count 和全部条目
func (p *Pool) Write(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(p.entries))); err != nil {
		return err
	}
	for _, e := range p.entries {
		if e == nil {
			continue
		}
		if err := e.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// Read 按 class 文件格式读取常量池
func Read(r io.Reader) (*Pool, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read constant pool count: %w", err)
	}
	p := New()
	for int(len(p.entries)) < int(count) {
		idx := len(p.entries)
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("read constant pool entry %d: %w", idx, err)
		}
		p.entries = append(p.entries, e)
		if e.Tag() == TagLong || e.Tag() == TagDouble {
			p.entries = append(p.entries, nil)
		}
	}
	p.reindex()
	return p, nil
}

// reindex 读取后重建去重缓存，后续 Add 复用已有条目
func (p *Pool) reindex() {
	for i, e := range p.entries {
		if e == nil {
			continue
		}
		if key := p.keyOf(e); key != "" {
			if _, ok := p.index[key]; !ok {
				p.index[key] = uint16(i)
			}
		}
	}
}

func (p *Pool) keyOf(e Entry) string {
	switch c := e.(type) {
	case *Utf8:
		return "utf8:" + c.Value
	case *Integer:
		return fmt.Sprintf("int:%d", c.Value)
	case *Float:
		return fmt.Sprintf("float:%08x", math.Float32bits(c.Value))
	case *Long:
		return fmt.Sprintf("long:%d", c.Value)
	case *Double:
		return fmt.Sprintf("double:%016x", math.Float64bits(c.Value))
	case *Class:
		name, err := p.Utf8(c.NameIndex)
		if err != nil {
			return ""
		}
		return "class:" + name
	case *String:
		s, err := p.Utf8(c.StringIndex)
		if err != nil {
			return ""
		}
		return "string:" + s
	case *NameAndType:
		name, err1 := p.Utf8(c.NameIndex)
		desc, err2 := p.Utf8(c.DescriptorIndex)
		if err1 != nil || err2 != nil {
			return ""
		}
		return "nameandtype:" + name + ":" + desc
	}
	return ""
}

func readEntry(r io.Reader) (Entry, error) {
	var tag uint8
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagUtf8:
		var n uint16
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return &Utf8{Value: string(buf)}, nil
	case TagInteger:
		e := &Integer{}
		return e, binary.Read(r, binary.BigEndian, &e.Value)
	case TagFloat:
		var bits uint32
		err := binary.Read(r, binary.BigEndian, &bits)
		return &Float{Value: math.Float32frombits(bits)}, err
	case TagLong:
		e := &Long{}
		return e, binary.Read(r, binary.BigEndian, &e.Value)
	case TagDouble:
		var bits uint64
		err := binary.Read(r, binary.BigEndian, &bits)
		return &Double{Value: math.Float64frombits(bits)}, err
	case TagClass:
		e := &Class{}
		return e, binary.Read(r, binary.BigEndian, &e.NameIndex)
	case TagString:
		e := &String{}
		return e, binary.Read(r, binary.BigEndian, &e.StringIndex)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		e := &Ref{Kind: Tag(tag)}
		if err := binary.Read(r, binary.BigEndian, &e.ClassIndex); err != nil {
			return nil, err
		}
		return e, binary.Read(r, binary.BigEndian, &e.NameAndTypeIndex)
	case TagNameAndType:
		e := &NameAndType{}
		if err := binary.Read(r, binary.BigEndian, &e.NameIndex); err != nil {
			return nil, err
		}
		return e, binary.Read(r, binary.BigEndian, &e.DescriptorIndex)
	case TagMethodHandle:
		e := &MethodHandle{}
		if err := binary.Read(r, binary.BigEndian, &e.ReferenceKind); err != nil {
			return nil, err
		}
		return e, binary.Read(r, binary.BigEndian, &e.ReferenceIndex)
	case TagMethodType:
		e := &MethodType{}
		return e, binary.Read(r, binary.BigEndian, &e.DescriptorIndex)
	case TagDynamic, TagInvokeDynamic:
		e := &Dynamic{Kind: Tag(tag)}
		if err := binary.Read(r, binary.BigEndian, &e.BootstrapMethodAttrIndex); err != nil {
			return nil, err
		}
		return e, binary.Read(r, binary.BigEndian, &e.NameAndTypeIndex)
	}
	return nil, fmt.Errorf("unknown constant pool tag %d", tag)
}
