package constpool

import (
	"fmt"
	"strconv"
)

// Member 解析后的字段或方法引用
type Member struct {
	ClassName string // 所属类；invokedynamic 时为空
	Name      string
	Signature string
}

func (m Member) String() string {
	if m.ClassName == "" {
		return m.Name + ":" + m.Signature
	}
	return m.ClassName + "." + m.Name + ":" + m.Signature
}

// ResolveMember 通过 Accessor 解析成员引用
func ResolveMember(cp Accessor, idx uint16) (Member, error) {
	if cp == nil {
		return Member{}, ErrNoPool
	}
	classIdx, natIdx, err := cp.Ref(idx)
	if err != nil {
		return Member{}, err
	}
	nameIdx, sigIdx, err := cp.NameAndType(natIdx)
	if err != nil {
		return Member{}, err
	}
	name, err := cp.Utf8(nameIdx)
	if err != nil {
		return Member{}, err
	}
	sig, err := cp.Utf8(sigIdx)
	if err != nil {
		return Member{}, err
	}

	m := Member{Name: name, Signature: sig}
	tag, err := cp.Tag(idx)
	if err != nil {
		return Member{}, err
	}
	if tag != TagInvokeDynamic && tag != TagDynamic {
		if m.ClassName, err = cp.ClassName(classIdx); err != nil {
			return Member{}, err
		}
	}
	return m, nil
}

// Signature 成员引用的描述符
func Signature(cp Accessor, idx uint16) (string, error) {
	m, err := ResolveMember(cp, idx)
	if err != nil {
		return "", err
	}
	return m.Signature, nil
}

// Describe 返回条目的可读形式，反汇编输出使用
func Describe(cp Accessor, idx uint16) string {
	if cp == nil {
		return "#" + strconv.Itoa(int(idx))
	}
	tag, err := cp.Tag(idx)
	if err != nil {
		return "#" + strconv.Itoa(int(idx))
	}
	switch tag {
	case TagClass:
		if name, err := cp.ClassName(idx); err == nil {
			return name
		}
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagInvokeDynamic, TagDynamic:
		if m, err := ResolveMember(cp, idx); err == nil {
			return m.String()
		}
	case TagUtf8:
		if s, err := cp.Utf8(idx); err == nil {
			return strconv.Quote(s)
		}
	}
	if p, ok := cp.(*Pool); ok {
		if e, err := p.Entry(idx); err == nil {
			return describeLiteral(p, e)
		}
	}
	return fmt.Sprintf("#%d <%s>", idx, tag)
}

func describeLiteral(p *Pool, e Entry) string {
	switch c := e.(type) {
	case *Integer:
		return strconv.Itoa(int(c.Value))
	case *Float:
		return strconv.FormatFloat(float64(c.Value), 'g', -1, 32) + "f"
	case *Long:
		return strconv.FormatInt(c.Value, 10) + "L"
	case *Double:
		return strconv.FormatFloat(c.Value, 'g', -1, 64) + "d"
	case *String:
		if s, err := p.Utf8(c.StringIndex); err == nil {
			return strconv.Quote(s)
		}
	case *MethodType:
		if s, err := p.Utf8(c.DescriptorIndex); err == nil {
			return "MethodType " + s
		}
	case *MethodHandle:
		return fmt.Sprintf("MethodHandle kind=%d #%d", c.ReferenceKind, c.ReferenceIndex)
	}
	return "<" + e.Tag().String() + ">"
}
