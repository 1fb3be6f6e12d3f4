package types

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// methodCacheLimit 已解析方法描述符的缓存条目数
const methodCacheLimit = 1024

// MethodDescriptor 解析后的方法描述符
type MethodDescriptor struct {
	Args     []Type
	Return   Type
	ArgWords int // 参数占用的栈字数（不含 this）
}

// methodCache 方法描述符缓存，invoke 指令在计算栈效应时会反复解析同一个描述符
var methodCache, _ = lru.New(methodCacheLimit)

// ErrBadDescriptor 描述符格式错误
var ErrBadDescriptor = fmt.Errorf("%w: malformed descriptor", ErrInvalidType)

// TypeFromDescriptor 解析字段描述符
func TypeFromDescriptor(desc string) (Type, error) {
	t, n, err := parseType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, fmt.Errorf("%w %q: trailing characters", ErrBadDescriptor, desc)
	}
	return t, nil
}

// ParseMethodDescriptor 解析方法描述符，如 (ILjava/lang/String;)V
func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if v, ok := methodCache.Get(desc); ok {
		return v.(*MethodDescriptor), nil
	}

	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("%w %q: missing '('", ErrBadDescriptor, desc)
	}
	md := &MethodDescriptor{}
	pos := 1
	for {
		if pos >= len(desc) {
			return nil, fmt.Errorf("%w %q: missing ')'", ErrBadDescriptor, desc)
		}
		if desc[pos] == ')' {
			pos++
			break
		}
		t, n, err := parseType(desc, pos)
		if err != nil {
			return nil, err
		}
		if t == Void {
			return nil, fmt.Errorf("%w %q: void argument", ErrBadDescriptor, desc)
		}
		md.Args = append(md.Args, t)
		md.ArgWords += t.Size()
		pos = n
	}

	ret, n, err := parseType(desc, pos)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, fmt.Errorf("%w %q: trailing characters", ErrBadDescriptor, desc)
	}
	md.Return = ret

	methodCache.Add(desc, md)
	return md, nil
}

// ArgumentTypes 方法参数类型
func ArgumentTypes(desc string) ([]Type, error) {
	md, err := ParseMethodDescriptor(desc)
	if err != nil {
		return nil, err
	}
	return md.Args, nil
}

// ReturnType 方法返回类型
func ReturnType(desc string) (Type, error) {
	md, err := ParseMethodDescriptor(desc)
	if err != nil {
		return nil, err
	}
	return md.Return, nil
}

// ArgumentWords 方法参数占用的栈字数
func ArgumentWords(desc string) (int, error) {
	md, err := ParseMethodDescriptor(desc)
	if err != nil {
		return 0, err
	}
	return md.ArgWords, nil
}

// MethodSignature 由参数和返回类型拼出方法描述符
func MethodSignature(ret Type, args ...Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, a := range args {
		sb.WriteString(a.Signature())
	}
	sb.WriteByte(')')
	sb.WriteString(ret.Signature())
	return sb.String()
}

// parseType 从 pos 开始解析一个类型，返回类型和下一个位置
func parseType(desc string, pos int) (Type, int, error) {
	if pos >= len(desc) {
		return nil, pos, fmt.Errorf("%w %q: unexpected end", ErrBadDescriptor, desc)
	}
	switch desc[pos] {
	case 'Z':
		return Boolean, pos + 1, nil
	case 'B':
		return Byte, pos + 1, nil
	case 'C':
		return Char, pos + 1, nil
	case 'S':
		return Short, pos + 1, nil
	case 'I':
		return Int, pos + 1, nil
	case 'J':
		return Long, pos + 1, nil
	case 'F':
		return Float, pos + 1, nil
	case 'D':
		return Double, pos + 1, nil
	case 'V':
		return Void, pos + 1, nil
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end < 2 {
			return nil, pos, fmt.Errorf("%w %q: bad class name at %d", ErrBadDescriptor, desc, pos)
		}
		return NewObjectType(desc[pos+1 : pos+end]), pos + end + 1, nil
	case '[':
		dims := 0
		for pos < len(desc) && desc[pos] == '[' {
			dims++
			pos++
		}
		elem, n, err := parseType(desc, pos)
		if err != nil {
			return nil, pos, err
		}
		if elem == Void {
			return nil, pos, fmt.Errorf("%w %q: array of void", ErrBadDescriptor, desc)
		}
		return NewArrayType(elem, dims), n, nil
	default:
		return nil, pos, fmt.Errorf("%w %q: unexpected %q at %d", ErrBadDescriptor, desc, desc[pos], pos)
	}
}
