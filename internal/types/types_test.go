package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicTypeFor(t *testing.T) {
	for tag := TBoolean; tag <= TVoid; tag++ {
		bt, err := BasicTypeFor(tag)
		require.NoError(t, err)
		require.Equal(t, tag, bt.Tag())

		again, _ := BasicTypeFor(tag)
		require.Same(t, bt, again, "basic types must be singletons")
	}

	for _, tag := range []Tag{0, 3, TArray, TObject, TAddress, 200} {
		_, err := BasicTypeFor(tag)
		require.True(t, errors.Is(err, ErrInvalidType), "tag %d", tag)
	}
}

func TestTypeSize(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{Int, 1},
		{Long, 2},
		{Double, 2},
		{Void, 0},
		{Boolean, 1},
		{String, 1},
		{NewArrayType(Long, 2), 1},
		{NewReturnAddressType(7), 1},
	}
	for _, tt := range tests {
		if got := tt.typ.Size(); got != tt.want {
			t.Errorf("%s.Size() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTypeEquality(t *testing.T) {
	require.True(t, Equal(NewObjectType("java.lang.String"), String))
	require.False(t, Equal(NewObjectType("java/lang/Integer"), String))

	require.True(t, Equal(NewArrayType(Int, 2), NewArrayType(NewArrayType(Int, 1), 1)))
	require.False(t, Equal(NewArrayType(Int, 2), NewArrayType(Int, 1)))
	require.False(t, Equal(NewArrayType(Int, 1), NewArrayType(Long, 1)))

	require.True(t, Equal(NewReturnAddressType(3), NewReturnAddressType(3)))
	require.False(t, Equal(NewReturnAddressType(3), NewReturnAddressType(4)))
	require.True(t, Equal(NewReturnAddressType(0), NewReturnAddressType(0)))
	require.False(t, Equal(NewReturnAddressType(0), NewReturnAddressType(4)))

	require.False(t, Equal(Int, Long))
	require.False(t, Equal(Int, nil))
}

func TestArrayComponent(t *testing.T) {
	at := NewArrayType(String, 3)
	require.Equal(t, "[[[Ljava/lang/String;", at.Signature())
	require.Equal(t, "[[Ljava/lang/String;", at.ComponentType().Signature())
	require.Equal(t, "java.lang.String[][][]", at.String())

	one := NewArrayType(Int, 1)
	require.Same(t, Int, one.ComponentType())
}

func TestTypeFromDescriptor(t *testing.T) {
	tests := []struct {
		desc string
		want Type
	}{
		{"I", Int},
		{"J", Long},
		{"Ljava/lang/Object;", Object},
		{"[[D", NewArrayType(Double, 2)},
		{"[Ljava/util/List;", NewArrayType(NewObjectType("java/util/List"), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := TypeFromDescriptor(tt.desc)
			require.NoError(t, err)
			require.True(t, Equal(tt.want, got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "Q", "L;", "Ljava/lang/Object", "II", "[V"} {
		_, err := TypeFromDescriptor(bad)
		require.Error(t, err, "descriptor %q", bad)
		require.True(t, errors.Is(err, ErrInvalidType))
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	md, err := ParseMethodDescriptor("(IJLjava/lang/String;[D)V")
	require.NoError(t, err)
	require.Len(t, md.Args, 4)
	require.Equal(t, 1+2+1+1, md.ArgWords)
	require.Same(t, Void, md.Return)

	cached, err := ParseMethodDescriptor("(IJLjava/lang/String;[D)V")
	require.NoError(t, err)
	require.Same(t, md, cached)

	words, err := ArgumentWords("()J")
	require.NoError(t, err)
	require.Zero(t, words)

	ret, err := ReturnType("()J")
	require.NoError(t, err)
	require.Same(t, Long, ret)

	require.Equal(t, "(ILjava/lang/String;)Z", MethodSignature(Boolean, Int, String))

	for _, bad := range []string{"V", "(V)V", "(I", "(I)", "(I)VV"} {
		_, err := ParseMethodDescriptor(bad)
		require.Error(t, err, "descriptor %q", bad)
	}
}
