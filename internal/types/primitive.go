package types

import "fmt"

// RegisterBool allocates a boolean node. Booleans are always one byte.
func (r *Registry) RegisterBool(name string) TypeRef {
	return r.newNode(Type{
		Kind: KindBool,
		Name: r.strings.Intern(name),
		Size: 1,
	})
}

// RegisterInt allocates an integer node of the given byte size.
func (r *Registry) RegisterInt(name string, signed bool, byteSize uint64) TypeRef {
	return r.newNode(Type{
		Kind:   KindInt,
		Name:   r.strings.Intern(name),
		Size:   byteSize,
		Signed: signed,
	})
}

// RegisterIntrinsicInt allocates an integer node with the source language's
// intrinsic spelling (i8..i64, u8..u64) derived from signedness and width.
func (r *Registry) RegisterIntrinsicInt(signed bool, byteSize uint64) TypeRef {
	prefix := "u"
	if signed {
		prefix = "i"
	}
	return r.RegisterInt(fmt.Sprintf("%s%d", prefix, byteSize*8), signed, byteSize)
}

// RegisterChar allocates the 4-byte unsigned "char" node, formatted as a
// unicode code point rather than a raw integer.
func (r *Registry) RegisterChar() TypeRef {
	return r.newNode(Type{
		Kind: KindInt,
		Name: r.strings.Intern("char"),
		Size: 4,
		Char: true,
	})
}

// RegisterFloat allocates a floating-point node.
func (r *Registry) RegisterFloat(name string, byteSize uint64) TypeRef {
	return r.newNode(Type{
		Kind: KindFloat,
		Name: r.strings.Intern(name),
		Size: byteSize,
	})
}

// RegisterVoid allocates the unit type: an empty tuple named "()".
// Void detection requires exactly this shape, see IsVoid.
func (r *Registry) RegisterVoid() TypeRef {
	ref := r.RegisterTuple("()", 0, false)
	r.FinishAggregate(ref)
	return ref
}
