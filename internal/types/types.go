package types

import (
	"fmt"

	"fathom/internal/source"
)

// TypeID uniquely identifies a type node inside its owning Registry.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of type nodes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindStruct
	KindTuple
	KindUnion
	KindEnum
	KindCLikeEnum
	KindFn
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindCLikeEnum:
		return "c-like enum"
	case KindFn:
		return "fn"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for one node in the registry arena.
// Aggregates, functions and C-like enums keep their bulkier metadata in
// per-kind side tables addressed by Payload.
type Type struct {
	Kind    Kind
	Name    source.StringID
	Elem    TypeID // pointee, array element, typedef target, C-like underlying
	Length  uint64 // array element count
	Size    uint64 // byte size, where the kind carries one directly
	Signed  bool   // integers
	Char    bool   // integers displayed as unicode code points
	Payload uint32 // slot in the side table for the kind
}

// TypeRef is an opaque handle to a node in a specific Registry.
// The zero TypeRef is invalid. Handles from one Registry fail safely when
// passed to another.
type TypeRef struct {
	owner uint64
	id    TypeID
}

// IsValid reports whether the handle refers to some registry's node.
// It does not prove the node exists; dispatching operations re-check.
func (r TypeRef) IsValid() bool {
	return r.owner != 0 && r.id != NoTypeID
}

// Field describes a single field inside an aggregate node.
type Field struct {
	Name   source.StringID
	Type   TypeID
	Offset uint64
}

// FieldInfo is the externally visible view of a field.
type FieldInfo struct {
	Name       string
	Type       TypeRef
	ByteOffset uint64
}

// Child is the resolved view of one expansion step over a type:
// an aggregate field, a synthesized array element, or a pointer dereference.
// Offsets and sizes describe the resolved concrete element.
type Child struct {
	Name          string
	Type          TypeRef
	ByteSize      uint64
	ByteOffset    uint64
	DerefOfParent bool
}

// ChildOptions controls ChildAt traversal.
type ChildOptions struct {
	// TransparentPointers flattens pointer-to-aggregate navigation one level.
	TransparentPointers bool
	// IgnoreArrayBounds permits indexes beyond the array length.
	IgnoreArrayBounds bool
	// ParentName is used to synthesize the "*name" dereference child.
	ParentName string
}
