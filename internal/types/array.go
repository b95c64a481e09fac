package types

import "fmt"

// RegisterArray allocates a fixed-length array node. The display name is
// synthesized from the element name; a zero length renders as a slice-style
// "[T]" name. An element owned by another registry yields an invalid handle.
func (r *Registry) RegisterArray(elem TypeRef, length uint64) TypeRef {
	if !r.Owns(elem) {
		return TypeRef{}
	}
	name := "[" + r.Name(elem)
	if length != 0 {
		name += fmt.Sprintf("; %d", length)
	}
	name += "]"
	return r.newNode(Type{
		Kind:   KindArray,
		Name:   r.strings.Intern(name),
		Elem:   elem.id,
		Length: length,
	})
}

// ArrayInfo returns the element type and length for array nodes.
func (r *Registry) ArrayInfo(ref TypeRef) (elem TypeRef, length uint64, ok bool) {
	t, found := r.lookup(ref)
	if !found || t.Kind != KindArray {
		return TypeRef{}, 0, false
	}
	return r.Ref(t.Elem), t.Length, true
}

// ArrayElem returns the element type and its stride in bytes.
func (r *Registry) ArrayElem(ref TypeRef) (elem TypeRef, stride uint64, ok bool) {
	elem, _, ok = r.ArrayInfo(ref)
	if !ok {
		return TypeRef{}, 0, false
	}
	return elem, r.ByteSize(elem), true
}
