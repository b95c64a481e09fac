package types

// RegisterPointer allocates a pointer node. References share this node kind;
// mutability is not tracked. A pointee owned by another registry yields an
// invalid handle.
func (r *Registry) RegisterPointer(name string, pointee TypeRef, byteSize uint64) TypeRef {
	if !r.Owns(pointee) {
		return TypeRef{}
	}
	return r.newNode(Type{
		Kind: KindPointer,
		Name: r.strings.Intern(name),
		Elem: pointee.id,
		Size: byteSize,
	})
}

// PointerTo synthesizes a raw pointer to the given node at the registry's
// configured address size. Used when the expression evaluator takes the
// address of a value.
func (r *Registry) PointerTo(ref TypeRef) TypeRef {
	if !r.Owns(ref) {
		return TypeRef{}
	}
	return r.RegisterPointer("*mut "+r.Name(ref), ref, r.ptrSize)
}

// Pointee returns the pointed-to type for pointer nodes.
func (r *Registry) Pointee(ref TypeRef) (TypeRef, bool) {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindPointer {
		return TypeRef{}, false
	}
	return r.Ref(t.Elem), true
}
