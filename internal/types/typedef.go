package types

// RegisterTypedef allocates an alias node for an existing type.
func (r *Registry) RegisterTypedef(name string, target TypeRef) TypeRef {
	if !r.Owns(target) {
		return TypeRef{}
	}
	return r.newNode(Type{
		Kind: KindTypedef,
		Name: r.strings.Intern(name),
		Elem: target.id,
	})
}

// TypedefTarget returns the aliased type for typedef nodes.
func (r *Registry) TypedefTarget(ref TypeRef) (TypeRef, bool) {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindTypedef {
		return TypeRef{}, false
	}
	return r.Ref(t.Elem), true
}

// Canonical strips typedef nodes, returning the underlying type.
func (r *Registry) Canonical(ref TypeRef) TypeRef {
	for {
		target, ok := r.TypedefTarget(ref)
		if !ok {
			return ref
		}
		ref = target
	}
}
