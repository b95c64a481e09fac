package types

// IsAggregate reports whether the node has structure worth expanding:
// structs, tuples, unions, enums and arrays.
func (r *Registry) IsAggregate(ref TypeRef) bool {
	switch r.KindOf(ref) {
	case KindStruct, KindTuple, KindUnion, KindEnum, KindArray:
		return true
	default:
		return false
	}
}

// IsScalar is the complement of IsAggregate over valid handles.
func (r *Registry) IsScalar(ref TypeRef) bool {
	if _, ok := r.lookup(ref); !ok {
		return false
	}
	return !r.IsAggregate(ref)
}

// IsPointer reports pointer nodes (references included).
func (r *Registry) IsPointer(ref TypeRef) bool {
	return r.KindOf(ref) == KindPointer
}

// IsFnPointer reports pointers whose pointee is a function type.
func (r *Registry) IsFnPointer(ref TypeRef) bool {
	pointee, ok := r.Pointee(ref)
	return ok && r.KindOf(pointee) == KindFn
}

// IsArray reports array nodes.
func (r *Registry) IsArray(ref TypeRef) bool {
	return r.KindOf(ref) == KindArray
}

// IsFn reports function type nodes.
func (r *Registry) IsFn(ref TypeRef) bool {
	return r.KindOf(ref) == KindFn
}

// IsTypedef reports alias nodes.
func (r *Registry) IsTypedef(ref TypeRef) bool {
	return r.KindOf(ref) == KindTypedef
}

// IsBool reports boolean nodes.
func (r *Registry) IsBool(ref TypeRef) bool {
	return r.KindOf(ref) == KindBool
}

// IsInt reports integer nodes and their signedness.
func (r *Registry) IsInt(ref TypeRef) (signed bool, ok bool) {
	t, found := r.lookup(ref)
	if !found || t.Kind != KindInt {
		return false, false
	}
	return t.Signed, true
}

// IsChar reports integer nodes displayed as unicode code points.
func (r *Registry) IsChar(ref TypeRef) bool {
	t, ok := r.lookup(ref)
	return ok && t.Kind == KindInt && t.Char
}

// IsFloat reports floating-point nodes.
func (r *Registry) IsFloat(ref TypeRef) bool {
	return r.KindOf(ref) == KindFloat
}

// IsTuple reports tuple and tuple-struct nodes.
func (r *Registry) IsTuple(ref TypeRef) bool {
	return r.KindOf(ref) == KindTuple
}

// IsEnum reports tagged-enum nodes.
func (r *Registry) IsEnum(ref TypeRef) bool {
	return r.KindOf(ref) == KindEnum
}

// IsVoid reports the unit type: exactly a zero-field tuple named "()".
// A struct forced to carry that name is not void; only the tuple variant
// with the empty field list qualifies.
func (r *Registry) IsVoid(ref TypeRef) bool {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindTuple {
		return false
	}
	name, _ := r.strings.Lookup(t.Name)
	return name == "()" && r.NumFields(ref) == 0
}

// IsPossibleDynamicType reports whether the value's runtime type may differ
// from its static type. Only tagged enums qualify; trait object pointers
// would too, once supported.
func (r *Registry) IsPossibleDynamicType(ref TypeRef) bool {
	return r.KindOf(ref) == KindEnum
}
