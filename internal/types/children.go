package types

import "fmt"

// NumChildren returns how many children the variable view shows for a type.
// Pointers report their pointee's children, except that a pointer to a
// scalar reports one child, so expanding a pointer always shows something.
func (r *Registry) NumChildren(ref TypeRef) int {
	t, ok := r.lookup(ref)
	if !ok {
		return 0
	}
	switch t.Kind {
	case KindPointer:
		n := r.NumChildren(r.Ref(t.Elem))
		if n == 0 {
			n = 1
		}
		return n
	case KindArray:
		return int(t.Length)
	case KindTypedef:
		return r.NumChildren(r.Ref(t.Elem))
	case KindStruct, KindTuple, KindUnion, KindEnum:
		return r.NumFields(ref)
	default:
		return 0
	}
}

// ChildAt resolves the idx-th child of a type. Aggregates return their
// fields, arrays synthesize "[i]" elements, typedefs delegate, and pointers
// either flatten into an aggregate pointee (transparent traversal) or
// synthesize the single "*name" dereference child. Sizes and offsets always
// describe the resolved concrete element.
func (r *Registry) ChildAt(ref TypeRef, idx int, opts ChildOptions) (Child, bool) {
	t, ok := r.lookup(ref)
	if !ok || idx < 0 {
		return Child{}, false
	}
	switch t.Kind {
	case KindStruct, KindTuple, KindUnion, KindEnum:
		f, found := r.FieldAt(ref, idx)
		if !found {
			return Child{}, false
		}
		return Child{
			Name:       f.Name,
			Type:       f.Type,
			ByteSize:   r.ByteSize(f.Type),
			ByteOffset: f.ByteOffset,
		}, true
	case KindPointer:
		pointee := r.Ref(t.Elem)
		if !pointee.IsValid() || r.IsVoid(pointee) {
			return Child{}, false
		}
		if opts.TransparentPointers && r.IsAggregate(pointee) {
			child, found := r.ChildAt(pointee, idx, opts)
			if !found {
				return Child{}, false
			}
			// One level of pointer flattening; the child itself is not a
			// dereference from the reader's point of view.
			child.DerefOfParent = false
			return child, true
		}
		if idx != 0 {
			return Child{}, false
		}
		name := ""
		if opts.ParentName != "" {
			name = "*" + opts.ParentName
		}
		return Child{
			Name:          name,
			Type:          pointee,
			ByteSize:      r.ByteSize(pointee),
			ByteOffset:    0,
			DerefOfParent: true,
		}, true
	case KindArray:
		if !opts.IgnoreArrayBounds && uint64(idx) >= t.Length {
			return Child{}, false
		}
		elem, stride, found := r.ArrayElem(ref)
		if !found {
			return Child{}, false
		}
		return Child{
			Name:       fmt.Sprintf("[%d]", idx),
			Type:       elem,
			ByteSize:   stride,
			ByteOffset: uint64(idx) * stride,
		}, true
	case KindTypedef:
		return r.ChildAt(r.Ref(t.Elem), idx, opts)
	default:
		return Child{}, false
	}
}

// IndexOfChildNamed scans an aggregate's fields for an exact name match.
// Pointers delegate into their pointee. A miss is reported, never raised.
func (r *Registry) IndexOfChildNamed(ref TypeRef, name string) (int, bool) {
	t, ok := r.lookup(ref)
	if !ok {
		return 0, false
	}
	switch t.Kind {
	case KindStruct, KindTuple, KindUnion, KindEnum:
		info := r.aggInfo(ref)
		if info == nil {
			return 0, false
		}
		for i, f := range info.Fields {
			fname, _ := r.strings.Lookup(f.Name)
			if fname == name {
				return i, true
			}
		}
		return 0, false
	case KindPointer:
		return r.IndexOfChildNamed(r.Ref(t.Elem), name)
	default:
		return 0, false
	}
}
