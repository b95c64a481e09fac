package types

// RegisterEnum allocates a tagged-enum node. Each field added later is one
// variant's payload type; discriminant values are recorded per field through
// AddField. discrOffset and discrByteSize locate the stored discriminant
// inside the enum's memory region.
func (r *Registry) RegisterEnum(name string, byteSize, discrOffset, discrByteSize uint64) TypeRef {
	slot := r.appendAggInfo(AggregateInfo{
		Size:          byteSize,
		DiscrOffset:   discrOffset,
		DiscrByteSize: discrByteSize,
	})
	return r.newNode(Type{
		Kind:    KindEnum,
		Name:    r.strings.Intern(name),
		Payload: slot,
	})
}

// recordDiscriminant binds a discriminant value (or the default marker) to
// the most recently added variant.
func (r *Registry) recordDiscriminant(info *AggregateInfo, isDefault bool, discriminant uint64) {
	idx := len(info.Fields) - 1
	if idx < 0 {
		return
	}
	if isDefault {
		info.Default = idx
		return
	}
	if info.Discriminants == nil {
		info.Discriminants = make(map[uint64]int, 4)
	}
	info.Discriminants[discriminant] = idx
}

// DiscriminantLocation returns where the enum stores its discriminant.
// Enums with fewer than two variants are assumed to have no stored
// discriminant at all, whatever offsets were configured.
func (r *Registry) DiscriminantLocation(ref TypeRef) (offset, byteSize uint64, ok bool) {
	if r.KindOf(ref) != KindEnum {
		return 0, 0, false
	}
	info := r.aggInfo(ref)
	if info == nil || len(info.Fields) < 2 {
		return 0, 0, false
	}
	return info.DiscrOffset, info.DiscrByteSize, true
}

// FindVariant maps a discriminant value read from memory to the matching
// variant's payload type. An unmatched value falls back to the default
// variant; with no default recorded the lookup fails. Bad debug info can
// produce both conditions, so this is an expected miss, not an error.
func (r *Registry) FindVariant(ref TypeRef, discriminant uint64) (TypeRef, bool) {
	if r.KindOf(ref) != KindEnum {
		return TypeRef{}, false
	}
	info := r.aggInfo(ref)
	if info == nil {
		return TypeRef{}, false
	}
	idx, found := info.Discriminants[discriminant]
	if !found {
		idx = info.Default
		if idx < 0 {
			return TypeRef{}, false
		}
	}
	if idx >= len(info.Fields) {
		return TypeRef{}, false
	}
	return r.Ref(info.Fields[idx].Type), true
}
