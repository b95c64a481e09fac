package types

import (
	"fmt"

	"fortio.org/safecast"

	"fathom/internal/source"
)

// CLikeEnumInfo stores the side-table metadata for plain C-style enums,
// which are scalar values with names, not tagged sum types.
type CLikeEnumInfo struct {
	Underlying TypeID
	Values     map[uint64]source.StringID
}

// RegisterCLikeEnum allocates a C-style enum node over an integer
// underlying type. values maps each stored value to its variant name.
func (r *Registry) RegisterCLikeEnum(name string, underlying TypeRef, values map[uint64]string) TypeRef {
	if !r.Owns(underlying) {
		return TypeRef{}
	}
	interned := make(map[uint64]source.StringID, len(values))
	for v, n := range values {
		interned[v] = r.strings.Intern(n)
	}
	slot := r.appendCLikeInfo(CLikeEnumInfo{
		Underlying: underlying.id,
		Values:     interned,
	})
	return r.newNode(Type{
		Kind:    KindCLikeEnum,
		Name:    r.strings.Intern(name),
		Elem:    underlying.id,
		Payload: slot,
	})
}

// CLikeUnderlying returns the integer type backing a C-style enum.
func (r *Registry) CLikeUnderlying(ref TypeRef) (TypeRef, bool) {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindCLikeEnum {
		return TypeRef{}, false
	}
	return r.Ref(t.Elem), true
}

// CLikeValueName maps a stored enum value to its variant name.
func (r *Registry) CLikeValueName(ref TypeRef, value uint64) (string, bool) {
	info := r.clikeInfo(ref)
	if info == nil {
		return "", false
	}
	id, ok := info.Values[value]
	if !ok {
		return "", false
	}
	name, _ := r.strings.Lookup(id)
	return name, true
}

func (r *Registry) clikeInfo(ref TypeRef) *CLikeEnumInfo {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindCLikeEnum {
		return nil
	}
	if t.Payload == 0 || int(t.Payload) >= len(r.clikes) {
		return nil
	}
	return &r.clikes[t.Payload]
}

func (r *Registry) appendCLikeInfo(info CLikeEnumInfo) uint32 {
	r.clikes = append(r.clikes, info)
	slot, err := safecast.Conv[uint32](len(r.clikes) - 1)
	if err != nil {
		panic(fmt.Errorf("c-like enum info overflow: %w", err))
	}
	return slot
}
