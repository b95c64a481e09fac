package types

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// AggregateInfo stores the side-table metadata shared by struct, tuple,
// union and enum nodes.
type AggregateInfo struct {
	Size            uint64
	Fields          []Field
	TypeArgs        []TypeID
	HasDiscriminant bool
	Finalized       bool

	// Enum only.
	DiscrOffset   uint64
	DiscrByteSize uint64
	Discriminants map[uint64]int
	Default       int // field index of the catch-all variant, -1 when absent
}

// RegisterStruct allocates a named struct node. hasDiscriminant marks a
// variant payload whose leading field is the (redundant) discriminant; it is
// dropped when the enclosing enum is finalized.
func (r *Registry) RegisterStruct(name string, byteSize uint64, hasDiscriminant bool) TypeRef {
	slot := r.appendAggInfo(AggregateInfo{Size: byteSize, HasDiscriminant: hasDiscriminant})
	return r.newNode(Type{
		Kind:    KindStruct,
		Name:    r.strings.Intern(name),
		Payload: slot,
	})
}

// RegisterTuple allocates a tuple or tuple-struct node. The two are told
// apart purely by name: an empty or "("-prefixed name is a plain tuple.
func (r *Registry) RegisterTuple(name string, byteSize uint64, hasDiscriminant bool) TypeRef {
	slot := r.appendAggInfo(AggregateInfo{Size: byteSize, HasDiscriminant: hasDiscriminant})
	return r.newNode(Type{
		Kind:    KindTuple,
		Name:    r.strings.Intern(name),
		Payload: slot,
	})
}

// RegisterUnion allocates a C-style union node. Unions carry no discriminant.
func (r *Registry) RegisterUnion(name string, byteSize uint64) TypeRef {
	slot := r.appendAggInfo(AggregateInfo{Size: byteSize})
	return r.newNode(Type{
		Kind:    KindUnion,
		Name:    r.strings.Intern(name),
		Payload: slot,
	})
}

// AddField appends a field to an aggregate before finalization. For enum
// nodes the discriminant value (or default marker) is recorded against the
// field just added. Foreign handles and non-aggregates are ignored, as are
// already-finalized aggregates.
func (r *Registry) AddField(agg TypeRef, name string, field TypeRef, byteOffset uint64, isDefault bool, discriminant uint64) {
	info := r.aggInfo(agg)
	if info == nil || info.Finalized || !r.Owns(field) {
		return
	}
	info.Fields = append(info.Fields, Field{
		Name:   r.strings.Intern(name),
		Type:   field.id,
		Offset: byteOffset,
	})
	if r.KindOf(agg) == KindEnum {
		r.recordDiscriminant(info, isDefault, discriminant)
	}
}

// AddTypeArg appends a generic type argument to an aggregate node.
func (r *Registry) AddTypeArg(agg TypeRef, arg TypeRef) {
	info := r.aggInfo(agg)
	if info == nil || !r.Owns(arg) {
		return
	}
	info.TypeArgs = append(info.TypeArgs, arg.id)
}

// FinishAggregate seals an aggregate after all fields are added. For enum
// nodes every aggregate variant payload has its redundant discriminant field
// dropped. Calling it again on a finalized aggregate is a no-op.
func (r *Registry) FinishAggregate(ref TypeRef) {
	info := r.aggInfo(ref)
	if info == nil || info.Finalized {
		return
	}
	info.Finalized = true
	if r.KindOf(ref) != KindEnum {
		return
	}
	for _, f := range info.Fields {
		r.dropDiscriminant(r.Ref(f.Type))
	}
}

// dropDiscriminant removes the leading discriminant field from a variant
// payload. With the old-style enum encoding every payload repeats the
// discriminant at offset 0; once the enum has recorded its location the
// copies are redundant. Tuple payloads renumber their remaining slots.
func (r *Registry) dropDiscriminant(ref TypeRef) {
	info := r.aggInfo(ref)
	if info == nil || !info.HasDiscriminant {
		return
	}
	info.HasDiscriminant = false
	if len(info.Fields) > 0 {
		info.Fields = info.Fields[1:]
	}
	if r.KindOf(ref) == KindTuple {
		for i := range info.Fields {
			info.Fields[i].Name = r.strings.Intern(strconv.Itoa(i))
		}
	}
}

// HasDiscriminant reports whether an aggregate still carries its leading
// discriminant field.
func (r *Registry) HasDiscriminant(ref TypeRef) bool {
	info := r.aggInfo(ref)
	return info != nil && info.HasDiscriminant
}

// NumFields returns the field count of an aggregate. Typedefs delegate to
// the aliased type; every other kind reports zero.
func (r *Registry) NumFields(ref TypeRef) int {
	if target, ok := r.TypedefTarget(ref); ok {
		return r.NumFields(target)
	}
	info := r.aggInfo(ref)
	if info == nil {
		return 0
	}
	return len(info.Fields)
}

// FieldAt returns the idx-th field of an aggregate. Typedefs delegate.
func (r *Registry) FieldAt(ref TypeRef, idx int) (FieldInfo, bool) {
	if target, ok := r.TypedefTarget(ref); ok {
		return r.FieldAt(target, idx)
	}
	info := r.aggInfo(ref)
	if info == nil || idx < 0 || idx >= len(info.Fields) {
		return FieldInfo{}, false
	}
	f := info.Fields[idx]
	name, _ := r.strings.Lookup(f.Name)
	return FieldInfo{
		Name:       name,
		Type:       r.Ref(f.Type),
		ByteOffset: f.Offset,
	}, true
}

// NumTypeArgs returns the number of generic type arguments carried by an
// aggregate or function node.
func (r *Registry) NumTypeArgs(ref TypeRef) int {
	if info := r.aggInfo(ref); info != nil {
		return len(info.TypeArgs)
	}
	if info := r.fnInfo(ref); info != nil {
		return len(info.TypeArgs)
	}
	return 0
}

// TypeArgAt returns the idx-th generic type argument. Unlike the count-then-
// index convention elsewhere in debugger plugins, out-of-range indexes are a
// checked failure here, not undefined behavior.
func (r *Registry) TypeArgAt(ref TypeRef, idx int) (TypeRef, bool) {
	var args []TypeID
	if info := r.aggInfo(ref); info != nil {
		args = info.TypeArgs
	} else if info := r.fnInfo(ref); info != nil {
		args = info.TypeArgs
	}
	if idx < 0 || idx >= len(args) {
		return TypeRef{}, false
	}
	return r.Ref(args[idx]), true
}

// aggInfo resolves a handle to its aggregate side-table entry, or nil when
// the handle is foreign, invalid, or not an aggregate.
func (r *Registry) aggInfo(ref TypeRef) *AggregateInfo {
	t, ok := r.lookup(ref)
	if !ok {
		return nil
	}
	switch t.Kind {
	case KindStruct, KindTuple, KindUnion, KindEnum:
	default:
		return nil
	}
	if t.Payload == 0 || int(t.Payload) >= len(r.aggs) {
		return nil
	}
	return &r.aggs[t.Payload]
}

func (r *Registry) appendAggInfo(info AggregateInfo) uint32 {
	info.Default = -1
	r.aggs = append(r.aggs, info)
	slot, err := safecast.Conv[uint32](len(r.aggs) - 1)
	if err != nil {
		panic(fmt.Errorf("aggregate info overflow: %w", err))
	}
	return slot
}
