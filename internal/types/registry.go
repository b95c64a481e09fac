package types

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"fathom/internal/source"
)

// registrySeq hands out process-unique registry identities. The identity is
// what lets a TypeRef from one Registry fail safely in another.
var registrySeq atomic.Uint64

// Registry owns every type node for one debug-info module and guarantees
// they outlive all handles for the lifetime of the module. Nodes are created
// through the Register* API and are immutable after FinishAggregate, except
// for pre-finalization field and discriminant bookkeeping.
//
// A Registry is not safe for concurrent use; the embedding debugger
// serializes access per module.
type Registry struct {
	id      uint64
	strings *source.Interner
	ptrSize uint64

	nodes  []Type
	aggs   []AggregateInfo
	fns    []FnInfo
	clikes []CLikeEnumInfo
}

// NewRegistry constructs an empty registry with its own string interner.
func NewRegistry() *Registry {
	r := &Registry{
		id:      registrySeq.Add(1),
		strings: source.NewInterner(),
		ptrSize: 8,
	}
	// Reserve slot 0 of every table as an invalid sentinel.
	r.nodes = append(r.nodes, Type{})
	r.aggs = append(r.aggs, AggregateInfo{})
	r.fns = append(r.fns, FnInfo{})
	r.clikes = append(r.clikes, CLikeEnumInfo{})
	return r
}

// Strings returns the registry's string interner.
func (r *Registry) Strings() *source.Interner {
	return r.strings
}

// SetPointerByteSize records the target address size used for synthesized
// pointers and function values.
func (r *Registry) SetPointerByteSize(size uint64) {
	if r == nil || size == 0 {
		return
	}
	r.ptrSize = size
}

// PointerByteSize returns the configured target address size.
func (r *Registry) PointerByteSize() uint64 {
	if r == nil {
		return 0
	}
	return r.ptrSize
}

// Len returns the number of live nodes, the sentinel excluded.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nodes) - 1
}

// Ref rebuilds the handle for a node known to live in this registry.
// The zero ID yields an invalid handle.
func (r *Registry) Ref(id TypeID) TypeRef {
	if r == nil || id == NoTypeID || int(id) >= len(r.nodes) {
		return TypeRef{}
	}
	return TypeRef{owner: r.id, id: id}
}

// Owns reports whether the handle was issued by this registry.
func (r *Registry) Owns(ref TypeRef) bool {
	return r != nil && ref.owner == r.id && ref.id != NoTypeID && int(ref.id) < len(r.nodes)
}

// lookup resolves a handle to its descriptor, checking ownership first.
// Every dispatching operation goes through here (or node) so a foreign
// handle can never index into this arena.
func (r *Registry) lookup(ref TypeRef) (Type, bool) {
	if !r.Owns(ref) {
		return Type{}, false
	}
	return r.nodes[ref.id], true
}

// node resolves a handle to a mutable descriptor, or nil for foreign and
// invalid handles.
func (r *Registry) node(ref TypeRef) *Type {
	if !r.Owns(ref) {
		return nil
	}
	return &r.nodes[ref.id]
}

// newNode appends a descriptor to the arena. Register* calls never dedup:
// two structurally identical types created separately stay distinct nodes,
// because debug info identity is per-record, not structural.
func (r *Registry) newNode(t Type) TypeRef {
	lenNodes, err := safecast.Conv[uint32](len(r.nodes))
	if err != nil {
		panic(fmt.Errorf("type arena overflow: %w", err))
	}
	id := TypeID(lenNodes)
	r.nodes = append(r.nodes, t)
	return TypeRef{owner: r.id, id: id}
}

// Name returns the node's name, or "" for foreign/invalid handles.
func (r *Registry) Name(ref TypeRef) string {
	t, ok := r.lookup(ref)
	if !ok {
		return ""
	}
	s, _ := r.strings.Lookup(t.Name)
	return s
}

// KindOf returns the node's kind, or KindInvalid for foreign/invalid handles.
func (r *Registry) KindOf(ref TypeRef) Kind {
	t, ok := r.lookup(ref)
	if !ok {
		return KindInvalid
	}
	return t.Kind
}

// ByteSize returns the node's size in bytes. Arrays multiply out their
// element size; typedefs delegate to the aliased type.
func (r *Registry) ByteSize(ref TypeRef) uint64 {
	t, ok := r.lookup(ref)
	if !ok {
		return 0
	}
	switch t.Kind {
	case KindArray:
		return r.ByteSize(r.Ref(t.Elem)) * t.Length
	case KindTypedef:
		return r.ByteSize(r.Ref(t.Elem))
	case KindStruct, KindTuple, KindUnion, KindEnum:
		info := r.aggInfo(ref)
		if info == nil {
			return 0
		}
		return info.Size
	default:
		return t.Size
	}
}

// BitSize returns the node's size in bits.
func (r *Registry) BitSize(ref TypeRef) uint64 {
	return r.ByteSize(ref) * 8
}
