// Package dynamic resolves a value's runtime variant type from target
// memory. A tagged enum's static type says which variants exist; the stored
// discriminant says which one the value is right now.
package dynamic

import (
	"fmt"

	"fathom/internal/trace"
	"fathom/internal/types"
)

// MemoryReader reads unsigned integers from target memory. The debugger's
// process plugin provides the real one; tests substitute a map.
type MemoryReader interface {
	ReadUnsigned(addr uint64, byteSize uint64) (uint64, error)
}

// Value is the slice of a debugger value object the resolver needs: its
// static type and where it lives in the target.
type Value interface {
	TypeRef() types.TypeRef
	LoadAddress() (addr uint64, ok bool)
}

// Resolver maps values of enum type to their current variant. Every failure
// mode reports "no dynamic type"; resolution is advisory and the debugger
// falls back to the static type.
type Resolver struct {
	reg    *types.Registry
	mem    MemoryReader
	tracer trace.Tracer
}

// NewResolver constructs a resolver over one registry and one target's
// memory. tracer may be nil.
func NewResolver(reg *types.Registry, mem MemoryReader, tracer trace.Tracer) *Resolver {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Resolver{reg: reg, mem: mem, tracer: tracer}
}

// CouldHaveDynamicType reports whether resolution could possibly refine the
// value's type. Cheap, no memory access; used to skip the read entirely.
func (r *Resolver) CouldHaveDynamicType(v Value) bool {
	if r == nil || r.reg == nil || v == nil {
		return false
	}
	return r.reg.IsPossibleDynamicType(v.TypeRef())
}

// Resolve reads the value's discriminant and returns the matching variant's
// payload type together with the value's address. The payload shares the
// enum's address, so the returned address equals the value's own.
func (r *Resolver) Resolve(v Value) (types.TypeRef, uint64, bool) {
	if r == nil || r.reg == nil || r.mem == nil || v == nil {
		return types.TypeRef{}, 0, false
	}
	ref := v.TypeRef()
	if !r.reg.IsPossibleDynamicType(ref) {
		return types.TypeRef{}, 0, false
	}
	offset, byteSize, ok := r.reg.DiscriminantLocation(ref)
	if !ok {
		trace.Point(r.tracer, trace.LevelDetail, "resolve.skip", "no discriminant location")
		return types.TypeRef{}, 0, false
	}
	addr, ok := v.LoadAddress()
	if !ok {
		trace.Point(r.tracer, trace.LevelDetail, "resolve.skip", "value has no load address")
		return types.TypeRef{}, 0, false
	}
	discr, err := r.mem.ReadUnsigned(addr+offset, byteSize)
	if err != nil {
		trace.Point(r.tracer, trace.LevelDetail, "resolve.skip",
			fmt.Sprintf("discriminant read at 0x%x failed: %v", addr+offset, err))
		return types.TypeRef{}, 0, false
	}
	variant, ok := r.reg.FindVariant(ref, discr)
	if !ok {
		trace.Point(r.tracer, trace.LevelDetail, "resolve.skip",
			fmt.Sprintf("no variant for discriminant %d", discr))
		return types.TypeRef{}, 0, false
	}
	trace.Point(r.tracer, trace.LevelOp, "resolve",
		fmt.Sprintf("%s -> %s", r.reg.Name(ref), r.reg.Name(variant)))
	return variant, addr, true
}
