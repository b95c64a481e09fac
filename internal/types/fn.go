package types

import (
	"fmt"

	"fortio.org/safecast"
)

// FnInfo stores function type metadata.
type FnInfo struct {
	Result   TypeID
	Params   []TypeID
	TypeArgs []TypeID
}

// RegisterFn allocates a function type node. Function values occupy one
// target address, so the node's size is the configured pointer size.
// Handles owned by another registry invalidate the whole node.
func (r *Registry) RegisterFn(name string, result TypeRef, params []TypeRef, typeArgs []TypeRef) TypeRef {
	if !r.Owns(result) {
		return TypeRef{}
	}
	info := FnInfo{Result: result.id}
	for _, p := range params {
		if !r.Owns(p) {
			return TypeRef{}
		}
		info.Params = append(info.Params, p.id)
	}
	for _, a := range typeArgs {
		if !r.Owns(a) {
			return TypeRef{}
		}
		info.TypeArgs = append(info.TypeArgs, a.id)
	}
	slot := r.appendFnInfo(info)
	return r.newNode(Type{
		Kind:    KindFn,
		Name:    r.strings.Intern(name),
		Size:    r.ptrSize,
		Payload: slot,
	})
}

// FnResult returns a function node's return type.
func (r *Registry) FnResult(ref TypeRef) (TypeRef, bool) {
	info := r.fnInfo(ref)
	if info == nil {
		return TypeRef{}, false
	}
	return r.Ref(info.Result), true
}

// NumFnParams returns the parameter count, or -1 for non-function nodes,
// matching the "no prototype" convention of debugger type queries.
func (r *Registry) NumFnParams(ref TypeRef) int {
	info := r.fnInfo(ref)
	if info == nil {
		return -1
	}
	return len(info.Params)
}

// FnParamAt returns the idx-th parameter type.
func (r *Registry) FnParamAt(ref TypeRef, idx int) (TypeRef, bool) {
	info := r.fnInfo(ref)
	if info == nil || idx < 0 || idx >= len(info.Params) {
		return TypeRef{}, false
	}
	return r.Ref(info.Params[idx]), true
}

func (r *Registry) fnInfo(ref TypeRef) *FnInfo {
	t, ok := r.lookup(ref)
	if !ok || t.Kind != KindFn {
		return nil
	}
	if t.Payload == 0 || int(t.Payload) >= len(r.fns) {
		return nil
	}
	return &r.fns[t.Payload]
}

func (r *Registry) appendFnInfo(info FnInfo) uint32 {
	r.fns = append(r.fns, info)
	slot, err := safecast.Conv[uint32](len(r.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}
