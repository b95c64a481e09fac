// Package cabi synthesizes C declarations for types, so the debugger's
// expression evaluator can compile snippets against a C view of the
// program's data. Aggregates become tagged struct definitions collected in
// a prelude; the declaration itself references the tag.
package cabi

import (
	"fmt"
	"strconv"
	"strings"

	"fathom/internal/types"
)

// TagMap assigns stable C tag names (tag0, tag1, ...) to aggregate nodes
// within one synthesis session and accumulates their definitions. One
// TagMap per expression; tags are meaningless across sessions.
type TagMap struct {
	reg     *types.Registry
	names   map[types.TypeRef]string
	counter int
	prelude strings.Builder
}

// NewTagMap creates an empty tag map over one registry.
func NewTagMap(reg *types.Registry) *TagMap {
	return &TagMap{
		reg:   reg,
		names: make(map[types.TypeRef]string),
	}
}

// Declare renders "TYPE varname" in C for the given type, recording any
// aggregate definitions the declaration needs in the prelude. Pass an empty
// varname for an abstract declarator.
func (m *TagMap) Declare(ref types.TypeRef, varname string) (string, error) {
	if m == nil || m.reg == nil {
		return "", fmt.Errorf("cabi: no registry")
	}
	if !m.reg.Owns(ref) {
		return "", fmt.Errorf("cabi: foreign or invalid type handle")
	}
	return m.declare(ref, varname)
}

// Prelude returns the accumulated aggregate definitions, one per line.
func (m *TagMap) Prelude() string {
	return m.prelude.String()
}

// tag returns the C tag for an aggregate, minting a fresh one on first
// sight. fresh tells the caller to emit the definition.
func (m *TagMap) tag(ref types.TypeRef) (name string, fresh bool) {
	if name, ok := m.names[ref]; ok {
		return name, false
	}
	name = "tag" + strconv.Itoa(m.counter)
	m.counter++
	m.names[ref] = name
	return name, true
}

func (m *TagMap) declare(ref types.TypeRef, varname string) (string, error) {
	r := m.reg
	switch r.KindOf(ref) {
	case types.KindBool:
		return "bool " + varname, nil

	case types.KindInt:
		// Clang predefines these width-exact spellings.
		signed, _ := r.IsInt(ref)
		spelling := "__INT"
		if !signed {
			spelling = "__UINT"
		}
		return fmt.Sprintf("%s%d_TYPE__ %s", spelling, r.BitSize(ref), varname), nil

	case types.KindFloat:
		if r.ByteSize(ref) == 4 {
			return "float " + varname, nil
		}
		return "double " + varname, nil

	case types.KindCLikeEnum:
		under, ok := r.CLikeUnderlying(ref)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing underlying type", r.Name(ref))
		}
		return m.declare(under, varname)

	case types.KindPointer:
		pointee, ok := r.Pointee(ref)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing pointee", r.Name(ref))
		}
		// A pointer to a function renders as the function's own
		// pointer declarator; adding another "*" would be wrong.
		if r.KindOf(pointee) == types.KindFn {
			return m.declare(pointee, varname)
		}
		inner, err := m.declare(pointee, "")
		if err != nil {
			return "", err
		}
		return inner + "* " + varname, nil

	case types.KindArray:
		elem, length, ok := r.ArrayInfo(ref)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing element type", r.Name(ref))
		}
		inner, err := m.declare(elem, varname)
		if err != nil {
			return "", err
		}
		return inner + "[" + strconv.FormatUint(length, 10) + "]", nil

	case types.KindTypedef:
		target, ok := r.TypedefTarget(ref)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing typedef target", r.Name(ref))
		}
		return m.declare(target, varname)

	case types.KindStruct, types.KindTuple:
		return m.declareAggregate(ref, "struct", varname, "")

	case types.KindUnion:
		return m.declareAggregate(ref, "union", varname, "")

	case types.KindEnum:
		// An enum lowers to a struct of its variants. When the
		// discriminant leads the layout it is a real hidden field and
		// gets emitted; anywhere else it lives in padding or overlays
		// a variant, and the C view omits it.
		extra := ""
		if off, size, ok := r.DiscriminantLocation(ref); ok && off == 0 {
			extra = fmt.Sprintf("int%d_t __discr; ", size*8)
		}
		return m.declareAggregate(ref, "struct", varname, extra)

	case types.KindFn:
		result, ok := r.FnResult(ref)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing result type", r.Name(ref))
		}
		ret, err := m.declare(result, "")
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteString(ret)
		sb.WriteString(" (*")
		sb.WriteString(varname)
		sb.WriteString(")(")
		n := r.NumFnParams(ref)
		for i := 0; i < n; i++ {
			param, ok := r.FnParamAt(ref, i)
			if !ok {
				return "", fmt.Errorf("cabi: %s: missing parameter %d", r.Name(ref), i)
			}
			arg, err := m.declare(param, "")
			if err != nil {
				return "", err
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg)
		}
		sb.WriteString(")")
		return sb.String(), nil

	default:
		return "", fmt.Errorf("cabi: cannot declare %s type %q", r.KindOf(ref), r.Name(ref))
	}
}

// declareAggregate renders the tag reference and, on first sight, appends
// the aggregate's definition to the prelude. extra is injected before the
// fields (the enum's hidden discriminant).
func (m *TagMap) declareAggregate(ref types.TypeRef, keyword, varname, extra string) (string, error) {
	tagname, fresh := m.tag(ref)
	if fresh {
		fields, err := m.declareFields(ref)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&m.prelude, "    %s %s{ %s%s};\n", keyword, tagname, extra, fields)
	}
	return tagname + " " + varname, nil
}

// declareFields renders "decl; decl; " for every field. Unnamed fields get
// positional __N names; named fields get a "_" prefix to dodge C keyword
// collisions.
func (m *TagMap) declareFields(ref types.TypeRef) (string, error) {
	var sb strings.Builder
	argno := 0
	n := m.reg.NumFields(ref)
	for i := 0; i < n; i++ {
		f, ok := m.reg.FieldAt(ref, i)
		if !ok {
			return "", fmt.Errorf("cabi: %s: missing field %d", m.reg.Name(ref), i)
		}
		name := f.Name
		if name == "" {
			name = "__" + strconv.Itoa(argno)
			argno++
		} else {
			name = "_" + name
		}
		decl, err := m.declare(f.Type, name)
		if err != nil {
			return "", err
		}
		sb.WriteString(decl)
		sb.WriteString("; ")
	}
	return sb.String(), nil
}
