// Package loader builds a type registry and declaration tree from a TOML
// manifest. The manifest is the textual stand-in for the debug-info decoder
// collaborator: each entry mirrors one construction call the decoder would
// make against the registry.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"fathom/internal/decl"
	"fathom/internal/trace"
	"fathom/internal/types"
)

// Manifest is the decoded TOML type-graph description.
type Manifest struct {
	PointerSize uint64      `toml:"pointer_size" msgpack:"pointer_size"`
	Types       []TypeEntry `toml:"types" msgpack:"types"`
	Decls       []DeclEntry `toml:"decls" msgpack:"decls"`
}

// TypeEntry describes one type node. ID is manifest-local and referenced by
// other entries; Kind selects which of the remaining fields apply.
type TypeEntry struct {
	ID   string `toml:"id" msgpack:"id"`
	Kind string `toml:"kind" msgpack:"kind"`
	Name string `toml:"name" msgpack:"name"`
	Size uint64 `toml:"size" msgpack:"size"`

	Signed bool   `toml:"signed" msgpack:"signed"`
	Elem   string `toml:"elem" msgpack:"elem"`     // pointee, element, target, underlying
	Length uint64 `toml:"length" msgpack:"length"` // arrays

	Result   string   `toml:"result" msgpack:"result"` // functions
	Params   []string `toml:"params" msgpack:"params"`
	TypeArgs []string `toml:"type_args" msgpack:"type_args"`

	Discriminated bool   `toml:"discriminated" msgpack:"discriminated"` // variant payloads
	DiscrOffset   uint64 `toml:"discr_offset" msgpack:"discr_offset"`   // enums
	DiscrSize     uint64 `toml:"discr_size" msgpack:"discr_size"`

	Values map[string]string `toml:"values" msgpack:"values"` // c-like enums: value -> name

	Fields []FieldEntry `toml:"fields" msgpack:"fields"`
}

// FieldEntry describes one aggregate field or enum variant.
type FieldEntry struct {
	Name         string `toml:"name" msgpack:"name"`
	Type         string `toml:"type" msgpack:"type"`
	Offset       uint64 `toml:"offset" msgpack:"offset"`
	Default      bool   `toml:"default" msgpack:"default"`
	Discriminant uint64 `toml:"discriminant" msgpack:"discriminant"`
}

// DeclEntry describes a namespace path and, optionally, a function
// declaration inside it.
type DeclEntry struct {
	Path    string `toml:"path" msgpack:"path"` // "::"-separated namespaces
	Name    string `toml:"name" msgpack:"name"` // function name, empty for a bare namespace
	Mangled string `toml:"mangled" msgpack:"mangled"`
}

// Module is a fully constructed debug-info module.
type Module struct {
	Registry *types.Registry
	Decls    *decl.Tree

	// ByID maps manifest-local type ids to their handles.
	ByID map[string]types.TypeRef
}

// Load reads and builds a module from a manifest file.
func Load(path string, tracer trace.Tracer) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	mod, err := Build(m, tracer)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return mod, nil
}

// Parse decodes manifest TOML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return &m, nil
}

// Build constructs the registry and declaration tree from a parsed
// manifest. Construction is multi-pass: shell nodes first, then derived
// nodes to a fixpoint, then fields and finalization, so entry order in the
// manifest does not matter.
func Build(m *Manifest, tracer trace.Tracer) (*Module, error) {
	if tracer == nil {
		tracer = trace.Nop
	}
	reg := types.NewRegistry()
	if m.PointerSize != 0 {
		reg.SetPointerByteSize(m.PointerSize)
	}
	byID := make(map[string]types.TypeRef, len(m.Types))
	seen := make(map[string]bool, len(m.Types))

	// Pass 1: nodes with no type references.
	for i := range m.Types {
		e := &m.Types[i]
		if e.ID == "" {
			return nil, fmt.Errorf("types[%d]: missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("types[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
		ref, selfContained, err := registerShell(reg, e)
		if err != nil {
			return nil, err
		}
		if selfContained {
			byID[e.ID] = ref
		}
	}

	// Pass 2: derived nodes, iterated until nothing new resolves.
	// Pointer chains of any depth settle in as many rounds as they are deep.
	pending := make([]*TypeEntry, 0)
	for i := range m.Types {
		if _, done := byID[m.Types[i].ID]; !done {
			pending = append(pending, &m.Types[i])
		}
	}
	for len(pending) > 0 {
		progressed := false
		next := pending[:0]
		for _, e := range pending {
			ref, ok, err := registerDerived(reg, byID, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				next = append(next, e)
				continue
			}
			byID[e.ID] = ref
			progressed = true
		}
		if !progressed {
			ids := make([]string, len(next))
			for i, e := range next {
				ids[i] = e.ID
			}
			return nil, fmt.Errorf("unresolvable type references: %s", strings.Join(ids, ", "))
		}
		pending = next
	}

	// Pass 3: fields, type arguments, finalization.
	for i := range m.Types {
		e := &m.Types[i]
		ref := byID[e.ID]
		for j, f := range e.Fields {
			ft, ok := byID[f.Type]
			if !ok {
				return nil, fmt.Errorf("type %q: fields[%d]: unknown type %q", e.ID, j, f.Type)
			}
			reg.AddField(ref, f.Name, ft, f.Offset, f.Default, f.Discriminant)
		}
		for j, a := range e.TypeArgs {
			at, ok := byID[a]
			if !ok {
				return nil, fmt.Errorf("type %q: type_args[%d]: unknown type %q", e.ID, j, a)
			}
			reg.AddTypeArg(ref, at)
		}
	}
	// Finalize enums first so their payloads drop discriminants before the
	// payloads themselves are sealed.
	for i := range m.Types {
		if m.Types[i].Kind == "enum" {
			reg.FinishAggregate(byID[m.Types[i].ID])
		}
	}
	for i := range m.Types {
		reg.FinishAggregate(byID[m.Types[i].ID])
	}

	tree, err := buildDecls(reg, m.Decls)
	if err != nil {
		return nil, err
	}

	trace.Point(tracer, trace.LevelOp, "load",
		fmt.Sprintf("%d types, %d decls", reg.Len(), tree.Len()))
	return &Module{Registry: reg, Decls: tree, ByID: byID}, nil
}

// registerShell creates nodes whose construction needs no other handles.
// Aggregate shells are created here too; their fields arrive in pass 3.
func registerShell(reg *types.Registry, e *TypeEntry) (types.TypeRef, bool, error) {
	switch e.Kind {
	case "bool":
		return reg.RegisterBool(nonEmpty(e.Name, "bool")), true, nil
	case "int":
		if e.Name == "" {
			return reg.RegisterIntrinsicInt(e.Signed, e.Size), true, nil
		}
		return reg.RegisterInt(e.Name, e.Signed, e.Size), true, nil
	case "char":
		return reg.RegisterChar(), true, nil
	case "float":
		return reg.RegisterFloat(nonEmpty(e.Name, "f"+strconv.FormatUint(e.Size*8, 10)), e.Size), true, nil
	case "void":
		return reg.RegisterVoid(), true, nil
	case "struct":
		return reg.RegisterStruct(e.Name, e.Size, e.Discriminated), true, nil
	case "tuple":
		return reg.RegisterTuple(e.Name, e.Size, e.Discriminated), true, nil
	case "union":
		return reg.RegisterUnion(e.Name, e.Size), true, nil
	case "enum":
		return reg.RegisterEnum(e.Name, e.Size, e.DiscrOffset, e.DiscrSize), true, nil
	case "pointer", "array", "typedef", "clike-enum", "fn":
		return types.TypeRef{}, false, nil
	default:
		return types.TypeRef{}, false, fmt.Errorf("type %q: unknown kind %q", e.ID, e.Kind)
	}
}

// registerDerived creates nodes referencing other nodes. ok=false means a
// referent is not registered yet; the caller retries next round.
func registerDerived(reg *types.Registry, byID map[string]types.TypeRef, e *TypeEntry) (types.TypeRef, bool, error) {
	switch e.Kind {
	case "pointer":
		elem, ok := byID[e.Elem]
		if !ok {
			return types.TypeRef{}, false, nil
		}
		size := e.Size
		if size == 0 {
			size = reg.PointerByteSize()
		}
		return reg.RegisterPointer(e.Name, elem, size), true, nil

	case "array":
		elem, ok := byID[e.Elem]
		if !ok {
			return types.TypeRef{}, false, nil
		}
		return reg.RegisterArray(elem, e.Length), true, nil

	case "typedef":
		target, ok := byID[e.Elem]
		if !ok {
			return types.TypeRef{}, false, nil
		}
		return reg.RegisterTypedef(e.Name, target), true, nil

	case "clike-enum":
		under, ok := byID[e.Elem]
		if !ok {
			return types.TypeRef{}, false, nil
		}
		values := make(map[uint64]string, len(e.Values))
		for k, name := range e.Values {
			v, err := strconv.ParseUint(k, 10, 64)
			if err != nil {
				return types.TypeRef{}, false, fmt.Errorf("type %q: bad enum value key %q: %w", e.ID, k, err)
			}
			values[v] = name
		}
		return reg.RegisterCLikeEnum(e.Name, under, values), true, nil

	case "fn":
		result, ok := byID[e.Result]
		if !ok {
			return types.TypeRef{}, false, nil
		}
		params := make([]types.TypeRef, len(e.Params))
		for i, p := range e.Params {
			pr, ok := byID[p]
			if !ok {
				return types.TypeRef{}, false, nil
			}
			params[i] = pr
		}
		var typeArgs []types.TypeRef
		for _, a := range e.TypeArgs {
			ar, ok := byID[a]
			if !ok {
				return types.TypeRef{}, false, nil
			}
			typeArgs = append(typeArgs, ar)
		}
		return reg.RegisterFn(e.Name, result, params, typeArgs), true, nil

	default:
		return types.TypeRef{}, false, fmt.Errorf("type %q: unknown kind %q", e.ID, e.Kind)
	}
}

func buildDecls(reg *types.Registry, entries []DeclEntry) (*decl.Tree, error) {
	tree := decl.NewTree(reg.Strings())
	tree.TranslationUnit()
	for i, e := range entries {
		ctx := tree.TranslationUnit()
		if e.Path != "" {
			for _, seg := range strings.Split(e.Path, "::") {
				if seg == "" {
					return nil, fmt.Errorf("decls[%d]: empty segment in path %q", i, e.Path)
				}
				ctx = tree.Namespace(ctx, seg)
			}
		}
		if e.Name != "" {
			if tree.Function(ctx, e.Name, e.Mangled) == decl.NoID {
				return nil, fmt.Errorf("decls[%d]: cannot declare %q under %q", i, e.Name, e.Path)
			}
		}
	}
	return tree, nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
