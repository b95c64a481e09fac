// Package decl models the declaration namespace tree a debug-info module
// exposes: a translation-unit root, nested namespaces, and function
// declarations with passthrough mangled names.
package decl

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"fathom/internal/source"
)

// ID identifies a declaration node inside its owning Tree.
type ID uint32

// NoID marks the absence of a declaration.
const NoID ID = 0

// Kind enumerates declaration node kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTranslationUnit
	KindNamespace
	KindFunction
)

type node struct {
	kind    Kind
	name    source.StringID
	parent  ID
	mangled source.StringID

	// qualified caches the "::"-joined path once computed.
	qualified    string
	hasQualified bool

	children map[source.StringID]ID
}

// Tree is the arena owning all declaration nodes for one module. Like the
// type registry it is single-writer; the debugger serializes per module.
type Tree struct {
	strings *source.Interner
	nodes   []node
	root    ID
}

// NewTree constructs an empty declaration tree. Passing the type registry's
// interner shares one string table per module; nil gets a private one.
func NewTree(strings *source.Interner) *Tree {
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Tree{strings: strings}
	t.nodes = append(t.nodes, node{}) // slot 0 is the invalid sentinel
	return t
}

// Len returns the number of live declarations, the sentinel excluded.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes) - 1
}

// TranslationUnit returns the root declaration context, creating it on first
// use. Every tree has exactly one.
func (t *Tree) TranslationUnit() ID {
	if t.root != NoID {
		return t.root
	}
	t.root = t.newNode(node{kind: KindTranslationUnit})
	return t.root
}

// Namespace returns the child namespace of parent with the given name,
// creating it on a miss. Repeated lookups hand back the same node, so the
// tree stays a tree no matter how many compile units mention the path.
func (t *Tree) Namespace(parent ID, name string) ID {
	p := t.node(parent)
	if p == nil || (p.kind != KindTranslationUnit && p.kind != KindNamespace) {
		return NoID
	}
	nameID := t.strings.Intern(name)
	if existing, ok := p.children[nameID]; ok && t.KindOf(existing) == KindNamespace {
		return existing
	}
	id := t.newNode(node{kind: KindNamespace, name: nameID, parent: parent})
	t.link(parent, nameID, id)
	return id
}

// Function records a function declaration under parent. Unlike namespaces,
// every call creates a fresh node; debug info may legitimately carry several
// declarations with one name.
func (t *Tree) Function(parent ID, name, mangled string) ID {
	p := t.node(parent)
	if p == nil || (p.kind != KindTranslationUnit && p.kind != KindNamespace) {
		return NoID
	}
	nameID := t.strings.Intern(name)
	id := t.newNode(node{
		kind:    KindFunction,
		name:    nameID,
		parent:  parent,
		mangled: t.strings.Intern(mangled),
	})
	t.link(parent, nameID, id)
	return id
}

// KindOf returns the node's kind, or KindInvalid for bad handles.
func (t *Tree) KindOf(id ID) Kind {
	n := t.node(id)
	if n == nil {
		return KindInvalid
	}
	return n.kind
}

// IsContext reports whether the node can contain further declarations.
func (t *Tree) IsContext(id ID) bool {
	switch t.KindOf(id) {
	case KindTranslationUnit, KindNamespace:
		return true
	default:
		return false
	}
}

// Name returns the node's unqualified name. The translation unit is unnamed.
func (t *Tree) Name(id ID) string {
	n := t.node(id)
	if n == nil {
		return ""
	}
	s, _ := t.strings.Lookup(n.name)
	return s
}

// Mangled returns the linker name recorded for a function declaration.
func (t *Tree) Mangled(id ID) string {
	n := t.node(id)
	if n == nil || n.kind != KindFunction {
		return ""
	}
	s, _ := t.strings.Lookup(n.mangled)
	return s
}

// Parent returns the enclosing declaration context.
func (t *Tree) Parent(id ID) ID {
	n := t.node(id)
	if n == nil {
		return NoID
	}
	return n.parent
}

// QualifiedName returns the "::"-joined path from the translation unit down
// to the node, skipping unnamed ancestors. Computed lazily and cached per
// node; qualified names are asked for far more often than trees change.
func (t *Tree) QualifiedName(id ID) string {
	n := t.node(id)
	if n == nil {
		return ""
	}
	if n.hasQualified {
		return n.qualified
	}
	var parts []string
	for cur := id; cur != NoID; {
		cn := t.node(cur)
		if cn == nil {
			break
		}
		if name, _ := t.strings.Lookup(cn.name); name != "" {
			parts = append(parts, name)
		}
		cur = cn.parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	q := strings.Join(parts, "::")
	n.qualified = q
	n.hasQualified = true
	return q
}

// FindByName looks up a direct child of a context by unqualified name.
func (t *Tree) FindByName(ctx ID, name string) (ID, bool) {
	n := t.node(ctx)
	if n == nil || n.children == nil {
		return NoID, false
	}
	nameID, ok := t.strings.IDOf(name)
	if !ok {
		return NoID, false
	}
	id, ok := n.children[nameID]
	return id, ok
}

func (t *Tree) node(id ID) *node {
	if t == nil || id == NoID || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) newNode(n node) ID {
	lenNodes, err := safecast.Conv[uint32](len(t.nodes))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	id := ID(lenNodes)
	t.nodes = append(t.nodes, n)
	return id
}

func (t *Tree) link(parent ID, name source.StringID, child ID) {
	p := t.node(parent)
	if p.children == nil {
		p.children = make(map[source.StringID]ID, 4)
	}
	p.children[name] = child
}
