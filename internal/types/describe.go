package types

import "strings"

// aggregateSyntax returns the display tag and delimiters for an aggregate.
// Plain tuples drop the tag entirely; tuple structs print like structs but
// keep the paren delimiters.
func (r *Registry) aggregateSyntax(ref TypeRef) (tag, tagName, opener, closer string, ok bool) {
	name := r.Name(ref)
	switch r.KindOf(ref) {
	case KindStruct:
		return "struct ", name, "{", "}", true
	case KindUnion:
		return "union ", name, "{", "}", true
	case KindEnum:
		return "enum ", name, "{", "}", true
	case KindTuple:
		if name == "" || strings.HasPrefix(name, "(") {
			return "", "", "(", ")", true
		}
		return "struct ", name, "(", ")", true
	default:
		return "", "", "", "", false
	}
}

// Describe renders the type the way the source language declares it.
// Scalars and non-aggregates render as their name.
func (r *Registry) Describe(ref TypeRef) string {
	tag, tagName, opener, closer, ok := r.aggregateSyntax(ref)
	if !ok {
		return r.Name(ref)
	}
	var b strings.Builder
	b.WriteString(tag)
	b.WriteString(tagName)
	if tagName != "" {
		b.WriteString(" ")
	}
	b.WriteString(opener)
	n := r.NumFields(ref)
	if n == 0 {
		b.WriteString(closer)
		return b.String()
	}
	// A trailing comma looks odd on tuples, so the separator goes before
	// each field after the first.
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n  ")
		f, found := r.FieldAt(ref, i)
		if !found {
			continue
		}
		if f.Name != "" {
			b.WriteString(f.Name)
			b.WriteString(": ")
		}
		b.WriteString(r.Name(f.Type))
	}
	b.WriteString("\n")
	b.WriteString(closer)
	return b.String()
}
