package cabi

import (
	"strings"
	"testing"

	"fathom/internal/types"
)

func TestDeclareScalars(t *testing.T) {
	r := types.NewRegistry()
	m := NewTagMap(r)

	cases := []struct {
		ref  types.TypeRef
		want string
	}{
		{r.RegisterBool("bool"), "bool v"},
		{r.RegisterIntrinsicInt(true, 4), "__INT32_TYPE__ v"},
		{r.RegisterIntrinsicInt(false, 8), "__UINT64_TYPE__ v"},
		{r.RegisterChar(), "__UINT32_TYPE__ v"},
		{r.RegisterFloat("f32", 4), "float v"},
		{r.RegisterFloat("f64", 8), "double v"},
	}
	for _, c := range cases {
		got, err := m.Declare(c.ref, "v")
		if err != nil {
			t.Fatalf("Declare(%s): %v", r.Name(c.ref), err)
		}
		if got != c.want {
			t.Fatalf("Declare(%s) = %q, want %q", r.Name(c.ref), got, c.want)
		}
	}
	if m.Prelude() != "" {
		t.Fatalf("scalars must not emit prelude definitions: %q", m.Prelude())
	}
}

func TestDeclarePointerAndArray(t *testing.T) {
	r := types.NewRegistry()
	m := NewTagMap(r)
	i32 := r.RegisterIntrinsicInt(true, 4)
	p := r.RegisterPointer("*const i32", i32, 8)
	arr := r.RegisterArray(i32, 16)

	got, err := m.Declare(p, "ptr")
	if err != nil || got != "__INT32_TYPE__ * ptr" {
		t.Fatalf("pointer = %q, %v", got, err)
	}
	got, err = m.Declare(arr, "buf")
	if err != nil || got != "__INT32_TYPE__ buf[16]" {
		t.Fatalf("array = %q, %v", got, err)
	}
}

func TestDeclareStructDeduplicates(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	s := r.RegisterStruct("Point", 8, false)
	r.AddField(s, "x", i32, 0, false, 0)
	r.AddField(s, "y", i32, 4, false, 0)
	r.FinishAggregate(s)

	m := NewTagMap(r)
	for _, varname := range []string{"a", "b", "c"} {
		got, err := m.Declare(s, varname)
		if err != nil {
			t.Fatalf("Declare: %v", err)
		}
		if got != "tag0 "+varname {
			t.Fatalf("Declare = %q, want tag0 %s", got, varname)
		}
	}
	want := "    struct tag0{ __INT32_TYPE__ _x; __INT32_TYPE__ _y; };\n"
	if m.Prelude() != want {
		t.Fatalf("prelude:\n got %q\nwant %q", m.Prelude(), want)
	}
}

func TestDeclareNestedAggregates(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	inner := r.RegisterStruct("Inner", 4, false)
	r.AddField(inner, "v", i32, 0, false, 0)
	r.FinishAggregate(inner)
	outer := r.RegisterStruct("Outer", 8, false)
	r.AddField(outer, "first", inner, 0, false, 0)
	r.AddField(outer, "second", inner, 4, false, 0)
	r.FinishAggregate(outer)

	m := NewTagMap(r)
	got, err := m.Declare(outer, "o")
	if err != nil || got != "tag0 o" {
		t.Fatalf("Declare = %q, %v", got, err)
	}
	prelude := m.Prelude()
	if strings.Count(prelude, "struct tag1{") != 1 {
		t.Fatalf("inner struct must be defined exactly once:\n%s", prelude)
	}
	if !strings.Contains(prelude, "tag1 _first; tag1 _second;") {
		t.Fatalf("outer fields must reference the shared tag:\n%s", prelude)
	}
}

func TestDeclareTupleFields(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	tup := r.RegisterTuple("", 8, false)
	r.AddField(tup, "", i32, 0, false, 0)
	r.AddField(tup, "", i32, 4, false, 0)
	r.FinishAggregate(tup)

	m := NewTagMap(r)
	if _, err := m.Declare(tup, "t"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	want := "    struct tag0{ __INT32_TYPE__ __0; __INT32_TYPE__ __1; };\n"
	if m.Prelude() != want {
		t.Fatalf("tuple prelude:\n got %q\nwant %q", m.Prelude(), want)
	}
}

func TestDeclareUnion(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	f32 := r.RegisterFloat("f32", 4)
	u := r.RegisterUnion("Bits", 4)
	r.AddField(u, "i", i32, 0, false, 0)
	r.AddField(u, "f", f32, 0, false, 0)
	r.FinishAggregate(u)

	m := NewTagMap(r)
	got, err := m.Declare(u, "b")
	if err != nil || got != "tag0 b" {
		t.Fatalf("Declare = %q, %v", got, err)
	}
	want := "    union tag0{ __INT32_TYPE__ _i; float _f; };\n"
	if m.Prelude() != want {
		t.Fatalf("union prelude:\n got %q\nwant %q", m.Prelude(), want)
	}
}

func TestDeclareEnumEmitsLeadingDiscriminant(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)

	en := r.RegisterEnum("Choice", 8, 0, 4)
	va := r.RegisterTuple("A", 8, true)
	r.AddField(va, "0", i32, 0, false, 0)
	r.AddField(va, "1", i32, 4, false, 0)
	r.AddField(en, "A", va, 0, false, 0)
	vb := r.RegisterTuple("B", 4, true)
	r.AddField(vb, "0", i32, 0, false, 0)
	r.AddField(en, "B", vb, 0, false, 1)
	r.FinishAggregate(en)

	m := NewTagMap(r)
	got, err := m.Declare(en, "c")
	if err != nil || got != "tag0 c" {
		t.Fatalf("Declare = %q, %v", got, err)
	}
	if !strings.Contains(m.Prelude(), "struct tag0{ int32_t __discr; ") {
		t.Fatalf("leading discriminant must be emitted:\n%s", m.Prelude())
	}
}

func TestDeclareEnumOmitsBuriedDiscriminant(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)

	// Discriminant at a non-zero offset lives in a hole; the C view
	// cannot place it as a leading field.
	en := r.RegisterEnum("Tail", 8, 4, 1)
	va := r.RegisterTuple("A", 4, true)
	r.AddField(va, "0", i32, 0, false, 0)
	r.AddField(en, "A", va, 0, false, 0)
	vb := r.RegisterTuple("B", 4, true)
	r.AddField(vb, "0", i32, 0, false, 0)
	r.AddField(en, "B", vb, 0, false, 1)
	r.FinishAggregate(en)

	m := NewTagMap(r)
	if _, err := m.Declare(en, "v"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if strings.Contains(m.Prelude(), "__discr") {
		t.Fatalf("buried discriminant must be omitted:\n%s", m.Prelude())
	}
}

func TestDeclareFunctionPointer(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	f64 := r.RegisterFloat("f64", 8)
	fn := r.RegisterFn("fn(i32, f64) -> i32", i32, []types.TypeRef{i32, f64}, nil)
	pfn := r.RegisterPointer("*fn", fn, 8)

	want := "__INT32_TYPE__ (*callback)(__INT32_TYPE__ , double )"
	m := NewTagMap(r)
	got, err := m.Declare(fn, "callback")
	if err != nil || got != want {
		t.Fatalf("fn = %q, %v", got, err)
	}
	// A pointer to a function collapses into the same declarator.
	got, err = m.Declare(pfn, "callback")
	if err != nil || got != want {
		t.Fatalf("fn pointer = %q, %v", got, err)
	}
}

func TestDeclareFunctionSharesStructTag(t *testing.T) {
	r := types.NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)
	s := r.RegisterStruct("Big", 4, false)
	r.AddField(s, "v", i32, 0, false, 0)
	r.FinishAggregate(s)
	fn := r.RegisterFn("fn(Big, Big) -> Big", s, []types.TypeRef{s, s}, nil)

	m := NewTagMap(r)
	got, err := m.Declare(fn, "f")
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if got != "tag0  (*f)(tag0 , tag0 )" {
		t.Fatalf("fn declarator = %q", got)
	}
	if strings.Count(m.Prelude(), "struct tag0{") != 1 {
		t.Fatalf("shared struct must be defined exactly once:\n%s", m.Prelude())
	}
}

func TestDeclareTransparentWrappers(t *testing.T) {
	r := types.NewRegistry()
	u8 := r.RegisterIntrinsicInt(false, 1)
	en := r.RegisterCLikeEnum("Color", u8, map[uint64]string{0: "Red"})
	td := r.RegisterTypedef("Byte", u8)

	m := NewTagMap(r)
	got, err := m.Declare(en, "c")
	if err != nil || got != "__UINT8_TYPE__ c" {
		t.Fatalf("c-like enum = %q, %v", got, err)
	}
	got, err = m.Declare(td, "b")
	if err != nil || got != "__UINT8_TYPE__ b" {
		t.Fatalf("typedef = %q, %v", got, err)
	}
}

func TestDeclareRejectsForeignHandles(t *testing.T) {
	r1 := types.NewRegistry()
	r2 := types.NewRegistry()
	i32 := r1.RegisterIntrinsicInt(true, 4)

	m := NewTagMap(r2)
	if _, err := m.Declare(i32, "v"); err == nil {
		t.Fatalf("foreign handle must error")
	}
	if _, err := m.Declare(types.TypeRef{}, "v"); err == nil {
		t.Fatalf("zero handle must error")
	}
}
