package types

import "testing"

// buildOption models Option<i32> with the old-style encoding: each variant
// payload repeats the discriminant at offset 0 and the payload follows it.
func buildOption(t *testing.T, r *Registry) (opt, none, some TypeRef) {
	t.Helper()
	i32 := r.RegisterIntrinsicInt(true, 4)

	opt = r.RegisterEnum("Option<i32>", 8, 0, 4)
	r.AddTypeArg(opt, i32)

	none = r.RegisterTuple("None", 4, true)
	r.AddField(none, "0", i32, 0, false, 0)
	r.AddField(opt, "None", none, 0, false, 0)

	some = r.RegisterTuple("Some", 8, true)
	r.AddField(some, "0", i32, 0, false, 0)
	r.AddField(some, "1", i32, 4, false, 0)
	r.AddField(opt, "Some", some, 0, false, 1)

	r.FinishAggregate(opt)
	return opt, none, some
}

func TestEnumDiscriminantRoundTrip(t *testing.T) {
	r := NewRegistry()
	opt, none, some := buildOption(t, r)

	got, ok := r.FindVariant(opt, 0)
	if !ok || got != none {
		t.Fatalf("FindVariant(0) = %v, %v, want None", got, ok)
	}
	got, ok = r.FindVariant(opt, 1)
	if !ok || got != some {
		t.Fatalf("FindVariant(1) = %v, %v, want Some", got, ok)
	}
	if _, ok := r.FindVariant(opt, 7); ok {
		t.Fatalf("unmatched discriminant with no default must fail")
	}
}

func TestEnumDefaultVariantFallback(t *testing.T) {
	r := NewRegistry()
	u8 := r.RegisterIntrinsicInt(false, 1)

	en := r.RegisterEnum("Fallback", 2, 0, 1)
	va := r.RegisterTuple("Known", 2, true)
	r.AddField(va, "0", u8, 0, false, 0)
	r.AddField(en, "Known", va, 0, false, 3)
	vd := r.RegisterTuple("Other", 2, true)
	r.AddField(vd, "0", u8, 0, false, 0)
	r.AddField(en, "Other", vd, 0, true, 0)
	r.FinishAggregate(en)

	got, ok := r.FindVariant(en, 3)
	if !ok || got != va {
		t.Fatalf("explicit discriminant lost: %v, %v", got, ok)
	}
	got, ok = r.FindVariant(en, 99)
	if !ok || got != vd {
		t.Fatalf("unmatched discriminant must hit the default variant: %v, %v", got, ok)
	}
}

func TestEnumDropsDiscriminantFields(t *testing.T) {
	r := NewRegistry()
	i32 := r.RegisterIntrinsicInt(true, 4)

	en := r.RegisterEnum("E", 12, 0, 4)

	// A tuple payload: discriminant copy plus two real slots.
	tup := r.RegisterTuple("Pair", 12, true)
	r.AddField(tup, "0", i32, 0, false, 0)
	r.AddField(tup, "1", i32, 4, false, 0)
	r.AddField(tup, "2", i32, 8, false, 0)
	r.AddField(en, "Pair", tup, 0, false, 0)

	// A struct payload: discriminant copy plus a named field.
	st := r.RegisterStruct("Named", 8, true)
	r.AddField(st, "__discr", i32, 0, false, 0)
	r.AddField(st, "value", i32, 4, false, 0)
	r.AddField(en, "Named", st, 0, false, 1)

	if !r.HasDiscriminant(tup) || !r.HasDiscriminant(st) {
		t.Fatalf("payloads must carry the discriminant before finalization")
	}
	r.FinishAggregate(en)

	if r.HasDiscriminant(tup) || r.HasDiscriminant(st) {
		t.Fatalf("finalization must clear the discriminant flag")
	}
	if n := r.NumFields(tup); n != 2 {
		t.Fatalf("tuple payload fields = %d, want 2", n)
	}
	// Remaining tuple slots renumber from zero.
	for i, want := range []string{"0", "1"} {
		f, ok := r.FieldAt(tup, i)
		if !ok || f.Name != want {
			t.Fatalf("tuple field %d = %q, %v, want %q", i, f.Name, ok, want)
		}
	}
	// Struct payloads keep their names, only the leading field goes.
	f, ok := r.FieldAt(st, 0)
	if !ok || f.Name != "value" {
		t.Fatalf("struct payload field = %q, %v, want value", f.Name, ok)
	}
}

func TestDiscriminantLocation(t *testing.T) {
	r := NewRegistry()
	opt, _, _ := buildOption(t, r)

	off, size, ok := r.DiscriminantLocation(opt)
	if !ok || off != 0 || size != 4 {
		t.Fatalf("DiscriminantLocation = %d, %d, %v", off, size, ok)
	}

	// A univariant enum stores no discriminant, whatever was configured.
	u8 := r.RegisterIntrinsicInt(false, 1)
	single := r.RegisterEnum("Single", 1, 0, 1)
	v := r.RegisterTuple("Only", 1, true)
	r.AddField(v, "0", u8, 0, false, 0)
	r.AddField(single, "Only", v, 0, false, 0)
	r.FinishAggregate(single)
	if _, _, ok := r.DiscriminantLocation(single); ok {
		t.Fatalf("univariant enum must report no discriminant location")
	}

	if _, _, ok := r.DiscriminantLocation(u8); ok {
		t.Fatalf("non-enum must report no discriminant location")
	}
}

func TestCLikeEnum(t *testing.T) {
	r := NewRegistry()
	u8 := r.RegisterIntrinsicInt(false, 1)
	en := r.RegisterCLikeEnum("Color", u8, map[uint64]string{
		0: "Red",
		1: "Green",
		2: "Blue",
	})

	under, ok := r.CLikeUnderlying(en)
	if !ok || under != u8 {
		t.Fatalf("CLikeUnderlying = %v, %v", under, ok)
	}
	name, ok := r.CLikeValueName(en, 1)
	if !ok || name != "Green" {
		t.Fatalf("CLikeValueName(1) = %q, %v", name, ok)
	}
	if _, ok := r.CLikeValueName(en, 9); ok {
		t.Fatalf("unmapped value must miss")
	}
	if r.IsPossibleDynamicType(en) {
		t.Fatalf("c-like enums are static, only tagged enums are dynamic")
	}
}
