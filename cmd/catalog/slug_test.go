package catalog

import "testing"

func TestSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "Amber Oud", want: "amber-oud"},
		{in: "  Eau de Parfum — 50ml  ", want: "eau-de-parfum-50ml"},
		{in: "UPPER", want: "upper"},
		{in: "a--b", want: "a-b"},
		{in: "--leading & trailing!!", want: "leading-trailing"},
		{in: "", want: ""},
		{in: "!!!", want: ""},
	}

	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestSlug_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Amber Oud", "product (2024)", "déjà vu", "a_b_c", "50 ml / 100 ml"}
	for _, in := range inputs {
		once := Slug(in)
		if twice := Slug(once); twice != once {
			t.Fatalf("Slug not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestAttributeKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "Bottle Size (ml)", want: "bottle_size_ml"},
		{in: "Concentration", want: "concentration"},
		{in: "scent family", want: "scent_family"},
		{in: "already_normalized", want: "already_normalized"},
	}

	for _, tc := range cases {
		if got := AttributeKey(tc.in); got != tc.want {
			t.Fatalf("AttributeKey(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestAttributeKey_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Bottle Size (ml)", "Scent Family", "x"}
	for _, in := range inputs {
		once := AttributeKey(in)
		if twice := AttributeKey(once); twice != once {
			t.Fatalf("AttributeKey not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
