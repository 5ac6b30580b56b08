package catalog

import "testing"

func TestSKU(t *testing.T) {
	t.Parallel()

	cases := []struct {
		brand   string
		product string
		parts   []string
		want    string
	}{
		{brand: "ORC", product: "Amber Oud", parts: []string{"50ml"}, want: "ORC-AMBER-OUD-50ML"},
		{brand: "orc", product: "amber oud", parts: nil, want: "ORC-AMBER-OUD"},
		{brand: "ORC", product: "Amber Oud", parts: []string{"", "EDP"}, want: "ORC-AMBER-OUD-EDP"},
		{brand: "", product: "Solo", parts: nil, want: "SOLO"},
	}

	for _, tc := range cases {
		if got := SKU(tc.brand, tc.product, tc.parts...); got != tc.want {
			t.Fatalf("SKU(%q,%q,%v)=%q want=%q", tc.brand, tc.product, tc.parts, got, tc.want)
		}
	}
}

func TestSKU_Deterministic(t *testing.T) {
	t.Parallel()

	a := SKU("ORC", "Amber Oud", "50ml", "EDP")
	b := SKU("ORC", "Amber Oud", "50ml", "EDP")
	if a != b {
		t.Fatalf("SKU not deterministic: %q vs %q", a, b)
	}
}
