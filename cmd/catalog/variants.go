package catalog

// Axis is one variant dimension of a product, e.g. {Key: "size", Values: ["50ml", "100ml"]}.
type Axis struct {
	Key    string
	Values []string
}

// Variant is one concrete combination of axis values, keyed by axis key.
type Variant map[string]string

// ExpandVariants computes the cartesian product of all non-empty axes in
// order. Axes without values are skipped. With no usable axes the result is
// empty: a product without variant axes has no variants, not one empty one.
func ExpandVariants(axes []Axis) []Variant {
	usable := make([]Axis, 0, len(axes))
	total := 1
	for _, a := range axes {
		if len(a.Values) == 0 {
			continue
		}
		usable = append(usable, a)
		total *= len(a.Values)
	}
	if len(usable) == 0 {
		return nil
	}

	out := make([]Variant, 0, total)
	combo := make([]int, len(usable))
	for {
		v := make(Variant, len(usable))
		for i, a := range usable {
			v[a.Key] = a.Values[combo[i]]
		}
		out = append(out, v)

		// Advance the rightmost axis first, odometer-style.
		i := len(usable) - 1
		for i >= 0 {
			combo[i]++
			if combo[i] < len(usable[i].Values) {
				break
			}
			combo[i] = 0
			i--
		}
		if i < 0 {
			return out
		}
	}
}
