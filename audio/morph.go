package audio

// Interpolate blends b into a by mix (0 = a, 1 = b) and returns a new
// descriptor. Only numeric options present on both sides are blended;
// everything else comes from a. Effects are blended position by position
// when both sides hold the same effect type at that index; other
// positions keep a's effect, and effects only b has are not added.
func Interpolate(a, b *SoundDescriptor, mix float64) *SoundDescriptor {
	out := a.Clone()
	if b == nil {
		return out
	}
	blend(out.Options, a.Options, b.Options, mix)

	if a.Effects != nil && b.Effects != nil {
		for i, fa := range a.Effects {
			if i >= len(b.Effects) || b.Effects[i].Type != fa.Type {
				continue
			}
			blend(out.Effects[i].Options, fa.Options, b.Effects[i].Options, mix)
		}
	}
	return out
}

// blend writes lerp(a[k], b[k]) into dst for every key numeric in both.
func blend(dst, a, b Options, mix float64) {
	for k, av := range a {
		x, ok := number(av)
		if !ok {
			continue
		}
		y, ok := number(b[k])
		if !ok {
			continue
		}
		dst[k] = x*(1-mix) + y*mix
	}
}
