package domain

// HydrationOffset returns the WBGT offset for a hydration indicator.
// Unrecognised indicators add nothing.
func HydrationOffset(h HydrationIndicator) float64 {
	switch h {
	case HydrationClear:
		return 0
	case HydrationPaleYellow:
		return 0.5
	case HydrationDarkBrown, HydrationDarkYellow:
		return 5
	default:
		return 0
	}
}

// UniformOffset returns the WBGT offset for a uniform load.
// Unrecognised uniforms add nothing.
func UniformOffset(u UniformLoad) float64 {
	switch u {
	case UniformPTKit:
		return 0
	case UniformFullBattleOrder:
		return 3
	default:
		return 0
	}
}

// HydrationOffsets applies HydrationOffset element-wise, preserving order.
func HydrationOffsets(hs []HydrationIndicator) []float64 {
	out := make([]float64, len(hs))
	for i, h := range hs {
		out[i] = HydrationOffset(h)
	}
	return out
}

// UniformOffsets applies UniformOffset element-wise, preserving order.
func UniformOffsets(us []UniformLoad) []float64 {
	out := make([]float64, len(us))
	for i, u := range us {
		out[i] = UniformOffset(u)
	}
	return out
}

// EffectiveWBGT adds the hydration and uniform offsets to a raw WBGT.
func EffectiveWBGT(raw float64, h HydrationIndicator, u UniformLoad) float64 {
	return raw + HydrationOffset(h) + UniformOffset(u)
}
