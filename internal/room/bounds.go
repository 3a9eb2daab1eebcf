package room

// Clamp constrains (x, y) so that a circle of the given radius stays inside a
// width x height rectangle. Each axis is clamped to [radius, dimension-radius]
// independently.
func Clamp(x, y, radius, width, height int) (int, int) {
	return clampAxis(x, radius, width-radius), clampAxis(y, radius, height-radius)
}

func clampAxis(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
