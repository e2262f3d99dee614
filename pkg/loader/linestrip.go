package loader

// LineStripToLines converts a line strip to a line list: [i0 i1 i2 ...] becomes
// [i0 i1 i1 i2 ...]. Without indices the strip runs over 0..numPositions-1. Strips
// of fewer than two points yield no segments.
func LineStripToLines(indices []uint32, numPositions int) []uint32 {
	n := len(indices)
	if n == 0 {
		n = numPositions
	}
	if n < 2 {
		return []uint32{}
	}

	at := func(i int) uint32 {
		if len(indices) == 0 {
			return uint32(i)
		}
		return indices[i]
	}

	out := make([]uint32, 0, (n-1)*2)
	for i := 0; i+1 < n; i++ {
		out = append(out, at(i), at(i+1))
	}
	return out
}
