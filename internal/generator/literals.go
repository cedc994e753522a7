package generator

import "math"

// genI32 produces an i32 literal value. Half the time it draws from a
// distribution centered on zero but occasionally reaching the extremes
// (mirroring wgslsmith's Binomial(2*i32::MAX, 0.5) centered and re-based to
// a signed range); the other half it picks one of the values most likely to
// trip overflow/edge-case handling in a backend: 0, 1, -1, and the two
// bounds.
func (g *Generator) genI32() int32 {
	if g.rng.Float64() < 0.5 {
		return int32(g.signedBinomialSample())
	}
	edges := []int32{0, 1, -1, math.MaxInt32, math.MinInt32}
	return edges[g.rng.Intn(len(edges))]
}

// genU32 mirrors genI32 for the unsigned range.
func (g *Generator) genU32() uint32 {
	if g.rng.Float64() < 0.5 {
		return uint32(g.unsignedBinomialSample())
	}
	edges := []uint32{0, 1, math.MaxUint32}
	return edges[g.rng.Intn(len(edges))]
}

// genF32 draws from a standard normal, scales it to push values away from
// the immediate vicinity of zero, and clamps to a range comfortably inside
// f32's finite range so that later arithmetic in the shader doesn't overflow
// to infinity purely from literal magnitude (the reconditioner guards
// against computed overflow, not oversized literals).
func (g *Generator) genF32() float32 {
	k := g.rng.NormFloat64()
	if k == 0 {
		if g.rng.Float64() < 0.5 {
			k = 1
		} else {
			k = -1
		}
	}
	x := k * 1000.0
	return float32(clampF64(math.Trunc(x), -16777216.0, 16777216.0))
}

func clampF64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// signedBinomialSample approximates a binomial(2*MaxInt32, 0.5) draw
// re-centered on zero by summing independent coin flips in batches; this
// avoids pulling in a standalone distributions library (see DESIGN.md) while
// keeping the same "most mass near zero, full range reachable" shape.
func (g *Generator) signedBinomialSample() int64 {
	return int64(g.coinSum(32)) - int64(g.coinSum(32))
}

func (g *Generator) unsignedBinomialSample() int64 {
	v := g.coinSum(32) - g.coinSum(32)
	if v < 0 {
		v = -v
	}
	return v
}

// coinSum sums n independent fair coin flips, each contributing a random
// power-of-two-ish magnitude so the aggregate has heavy tails rather than
// collapsing to a tight Gaussian around n/2.
func (g *Generator) coinSum(n int) int64 {
	var sum int64
	for i := 0; i < n; i++ {
		if g.rng.Float64() < 0.5 {
			sum += 1 << uint(g.rng.Intn(31))
		}
	}
	return sum
}
