package synth

import (
	"math"

	"github.com/ironsheep/synthtext-mcp/internal/random"
)

// sparseProb is the chance that an instance draws its region count uniformly
// instead of from Beta(5,1).
const sparseProb = 0.10

// ChooseRegionCount draws how many of n regions one instance uses, capped at
// limit. Most draws come from Beta(5,1), which favours using nearly all of the
// budget; occasional uniform draws give sparse instances. The result lies in
// [1, min(n, limit)], or is 0 when n or limit is not positive.
func ChooseRegionCount(rng random.Source, n, limit int) int {
	nmax := min(n, limit)
	if nmax <= 0 {
		return 0
	}
	var rnd float64
	if rng.Float64() < sparseProb {
		rnd = rng.Float64()
	} else {
		rnd = rng.Beta(5, 1)
	}
	m := int(math.Ceil(float64(nmax) * rnd))
	return min(nmax, max(1, m))
}

// chooseRegions picks m of the first min(2m, n) region indices in random
// order.
func chooseRegions(rng random.Source, n, m int) []int {
	return rng.Perm(min(2*m, n))[:m]
}

// schedule cycles idx repeat times.
func schedule(idx []int, repeat int) []int {
	out := make([]int, 0, len(idx)*repeat)
	for i := 0; i < len(idx)*repeat; i++ {
		out = append(out, idx[i%len(idx)])
	}
	return out
}
