package territory

import "math"

// SelectSeeds picks k well separated units to grow territories from and returns
// their indexes. With no more units than k every unit is a seed; otherwise the
// first unit is taken and each following seed is the unit whose distance to the
// nearest chosen seed is largest. Ties go to the earlier unit, so the result
// only depends on input order. Units without coordinates are only picked once
// every located unit is a seed.
func SelectSeeds(units []Unit, k int) []int {
	if k <= 0 || len(units) == 0 {
		return nil
	}
	if len(units) <= k {
		seeds := make([]int, len(units))
		for i := range units {
			seeds[i] = i
		}
		return seeds
	}

	seeds := make([]int, 0, k)
	chosen := make([]bool, len(units))
	choose := func(i int) {
		seeds = append(seeds, i)
		chosen[i] = true
	}
	choose(0)
	if k == 1 {
		return seeds
	}

	// nearest[i] is the distance from unit i to its closest seed.
	nearest := make([]float64, len(units))
	for i := range units {
		nearest[i] = distance(units[i], units[0])
	}

	for len(seeds) < k {
		best := -1
		bestDistance := -1.0
		for i := range units {
			if chosen[i] || !units[i].Located() {
				continue
			}
			d := nearest[i]
			// A located unit with no finite distance means the first seed is unlocated.
			if math.IsInf(d, 1) {
				d = math.MaxFloat64
			}
			if d > bestDistance {
				best, bestDistance = i, d
			}
		}
		if best == -1 {
			for i := range units {
				if !chosen[i] {
					best = i
					break
				}
			}
		}

		choose(best)
		for i := range units {
			if d := distance(units[i], units[best]); d < nearest[i] {
				nearest[i] = d
			}
		}
	}

	return seeds
}
