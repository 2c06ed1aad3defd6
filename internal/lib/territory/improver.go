package territory

import "math"

const improvementEpsilon = 1e-9

// Improve runs boundary-swap passes over p until a pass moves nothing or
// maxPasses is reached, and returns the number of swaps applied. A border unit
// moves to a neighboring territory only when that strictly lowers the summed
// distance of both territories from the target weight and the territory it
// leaves stays connected. Territories are never emptied. This is a greedy local
// search; hitting the pass cap without converging is expected on some inputs.
func Improve(p *Partition, g *Graph, units []Unit, maxPasses int) int {
	numReps := len(p.Members)
	if numReps < 2 {
		return 0
	}
	target := p.TotalWeight() / float64(numReps)

	swaps := 0
	for pass := 0; pass < maxPasses; pass++ {
		moved := improvePass(p, g, units, target)
		swaps += moved
		if moved == 0 {
			break
		}
	}
	return swaps
}

func improvePass(p *Partition, g *Graph, units []Unit, target float64) int {
	moved := 0
	for _, unit := range borderUnits(p, g) {
		from := p.owner[unit]
		// Membership may have changed earlier in this pass.
		if len(p.Members[from]) <= 1 {
			continue
		}
		weight := units[unit].EffectiveWeight()

		for _, n := range g.Neighbors(unit) {
			to := p.owner[n]
			if to == from || to == -1 {
				continue
			}
			before := math.Abs(p.Weights[from]-target) + math.Abs(p.Weights[to]-target)
			after := math.Abs(p.Weights[from]-weight-target) + math.Abs(p.Weights[to]+weight-target)
			if after >= before-improvementEpsilon {
				continue
			}
			if !g.ConnectedWithout(p.Members[from], unit) {
				continue
			}
			p.move(unit, to, weight)
			moved++
			break
		}
	}
	return moved
}

// borderUnits lists units with at least one neighbor in another territory, in
// territory order and then member order.
func borderUnits(p *Partition, g *Graph) []int {
	var border []int
	for t, members := range p.Members {
		for _, m := range members {
			for _, n := range g.Neighbors(m) {
				if owner := p.owner[n]; owner != -1 && owner != t {
					border = append(border, m)
					break
				}
			}
		}
	}
	return border
}
