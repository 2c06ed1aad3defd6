package territory

import (
	"container/heap"
	"math"
)

// Partition is the working state of an assignment: member lists per territory in
// assignment order, accumulated weights and the owner of every unit (-1 while
// unassigned).
type Partition struct {
	Members [][]int
	Weights []float64
	owner   []int
}

func newPartition(numUnits, numReps int) *Partition {
	p := &Partition{
		Members: make([][]int, numReps),
		Weights: make([]float64, numReps),
		owner:   make([]int, numUnits),
	}
	for i := range p.owner {
		p.owner[i] = -1
	}
	return p
}

// Owner returns the territory unit i belongs to, or -1.
func (p *Partition) Owner(i int) int {
	return p.owner[i]
}

// TotalWeight is the sum of all territory weights.
func (p *Partition) TotalWeight() float64 {
	var total float64
	for _, w := range p.Weights {
		total += w
	}
	return total
}

func (p *Partition) assign(unit, territory int, weight float64) {
	p.owner[unit] = territory
	p.Members[territory] = append(p.Members[territory], unit)
	p.Weights[territory] += weight
}

func (p *Partition) move(unit, to int, weight float64) {
	from := p.owner[unit]
	members := p.Members[from]
	for i, m := range members {
		if m == unit {
			p.Members[from] = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	p.Weights[from] -= weight
	p.owner[unit] = -1
	p.assign(unit, to, weight)
}

type candidate struct {
	unit     int
	distance float64
	seq      int
}

// frontier is a min-heap of candidates ordered by distance, then by push order.
type frontier []candidate

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].distance != f[j].distance {
		return f[i].distance < f[j].distance
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(candidate)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	c := old[n-1]
	*f = old[:n-1]
	return c
}

type grower struct {
	units     []Unit
	graph     *Graph
	partition *Partition
	frontiers []frontier
	seq       int
}

// GrowRegions assigns every unit to one of numReps territories. Territory i
// starts from seeds[i]; on every step the lightest territory that still has
// candidates absorbs its nearest unassigned neighbor. Units the graph never
// reaches are attached to the territory holding the closest member.
func GrowRegions(units []Unit, g *Graph, seeds []int, numReps int) *Partition {
	gr := &grower{
		units:     units,
		graph:     g,
		partition: newPartition(len(units), numReps),
		frontiers: make([]frontier, numReps),
	}

	for t, seed := range seeds {
		if t >= numReps {
			break
		}
		if gr.partition.owner[seed] != -1 {
			continue
		}
		gr.absorb(t, seed)
	}

	for iter := 0; iter < 2*len(units); iter++ {
		t, c, ok := gr.next()
		if !ok {
			break
		}
		gr.absorb(t, c.unit)
	}

	gr.assignStranded()
	return gr.partition
}

// absorb assigns unit to territory t and queues its unassigned neighbors with
// their distance from unit.
func (gr *grower) absorb(t, unit int) {
	gr.partition.assign(unit, t, gr.units[unit].EffectiveWeight())
	for _, n := range gr.graph.Neighbors(unit) {
		if gr.partition.owner[n] != -1 {
			continue
		}
		heap.Push(&gr.frontiers[t], candidate{
			unit:     n,
			distance: distance(gr.units[unit], gr.units[n]),
			seq:      gr.seq,
		})
		gr.seq++
	}
}

// next pops the nearest candidate of the lightest territory with a non-empty
// frontier.
func (gr *grower) next() (int, candidate, bool) {
	for {
		chosen := -1
		for t := range gr.frontiers {
			gr.prune(t)
			if len(gr.frontiers[t]) == 0 {
				continue
			}
			if chosen == -1 || gr.partition.Weights[t] < gr.partition.Weights[chosen] {
				chosen = t
			}
		}
		if chosen == -1 {
			return 0, candidate{}, false
		}

		c := heap.Pop(&gr.frontiers[chosen]).(candidate)
		if gr.partition.owner[c.unit] == -1 {
			return chosen, c, true
		}
	}
}

// prune drops already-assigned candidates from the front of frontier t.
func (gr *grower) prune(t int) {
	f := &gr.frontiers[t]
	for f.Len() > 0 && gr.partition.owner[(*f)[0].unit] != -1 {
		heap.Pop(f)
	}
}

// assignStranded places units the growth loop could not reach. A unit goes to
// the territory with the geometrically nearest member; units with no finite
// distance to any member go to the lightest territory.
func (gr *grower) assignStranded() {
	p := gr.partition
	if len(p.Members) == 0 {
		return
	}
	for i := range gr.units {
		if p.owner[i] != -1 {
			continue
		}
		best := -1
		bestDistance := math.Inf(1)
		for t, members := range p.Members {
			for _, m := range members {
				if d := distance(gr.units[i], gr.units[m]); d < bestDistance {
					best, bestDistance = t, d
				}
			}
		}
		if best == -1 {
			best = lightest(p.Weights)
		}
		p.assign(i, best, gr.units[i].EffectiveWeight())
	}
}

func lightest(weights []float64) int {
	best := 0
	for t, w := range weights {
		if w < weights[best] {
			best = t
		}
	}
	return best
}
