package territory

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/dpup/territory-planner/server/internal/lib/geo"
)

const (
	gridPaddingRatio   = 0.02
	gridMinPadding     = 0.0005
	gridMinCellDegrees = 0.0001
)

type gridCell struct {
	bound orb.Bound
}

func (c gridCell) polygon() orb.Polygon {
	return c.bound.ToPolygon()
}

// gridPartition splits the padded bounding box of the located units into numReps
// rectangles of roughly square ground shape and assigns units by the cell they
// fall in. Unlocated units go to the lightest cell. When no unit is located the
// units are dealt out in consecutive chunks and no cells are returned.
func gridPartition(units []Unit, numReps int) (*Partition, []gridCell) {
	p := newPartition(len(units), numReps)

	var located []int
	for i, u := range units {
		if u.Located() {
			located = append(located, i)
		}
	}

	if len(located) == 0 {
		perRep := (len(units) + numReps - 1) / numReps
		for i, u := range units {
			p.assign(i, i/perRep, u.EffectiveWeight())
		}
		return p, nil
	}

	points := make([]orb.Point, len(located))
	for i, idx := range located {
		points[i] = units[idx].point()
	}
	bound := orb.MultiPoint(points).Bound()
	padLon := math.Max((bound.Max[0]-bound.Min[0])*gridPaddingRatio, gridMinPadding)
	padLat := math.Max((bound.Max[1]-bound.Min[1])*gridPaddingRatio, gridMinPadding)
	bound = orb.Bound{
		Min: orb.Point{bound.Min[0] - padLon, bound.Min[1] - padLat},
		Max: orb.Point{bound.Max[0] + padLon, bound.Max[1] + padLat},
	}

	width, height := bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]
	lonScale := math.Cos(bound.Center()[1] * math.Pi / 180)
	cols, rows := gridDimensions(width*lonScale, height, numReps)
	cellWidth, cellHeight := width/float64(cols), height/float64(rows)

	cells := make([]gridCell, 0, numReps)
	for r := 0; r < rows && len(cells) < numReps; r++ {
		for c := 0; c < cols && len(cells) < numReps; c++ {
			west := bound.Min[0] + float64(c)*cellWidth
			south := bound.Min[1] + float64(r)*cellHeight
			cells = append(cells, gridCell{bound: orb.Bound{
				Min: orb.Point{west, south},
				Max: orb.Point{west + cellWidth, south + cellHeight},
			}})
		}
	}

	for _, i := range located {
		pt := units[i].point()
		col := clamp(int(math.Floor((pt[0]-bound.Min[0])/cellWidth)), 0, cols-1)
		row := clamp(int(math.Floor((pt[1]-bound.Min[1])/cellHeight)), 0, rows-1)

		cell := row*cols + col
		if cell >= len(cells) {
			cell = nearestCell(cells, pt, lonScale)
		}
		p.assign(i, cell, units[i].EffectiveWeight())
	}

	for i, u := range units {
		if !u.Located() {
			p.assign(i, lightest(p.Weights), u.EffectiveWeight())
		}
	}

	return p, cells
}

// gridDimensions picks the column count whose cells are closest to square.
func gridDimensions(width, height float64, numReps int) (int, int) {
	bestCols, bestRows := 1, numReps
	bestAspect := math.Inf(1)
	for cols := 1; cols <= numReps; cols++ {
		rows := (numReps + cols - 1) / cols
		cellW := width / float64(cols)
		cellH := height / float64(rows)
		shorter := math.Min(cellW, cellH)
		if shorter == 0 {
			shorter = gridMinCellDegrees
		}
		if aspect := math.Max(cellW, cellH) / shorter; aspect < bestAspect {
			bestAspect, bestCols, bestRows = aspect, cols, rows
		}
	}
	return bestCols, bestRows
}

func nearestCell(cells []gridCell, pt orb.Point, lonScale float64) int {
	best := 0
	bestDistance := math.Inf(1)
	for i, c := range cells {
		center := c.bound.Center()
		d := math.Hypot(pt[1]-center[1], (pt[0]-center[0])*lonScale)
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return best
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// cellBounds converts a cell to result bounds.
func cellBounds(c gridCell) *geo.Bounds {
	return &geo.Bounds{West: c.bound.Min[0], South: c.bound.Min[1], East: c.bound.Max[0], North: c.bound.Max[1]}
}
