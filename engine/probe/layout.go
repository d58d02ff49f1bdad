package probe

import (
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/chewxy/math32"
)

// Layout places the probes of a volume.
type Layout interface {
	// Positions returns the probe positions in bake order.
	//
	// Returns:
	//   - []common.Vec3: world-space positions
	Positions() []common.Vec3
}

// GridLayout fills Bounds with a uniform grid of probes Spacing apart, centered in the bounds.
// Every axis gets at least one probe. Positions are ordered x fastest, then y, then z.
type GridLayout struct {
	Bounds  common.Bounds
	Spacing float32
}

var _ Layout = GridLayout{}

// Counts returns the number of probes along each axis.
//
// Returns:
//   - [3]int: probes along x, y and z
func (g GridLayout) Counts() [3]int {
	size := g.Bounds.Size()
	var counts [3]int
	for i := range 3 {
		counts[i] = 1
		if g.Spacing > 0 && size[i] > 0 {
			counts[i] = int(math32.Floor(size[i]/g.Spacing+1e-4)) + 1
		}
	}
	return counts
}

func (g GridLayout) Positions() []common.Vec3 {
	counts := g.Counts()
	size := g.Bounds.Size()

	var origin common.Vec3
	for i := range 3 {
		span := float32(counts[i]-1) * g.Spacing
		origin[i] = g.Bounds.Min[i] + (size[i]-span)*0.5
	}

	positions := make([]common.Vec3, 0, counts[0]*counts[1]*counts[2])
	for z := range counts[2] {
		for y := range counts[1] {
			for x := range counts[0] {
				positions = append(positions, common.Vec3{
					origin[0] + float32(x)*g.Spacing,
					origin[1] + float32(y)*g.Spacing,
					origin[2] + float32(z)*g.Spacing,
				})
			}
		}
	}
	return positions
}

// PointLayout is an explicit list of probe positions.
type PointLayout []common.Vec3

var _ Layout = PointLayout{}

func (p PointLayout) Positions() []common.Vec3 {
	out := make([]common.Vec3, len(p))
	copy(out, p)
	return out
}
