package probe

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/stretchr/testify/assert"
)

func TestGridLayoutCentersProbes(t *testing.T) {
	g := GridLayout{
		Bounds:  common.Bounds{Min: common.Vec3{0, 0, 0}, Max: common.Vec3{5, 0, 2}},
		Spacing: 2,
	}
	assert.Equal(t, [3]int{3, 1, 2}, g.Counts())

	pos := g.Positions()
	assert.Len(t, pos, 6)
	assert.Equal(t, common.Vec3{0.5, 0, 0}, pos[0])
	assert.Equal(t, common.Vec3{2.5, 0, 0}, pos[1])
	assert.Equal(t, common.Vec3{4.5, 0, 0}, pos[2])
	assert.Equal(t, common.Vec3{0.5, 0, 2}, pos[3])
	for _, p := range pos {
		assert.True(t, g.Bounds.Contains(p))
	}
}

func TestGridLayoutWithoutSpacingIsSingleProbe(t *testing.T) {
	g := GridLayout{Bounds: common.Bounds{Min: common.Vec3{-1, -1, -1}, Max: common.Vec3{1, 1, 1}}}
	assert.Equal(t, []common.Vec3{{0, 0, 0}}, g.Positions())
}

func TestPointLayoutCopies(t *testing.T) {
	p := PointLayout{{1, 2, 3}}
	out := p.Positions()
	out[0][0] = 9
	assert.Equal(t, float32(1), p[0][0])
}
