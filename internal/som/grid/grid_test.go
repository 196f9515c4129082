package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCartesian2DDistances(t *testing.T) {
	g, err := NewCartesian([]int{10, 10})
	require.NoError(t, err)
	require.Equal(t, 100, g.Size())

	require.Equal(t, 0.0, g.Distance(Coord{Axes: []int{0, 0}}, Coord{Axes: []int{0, 0}}))
	require.Equal(t, 1.0, g.Distance(Coord{Axes: []int{0, 0}}, Coord{Axes: []int{0, 1}}))
	require.InDelta(t, math.Sqrt2, g.Distance(Coord{Axes: []int{0, 0}}, Coord{Axes: []int{1, 1}}), 1e-12)
}

func TestCartesianSymmetryAndTriangleInequality(t *testing.T) {
	g, err := NewCartesian([]int{4, 4, 4})
	require.NoError(t, err)
	pts := g.Enumerate()
	for _, a := range pts {
		for _, b := range pts {
			dab := g.Distance(a, b)
			dba := g.Distance(b, a)
			require.InDelta(t, dab, dba, 1e-12)
			require.GreaterOrEqual(t, dab, 0.0)
			if dab == 0 {
				require.Equal(t, a.Axes, b.Axes)
			}
		}
	}
}

func TestCartesianRowMajorIndex(t *testing.T) {
	g, err := NewCartesian([]int{2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 0, g.Index(Coord{Axes: []int{0, 0, 0}}))
	require.Equal(t, 1, g.Index(Coord{Axes: []int{0, 0, 1}}))
	require.Equal(t, 4, g.Index(Coord{Axes: []int{0, 1, 0}}))
	require.Equal(t, 12, g.Index(Coord{Axes: []int{1, 0, 0}}))
	require.Equal(t, 23, g.Index(Coord{Axes: []int{1, 2, 3}}))
}

func TestCartesianRejectsNonPositiveExtent(t *testing.T) {
	_, err := NewCartesian([]int{4, 0})
	require.Error(t, err)
}

func TestCartesianEnumerateVisitsEveryCellOnce(t *testing.T) {
	g, err := NewCartesian([]int{3, 2})
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, c := range g.Enumerate() {
		idx := g.Index(c)
		require.False(t, seen[idx], "index %d visited twice", idx)
		seen[idx] = true
	}
	require.Len(t, seen, g.Size())
}

func TestHexagonalSize(t *testing.T) {
	for r := 0; r <= 4; r++ {
		h, err := NewHexagonal(r)
		require.NoError(t, err)
		want := 1 + 3*r*(r+1)
		require.Equal(t, want, h.Size())
		require.Len(t, h.Enumerate(), want)
	}
}

func TestHexagonalDistance(t *testing.T) {
	h, err := NewHexagonal(3)
	require.NoError(t, err)
	origin := Coord{Axes: []int{0, 0}}
	require.Equal(t, 0.0, h.Distance(origin, origin))
	neighbor := Coord{Axes: []int{1, 0}}
	require.Equal(t, 1.0, h.Distance(origin, neighbor))
	require.Equal(t, h.Distance(origin, neighbor), h.Distance(neighbor, origin))
}

func TestHexagonalRejectsNegativeRadius(t *testing.T) {
	_, err := NewHexagonal(-1)
	require.Error(t, err)
}
