package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReproducible(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Gaus(0, 1), b.Gaus(0, 1))
	}

	a.Seed(7)
	first := a.Gaus(0, 1)
	a.Seed(7)
	require.Equal(t, first, a.Gaus(0, 1))
}

func TestZeroWidth(t *testing.T) {
	g := New(1)
	require.Equal(t, 3.5, g.Gaus(3.5, 0))
	require.Equal(t, 3.5, g.Gaus(3.5, -1))
}

func TestMoments(t *testing.T) {
	g := New(2023)
	const n = 20000
	var sum, sum2 float64
	for i := 0; i < n; i++ {
		x := g.Gaus(1, 0.1)
		sum += x
		sum2 += x * x
	}
	mean := sum / n
	sigma := math.Sqrt(sum2/n - mean*mean)
	require.InDelta(t, 1, mean, 0.01)
	require.InDelta(t, 0.1, sigma, 0.01)
}
