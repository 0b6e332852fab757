// Package rng provides the seeded random engine used for stochastic
// smearing.
//
// Reproducibility of smeared quantities depends only on the seed, so the
// caller reseeds the engine per event (typically from the event number).
package rng

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian implements quarry.RandomEngine. It is not safe for concurrent
// use.
type Gaussian struct {
	src rand.Source
}

// New creates an engine with the given seed
func New(seed uint64) *Gaussian {
	return &Gaussian{src: rand.NewSource(seed)}
}

// Seed resets the engine state
func (g *Gaussian) Seed(seed uint64) {
	g.src.Seed(seed)
}

// Gaus returns a sample of the normal distribution with the given mean and
// width. A non-positive width returns the mean.
func (g *Gaussian) Gaus(mean, sigma float64) float64 {
	if sigma <= 0 {
		return mean
	}
	return distuv.Normal{Mu: mean, Sigma: sigma, Src: g.src}.Rand()
}
