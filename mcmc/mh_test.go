package mcmc

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/baymc/baymc/dist"
)

func gammaTarget(shape, rate float64) Target {
	return func(x float64) float64 {
		return dist.GammaLogPDF(x, shape, rate)
	}
}

func newSampler(target Target, seed uint64) *MH {
	m := NewMH(target, rand.NewPCG(seed, seed+1))
	m.Quiet = true
	return m
}

func TestRunValidation(tst *testing.T) {
	m := newSampler(gammaTarget(2, 2), 1)
	if _, err := m.Run(NormalWalk(1), 1, 0); err == nil {
		tst.Error("Expected error for zero iterations")
	}
	if _, err := m.Run(nil, 1, 10); err == nil {
		tst.Error("Expected error for missing proposal")
	}
	if _, err := m.Run(NormalWalk(1), -1, 10); err == nil {
		tst.Error("Expected error for an initial state outside of the support")
	}
}

func TestDeterminism(tst *testing.T) {
	run := func() *Chain {
		m := newSampler(gammaTarget(4.3, 6.2), 42)
		chain, err := m.Run(NormalWalk(0.5), 1, 2000)
		if err != nil {
			tst.Fatal(err)
		}
		return chain
	}
	c1 := run()
	c2 := run()
	if c1.Len() != c2.Len() {
		tst.Fatal("Chain lengths differ")
	}
	for i := 0; i < c1.Len(); i++ {
		if c1.Row(i)[0] != c2.Row(i)[0] {
			tst.Fatalf("Chains differ at iteration %d: %v vs %v", i, c1.Row(i)[0], c2.Row(i)[0])
		}
	}
}

func TestRejectionKeepsState(tst *testing.T) {
	// every proposal is outside of the support, so the chain never moves
	m := newSampler(gammaTarget(2, 2), 7)
	p := IndependentProposal{
		Draw:       func(rng *rand.Rand) float64 { return -1 - rng.Float64() },
		LogDensity: func(y float64) float64 { return 0 },
	}
	chain, err := m.Run(p, 0.5, 100)
	if err != nil {
		tst.Fatal(err)
	}
	if chain.Len() != 101 {
		tst.Fatal("Incorrect chain length:", chain.Len())
	}
	for i := 0; i < chain.Len(); i++ {
		if chain.Row(i)[0] != 0.5 {
			tst.Fatalf("Rejected iteration %d should repeat the previous state", i)
		}
	}
}

func TestWalkProposalSymmetry(tst *testing.T) {
	if NormalWalk(1).LogRatio(0.3, 0.7) != 0 {
		tst.Error("Symmetric walk should have zero log ratio")
	}
	if UniformWalk(1).LogRatio(0.3, 0.7) != 0 {
		tst.Error("Symmetric walk should have zero log ratio")
	}
}

func TestIndependentProposalLogRatio(tst *testing.T) {
	g := func(y float64) float64 { return -y }
	p := IndependentProposal{LogDensity: g}
	if p.LogRatio(1, 3) != 2 {
		tst.Error("Incorrect independent proposal log ratio")
	}
}

// Independent MH with a Gamma(4.3, 6.2) target and a Gamma(5, 6)
// proposal: the empirical mean converges to 4.3/6.2.
func TestIndependentGamma(tst *testing.T) {
	src := rand.NewPCG(2026, 2027)
	m := NewMH(gammaTarget(4.3, 6.2), src)
	m.Quiet = true
	prop := distuv.Gamma{Alpha: 5, Beta: 6, Src: src}
	p := IndependentProposal{
		Draw:       func(rng *rand.Rand) float64 { return prop.Rand() },
		LogDensity: prop.LogProb,
	}
	chain, err := m.Run(p, 4.3/6.2, 100000)
	if err != nil {
		tst.Fatal(err)
	}
	mean, err := chain.Mean(0, 1000)
	if err != nil {
		tst.Fatal(err)
	}
	if math.Abs(mean-4.3/6.2) > 0.02 {
		tst.Errorf("Empirical mean %v too far from %v", mean, 4.3/6.2)
	}
}
