package mcmc

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/baymc/baymc/checkpoint"
)

// log is the global logging variable.
var log = logging.MustGetLogger("mcmc")

// Target computes the log of an unnormalized target density. It
// returns -Inf outside of the support.
type Target func(x float64) float64

// MH is a Metropolis-Hastings sampler producing a chain of draws from
// a scalar target density.
type MH struct {
	target Target
	rng    *rand.Rand
	// RepPeriod controls trajectory reporting, AccPeriod the
	// acceptance rate reporting.
	RepPeriod int
	AccPeriod int
	Quiet     bool
	cp        *checkpoint.IO
}

// NewMH creates a new MH sampler drawing randomness from src. The
// source must not be shared with another concurrently running chain.
func NewMH(target Target, src rand.Source) *MH {
	if target == nil {
		panic("nil target")
	}
	return &MH{
		target:    target,
		rng:       rand.New(src),
		RepPeriod: 10,
		AccPeriod: 200,
	}
}

// SetCheckpoint makes the sampler save its progress periodically.
func (m *MH) SetCheckpoint(cp *checkpoint.IO) {
	m.cp = cp
}

// Run produces a chain of length iterations+1 starting from x0. A
// proposal falling outside of the support of the target is rejected
// deterministically; a rejected iteration repeats the previous state
// exactly.
func (m *MH) Run(p Proposal, x0 float64, iterations int) (*Chain, error) {
	if iterations <= 0 {
		return nil, errors.Errorf("number of iterations should be positive, got %d", iterations)
	}
	if p == nil {
		return nil, errors.New("no proposal specified")
	}
	lx := m.target(x0)
	if math.IsInf(lx, -1) || math.IsNaN(lx) {
		return nil, errors.Errorf("initial state %v has zero target density", x0)
	}

	chain := NewChain([]string{"x"}, iterations+1)
	chain.Append(x0)
	x := x0

	if !m.Quiet {
		fmt.Printf("iteration\tlogdensity\t%s\n", chain.NamesString())
	}

	accepted := 0
	for i := 1; i <= iterations; i++ {
		if i%m.AccPeriod == 0 {
			log.Debugf("Acceptance rate %.2f%%", 100*float64(accepted)/float64(m.AccPeriod))
			accepted = 0
		}

		y := p.Propose(m.rng, x)
		ly := m.target(y)
		if !math.IsInf(ly, -1) && !math.IsNaN(ly) {
			logRho := ly - lx + p.LogRatio(x, y)
			if Accept(m.rng, logRho) {
				x, lx = y, ly
				accepted++
			}
		}
		chain.Append(x)

		if !m.Quiet && i%m.RepPeriod == 0 {
			fmt.Printf("%d\t%f\t%s\n", i, lx, chain.RowString(i))
		}
		if m.cp != nil && m.cp.Old() {
			m.saveCheckpoint(i, x, lx, false)
		}
	}
	if m.cp != nil {
		m.saveCheckpoint(iterations, x, lx, true)
	}
	log.Debug("Finished MCMC")

	return chain, nil
}

func (m *MH) saveCheckpoint(iter int, x, lx float64, final bool) {
	data := &checkpoint.Data{
		Parameters: map[string]float64{"x": x},
		LogDensity: lx,
		Iter:       iter,
		Final:      final,
	}
	if err := m.cp.Save(data); err != nil {
		log.Error("Error saving checkpoint:", err)
	}
}
