// Package hier implements a hybrid Gibbs sampler for a hierarchical
// binomial model: independent success probabilities p_i with a shared
// Beta(a, b) prior, where the hyperparameters a and b carry gamma
// hyperpriors and lack closed-form conditionals. The probability step
// is conjugate, the hyperparameter steps are nested random-walk
// Metropolis-Hastings updates.
package hier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/baymc/baymc/conjugate"
	"github.com/baymc/baymc/dist"
	"github.com/baymc/baymc/mcmc"
)

// log is the global logging variable.
var log = logging.MustGetLogger("hier")

// Config holds the fixed algorithm parameters of the hybrid sampler.
type Config struct {
	// Iterations is the chain length.
	Iterations int
	// BurnIn rows are discarded for point estimates.
	BurnIn int
	// Alpha and Beta are the gamma hyperprior parameters shared by
	// both hyperparameters.
	Alpha, Beta float64
	// Spread is the fixed standard deviation of the random walk on
	// the hyperparameters.
	Spread float64
	// A0 and B0 are the initial hyperparameter values.
	A0, B0 float64
	// RepPeriod controls trajectory reporting, AccPeriod the
	// acceptance rate reporting.
	RepPeriod int
	AccPeriod int
	Quiet     bool
}

// Result bundles the emitted chain with the column-mean point
// estimates. The chain columns are a, b, p1..pn.
type Result struct {
	Chain *mcmc.Chain

	AEst, BEst float64
	PEst       []float64
}

// Sampler is a Gibbs sampler over (p, a, b) with Metropolis-Hastings
// sub-steps for a and b.
type Sampler struct {
	cfg       Config
	successes []int
	trials    []int
	np        int
	rng       *rand.Rand
	src       rand.Source
}

// New validates the configuration and creates a sampler. The source
// must not be shared with another concurrently running chain.
func New(successes, trials []int, cfg Config, src rand.Source) (*Sampler, error) {
	if len(successes) == 0 {
		return nil, errors.New("empty sample")
	}
	if len(successes) != len(trials) {
		return nil, errors.Errorf("successes and trials disagree in length: %d vs %d", len(successes), len(trials))
	}
	for i := range successes {
		if successes[i] < 0 || trials[i] < successes[i] {
			return nil, errors.Errorf("invalid counts at %d: %d successes of %d trials", i, successes[i], trials[i])
		}
	}
	if cfg.Iterations <= 0 {
		return nil, errors.Errorf("number of iterations should be positive, got %d", cfg.Iterations)
	}
	if cfg.BurnIn < 0 || cfg.BurnIn > cfg.Iterations {
		return nil, errors.Errorf("burn-in %d out of range for %d iterations", cfg.BurnIn, cfg.Iterations)
	}
	if cfg.Alpha <= 0 || cfg.Beta <= 0 {
		return nil, errors.Errorf("gamma hyperprior parameters must be > 0, got (%v, %v)", cfg.Alpha, cfg.Beta)
	}
	if cfg.Spread <= 0 {
		return nil, errors.Errorf("proposal spread must be > 0, got %v", cfg.Spread)
	}
	if cfg.A0 <= 0 || cfg.B0 <= 0 {
		return nil, errors.Errorf("initial hyperparameters must be > 0, got (%v, %v)", cfg.A0, cfg.B0)
	}
	if cfg.RepPeriod <= 0 {
		cfg.RepPeriod = 10
	}
	if cfg.AccPeriod <= 0 {
		cfg.AccPeriod = 200
	}
	return &Sampler{
		cfg:       cfg,
		successes: successes,
		trials:    trials,
		np:        len(successes),
		rng:       rand.New(src),
		src:       src,
	}, nil
}

// logCond evaluates the shared log full conditional of one
// hyperparameter. For the a step, h is a, other is b and sumLog
// carries Σ log p_i; for the b step the hyperparameter roles swap and
// sumLog carries Σ log(1-p_i).
func (s *Sampler) logCond(h, other, sumLog float64) float64 {
	return -float64(s.np)*dist.LnBeta(h, other) +
		(s.cfg.Alpha-1)*math.Log(h) - s.cfg.Beta*h + h*sumLog
}

// step performs one random-walk Metropolis-Hastings update of a
// hyperparameter. Negative candidates are rejected deterministically.
func (s *Sampler) step(h, other, sumLog float64) (float64, bool) {
	y := h + s.rng.NormFloat64()*s.cfg.Spread
	if y < 0 {
		return h, false
	}
	logRho := s.logCond(y, other, sumLog) - s.logCond(h, other, sumLog)
	if mcmc.Accept(s.rng, logRho) {
		return y, true
	}
	return h, false
}

// Run generates the (a, b, p) chain of length Iterations+1 including
// the initial state. Within an iteration, a is updated first, b uses
// the new a, and every p_i is drawn with the new pair.
func (s *Sampler) Run() (*Result, error) {
	names := make([]string, 2+s.np)
	names[0], names[1] = "a", "b"
	for i := 0; i < s.np; i++ {
		names[2+i] = "p" + strconv.Itoa(i+1)
	}
	chain := mcmc.NewChain(names, s.cfg.Iterations+1)

	a, b := s.cfg.A0, s.cfg.B0
	p := make([]float64, s.np)
	state := make([]float64, 2+s.np)

	// initial p draws from the conjugate posterior at (a0, b0)
	s.drawProbs(p, a, b)
	record := func(i int) {
		state[0], state[1] = a, b
		copy(state[2:], p)
		chain.Append(state...)
		if !s.cfg.Quiet && i%s.cfg.RepPeriod == 0 {
			fmt.Printf("%d\t%s\n", i, chain.RowString(i))
		}
	}
	if !s.cfg.Quiet {
		fmt.Printf("iteration\t%s\n", chain.NamesString())
	}
	record(0)

	accepted := 0
	for i := 1; i <= s.cfg.Iterations; i++ {
		if i%s.cfg.AccPeriod == 0 {
			log.Debugf("Hyperparameter acceptance rate %.2f%%",
				100*float64(accepted)/float64(2*s.cfg.AccPeriod))
			accepted = 0
		}

		var sumLogP, sumLog1P float64
		for _, pi := range p {
			sumLogP += math.Log(pi)
			sumLog1P += math.Log(1 - pi)
		}

		var ok bool
		if a, ok = s.step(a, b, sumLogP); ok {
			accepted++
		}
		if b, ok = s.step(b, a, sumLog1P); ok {
			accepted++
		}
		s.drawProbs(p, a, b)

		record(i)
	}
	log.Debug("Finished hybrid Gibbs sampling")

	means, err := chain.Means(s.cfg.BurnIn)
	if err != nil {
		return nil, err
	}
	return &Result{
		Chain: chain,
		AEst:  means[0],
		BEst:  means[1],
		PEst:  means[2:],
	}, nil
}

// drawProbs draws every success probability from its Beta-Binomial
// conjugate posterior under the current hyperparameters.
func (s *Sampler) drawProbs(p []float64, a, b float64) {
	prior := conjugate.BetaParams{A: a, B: b}
	for i := range p {
		post := conjugate.BetaBinomial(prior, s.successes[i], s.trials[i])
		p[i] = distuv.Beta{Alpha: post.A, Beta: post.B, Src: s.src}.Rand()
	}
}

// PosteriorParams returns the per-iteration Beta posterior parameters
// of probability i implied by the chain's hyperparameter trajectory.
// Interval estimators consume these as posterior replicates.
func (r *Result) PosteriorParams(s *Sampler, i, burnin int) ([]conjugate.BetaParams, error) {
	if i < 0 || i >= s.np {
		return nil, errors.Errorf("probability index %d out of range", i)
	}
	if burnin < 0 || burnin >= r.Chain.Len() {
		return nil, errors.Errorf("burn-in %d out of range for chain of length %d", burnin, r.Chain.Len())
	}
	params := make([]conjugate.BetaParams, 0, r.Chain.Len()-burnin)
	for t := burnin; t < r.Chain.Len(); t++ {
		row := r.Chain.Row(t)
		prior := conjugate.BetaParams{A: row[0], B: row[1]}
		params = append(params, conjugate.BetaBinomial(prior, s.successes[i], s.trials[i]))
	}
	return params, nil
}
