// Package mixture implements a Gibbs sampler with latent-variable data
// augmentation for finite mixtures of normal components.
package mixture

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/baymc/baymc/conjugate"
	"github.com/baymc/baymc/mcmc"
)

// log is the global logging variable.
var log = logging.MustGetLogger("mixture")

// Config holds the fixed algorithm parameters of the mixture sampler.
type Config struct {
	// K is the number of mixture components.
	K int
	// Iterations is the chain length.
	Iterations int
	// BurnIn rows are discarded for point estimates.
	BurnIn int
	// Concentration is the Dirichlet prior on the mixture
	// weights; nil means a flat unit concentration.
	Concentration []float64
	// Component is the normal-inverse-gamma prior shared by all
	// components.
	Component conjugate.NormalInvGammaParams
	// RepPeriod controls trajectory reporting.
	RepPeriod int
	Quiet     bool
}

// Result bundles the emitted chains with the column-mean point
// estimates.
type Result struct {
	Weights   *mcmc.Chain
	Means     *mcmc.Chain
	Variances *mcmc.Chain

	WeightEst   []float64
	MeanEst     []float64
	VarianceEst []float64
}

// Sampler is a Gibbs sampler over latent allocations, mixture weights
// and per-component normal parameters.
type Sampler struct {
	cfg   Config
	data  []float64
	gamma []float64
	src   rand.Source
	rng   *rand.Rand

	// current state
	weights []float64
	mu      []float64
	sigma2  []float64
	z       []int
}

// New validates the configuration and creates a sampler. The source
// must not be shared with another concurrently running chain.
func New(data []float64, cfg Config, src rand.Source) (*Sampler, error) {
	if len(data) == 0 {
		return nil, errors.New("empty sample")
	}
	if cfg.K <= 0 {
		return nil, errors.Errorf("number of components should be positive, got %d", cfg.K)
	}
	if cfg.Iterations <= 0 {
		return nil, errors.Errorf("number of iterations should be positive, got %d", cfg.Iterations)
	}
	if cfg.BurnIn < 0 || cfg.BurnIn >= cfg.Iterations {
		return nil, errors.Errorf("burn-in %d out of range for %d iterations", cfg.BurnIn, cfg.Iterations)
	}
	if !cfg.Component.Valid() {
		return nil, errors.Errorf("invalid component prior %+v", cfg.Component)
	}
	gamma := cfg.Concentration
	if gamma == nil {
		gamma = make([]float64, cfg.K)
		for j := range gamma {
			gamma[j] = 1
		}
	}
	if len(gamma) != cfg.K {
		return nil, errors.Errorf("concentration vector length %d does not match k=%d", len(gamma), cfg.K)
	}
	for _, g := range gamma {
		if g <= 0 {
			return nil, errors.New("concentration parameters must be > 0")
		}
	}
	if cfg.RepPeriod <= 0 {
		cfg.RepPeriod = 10
	}

	s := &Sampler{
		cfg:     cfg,
		data:    data,
		gamma:   gamma,
		src:     src,
		rng:     rand.New(src),
		weights: make([]float64, cfg.K),
		mu:      make([]float64, cfg.K),
		sigma2:  make([]float64, cfg.K),
		z:       make([]int, len(data)),
	}
	s.init()
	return s, nil
}

// init partitions the observed range into k equal bins and uses the
// per-bin empirical proportion, mean and variance as the starting
// state. This reduces, but does not eliminate, the risk of the chain
// getting trapped in a poor mode.
func (s *Sampler) init() {
	k := s.cfg.K
	lo, hi := s.data[0], s.data[0]
	for _, x := range s.data {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	width := (hi - lo) / float64(k)

	// overall variance for empty-bin fallbacks
	_, ov := moments(s.data)

	for i, x := range s.data {
		j := 0
		if width > 0 {
			j = int((x - lo) / width)
			if j >= k {
				j = k - 1
			}
		}
		s.z[i] = j
	}
	n := float64(len(s.data))
	for j := 0; j < k; j++ {
		var bin []float64
		for i, x := range s.data {
			if s.z[i] == j {
				bin = append(bin, x)
			}
		}
		if len(bin) == 0 {
			s.weights[j] = 1 / n
			s.mu[j] = lo + (float64(j)+0.5)*width
			s.sigma2[j] = ov
			continue
		}
		m, v := moments(bin)
		s.weights[j] = float64(len(bin)) / n
		s.mu[j] = m
		if v <= 0 {
			v = ov
		}
		if v <= 0 {
			v = 1
		}
		s.sigma2[j] = v
	}
	log.Debugf("initial means %v, variances %v, weights %v", s.mu, s.sigma2, s.weights)
}

// Run generates the weight, mean and variance chains.
func (s *Sampler) Run() (*Result, error) {
	k := s.cfg.K
	names := func(prefix string) []string {
		ns := make([]string, k)
		for j := range ns {
			ns[j] = prefix + strconv.Itoa(j+1)
		}
		return ns
	}
	res := &Result{
		Weights:   mcmc.NewChain(names("p"), s.cfg.Iterations),
		Means:     mcmc.NewChain(names("mu"), s.cfg.Iterations),
		Variances: mcmc.NewChain(names("var"), s.cfg.Iterations),
	}

	if !s.cfg.Quiet {
		fmt.Printf("iteration\t%s\t%s\t%s\n",
			res.Weights.NamesString(), res.Means.NamesString(), res.Variances.NamesString())
	}

	counts := make([]int, k)
	sums := make([]float64, k)
	probs := make([]float64, k)

	for i := 0; i < s.cfg.Iterations; i++ {
		s.allocate(probs)
		s.drawWeights(counts)
		s.drawComponents(counts, sums)

		res.Weights.Append(s.weights...)
		res.Means.Append(s.mu...)
		res.Variances.Append(s.sigma2...)

		if !s.cfg.Quiet && i%s.cfg.RepPeriod == 0 {
			fmt.Printf("%d\t%s\t%s\t%s\n", i,
				res.Weights.RowString(i), res.Means.RowString(i), res.Variances.RowString(i))
		}
	}
	log.Debug("Finished mixture Gibbs sampling")

	var err error
	if res.WeightEst, err = res.Weights.Means(s.cfg.BurnIn); err != nil {
		return nil, err
	}
	if res.MeanEst, err = res.Means.Means(s.cfg.BurnIn); err != nil {
		return nil, err
	}
	if res.VarianceEst, err = res.Variances.Means(s.cfg.BurnIn); err != nil {
		return nil, err
	}
	return res, nil
}

// allocate re-draws the latent allocation of every observation from
// its discrete full conditional. The categorical draw compares partial
// probability sums against a single uniform variate. Densities are
// combined in the log domain and rescaled by their maximum before
// exponentiation.
func (s *Sampler) allocate(probs []float64) {
	k := s.cfg.K
	for i, x := range s.data {
		max := math.Inf(-1)
		for j := 0; j < k; j++ {
			probs[j] = math.Log(s.weights[j]) + normalLogPDF(x, s.mu[j], s.sigma2[j])
			max = math.Max(max, probs[j])
		}
		var sum float64
		for j := 0; j < k; j++ {
			probs[j] = math.Exp(probs[j] - max)
			sum += probs[j]
		}
		u := s.rng.Float64() * sum
		var acc float64
		s.z[i] = k - 1
		for j := 0; j < k; j++ {
			acc += probs[j]
			if u < acc {
				s.z[i] = j
				break
			}
		}
	}
}

// drawWeights draws the mixture weights from their Dirichlet full
// conditional.
func (s *Sampler) drawWeights(counts []int) {
	for j := range counts {
		counts[j] = 0
	}
	for _, j := range s.z {
		counts[j]++
	}
	alpha := conjugate.DirichletMultinomial(s.gamma, counts)
	distmv.NewDirichlet(alpha, s.src).Rand(s.weights)
}

// drawComponents updates every component's parameters from the
// observations currently allocated to it. Components with no
// observations fall back to the prior.
func (s *Sampler) drawComponents(counts []int, sums []float64) {
	k := s.cfg.K
	for j := 0; j < k; j++ {
		sums[j] = 0
	}
	for i, x := range s.data {
		sums[s.z[i]] += x
	}
	for j := 0; j < k; j++ {
		var mean, ssd float64
		if counts[j] > 0 {
			mean = sums[j] / float64(counts[j])
			for i, x := range s.data {
				if s.z[i] == j {
					d := x - mean
					ssd += d * d
				}
			}
		}
		post := conjugate.NormalInvGamma(s.cfg.Component, counts[j], mean, ssd)
		s.sigma2[j] = distuv.InverseGamma{Alpha: post.Tau, Beta: post.Beta, Src: s.src}.Rand()
		s.mu[j] = distuv.Normal{Mu: post.Delta, Sigma: math.Sqrt(s.sigma2[j] / post.Lambda), Src: s.src}.Rand()
	}
}

func normalLogPDF(x, mu, sigma2 float64) float64 {
	d := x - mu
	return -0.5*d*d/sigma2 - 0.5*math.Log(2*math.Pi*sigma2)
}

func moments(xs []float64) (mean, variance float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return
}
