/*

Baymc runs Markov chain Monte Carlo samplers for approximate Bayesian
posterior inference and post-processes the resulting chains into point
and credible interval estimates.

Three scenarios are built in:

	baymc mh

runs an independent-proposal Metropolis-Hastings sampler with a gamma
target and a gamma proposal.

	baymc mixture data.txt

fits a k-component normal mixture to whitespace-separated observations
using Gibbs sampling with latent allocations.

	baymc polls --x 727 --n 1447 --x 583 --n 1263

runs the hybrid Gibbs sampler for hierarchical binomial data.

To see all the options run:

	baymc --help

*/
package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/baymc/baymc/checkpoint"
	"github.com/baymc/baymc/conjugate"
	"github.com/baymc/baymc/credible"
	"github.com/baymc/baymc/dist"
	"github.com/baymc/baymc/hier"
	"github.com/baymc/baymc/mcmc"
	"github.com/baymc/baymc/mixture"
)

// These variables are set during the compilation.
var githash = ""
var buildstamp = ""
var version = fmt.Sprintf("revision: %s, build time: %s", githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("baymc")
var formatter = logging.MustStringFormatter(`%{message}`)

var (
	app = kingpin.New("baymc", "Bayesian MCMC samplers and credible set estimators").Version(version)

	scenario = app.Arg("scenario", "sampler to run (mh, mixture or polls)").Required().Enum("mh", "mixture", "polls")
	dataFile = app.Arg("data", "observations, whitespace-separated floats (mixture only)").ExistingFile()

	iterations = app.Flag("iter", "number of iterations").Default("10000").Int()
	burnIn     = app.Flag("burnin", "iterations to discard for point estimates (10% by default)").Default("-1").Int()
	report     = app.Flag("report", "report every N iterations").Default("10").Int()
	accept     = app.Flag("accept", "report acceptance rate every N iterations").Default("200").Int()
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	quiet      = app.Flag("quiet", "don't print the trajectory").Bool()
	level      = app.Flag("alpha", "credible level complement alpha").Default("0.05").Float64()

	// mh scenario
	tgtShape = app.Flag("tshape", "target gamma shape").Default("4.3").Float64()
	tgtRate  = app.Flag("trate", "target gamma rate").Default("6.2").Float64()
	prShape  = app.Flag("pshape", "proposal gamma shape").Default("5").Float64()
	prRate   = app.Flag("prate", "proposal gamma rate").Default("6").Float64()

	// mixture scenario
	ncomp = app.Flag("k", "number of mixture components").Default("2").Int()

	// polls scenario
	succ   = app.Flag("x", "per-poll success count (repeat per poll)").Ints()
	trials = app.Flag("n", "per-poll trial count (repeat per poll)").Ints()
	hAlpha = app.Flag("halpha", "gamma hyperprior shape").Default("6.25").Float64()
	hBeta  = app.Flag("hbeta", "gamma hyperprior rate").Default("0.025").Float64()
	spread = app.Flag("spread", "hyperparameter random-walk spread").Default("1").Float64()

	outLogF      = app.Flag("log", "write log to a file").String()
	logLevel     = app.Flag("loglevel", "set loglevel (critical, error, warning, notice, info, debug)").Default("notice").Enum("critical", "error", "warning", "notice", "info", "debug")
	checkpointF  = app.Flag("checkpoint", "checkpoint database filename").String()
	checkpointDT = app.Flag("cpinterval", "checkpoint save interval in seconds").Default("30").Float64()
)

// readFloats reads whitespace-separated floats from a file.
func readFloats(fn string) ([]float64, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	var result []float64
	for scanner.Scan() {
		x, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, err
		}
		result = append(result, x)
	}
	return result, scanner.Err()
}

func printInterval(name string, iv credible.Interval, err error) {
	if err != nil {
		log.Errorf("%s interval: %v", name, err)
		return
	}
	flag := ""
	if !iv.Reliable {
		flag = " (unreliable)"
	}
	log.Noticef("%s: [%f, %f], width %f%s", name, iv.Lower, iv.Upper, iv.Width(), flag)
}

func runMH(src rand.Source, db *bolt.DB) {
	target := func(x float64) float64 {
		return dist.GammaLogPDF(x, *tgtShape, *tgtRate)
	}
	prop := distuv.Gamma{Alpha: *prShape, Beta: *prRate, Src: src}
	proposal := mcmc.IndependentProposal{
		Draw:       func(rng *rand.Rand) float64 { return prop.Rand() },
		LogDensity: prop.LogProb,
	}

	m := mcmc.NewMH(target, src)
	m.RepPeriod = *report
	m.AccPeriod = *accept
	m.Quiet = *quiet
	if db != nil {
		m.SetCheckpoint(checkpoint.NewIO(db, []byte("mh"), *checkpointDT))
	}

	x0 := *tgtShape / *tgtRate
	chain, err := m.Run(proposal, x0, *iterations)
	if err != nil {
		log.Fatal(err)
	}

	mean, err := chain.Mean(0, defaultBurnIn(chain.Len()))
	if err != nil {
		log.Fatal(err)
	}
	log.Noticef("posterior mean: %f", mean)

	marginal := chain.Marginal(0)
	iv, err := credible.OrderStatistic(marginal, *level)
	printInterval("order-statistic", iv, err)
	iv, err = credible.ChenShao(marginal, *level)
	printInterval("Chen-Shao", iv, err)
}

func runMixture(src rand.Source) {
	if *dataFile == "" {
		log.Fatal("the mixture scenario needs a data file")
	}
	data, err := readFloats(*dataFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Read %d observations", len(data))

	_, v := meanVar(data)
	cfg := mixture.Config{
		K:          *ncomp,
		Iterations: *iterations,
		BurnIn:     defaultBurnIn(*iterations),
		Component: conjugate.NormalInvGammaParams{
			Delta:  0,
			Lambda: 0.1,
			Tau:    2,
			Beta:   v,
		},
		RepPeriod: *report,
		Quiet:     *quiet,
	}
	s, err := mixture.New(data, cfg, src)
	if err != nil {
		log.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		log.Fatal(err)
	}
	log.Noticef("weights: %v", floatsString(res.WeightEst))
	log.Noticef("means: %v", floatsString(res.MeanEst))
	log.Noticef("variances: %v", floatsString(res.VarianceEst))
}

func runPolls(src rand.Source) {
	if len(*succ) == 0 || len(*succ) != len(*trials) {
		log.Fatal("the polls scenario needs matching --x and --n flags")
	}
	cfg := hier.Config{
		Iterations: *iterations,
		BurnIn:     defaultBurnIn(*iterations),
		Alpha:      *hAlpha,
		Beta:       *hBeta,
		Spread:     *spread,
		A0:         *hAlpha / *hBeta,
		B0:         *hAlpha / *hBeta,
		RepPeriod:  *report,
		AccPeriod:  *accept,
		Quiet:      *quiet,
	}
	s, err := hier.New(*succ, *trials, cfg, src)
	if err != nil {
		log.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		log.Fatal(err)
	}
	log.Noticef("a=%f b=%f", res.AEst, res.BEst)

	for i, p := range res.PEst {
		log.Noticef("p%d=%f", i+1, p)
		params, err := res.PosteriorParams(s, i, cfg.BurnIn)
		if err != nil {
			log.Fatal(err)
		}
		marginal := res.Chain.Marginal(2 + i)

		iv, err := credible.Naive(params, *level)
		printInterval("naive", iv, err)
		iv, err = credible.OrderStatistic(marginal, *level)
		printInterval("order-statistic", iv, err)
		iv, err = credible.CMDE(marginal, params, *level)
		printInterval("CMDE", iv, err)
		iv, err = credible.WeightedAverage(marginal, params, *level)
		printInterval("weighted-average", iv, err)
		iv, err = credible.ChenShao(marginal, *level)
		printInterval("Chen-Shao", iv, err)

		var pooled conjugate.BetaParams
		for _, p := range params {
			pooled.A += p.A / float64(len(params))
			pooled.B += p.B / float64(len(params))
		}
		iv, err = credible.AnalyticHPD(pooled, *level)
		printInterval("analytic HPD", iv, err)
	}
}

func defaultBurnIn(iterations int) int {
	if *burnIn >= 0 {
		return *burnIn
	}
	return iterations / 10
}

func meanVar(xs []float64) (mean, variance float64) {
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

func floatsString(v []float64) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(s, "\t")
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	lvl, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, module := range []string{"baymc", "mcmc", "mixture", "hier", "credible", "checkpoint"} {
		logging.SetLevel(lvl, module)
	}

	log.Info(version)
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)
	src := rand.NewPCG(uint64(*seed), uint64(*seed)+1)

	var db *bolt.DB
	if *checkpointF != "" {
		db, err = bolt.Open(*checkpointF, 0666, nil)
		if err != nil {
			log.Fatal("Error opening checkpoint database:", err)
		}
		defer db.Close()
	}

	switch *scenario {
	case "mh":
		runMH(src, db)
	case "mixture":
		runMixture(src)
	case "polls":
		runPolls(src)
	}
}
