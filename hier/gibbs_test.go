package hier

import (
	"math"
	"math/rand/v2"
	"testing"
)

var (
	testSuccesses = []int{727, 583, 137, 814}
	testTrials    = []int{1447, 1263, 297, 1637}
)

func testConfig() Config {
	return Config{
		Iterations: 50000,
		BurnIn:     5000,
		Alpha:      6.25,
		Beta:       0.025,
		Spread:     1,
		A0:         250,
		B0:         250,
		Quiet:      true,
	}
}

func TestNewValidation(tst *testing.T) {
	src := rand.NewPCG(1, 2)
	if _, err := New(nil, nil, testConfig(), src); err == nil {
		tst.Error("Expected error for empty sample")
	}
	if _, err := New([]int{1}, []int{1, 2}, testConfig(), src); err == nil {
		tst.Error("Expected error for mismatched lengths")
	}
	if _, err := New([]int{5}, []int{3}, testConfig(), src); err == nil {
		tst.Error("Expected error for more successes than trials")
	}
	cfg := testConfig()
	cfg.Iterations = 0
	if _, err := New(testSuccesses, testTrials, cfg, src); err == nil {
		tst.Error("Expected error for zero iterations")
	}
	cfg = testConfig()
	cfg.Spread = 0
	if _, err := New(testSuccesses, testTrials, cfg, src); err == nil {
		tst.Error("Expected error for zero proposal spread")
	}
	cfg = testConfig()
	cfg.Alpha = -1
	if _, err := New(testSuccesses, testTrials, cfg, src); err == nil {
		tst.Error("Expected error for negative hyperprior shape")
	}
}

func TestPolls(tst *testing.T) {
	cfg := testConfig()
	s, err := New(testSuccesses, testTrials, cfg, rand.NewPCG(2026, 2027))
	if err != nil {
		tst.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		tst.Fatal(err)
	}
	if res.Chain.Len() != cfg.Iterations+1 {
		tst.Fatal("Incorrect chain length:", res.Chain.Len())
	}
	if res.AEst <= 0 || res.BEst <= 0 {
		tst.Errorf("Hyperparameter estimates should be positive: a=%v b=%v", res.AEst, res.BEst)
	}
	for i, p := range res.PEst {
		if p <= 0 || p >= 1 {
			tst.Fatalf("p%d estimate outside of (0, 1): %v", i+1, p)
		}
		// the estimate matches the conjugate point estimate at the
		// estimated hyperparameters
		want := (float64(testSuccesses[i]) + res.AEst) /
			(float64(testTrials[i]) + res.AEst + res.BEst)
		if math.Abs(p-want) > 0.05 {
			tst.Errorf("p%d estimate %v too far from conjugate estimate %v", i+1, p, want)
		}
	}
}

func TestDeterminism(tst *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 2000
	cfg.BurnIn = 200
	run := func() *Result {
		s, err := New(testSuccesses, testTrials, cfg, rand.NewPCG(7, 8))
		if err != nil {
			tst.Fatal(err)
		}
		res, err := s.Run()
		if err != nil {
			tst.Fatal(err)
		}
		return res
	}
	r1 := run()
	r2 := run()
	if r1.AEst != r2.AEst || r1.BEst != r2.BEst {
		tst.Fatal("Hyperparameter chains differ under a fixed seed")
	}
	for i := range r1.PEst {
		if r1.PEst[i] != r2.PEst[i] {
			tst.Fatal("Probability chains differ under a fixed seed")
		}
	}
}

func TestNegativeProposalRejected(tst *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 5000
	cfg.BurnIn = 500
	s, err := New(testSuccesses, testTrials, cfg, rand.NewPCG(13, 14))
	if err != nil {
		tst.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		tst.Fatal(err)
	}
	for i := 0; i < res.Chain.Len(); i++ {
		row := res.Chain.Row(i)
		if row[0] <= 0 || row[1] <= 0 {
			tst.Fatalf("Hyperparameters left the support at iteration %d: %v", i, row[:2])
		}
	}
}

func TestPosteriorParams(tst *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 100
	cfg.BurnIn = 10
	s, err := New(testSuccesses, testTrials, cfg, rand.NewPCG(21, 22))
	if err != nil {
		tst.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		tst.Fatal(err)
	}
	params, err := res.PosteriorParams(s, 0, cfg.BurnIn)
	if err != nil {
		tst.Fatal(err)
	}
	if len(params) != res.Chain.Len()-cfg.BurnIn {
		tst.Fatal("Incorrect number of posterior replicates:", len(params))
	}
	row := res.Chain.Row(cfg.BurnIn)
	if params[0].A != row[0]+float64(testSuccesses[0]) ||
		params[0].B != row[1]+float64(testTrials[0]-testSuccesses[0]) {
		tst.Errorf("Incorrect posterior replicate: %+v", params[0])
	}
	if _, err := res.PosteriorParams(s, 10, cfg.BurnIn); err == nil {
		tst.Error("Expected error for an out-of-range probability index")
	}
}
