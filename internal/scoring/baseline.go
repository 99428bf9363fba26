package scoring

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	// ErrInvalidUniverse is returned for a non-positive universe size.
	ErrInvalidUniverse = errors.New("invalid universe size")

	// ErrInvalidTrials is returned for a non-positive trial count.
	ErrInvalidTrials = errors.New("invalid trial count")
)

// pcgStream is the fixed second PCG word; only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// Params identifies a calibration. Baselines computed with different Params
// are not comparable.
type Params struct {
	TopN   int    `json:"top_n"`
	Trials int    `json:"trials"`
	Seed   uint64 `json:"seed"`
}

// Validate checks that the parameters can drive a simulation.
func (p Params) Validate() error {
	if p.TopN <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopN, p.TopN)
	}
	if p.Trials <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTrials, p.Trials)
	}
	return nil
}

// Baseline is the expected loss distribution for random top-N picks from
// a universe of UniverseSize tracks.
//
// Std is the population standard deviation (divides by Trials). Similarity
// assumes the same convention.
type Baseline struct {
	UniverseSize int     `json:"universe_size"`
	Params       Params  `json:"params"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
}

// NewRand returns the generator Calibrate uses for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// Calibrate estimates the baseline for a universe of k tracks, drawing from
// a generator seeded with p.Seed. Identical arguments give bit-identical
// results.
func Calibrate(k int, p Params) (Baseline, error) {
	if err := p.Validate(); err != nil {
		return Baseline{}, err
	}
	mean, std, err := Simulate(NewRand(p.Seed), k, p.TopN, p.Trials)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{UniverseSize: k, Params: p, Mean: mean, Std: std}, nil
}

// Simulate runs trials independent comparisons of two uniformly random
// ordered picks of min(n, k) items from {0, ..., k-1} and returns the mean
// and population standard deviation of their losses.
//
// All randomness comes from rng, which is advanced in a fixed order.
func Simulate(rng *rand.Rand, k, n, trials int) (mean, std float64, err error) {
	if k <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidUniverse, k)
	}
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidTopN, n)
	}
	if trials <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	if rng == nil {
		return 0, 0, errors.New("nil random generator")
	}

	m := min(n, k)
	pool := make([]int, k)
	for i := range pool {
		pool[i] = i
	}
	y := make(RankSet, m)
	t := make(RankSet, m)

	// Welford's running mean and sum of squared deviations.
	var m2 float64
	for i := range trials {
		sample(rng, pool, y)
		sample(rng, pool, t)

		x := float64(loss(y, t))
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}

	return mean, math.Sqrt(m2 / float64(trials)), nil
}

// sample fills dst with a uniformly random ordered pick from pool using a
// partial Fisher-Yates shuffle. pool is permuted in place; any permutation
// of it is an equally valid starting point.
func sample(rng *rand.Rand, pool []int, dst RankSet) {
	k := len(pool)
	for i := range dst {
		j := i + rng.IntN(k-i)
		pool[i], pool[j] = pool[j], pool[i]
		dst[i] = pool[i]
	}
}

// BaselineStore persists baselines between runs. Load reports ok=false when
// nothing usable is stored for k under the given params.
type BaselineStore interface {
	Load(k int, p Params) (b Baseline, ok bool, err error)
	Save(b Baseline) error
}

// BaselineCache holds at most one Baseline per universe size for one set of
// Params. It is not safe for concurrent use; call Warm before fanning out.
type BaselineCache struct {
	params       Params
	store        BaselineStore
	entries      map[int]Baseline
	calibrations int
	onStoreError func(k int, err error)
}

// NewBaselineCache creates a cache. store may be nil.
func NewBaselineCache(p Params, store BaselineStore) (*BaselineCache, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &BaselineCache{
		params:  p,
		store:   store,
		entries: make(map[int]Baseline),
	}, nil
}

// Params returns the calibration parameters of the cache.
func (c *BaselineCache) Params() Params {
	return c.params
}

// OnStoreError sets the handler for store failures. The store is a cache:
// a failed Load falls back to calibrating and a failed Save keeps the
// computed baseline, so these errors never fail GetOrCompute.
func (c *BaselineCache) OnStoreError(fn func(k int, err error)) {
	c.onStoreError = fn
}

func (c *BaselineCache) storeFailed(k int, err error) {
	if c.onStoreError != nil {
		c.onStoreError(k, err)
	}
}

// GetOrCompute returns the baseline for k, loading it from the store or
// calibrating it on first use. Each k is calibrated at most once per cache.
func (c *BaselineCache) GetOrCompute(k int) (Baseline, error) {
	if b, ok := c.entries[k]; ok {
		return b, nil
	}
	if k <= 0 {
		return Baseline{}, fmt.Errorf("%w: %d", ErrInvalidUniverse, k)
	}

	if c.store != nil {
		b, ok, err := c.store.Load(k, c.params)
		if err != nil {
			c.storeFailed(k, fmt.Errorf("load baseline: %w", err))
		} else if ok && b.UniverseSize == k && b.Params == c.params {
			c.entries[k] = b
			return b, nil
		}
	}

	b, err := Calibrate(k, c.params)
	if err != nil {
		return Baseline{}, fmt.Errorf("calibrate k=%d: %w", k, err)
	}
	c.calibrations++
	c.entries[k] = b

	if c.store != nil {
		if err := c.store.Save(b); err != nil {
			c.storeFailed(k, fmt.Errorf("save baseline: %w", err))
		}
	}
	return b, nil
}

// Warm computes baselines for every distinct size in sizes.
func (c *BaselineCache) Warm(sizes []int) error {
	for _, k := range sizes {
		if _, err := c.GetOrCompute(k); err != nil {
			return err
		}
	}
	return nil
}

// Calibrations returns how many Monte Carlo runs the cache has performed.
func (c *BaselineCache) Calibrations() int {
	return c.calibrations
}

// Entries returns the cached baselines ordered by universe size.
func (c *BaselineCache) Entries() []Baseline {
	out := make([]Baseline, 0, len(c.entries))
	for _, b := range c.entries {
		out = append(out, b)
	}
	slices.SortFunc(out, func(x, y Baseline) int {
		return x.UniverseSize - y.UniverseSize
	})
	return out
}

// Similarity scores loss against the cached baseline for k. ok is false when
// no baseline is cached for k; that is missing data, not a neutral score.
func (c *BaselineCache) Similarity(k, loss int) (score float64, ok bool) {
	b, ok := c.entries[k]
	if !ok {
		return 0, false
	}
	return Similarity(loss, b), true
}
