package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestCalibrate_Deterministic(t *testing.T) {
	p := Params{TopN: 5, Trials: 1000, Seed: 42}

	first, err := Calibrate(20, p)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	second, err := Calibrate(20, p)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}

	if math.Float64bits(first.Mean) != math.Float64bits(second.Mean) ||
		math.Float64bits(first.Std) != math.Float64bits(second.Std) {
		t.Errorf("Calibrate not reproducible: %+v vs %+v", first, second)
	}

	other, _ := Calibrate(20, Params{TopN: 5, Trials: 1000, Seed: 43})
	if other.Mean == first.Mean && other.Std == first.Std {
		t.Errorf("different seeds produced identical baselines %+v", other)
	}
}

func TestCalibrate_LargeUniverse(t *testing.T) {
	p := Params{TopN: 5, Trials: 10000, Seed: 1}
	b, err := Calibrate(1000, p)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}

	// Picks from 1000 tracks almost never overlap, so the loss sits just
	// below the disjoint maximum of 50.
	if b.Mean <= 48 || b.Mean > 50 {
		t.Errorf("Mean = %f, want in (48, 50]", b.Mean)
	}
	if b.Std <= 0 {
		t.Errorf("Std = %f, want > 0", b.Std)
	}

	again, _ := Calibrate(1000, p)
	if again != b {
		t.Errorf("Calibrate(1000) = %+v, then %+v", b, again)
	}
}

func TestCalibrate_ZeroVariance(t *testing.T) {
	// A single track leaves exactly one possible ranking.
	b, err := Calibrate(1, Params{TopN: 5, Trials: 50, Seed: 3})
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if b.Mean != 0 || b.Std != 0 {
		t.Errorf("Calibrate(1) = %+v, want mean 0 std 0", b)
	}
	if got := Similarity(0, b); got != 0 {
		t.Errorf("Similarity() = %f, want 0", got)
	}
}

func TestCalibrate_PopulationStd(t *testing.T) {
	// With one trial the population deviation is zero; a sample deviation
	// would be undefined.
	b, err := Calibrate(10, Params{TopN: 5, Trials: 1, Seed: 9})
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if b.Std != 0 {
		t.Errorf("Std = %f, want 0 for a single trial", b.Std)
	}
}

func TestCalibrate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		k    int
		p    Params
		want error
	}{
		{"zero universe", 0, Params{TopN: 5, Trials: 10}, ErrInvalidUniverse},
		{"negative universe", -3, Params{TopN: 5, Trials: 10}, ErrInvalidUniverse},
		{"zero trials", 10, Params{TopN: 5, Trials: 0}, ErrInvalidTrials},
		{"negative trials", 10, Params{TopN: 5, Trials: -1}, ErrInvalidTrials},
		{"zero top-n", 10, Params{TopN: 0, Trials: 10}, ErrInvalidTopN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Calibrate(tt.k, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("Calibrate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type memStore struct {
	entries map[int]Baseline
	loads   int
	saves   int
}

func (m *memStore) Load(k int, p Params) (Baseline, bool, error) {
	m.loads++
	b, ok := m.entries[k]
	if !ok || b.Params != p {
		return Baseline{}, false, nil
	}
	return b, true, nil
}

func (m *memStore) Save(b Baseline) error {
	m.saves++
	m.entries[b.UniverseSize] = b
	return nil
}

func TestBaselineCache_ComputesOncePerSize(t *testing.T) {
	cache, err := NewBaselineCache(Params{TopN: 5, Trials: 200, Seed: 42}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := cache.Warm([]int{10, 12, 10, 12, 10}); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if got := cache.Calibrations(); got != 2 {
		t.Errorf("Calibrations() = %d, want 2", got)
	}

	b, err := cache.GetOrCompute(10)
	if err != nil {
		t.Fatal(err)
	}
	direct, _ := Calibrate(10, cache.Params())
	if b != direct {
		t.Errorf("cached baseline %+v differs from Calibrate %+v", b, direct)
	}
	if got := cache.Calibrations(); got != 2 {
		t.Errorf("Calibrations() after hit = %d, want 2", got)
	}

	entries := cache.Entries()
	if len(entries) != 2 || entries[0].UniverseSize != 10 || entries[1].UniverseSize != 12 {
		t.Errorf("Entries() = %+v, want sizes [10 12]", entries)
	}
}

func TestBaselineCache_Store(t *testing.T) {
	p := Params{TopN: 5, Trials: 100, Seed: 1}
	store := &memStore{entries: map[int]Baseline{}}

	first, _ := NewBaselineCache(p, store)
	if _, err := first.GetOrCompute(8); err != nil {
		t.Fatal(err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}

	second, _ := NewBaselineCache(p, store)
	if _, err := second.GetOrCompute(8); err != nil {
		t.Fatal(err)
	}
	if second.Calibrations() != 0 {
		t.Errorf("Calibrations() = %d, want 0 when store has the entry", second.Calibrations())
	}

	// Different trial count must not reuse the stored entry.
	stale, _ := NewBaselineCache(Params{TopN: 5, Trials: 101, Seed: 1}, store)
	if _, err := stale.GetOrCompute(8); err != nil {
		t.Fatal(err)
	}
	if stale.Calibrations() != 1 {
		t.Errorf("Calibrations() = %d, want 1 for different params", stale.Calibrations())
	}
}

type brokenStore struct{}

func (brokenStore) Load(int, Params) (Baseline, bool, error) {
	return Baseline{}, false, errors.New("disk on fire")
}

func (brokenStore) Save(Baseline) error {
	return errors.New("disk on fire")
}

func TestBaselineCache_StoreErrorsDoNotFail(t *testing.T) {
	cache, _ := NewBaselineCache(Params{TopN: 5, Trials: 100, Seed: 1}, brokenStore{})

	var failed []int
	cache.OnStoreError(func(k int, err error) { failed = append(failed, k) })

	if err := cache.Warm([]int{8, 9}); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if got := cache.Calibrations(); got != 2 {
		t.Errorf("Calibrations() = %d, want 2", got)
	}
	// One failed load and one failed save per size.
	if len(failed) != 4 {
		t.Errorf("store errors for sizes %v, want 4", failed)
	}
	if _, ok := cache.Similarity(9, 10); !ok {
		t.Error("Similarity() ok = false, want baseline kept after failed save")
	}

	quiet, _ := NewBaselineCache(Params{TopN: 5, Trials: 100, Seed: 1}, brokenStore{})
	if _, err := quiet.GetOrCompute(8); err != nil {
		t.Errorf("GetOrCompute() without handler error = %v", err)
	}
}

func TestBaselineCache_SimilarityUndefined(t *testing.T) {
	cache, _ := NewBaselineCache(Params{TopN: 5, Trials: 10, Seed: 1}, nil)
	if _, ok := cache.Similarity(11, 20); ok {
		t.Error("Similarity() ok = true without a baseline, want false")
	}
	if _, err := cache.GetOrCompute(11); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Similarity(11, 20); !ok {
		t.Error("Similarity() ok = false after GetOrCompute, want true")
	}
}

func TestBaselineCache_InvalidParams(t *testing.T) {
	if _, err := NewBaselineCache(Params{TopN: 5, Trials: 0}, nil); !errors.Is(err, ErrInvalidTrials) {
		t.Errorf("NewBaselineCache() error = %v, want ErrInvalidTrials", err)
	}
}

func BenchmarkCalibrate(b *testing.B) {
	p := Params{TopN: 5, Trials: 1000, Seed: 42}
	for i := 0; i < b.N; i++ {
		if _, err := Calibrate(12, p); err != nil {
			b.Fatal(err)
		}
	}
}
