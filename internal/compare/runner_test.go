package compare

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/handiism/ranksim/internal/config"
	"github.com/handiism/ranksim/internal/model"
	"github.com/handiism/ranksim/internal/scoring"
)

type fakeProvider struct {
	mu     sync.Mutex
	albums map[string]*model.Album
	calls  map[string]int
}

func (p *fakeProvider) Album(ctx context.Context, id string) (*model.Album, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[id]++

	album, ok := p.albums[id]
	if !ok {
		return nil, fmt.Errorf("%s: not found", id)
	}
	return album, nil
}

// testAlbum has k tracks numbered 1..k, most popular first.
func testAlbum(id string, k int) *model.Album {
	album := model.NewAlbum(id, "Artist", "Album "+id, "", model.Date{})
	for i := range k {
		t := model.NewTrack(i+1, fmt.Sprintf("Track %d", i+1), "https://open.spotify.com/track/"+id)
		t.Popularity = 100 - i
		album.AddTrack(t)
	}
	return album
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Trials = 500
	s.Concurrency = 2
	return s
}

func newTestRunner(t *testing.T, p Provider, store scoring.BaselineStore) *Runner {
	t.Helper()
	r, err := NewRunner(testSettings(), p, store, nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestRunner_Run(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{
		"a": testAlbum("a", 10),
		"b": testAlbum("b", 10),
		"c": testAlbum("c", 12),
	}}
	rows := []model.AlbumRow{
		{Album: "A", ID: "a", First: []int{1, 2, 3, 4, 5}, Second: []int{5, 4, 3, 2, 1}},
		{Album: "B", ID: "b", First: []int{1, 2, 3, 4, 99}, Second: []int{1, 2, 3, 4}},
		{Album: "C", ID: "c", First: []int{6, 7, 8, 9, 10}, Second: []int{1, 2, 3, 4, 5}},
		{Album: "Missing", ID: "zzz", First: []int{1}, Second: []int{1}},
	}

	r := newTestRunner(t, provider, nil)
	batch, err := r.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if batch.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(batch.Results) != 3 {
		t.Fatalf("Results = %d, want 3", len(batch.Results))
	}
	if len(batch.Failures) != 1 || batch.Failures[0].Row.ID != "zzz" {
		t.Errorf("Failures = %+v, want the missing album", batch.Failures)
	}
	if batch.Calibrations != 2 || len(batch.Baselines) != 2 {
		t.Errorf("Calibrations = %d, Baselines = %d, want 2 each", batch.Calibrations, len(batch.Baselines))
	}

	// Results keep table order.
	for i, want := range []string{"a", "b", "c"} {
		if got := batch.Results[i].Row.ID; got != want {
			t.Errorf("Results[%d] = %s, want %s", i, got, want)
		}
	}

	a := batch.Results[0]
	wantLoss := []int{12, 0, 12}
	for i, p := range a.Pairs {
		if p.Loss == nil || *p.Loss != wantLoss[i] {
			t.Errorf("album a %s loss = %v, want %d", p.Key(), p.Loss, wantLoss[i])
		}
		if p.Similarity == nil {
			t.Errorf("album a %s similarity undefined", p.Key())
		}
	}
	if got := a.Pairs[1].Key(); got != "yagiz_vs_spotify" {
		t.Errorf("Pairs[1].Key() = %q", got)
	}
	if *a.Pairs[1].Similarity <= 0 {
		t.Errorf("identical rankings similarity = %v, want > 0", *a.Pairs[1].Similarity)
	}

	b := batch.Results[1]
	if got := b.Rankings[0].Dropped; len(got) != 1 || got[0] != 99 {
		t.Errorf("album b dropped = %v, want [99]", got)
	}
	if got := len(b.Rankings[0].Items); got != 4 {
		t.Errorf("album b first ranking has %d items, want 4", got)
	}
	if b.Pairs[0].Loss == nil || *b.Pairs[0].Loss != 0 {
		t.Errorf("album b first vs second loss = %v, want 0", b.Pairs[0].Loss)
	}

	c := batch.Results[2]
	if c.Pairs[0].Loss == nil || *c.Pairs[0].Loss != 50 {
		t.Errorf("album c disjoint loss = %v, want 50", c.Pairs[0].Loss)
	}
	if *c.Pairs[0].Similarity >= 0 {
		t.Errorf("disjoint similarity = %v, want < 0", *c.Pairs[0].Similarity)
	}
}

func TestRunner_InvalidRanking(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{"a": testAlbum("a", 8)}}
	rows := []model.AlbumRow{
		{Album: "A", ID: "a", First: []int{2, 2}, Second: []int{1, 2}},
	}

	batch, err := newTestRunner(t, provider, nil).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	res := batch.Results[0]
	if !errors.Is(res.Rankings[0].Err, scoring.ErrDuplicateItem) {
		t.Errorf("Rankings[0].Err = %v, want ErrDuplicateItem", res.Rankings[0].Err)
	}
	if res.Pairs[0].Loss != nil || res.Pairs[0].Similarity != nil {
		t.Errorf("pair with invalid ranking = %+v, want undefined", res.Pairs[0])
	}
	if res.Pairs[1].Loss != nil {
		t.Errorf("first vs popularity loss = %v, want undefined", *res.Pairs[1].Loss)
	}
	if res.Pairs[2].Loss == nil {
		t.Error("second vs popularity loss undefined, want defined")
	}
}

func TestRunner_EmptyPicksAreUndefined(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{"a": testAlbum("a", 8)}}
	rows := []model.AlbumRow{{Album: "A", ID: "a", First: []int{42}, Second: []int{1}}}

	batch, err := newTestRunner(t, provider, nil).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p := batch.Results[0].Pairs[0]; p.Loss != nil {
		t.Errorf("loss with all picks dropped = %v, want undefined", *p.Loss)
	}
}

func TestRunner_CacheReusedAcrossRuns(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{"a": testAlbum("a", 9)}}
	rows := []model.AlbumRow{{ID: "a", First: []int{1}, Second: []int{2}}}
	r := newTestRunner(t, provider, nil)

	first, err := r.Run(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Run(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}

	if first.Calibrations != 1 || second.Calibrations != 0 {
		t.Errorf("Calibrations = %d, %d, want 1, 0", first.Calibrations, second.Calibrations)
	}
	if first.RunID == second.RunID {
		t.Error("runs share a RunID")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(t, cancelAware{provider}, nil).Run(ctx, []model.AlbumRow{{ID: "a"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunner_NoRows(t *testing.T) {
	_, err := newTestRunner(t, &fakeProvider{}, nil).Run(context.Background(), nil)
	if !errors.Is(err, ErrNoAlbums) {
		t.Errorf("Run() error = %v, want ErrNoAlbums", err)
	}
}

type nilProvider struct{}

func (nilProvider) Album(context.Context, string) (*model.Album, error) {
	return nil, nil
}

func TestRunner_NilAlbumIsFailure(t *testing.T) {
	rows := []model.AlbumRow{{Album: "A", ID: "a", First: []int{1}, Second: []int{1}}}

	batch, err := newTestRunner(t, nilProvider{}, nil).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(batch.Results) != 0 || len(batch.Failures) != 1 {
		t.Errorf("Results = %d, Failures = %d, want 0, 1", len(batch.Results), len(batch.Failures))
	}
}

// corruptStore fails every load as an undecodable value would and refuses
// every save.
type corruptStore struct{ saves int }

func (s *corruptStore) Load(int, scoring.Params) (scoring.Baseline, bool, error) {
	return scoring.Baseline{}, false, errors.New("invalid character 'n' looking for beginning of value")
}

func (s *corruptStore) Save(scoring.Baseline) error {
	s.saves++
	return errors.New("read-only file system")
}

func TestRunner_BrokenStoreDoesNotFailRun(t *testing.T) {
	provider := &fakeProvider{albums: map[string]*model.Album{
		"a": testAlbum("a", 10),
		"b": testAlbum("b", 12),
	}}
	rows := []model.AlbumRow{
		{ID: "a", First: []int{1, 2}, Second: []int{2, 1}},
		{ID: "b", First: []int{1, 2}, Second: []int{2, 1}},
	}
	store := &corruptStore{}

	batch, err := newTestRunner(t, provider, store).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if batch.Calibrations != 2 || store.saves != 2 {
		t.Errorf("Calibrations = %d, saves = %d, want 2, 2", batch.Calibrations, store.saves)
	}
	for _, res := range batch.Results {
		if res.Pairs[0].Similarity == nil {
			t.Errorf("album %s similarity undefined with a broken store", res.Row.ID)
		}
	}
}

type cancelAware struct{ p Provider }

func (c cancelAware) Album(ctx context.Context, id string) (*model.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.p.Album(ctx, id)
}

func TestSummarize(t *testing.T) {
	loss := func(v int) *int { return &v }
	sim := func(v float64) *float64 { return &v }

	results := []Result{
		{Pairs: [3]PairScore{
			{A: "y", B: "t", Loss: loss(10), Similarity: sim(1)},
			{A: "y", B: "s", Loss: loss(20), Similarity: sim(-1)},
			{A: "t", B: "s"},
		}},
		{Pairs: [3]PairScore{
			{A: "y", B: "t", Loss: loss(20), Similarity: sim(2)},
			{A: "y", B: "s", Loss: loss(30)},
			{A: "t", B: "s"},
		}},
	}

	got := Summarize(results)
	want := []PairSummary{
		{A: "y", B: "t", Count: 2, MeanSimilarity: 1.5, Losses: 2, MeanLoss: 15},
		{A: "y", B: "s", Count: 1, MeanSimilarity: -1, Losses: 2, MeanLoss: 25},
		{A: "t", B: "s"},
	}
	if len(got) != len(want) {
		t.Fatalf("Summarize() = %d pairs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Summarize()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if Summarize(nil) != nil {
		t.Error("Summarize(nil) != nil")
	}
}
