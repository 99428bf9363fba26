package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/ranksim/internal/config"
	"github.com/handiism/ranksim/internal/model"
	"github.com/handiism/ranksim/internal/scoring"
)

// Provider returns album metadata with tracks in track-number order.
type Provider interface {
	Album(ctx context.Context, id string) (*model.Album, error)
}

// Ranking is one rater's RankSet for an album.
type Ranking struct {
	Rater string
	Items scoring.RankSet

	// Dropped lists picked track numbers the album does not have.
	Dropped []int

	// Err is set when the picks could not be turned into a ranking.
	Err error
}

// PairScore compares two rankings of one album. Loss and Similarity are nil
// when undefined.
type PairScore struct {
	A, B       string
	Loss       *int
	Similarity *float64
}

// Key names the pair, e.g. "yagiz_vs_tugba".
func (p PairScore) Key() string {
	return p.A + "_vs_" + p.B
}

// Result is the comparison record for one album.
type Result struct {
	Row   model.AlbumRow
	Album *model.Album

	// Rankings holds the first rater, the second rater and popularity.
	Rankings [3]Ranking

	// Pairs holds first/second, first/popularity and second/popularity.
	Pairs [3]PairScore
}

// Failure is an album that could not be fetched.
type Failure struct {
	Row model.AlbumRow
	Err error
}

// Batch is the outcome of one run.
type Batch struct {
	RunID     string
	StartedAt time.Time
	Params    scoring.Params
	Results   []Result
	Failures  []Failure

	// Baselines used, one per universe size.
	Baselines []scoring.Baseline

	// Calibrations is how many baselines were computed rather than loaded.
	Calibrations int
}

// Runner drives the comparison over an album table.
//
// Metadata is fetched concurrently, bounded by the configured concurrency.
// Baselines for every universe size are then computed before any album is
// scored, and scoring itself runs sequentially.
//
// Example:
//
//	runner, err := compare.NewRunner(settings, provider, store, &log)
//	batch, err := runner.Run(ctx, rows)
type Runner struct {
	settings *config.Settings
	provider Provider
	cache    *scoring.BaselineCache
	log      *zerolog.Logger
}

// NewRunner creates a Runner. store may be nil.
func NewRunner(settings *config.Settings, provider Provider, store scoring.BaselineStore, log *zerolog.Logger) (*Runner, error) {
	cache, err := scoring.NewBaselineCache(settings.ToParams(), store)
	if err != nil {
		return nil, err
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	cache.OnStoreError(func(k int, err error) {
		log.Warn().Err(err).Int("k", k).Msg("Baseline store unavailable, continuing without it")
	})
	return &Runner{
		settings: settings,
		provider: provider,
		cache:    cache,
		log:      log,
	}, nil
}

// Cache returns the runner's baseline cache.
func (r *Runner) Cache() *scoring.BaselineCache {
	return r.cache
}

// Run compares every row. Albums whose metadata cannot be fetched are
// reported in Batch.Failures and do not stop the run. Errors are returned
// for cancellation and calibration failures.
func (r *Runner) Run(ctx context.Context, rows []model.AlbumRow) (*Batch, error) {
	if len(rows) == 0 {
		return nil, ErrNoAlbums
	}

	batch := &Batch{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Params:    r.cache.Params(),
	}
	log := r.log.With().Str("run_id", batch.RunID).Logger()

	albums, err := r.fetch(ctx, rows, &log)
	if err != nil {
		return nil, err
	}

	var sizes []int
	for i, album := range albums {
		if album.err != nil {
			batch.Failures = append(batch.Failures, Failure{Row: rows[i], Err: album.err})
			continue
		}
		sizes = append(sizes, album.album.UniverseSize())
	}

	start := time.Now()
	before := r.cache.Calibrations()
	if err := r.cache.Warm(sizes); err != nil {
		return nil, fmt.Errorf("calibrate baselines: %w", err)
	}
	batch.Calibrations = r.cache.Calibrations() - before
	log.Info().
		Int("sizes", len(r.cache.Entries())).
		Int("calibrated", batch.Calibrations).
		Dur("took", time.Since(start)).
		Msg("Baselines ready")

	for i, album := range albums {
		if album.err != nil {
			continue
		}
		batch.Results = append(batch.Results, r.score(rows[i], album.album, &log))
	}
	batch.Baselines = r.cache.Entries()

	log.Info().
		Int("albums", len(batch.Results)).
		Int("failed", len(batch.Failures)).
		Msg("Comparison finished")

	return batch, nil
}

type fetched struct {
	album *model.Album
	err   error
}

// fetch loads metadata for every row. Per-album errors are kept in the
// result; only cancellation fails the whole fetch.
func (r *Runner) fetch(ctx context.Context, rows []model.AlbumRow, log *zerolog.Logger) ([]fetched, error) {
	out := make([]fetched, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.settings.Concurrency))

	for i, row := range rows {
		g.Go(func() error {
			album, err := r.provider.Album(ctx, row.ID)
			switch {
			case err != nil:
			case album == nil:
				err = fmt.Errorf("album %s: provider returned no metadata", row.ID)
			case album.UniverseSize() == 0:
				err = fmt.Errorf("album %s has no tracks", row.ID)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Err(err).Str("album", row.Album).Str("album_id", row.ID).Msg("Fetching album failed")
				out[i] = fetched{err: err}
				return nil
			}
			log.Debug().Str("album", album.Title).Int("tracks", album.UniverseSize()).Msg("Fetched album")
			out[i] = fetched{album: album}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// score builds the three rankings of an album and compares each pair.
func (r *Runner) score(row model.AlbumRow, album *model.Album, log *zerolog.Logger) Result {
	n := r.settings.TopN
	raters := r.settings.Raters
	numbers := album.TrackNumbers()
	alog := log.With().Str("album", row.Album).Logger()

	res := Result{Row: row, Album: album}
	res.Rankings[0] = r.humanRanking(raters.First, numbers, row.First, n, &alog)
	res.Rankings[1] = r.humanRanking(raters.Second, numbers, row.Second, n, &alog)
	res.Rankings[2] = Ranking{Rater: raters.Popularity, Items: popularityRanking(album, n)}

	pairs := [3][2]int{{0, 1}, {0, 2}, {1, 2}}
	for i, p := range pairs {
		res.Pairs[i] = r.comparePair(res.Rankings[p[0]], res.Rankings[p[1]], album.UniverseSize(), &alog)
	}

	ev := alog.Info().Int("k", album.UniverseSize())
	for _, p := range res.Pairs {
		if p.Loss != nil {
			ev = ev.Int("loss_"+p.Key(), *p.Loss)
		}
		if p.Similarity != nil {
			ev = ev.Float64("similarity_"+p.Key(), *p.Similarity)
		}
	}
	ev.Msg("Scored album")

	return res
}

func (r *Runner) humanRanking(rater string, numbers, picks []int, n int, log *zerolog.Logger) Ranking {
	items, dropped, err := scoring.FromTrackNumbers(numbers, picks, n)
	if err != nil {
		log.Warn().Err(err).Str("rater", rater).Msg("Invalid ranking")
		return Ranking{Rater: rater, Err: err}
	}
	if len(dropped) > 0 {
		log.Warn().Str("rater", rater).Ints("tracks", dropped).Msg("Dropping picks of unknown tracks")
	}
	return Ranking{Rater: rater, Items: items, Dropped: dropped}
}

func popularityRanking(album *model.Album, n int) scoring.RankSet {
	tracks := make([]scoring.TrackPopularity, len(album.Tracks))
	for i, t := range album.Tracks {
		tracks[i] = scoring.TrackPopularity{Item: i, Popularity: t.Popularity}
	}
	return scoring.TopByPopularity(tracks, n)
}

func (r *Runner) comparePair(a, b Ranking, k int, log *zerolog.Logger) PairScore {
	ps := PairScore{A: a.Rater, B: b.Rater}

	loss, err := scoring.Loss(a.Items, b.Items)
	if err != nil {
		log.Warn().Err(err).Str("pair", ps.Key()).Msg("Loss undefined")
		return ps
	}
	ps.Loss = &loss

	if sim, ok := r.cache.Similarity(k, loss); ok {
		ps.Similarity = &sim
	} else {
		log.Warn().Str("pair", ps.Key()).Int("k", k).Msg("No baseline, similarity undefined")
	}
	return ps
}
