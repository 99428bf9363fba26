package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/handiism/ranksim/internal/audio"
	"github.com/handiism/ranksim/internal/compare"
	ioutils "github.com/handiism/ranksim/internal/io"
	"github.com/handiism/ranksim/internal/model"
)

// Fetcher downloads cover art.
type Fetcher interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// Options controls which artifacts a Writer produces.
type Options struct {
	// Dir is the output directory. It is created if missing.
	Dir string

	// Index writes index.json.
	Index bool

	// Playlist renders one playlist per ranking. Nil disables playlists.
	Playlist *audio.PlaylistCreator

	// CoverArt writes <slug>.jpg thumbnails no larger than CoverArtMaxSize.
	CoverArt        bool
	CoverArtMaxSize int
}

// Writer persists a batch as album records plus optional index, playlists
// and cover thumbnails.
//
// Files written per album:
//
//	<slug>.json            album record
//	<slug>.<rater>.m3u     playlist per ranking (or .pls, .wpl, .zpl)
//	<slug>.jpg             cover thumbnail
//
// Example:
//
//	w := report.NewWriter(report.Options{Dir: "albums", Index: true}, httpClient, &log)
//	idx, err := w.Write(ctx, batch)
type Writer struct {
	opts    Options
	fetcher Fetcher
	images  *ioutils.ImageService
	log     *zerolog.Logger
}

// NewWriter creates a Writer. fetcher may be nil when cover art is off or
// artwork references are local files.
func NewWriter(opts Options, fetcher Fetcher, log *zerolog.Logger) *Writer {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Writer{
		opts:    opts,
		fetcher: fetcher,
		images:  ioutils.NewImageService(),
		log:     log,
	}
}

// Write writes every result of batch and returns the index. The index is
// returned even when Options.Index is false.
//
// Failing to write a record is an error. Playlist and cover art failures
// are logged and skipped.
func (w *Writer) Write(ctx context.Context, batch *compare.Batch) (*Index, error) {
	if err := ioutils.EnsureDir(w.opts.Dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	idx := BuildIndex(batch)
	for i, res := range batch.Results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := idx.Albums[i]
		if err := writeJSON(filepath.Join(w.opts.Dir, entry.File), NewRecord(res)); err != nil {
			return nil, fmt.Errorf("write record for %s: %w", entry.Album, err)
		}
		w.log.Debug().Str("album", entry.Album).Str("file", entry.File).Msg("Wrote album record")

		if w.opts.Playlist != nil {
			w.writePlaylists(entry.Slug, res)
		}
		if w.opts.CoverArt && res.Album.HasArtwork() {
			w.writeCover(ctx, entry.Slug, res.Album)
		}
	}

	if w.opts.Index {
		if err := writeJSON(filepath.Join(w.opts.Dir, IndexFile), idx); err != nil {
			return nil, fmt.Errorf("write index: %w", err)
		}
	}

	w.log.Info().Str("dir", w.opts.Dir).Int("records", len(idx.Albums)).Msg("Wrote report")
	return idx, nil
}

// BuildIndex assigns file names and summarizes batch without writing
// anything. Albums are listed in the order of batch.Results.
func BuildIndex(batch *compare.Batch) *Index {
	idx := &Index{
		RunID:     batch.RunID,
		CreatedAt: batch.StartedAt,
		Params:    batch.Params,
		Baselines: batch.Baselines,
		Albums:    make([]IndexEntry, 0, len(batch.Results)),
	}

	slugs := newSlugSet(strings.TrimSuffix(IndexFile, ".json"))
	for _, res := range batch.Results {
		rec := NewRecord(res)
		slug := slugs.next(rec.Album)
		idx.Albums = append(idx.Albums, IndexEntry{
			Slug:        slug,
			File:        slug + ".json",
			Album:       rec.Album,
			Artist:      rec.Artist,
			TotalTracks: rec.TotalTracks,
			MeanScore:   rec.MeanScore,
			Comparisons: rec.Comparisons,
		})
	}

	for _, f := range batch.Failures {
		idx.Failures = append(idx.Failures, IndexFailure{Album: f.Row.Album, SpotifyID: f.Row.ID, Error: f.Err.Error()})
	}
	for _, s := range compare.Summarize(batch.Results) {
		idx.Summary = append(idx.Summary, PairSummary{
			Pair:           s.Key(),
			Count:          s.Count,
			MeanSimilarity: s.MeanSimilarity,
			Losses:         s.Losses,
			MeanLoss:       s.MeanLoss,
		})
	}
	return idx
}

func (w *Writer) writePlaylists(slug string, res compare.Result) {
	ext := w.opts.Playlist.Format().Extension()
	for _, r := range res.Rankings {
		if len(r.Items) == 0 {
			continue
		}
		tracks := make([]*model.Track, 0, len(r.Items))
		for _, item := range r.Items {
			if t, ok := res.Album.Track(item); ok {
				tracks = append(tracks, t)
			}
		}

		title := fmt.Sprintf("%s (%s)", res.Album.Title, r.Rater)
		content := w.opts.Playlist.CreatePlaylist(title, tracks)
		path := filepath.Join(w.opts.Dir, fmt.Sprintf("%s.%s.%s", slug, Slug(r.Rater), ext))
		if err := ioutils.WriteFileAtomic(path, []byte(content)); err != nil {
			w.log.Warn().Err(err).Str("file", path).Msg("Writing playlist failed")
		}
	}
}

func (w *Writer) writeCover(ctx context.Context, slug string, album *model.Album) {
	data, err := w.artwork(ctx, album.ArtworkURL)
	if err != nil {
		w.log.Warn().Err(err).Str("album", album.Title).Msg("Fetching cover art failed")
		return
	}

	thumb, err := w.images.Thumbnail(data, w.opts.CoverArtMaxSize)
	if err != nil {
		w.log.Warn().Err(err).Str("album", album.Title).Msg("Resizing cover art failed")
		return
	}

	path := filepath.Join(w.opts.Dir, slug+".jpg")
	if err := ioutils.WriteFileAtomic(path, thumb); err != nil {
		w.log.Warn().Err(err).Str("file", path).Msg("Writing cover art failed")
	}
}

// artwork loads a cover from a URL or, for the local library, a file path.
func (w *Writer) artwork(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if w.fetcher == nil {
			return nil, fmt.Errorf("no fetcher for %s", ref)
		}
		return w.fetcher.DownloadBytes(ctx, ref)
	}
	return os.ReadFile(ref)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(path, append(data, '\n'))
}
