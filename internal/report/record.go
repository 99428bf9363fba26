package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/handiism/ranksim/internal/compare"
	"github.com/handiism/ranksim/internal/scoring"
)

// IndexFile is the name of the run index inside the output directory.
const IndexFile = "index.json"

// Song is one ranked track. Link is a Spotify URL, or a file path for the
// local library; the key stays spotify_url for existing record readers.
type Song struct {
	Name string `json:"name"`
	Link string `json:"spotify_url"`
}

// Ranking is one rater's ranked songs, most preferred first.
type Ranking struct {
	Rater   string `json:"rater"`
	Songs   []Song `json:"songs"`
	Dropped []int  `json:"dropped,omitempty"`
}

// Comparison holds the loss and similarity of a pair. Null means undefined.
type Comparison struct {
	Pair       string   `json:"pair"`
	A          string   `json:"a"`
	B          string   `json:"b"`
	Loss       *int     `json:"loss"`
	Similarity *float64 `json:"similarity"`
}

// Record is the JSON document written per album.
type Record struct {
	Album       string             `json:"album"`
	Artist      string             `json:"artist"`
	SpotifyID   string             `json:"spotify_id"`
	AlbumArtURL string             `json:"album_art_url"`
	ReleaseDate string             `json:"release_date,omitempty"`
	RankingDate string             `json:"ranking_date,omitempty"`
	TotalTracks int                `json:"total_tracks"`
	Rankings    []Ranking          `json:"rankings"`
	Scores      map[string]float64 `json:"scores,omitempty"`
	MeanScore   *float64           `json:"mean_score"`
	Comparisons []Comparison       `json:"comparisons"`
}

// MarshalJSON writes the record and, for every ranking, a flat
// "<rater>_songs" list. Readers only see the rankings field.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	data, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, ranking := range r.Rankings {
		songs, err := json.Marshal(ranking.Songs)
		if err != nil {
			return nil, err
		}
		key, err := json.Marshal(SongsKey(ranking.Rater))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(songs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SongsKey is the flat record key for a rater's songs, e.g. "yagiz_songs".
func SongsKey(rater string) string {
	return strings.ReplaceAll(Slug(rater), "-", "_") + "_songs"
}

// Index summarizes a run. It lists every album record written.
type Index struct {
	RunID     string             `json:"run_id"`
	CreatedAt time.Time          `json:"created_at"`
	Params    scoring.Params     `json:"params"`
	Baselines []scoring.Baseline `json:"baselines"`
	Albums    []IndexEntry       `json:"albums"`
	Failures  []IndexFailure     `json:"failures,omitempty"`
	Summary   []PairSummary      `json:"summary"`
}

// IndexEntry points at one album record.
type IndexEntry struct {
	Slug        string       `json:"slug"`
	File        string       `json:"file"`
	Album       string       `json:"album"`
	Artist      string       `json:"artist"`
	TotalTracks int          `json:"total_tracks"`
	MeanScore   *float64     `json:"mean_score"`
	Comparisons []Comparison `json:"comparisons"`
}

// IndexFailure is an album left out of the run.
type IndexFailure struct {
	Album     string `json:"album"`
	SpotifyID string `json:"spotify_id"`
	Error     string `json:"error"`
}

// PairSummary is compare.PairSummary in JSON form.
type PairSummary struct {
	Pair           string  `json:"pair"`
	Count          int     `json:"count"`
	MeanSimilarity float64 `json:"mean_similarity"`
	Losses         int     `json:"losses"`
	MeanLoss       float64 `json:"mean_loss"`
}

// NewRecord converts a comparison result. Table values for artist and
// release date take precedence over provider metadata.
func NewRecord(res compare.Result) Record {
	album := res.Album
	row := res.Row

	rec := Record{
		Album:       row.Album,
		Artist:      row.Artist,
		SpotifyID:   row.ID,
		AlbumArtURL: album.ArtworkURL,
		ReleaseDate: row.ReleaseDate,
		RankingDate: row.RankingDate,
		TotalTracks: album.UniverseSize(),
	}
	if rec.Album == "" {
		rec.Album = album.Title
	}
	if rec.Artist == "" {
		rec.Artist = album.Artist
	}
	if rec.ReleaseDate == "" && !album.ReleaseDate.IsZero() {
		rec.ReleaseDate = album.ReleaseDate.String()
	}

	for _, r := range res.Rankings {
		ranking := Ranking{Rater: r.Rater, Songs: make([]Song, 0, len(r.Items)), Dropped: r.Dropped}
		for _, item := range r.Items {
			if t, ok := album.Track(item); ok {
				ranking.Songs = append(ranking.Songs, Song{Name: t.Title, Link: t.URL})
			}
		}
		rec.Rankings = append(rec.Rankings, ranking)
	}

	if row.FirstScore != nil || row.SecondScore != nil {
		rec.Scores = make(map[string]float64, 2)
		if row.FirstScore != nil {
			rec.Scores[res.Rankings[0].Rater] = *row.FirstScore
		}
		if row.SecondScore != nil {
			rec.Scores[res.Rankings[1].Rater] = *row.SecondScore
		}
	}
	if mean, ok := row.MeanScore(); ok {
		rec.MeanScore = &mean
	}

	rec.Comparisons = comparisons(res.Pairs[:])
	return rec
}

func comparisons(pairs []compare.PairScore) []Comparison {
	out := make([]Comparison, len(pairs))
	for i, p := range pairs {
		out[i] = Comparison{
			Pair:       p.Key(),
			A:          p.A,
			B:          p.B,
			Loss:       p.Loss,
			Similarity: p.Similarity,
		}
	}
	return out
}

// ReadIndex reads the index of an output directory.
func ReadIndex(dir string) (*Index, error) {
	var idx Index
	if err := readJSON(filepath.Join(dir, IndexFile), &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// ReadRecord reads one album record.
func ReadRecord(path string) (*Record, error) {
	var rec Record
	if err := readJSON(path, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
