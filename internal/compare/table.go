package compare

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/handiism/ranksim/internal/model"
)

// ErrNoAlbums is returned for an album table without rows.
var ErrNoAlbums = errors.New("album table has no rows")

// LoadTable reads the YAML album table at path. Each row may pick at most
// topN tracks per rater.
//
// Example file:
//
//	- album: Animals
//	  spotify_id: 4aawyAB9vmqN3uQ7FjRGTy
//	  ranking_date: 2024-03-02
//	  first: [2, 3, 5, 1, 4]
//	  second: [2, 5, 3, 4, 1]
//	  first_score: 9.1
//	  second_score: 8.4
func LoadTable(path string, topN int) ([]model.AlbumRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open album table: %w", err)
	}
	defer f.Close()

	rows, err := ParseTable(f, topN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ParseTable decodes and validates an album table.
func ParseTable(r io.Reader, topN int) ([]model.AlbumRow, error) {
	var rows []model.AlbumRow
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoAlbums
		}
		return nil, fmt.Errorf("decode album table: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoAlbums
	}

	for i := range rows {
		if err := validateRow(&rows[i], topN); err != nil {
			return nil, fmt.Errorf("row %d (%q): %w", i+1, rows[i].Album, err)
		}
	}
	return rows, nil
}

func validateRow(row *model.AlbumRow, topN int) error {
	if row.ID == "" {
		return errors.New("missing spotify_id")
	}
	if row.Album == "" {
		row.Album = row.ID
	}
	if err := validatePicks("first", row.First, topN); err != nil {
		return err
	}
	return validatePicks("second", row.Second, topN)
}

func validatePicks(field string, picks []int, topN int) error {
	if len(picks) > topN {
		return fmt.Errorf("%s: %d picks, at most %d allowed", field, len(picks), topN)
	}
	seen := make(map[int]struct{}, len(picks))
	for _, n := range picks {
		if n < 1 {
			return fmt.Errorf("%s: track number %d must be positive", field, n)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%s: track %d picked twice", field, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
