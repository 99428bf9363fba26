package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/rs/zerolog"

	"github.com/handiism/ranksim/internal/model"
)

// ErrAlbumNotFound is returned when the library has no directory for an
// album id.
var ErrAlbumNotFound = errors.New("album not found in library")

// PopularityDescription names the TXXX frame that carries a track's
// popularity score.
const PopularityDescription = "POPULARITY"

// Library reads album metadata from ID3 tags of MP3 files on disk.
//
// Each album lives in its own directory named by the album id:
//
//	<root>/<album id>/*.mp3
//
// Tags read per file:
//   - TALB and TPE1 for album title and artist (first file that has them)
//   - TRCK for the track number, "3" or "3/12"
//   - TIT2 for the title, falling back to the file name
//   - TLEN for the duration in milliseconds
//   - TXXX:POPULARITY, or else the POPM rating, for popularity
//
// A cover.jpg or folder.jpg in the album directory becomes the artwork
// reference. Files without a usable track number are skipped.
//
// Example:
//
//	lib := NewLibrary("/music/ranked", &log)
//	album, err := lib.Album(ctx, "animals")
type Library struct {
	root string
	log  *zerolog.Logger
}

// NewLibrary creates a Library rooted at dir. A nil logger disables logging.
func NewLibrary(dir string, log *zerolog.Logger) *Library {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Library{root: dir, log: log}
}

// Album reads the album with the given id.
func (l *Library) Album(ctx context.Context, id string) (*model.Album, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("invalid album id %q", id)
	}

	dir := filepath.Join(l.root, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, ErrAlbumNotFound)
		}
		return nil, err
	}

	album := model.NewAlbum(id, "", "", "", model.Date{})

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(name) {
		case "cover.jpg", "folder.jpg":
			album.ArtworkURL = filepath.Join(dir, name)
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".mp3") {
			continue
		}

		path := filepath.Join(dir, name)
		track, err := l.readTrack(path, album)
		if err != nil {
			l.log.Warn().Err(err).Str("file", path).Msg("Skipping file")
			continue
		}
		album.AddTrack(track)
	}

	if len(album.Tracks) == 0 {
		return nil, fmt.Errorf("%s: no tagged tracks in %s", id, dir)
	}

	album.SortTracks()
	album.TotalTracks = len(album.Tracks)
	if album.Title == "" {
		album.Title = id
	}

	return album, nil
}

// readTrack parses one file's tags. Album level tags fill in album fields
// that are still empty.
func (l *Library) readTrack(path string, album *model.Album) (*model.Track, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	number, err := parseTrackNumber(tag.GetTextFrame("TRCK").Text)
	if err != nil {
		return nil, err
	}

	if album.Title == "" {
		album.Title = tag.Album()
	}
	if album.Artist == "" {
		album.Artist = tag.Artist()
	}
	if album.ReleaseDate.IsZero() {
		if year := tag.Year(); year != "" {
			if d, err := model.ParseDate(year); err == nil {
				album.ReleaseDate = d
			}
		}
	}

	title := tag.Title()
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	track := model.NewTrack(number, title, path)
	if disc, err := parseTrackNumber(tag.GetTextFrame("TPOS").Text); err == nil {
		track.Disc = disc
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(tag.GetTextFrame("TLEN").Text)); err == nil && ms > 0 {
		track.Duration = float64(ms) / 1000
	}
	track.Popularity = popularity(tag)

	return track, nil
}

// parseTrackNumber reads a TRCK or TPOS value such as "3" or "3/12".
func parseTrackNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid track number %q", s)
	}
	return n, nil
}

// popularity prefers an explicit TXXX:POPULARITY value and falls back to
// the highest POPM rating. Missing data is 0.
func popularity(tag *id3v2.Tag) int {
	for _, f := range tag.GetFrames("TXXX") {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok || !strings.EqualFold(udtf.Description, PopularityDescription) {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(udtf.Value)); err == nil {
			return v
		}
	}

	best := 0
	for _, f := range tag.GetFrames("POPM") {
		pf, ok := f.(id3v2.PopularimeterFrame)
		if !ok {
			continue
		}
		best = max(best, int(pf.Rating))
	}
	return best
}
