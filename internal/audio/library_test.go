package audio

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

type testTrack struct {
	file       string
	trck       string
	title      string
	popularity string // TXXX:POPULARITY, empty for none
	popm       uint8  // POPM rating, 0 for none
}

func writeTaggedFile(t *testing.T, dir string, tt testTrack) {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetArtist("Pink Floyd")
	tag.SetAlbum("Animals")
	tag.SetYear("1977")
	tag.SetTitle(tt.title)
	if tt.trck != "" {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, tt.trck)
	}
	if tt.popularity != "" {
		tag.AddFrame("TXXX", id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: PopularityDescription,
			Value:       tt.popularity,
		})
	}
	if tt.popm != 0 {
		tag.AddFrame("POPM", id3v2.PopularimeterFrame{
			Email:   "me@example.com",
			Rating:  tt.popm,
			Counter: big.NewInt(1),
		})
	}

	f, err := os.Create(filepath.Join(dir, tt.file))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatal(err)
	}
}

func setupLibrary(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "animals")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []testTrack{
		{file: "c.mp3", trck: "3/5", title: "Pigs (Three Different Ones)", popularity: "61"},
		{file: "a.mp3", trck: "1", title: "Pigs on the Wing 1", popm: 200},
		{file: "b.mp3", trck: "2/5", title: "Dogs", popularity: "70"},
		{file: "untagged.mp3", title: "Bonus"},
	} {
		writeTaggedFile(t, dir, tt)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	return root
}

func TestLibrary_Album(t *testing.T) {
	lib := NewLibrary(setupLibrary(t), nil)

	album, err := lib.Album(context.Background(), "animals")
	if err != nil {
		t.Fatalf("Album() error = %v", err)
	}

	if album.Title != "Animals" || album.Artist != "Pink Floyd" {
		t.Errorf("album = %q by %q", album.Title, album.Artist)
	}
	if album.ReleaseDate.Year() != 1977 {
		t.Errorf("ReleaseDate = %v, want 1977", album.ReleaseDate)
	}
	if album.TotalTracks != 3 {
		t.Fatalf("TotalTracks = %d, want 3 (untagged file skipped)", album.TotalTracks)
	}

	wantTitles := []string{"Pigs on the Wing 1", "Dogs", "Pigs (Three Different Ones)"}
	wantPopularity := []int{200, 70, 61}
	for i, track := range album.Tracks {
		if track.Number != i+1 {
			t.Errorf("Tracks[%d].Number = %d, want %d", i, track.Number, i+1)
		}
		if track.Title != wantTitles[i] {
			t.Errorf("Tracks[%d].Title = %q, want %q", i, track.Title, wantTitles[i])
		}
		if track.Popularity != wantPopularity[i] {
			t.Errorf("Tracks[%d].Popularity = %d, want %d", i, track.Popularity, wantPopularity[i])
		}
		if track.Album != album {
			t.Errorf("Tracks[%d].Album not set", i)
		}
	}
}

func TestLibrary_AlbumNotFound(t *testing.T) {
	lib := NewLibrary(t.TempDir(), nil)

	_, err := lib.Album(context.Background(), "missing")
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("Album() error = %v, want ErrAlbumNotFound", err)
	}
}

func TestLibrary_RejectsPathIDs(t *testing.T) {
	lib := NewLibrary(t.TempDir(), nil)

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if _, err := lib.Album(context.Background(), id); err == nil {
			t.Errorf("Album(%q) error = nil, want error", id)
		}
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"3/12", 3, false},
		{" 7 ", 7, false},
		{"", 0, true},
		{"0", 0, true},
		{"A1", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTrackNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTrackNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTrackNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPopularity(t *testing.T) {
	popm := func(email string, rating uint8) id3v2.PopularimeterFrame {
		return id3v2.PopularimeterFrame{Email: email, Rating: rating, Counter: big.NewInt(0)}
	}
	txxx := func(desc, value string) id3v2.UserDefinedTextFrame {
		return id3v2.UserDefinedTextFrame{Encoding: id3v2.EncodingUTF8, Description: desc, Value: value}
	}

	tests := []struct {
		name   string
		frames map[string][]id3v2.Framer
		want   int
	}{
		{"none", nil, 0},
		{"popm only", map[string][]id3v2.Framer{"POPM": {popm("a@b", 200)}}, 200},
		{"highest popm wins", map[string][]id3v2.Framer{"POPM": {popm("a@b", 64), popm("c@d", 255)}}, 255},
		{"txxx over popm", map[string][]id3v2.Framer{
			"TXXX": {txxx(PopularityDescription, "42")},
			"POPM": {popm("a@b", 200)},
		}, 42},
		{"other txxx ignored", map[string][]id3v2.Framer{
			"TXXX": {txxx("MOOD", "9")},
			"POPM": {popm("a@b", 12)},
		}, 12},
		{"bad txxx falls back", map[string][]id3v2.Framer{
			"TXXX": {txxx(PopularityDescription, "high")},
			"POPM": {popm("a@b", 7)},
		}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := id3v2.NewEmptyTag()
			for id, frames := range tt.frames {
				for _, f := range frames {
					tag.AddFrame(id, f)
				}
			}
			if got := popularity(tag); got != tt.want {
				t.Errorf("popularity() = %d, want %d", got, tt.want)
			}
		})
	}
}
