package model

import (
	"cmp"
	"slices"
)

// Album is the metadata a provider returns for one album.
//
// Tracks are kept in track-number order. The position of a track in Tracks
// is its item id for ranking comparisons, so callers must not reorder
// Tracks after SortTracks.
//
// Example:
//
//	album := NewAlbum("4aawyAB9vmqN3uQ7FjRGTy", "Pink Floyd", "Animals", artURL, date)
//	album.AddTrack(NewTrack(1, "Pigs on the Wing 1", trackURL))
//	album.SortTracks()
type Album struct {
	// ID is the provider's stable album identifier.
	ID string

	// Artist is the first credited artist.
	Artist string

	// Title is the album title.
	Title string

	// ArtworkURL is the largest cover image. Empty means no artwork.
	ArtworkURL string

	// ReleaseDate is the release date at the precision the provider knows.
	ReleaseDate Date

	// TotalTracks is the provider's track count, which may exceed
	// len(Tracks) when some tracks are unavailable.
	TotalTracks int

	// Tracks in track-number order.
	Tracks []*Track
}

// NewAlbum creates an Album without tracks.
func NewAlbum(id, artist, title, artworkURL string, releaseDate Date) *Album {
	return &Album{
		ID:          id,
		Artist:      artist,
		Title:       title,
		ArtworkURL:  artworkURL,
		ReleaseDate: releaseDate,
	}
}

// HasArtwork returns true if the album has cover art available.
func (a *Album) HasArtwork() bool {
	return a.ArtworkURL != ""
}

// AddTrack appends t and points it back at the album.
func (a *Album) AddTrack(t *Track) {
	t.Album = a
	a.Tracks = append(a.Tracks, t)
}

// SortTracks orders tracks by disc, then track number. Equal positions keep
// their relative order.
func (a *Album) SortTracks() {
	slices.SortStableFunc(a.Tracks, func(x, y *Track) int {
		return cmp.Or(
			cmp.Compare(x.Disc, y.Disc),
			cmp.Compare(x.Number, y.Number),
		)
	})
}

// TrackNumbers returns the track numbers in track-list order.
func (a *Album) TrackNumbers() []int {
	numbers := make([]int, len(a.Tracks))
	for i, t := range a.Tracks {
		numbers[i] = t.Number
	}
	return numbers
}

// UniverseSize is the number of tracks rankings can pick from.
func (a *Album) UniverseSize() int {
	return len(a.Tracks)
}

// Track returns the track with the given item id.
func (a *Album) Track(item int) (*Track, bool) {
	if item < 0 || item >= len(a.Tracks) {
		return nil, false
	}
	return a.Tracks[item], true
}
