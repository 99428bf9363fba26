package model

// Track is a single track within an album.
type Track struct {
	// Album is a reference to the parent album.
	Album *Album

	// Number is the provider's track number (1-indexed).
	Number int

	// Disc is the disc number on multi-disc albums, 0 when unknown.
	Disc int

	// Title is the track title.
	Title string

	// ID is the provider's track identifier, if it has one.
	ID string

	// URL links to the track: a Spotify URL or a local file path.
	URL string

	// Duration is the track length in seconds.
	Duration float64

	// Popularity is the platform's popularity score, higher is more popular.
	// Spotify reports 0-100.
	Popularity int
}

// NewTrack creates a Track. The album reference is set by Album.AddTrack.
func NewTrack(number int, title, url string) *Track {
	return &Track{
		Number: number,
		Title:  title,
		URL:    url,
	}
}
