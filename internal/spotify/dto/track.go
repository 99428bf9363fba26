package dto

import "github.com/handiism/ranksim/internal/model"

// TrackPage is one page of an album's track listing.
type TrackPage struct {
	Items []SimpleTrack `json:"items"`
	Next  *string       `json:"next"`
	Total int           `json:"total"`
}

// SimpleTrack is a track as listed inside an album. It has no popularity.
type SimpleTrack struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	TrackNumber  int          `json:"track_number"`
	DiscNumber   int          `json:"disc_number"`
	DurationMs   int          `json:"duration_ms"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ToTrack converts to a model.Track without popularity.
func (t *SimpleTrack) ToTrack() *model.Track {
	track := model.NewTrack(t.TrackNumber, t.Name, t.ExternalURLs.Spotify)
	track.ID = t.ID
	track.Disc = t.DiscNumber
	track.Duration = float64(t.DurationMs) / 1000
	return track
}

// Tracks is the response of GET /v1/tracks?ids=...
//
// Unknown ids come back as null entries.
type Tracks struct {
	Tracks []*FullTrack `json:"tracks"`
}

// FullTrack carries the fields of a full track object we use.
type FullTrack struct {
	ID         string `json:"id"`
	Popularity int    `json:"popularity"`
}
