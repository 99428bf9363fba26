package dto

import (
	"cmp"
	"slices"

	"github.com/handiism/ranksim/internal/model"
)

// Album is the response of GET /v1/albums/{id}.
type Album struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Artists              []Artist     `json:"artists"`
	Images               []Image      `json:"images"`
	ReleaseDate          string       `json:"release_date"`
	ReleaseDatePrecision string       `json:"release_date_precision"`
	TotalTracks          int          `json:"total_tracks"`
	Tracks               TrackPage    `json:"tracks"`
	ExternalURLs         ExternalURLs `json:"external_urls"`
}

// Artist is a simplified artist object.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a cover image. Spotify lists the widest first.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ExternalURLs holds links to the object on Spotify.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// ArtworkURL returns the largest image, or "" when the album has none.
func (a *Album) ArtworkURL() string {
	if len(a.Images) == 0 {
		return ""
	}
	best := slices.MaxFunc(a.Images, func(x, y Image) int {
		return cmp.Compare(x.Width*x.Height, y.Width*y.Height)
	})
	if best.URL == "" {
		return a.Images[0].URL
	}
	return best.URL
}

// ToAlbum converts the album and the given tracks to a model.Album. Tracks
// come back in disc and track-number order.
//
// An unparseable release date leaves ReleaseDate zero.
func (a *Album) ToAlbum(tracks []SimpleTrack) *model.Album {
	var artist string
	if len(a.Artists) > 0 {
		artist = a.Artists[0].Name
	}

	date, _ := model.ParseDate(a.ReleaseDate)
	album := model.NewAlbum(a.ID, artist, a.Name, a.ArtworkURL(), date)
	album.TotalTracks = a.TotalTracks

	for _, t := range tracks {
		album.AddTrack(t.ToTrack())
	}
	album.SortTracks()

	return album
}
