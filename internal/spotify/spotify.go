package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/handiism/ranksim/internal/config"
	"github.com/handiism/ranksim/internal/http"
	"github.com/handiism/ranksim/internal/model"
	"github.com/handiism/ranksim/internal/spotify/dto"
)

// ErrAlbumNotFound is returned when Spotify has no album for an id.
var ErrAlbumNotFound = errors.New("spotify album not found")

// tracksBatchSize is the most ids GET /v1/tracks accepts.
const tracksBatchSize = 50

// Provider fetches album metadata and track popularity from the Spotify Web
// API using the client credentials flow.
//
// Example:
//
//	p := spotify.NewProvider(ctx, settings.Spotify, &log)
//	album, err := p.Album(ctx, "4aawyAB9vmqN3uQ7FjRGTy")
type Provider struct {
	client  *http.Client
	baseURL string
	market  string
	log     *zerolog.Logger
}

// NewProvider creates a Provider. Tokens are fetched from cfg.TokenURL on
// first use and refreshed when they expire; ctx bounds token requests.
func NewProvider(ctx context.Context, cfg config.SpotifySettings, log *zerolog.Logger) *Provider {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	hc := cc.Client(ctx)
	hc.Timeout = cfg.Timeout

	client := http.NewClient(http.ClientConfig{
		HTTPClient:        hc,
		UserAgent:         "ranksim",
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		FailureThreshold:  cfg.FailureThreshold,
	})

	return newProvider(client, cfg.BaseURL, cfg.Market, log)
}

func newProvider(client *http.Client, baseURL, market string, log *zerolog.Logger) *Provider {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Provider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		market:  market,
		log:     log,
	}
}

// Album fetches an album with its full track listing and per-track
// popularity. Tracks are in track-number order.
func (p *Provider) Album(ctx context.Context, id string) (*model.Album, error) {
	if id == "" {
		return nil, fmt.Errorf("spotify: empty album id")
	}

	var album dto.Album
	if err := p.client.GetJSON(ctx, p.endpoint("albums/"+url.PathEscape(id), nil), &album); err != nil {
		if http.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrAlbumNotFound)
		}
		return nil, fmt.Errorf("get album %s: %w", id, err)
	}

	tracks, err := p.allTracks(ctx, album.Tracks)
	if err != nil {
		return nil, fmt.Errorf("get tracks of %s: %w", id, err)
	}

	popularity, err := p.popularity(ctx, tracks)
	if err != nil {
		return nil, fmt.Errorf("get popularity of %s: %w", id, err)
	}

	if album.ID == "" {
		album.ID = id
	}
	result := album.ToAlbum(tracks)
	for _, t := range result.Tracks {
		t.Popularity = popularity[t.ID]
	}

	p.log.Debug().
		Str("album_id", id).
		Str("album", result.Title).
		Int("tracks", len(result.Tracks)).
		Msg("Fetched album")

	return result, nil
}

// allTracks follows the next links of an album's track page.
func (p *Provider) allTracks(ctx context.Context, first dto.TrackPage) ([]dto.SimpleTrack, error) {
	tracks := slices.Clone(first.Items)
	next := first.Next
	for next != nil && *next != "" {
		var page dto.TrackPage
		if err := p.client.GetJSON(ctx, *next, &page); err != nil {
			return nil, err
		}
		tracks = append(tracks, page.Items...)
		next = page.Next
	}
	return tracks, nil
}

// popularity looks up popularity for tracks in batches. Tracks Spotify
// does not return keep no entry.
func (p *Provider) popularity(ctx context.Context, tracks []dto.SimpleTrack) (map[string]int, error) {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	result := make(map[string]int, len(ids))
	for batch := range slices.Chunk(ids, tracksBatchSize) {
		q := url.Values{"ids": {strings.Join(batch, ",")}}

		var resp dto.Tracks
		if err := p.client.GetJSON(ctx, p.endpoint("tracks", q), &resp); err != nil {
			return nil, err
		}
		for _, t := range resp.Tracks {
			if t != nil {
				result[t.ID] = t.Popularity
			}
		}
	}
	return result, nil
}

func (p *Provider) endpoint(path string, q url.Values) string {
	if p.market != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("market", p.market)
	}
	u := p.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
