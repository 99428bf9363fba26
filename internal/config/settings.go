package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/handiism/ranksim/internal/audio"
	"github.com/handiism/ranksim/internal/logging"
	"github.com/handiism/ranksim/internal/scoring"
)

// EnvPrefix prefixes every environment override. Nesting uses a double
// underscore: RANKSIM_SPOTIFY__MARKET -> spotify.market.
const EnvPrefix = "RANKSIM_"

// Legacy credential variables, read when the RANKSIM_ ones are unset.
const (
	LegacyClientIDEnv     = "SPOTIPY_CLIENT_ID"
	LegacyClientSecretEnv = "SPOTIPY_CLIENT_SECRET"
)

// Provider names.
const (
	ProviderSpotify = "spotify"
	ProviderLocal   = "local"
)

var validate = validator.New()

// Settings holds all configuration options.
type Settings struct {
	// Scoring
	TopN   int    `koanf:"top_n" validate:"min=1"`
	Trials int    `koanf:"trials" validate:"min=1"`
	Seed   uint64 `koanf:"seed"`

	// Input and output
	Input     string `koanf:"input"`
	OutputDir string `koanf:"output_dir" validate:"required"`
	CacheDir  string `koanf:"cache_dir"` // empty disables the persisted baseline cache

	// Metadata
	Provider    string `koanf:"provider" validate:"oneof=spotify local"`
	LibraryDir  string `koanf:"library_dir" validate:"required_if=Provider local"`
	Concurrency int    `koanf:"concurrency" validate:"min=1,max=32"`

	Raters  Raters          `koanf:"raters"`
	Spotify SpotifySettings `koanf:"spotify"`
	Report  ReportSettings  `koanf:"report"`
	Log     logging.Config  `koanf:"log"`
}

// Raters names the three rankings in reports and file names.
type Raters struct {
	First      string `koanf:"first" validate:"required,alphanum"`
	Second     string `koanf:"second" validate:"required,alphanum"`
	Popularity string `koanf:"popularity" validate:"required,alphanum"`
}

// SpotifySettings configures the Spotify Web API provider.
type SpotifySettings struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	Market            string        `koanf:"market" validate:"omitempty,len=2"`
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	TokenURL          string        `koanf:"token_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout" validate:"min=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"min=1"`
	FailureThreshold  uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// ReportSettings controls the artifacts written next to album records.
type ReportSettings struct {
	Index           bool   `koanf:"index"`
	Playlists       bool   `koanf:"playlists"`
	PlaylistFormat  string `koanf:"playlist_format" validate:"oneof=m3u pls wpl zpl"`
	M3UExtended     bool   `koanf:"m3u_extended"`
	CoverArt        bool   `koanf:"cover_art"`
	CoverArtMaxSize int    `koanf:"cover_art_max_size" validate:"min=16"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		TopN:   5,
		Trials: 100000,
		Seed:   42,

		OutputDir: "albums",

		Provider:    ProviderSpotify,
		Concurrency: 4,

		Raters: Raters{
			First:      "yagiz",
			Second:     "tugba",
			Popularity: "spotify",
		},

		Spotify: SpotifySettings{
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			FailureThreshold:  5,
		},

		Report: ReportSettings{
			Index:           true,
			Playlists:       false,
			PlaylistFormat:  "m3u",
			M3UExtended:     true,
			CoverArt:        false,
			CoverArtMaxSize: 300,
		},

		Log: logging.Config{
			Level:  logging.LevelInfo,
			Format: logging.FormatConsole,
		},
	}
}

// Load layers defaults, the optional YAML file at path and RANKSIM_
// environment variables, in increasing precedence. The legacy SPOTIPY_
// variables fill in Spotify credentials that are still empty.
//
// Load does not validate; call Validate once command-line overrides are
// applied.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	settings := &Settings{}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if settings.Spotify.ClientID == "" {
		settings.Spotify.ClientID = os.Getenv(LegacyClientIDEnv)
	}
	if settings.Spotify.ClientSecret == "" {
		settings.Spotify.ClientSecret = os.Getenv(LegacyClientSecretEnv)
	}

	return settings, nil
}

// envKey maps RANKSIM_SPOTIFY__MARKET to spotify.market.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Validate checks field constraints and the rules that span fields.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s %s", fe.Namespace(), fe.ActualTag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	r := s.Raters
	if r.First == r.Second || r.First == r.Popularity || r.Second == r.Popularity {
		return fmt.Errorf("invalid settings: rater names must be distinct, got %q %q %q", r.First, r.Second, r.Popularity)
	}

	if s.Provider == ProviderSpotify && (s.Spotify.ClientID == "" || s.Spotify.ClientSecret == "") {
		return fmt.Errorf("invalid settings: spotify credentials not found, set %s and %s", LegacyClientIDEnv, LegacyClientSecretEnv)
	}

	return nil
}

// ToParams converts settings to calibration parameters.
func (s *Settings) ToParams() scoring.Params {
	return scoring.Params{
		TopN:   s.TopN,
		Trials: s.Trials,
		Seed:   s.Seed,
	}
}

// ToPlaylistFormat converts the configured playlist format.
func (s *Settings) ToPlaylistFormat() audio.PlaylistFormat {
	switch s.Report.PlaylistFormat {
	case "pls":
		return audio.FormatPLS
	case "wpl":
		return audio.FormatWPL
	case "zpl":
		return audio.FormatZPL
	default:
		return audio.FormatM3U
	}
}
