// Package config provides configuration management for ranksim.
//
// Settings are layered with koanf, lowest precedence first:
//
//  1. DefaultSettings()
//  2. an optional YAML file
//  3. RANKSIM_ environment variables (RANKSIM_TRIALS, RANKSIM_SPOTIFY__MARKET)
//
// Spotify credentials also fall back to SPOTIPY_CLIENT_ID and
// SPOTIPY_CLIENT_SECRET. The CLI loads a .env file into the environment
// before calling Load.
//
// # Loading
//
//	settings, err := config.Load("ranksim.yaml")
//	if err != nil {
//	    return err
//	}
//	settings.Trials = 5000 // command-line override
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// # Example file
//
//	top_n: 5
//	trials: 100000
//	seed: 42
//	input: albums.yaml
//	output_dir: albums
//	cache_dir: .ranksim-cache
//	raters:
//	  first: yagiz
//	  second: tugba
//	report:
//	  playlists: true
//	  playlist_format: m3u
//	  cover_art: true
package config
