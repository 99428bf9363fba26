// Package audio reads album metadata from ID3-tagged MP3 files and renders
// rankings as playlists.
//
// # Local Library
//
// Library serves album metadata from disk, one directory per album id:
//
//	lib := audio.NewLibrary("/music/ranked", &log)
//	album, err := lib.Album(ctx, "animals")
//
// The library reads:
//   - Artist and album title
//   - Track number and title
//   - Duration (TLEN)
//   - Popularity (TXXX:POPULARITY or POPM rating)
//
// # Playlist Generation
//
// Render a ranking, most preferred first, as a playlist:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Animals (yagiz)", tracks)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
