// Package model defines the album data shared by providers, the batch
// runner and the report writer.
//
// # Album
//
// Album holds provider metadata with tracks in track-number order:
//
//	album := model.NewAlbum(id, "Artist", "Title", artworkURL, releaseDate)
//	album.AddTrack(model.NewTrack(1, "Song", url))
//	album.SortTracks()
//
// A track's index in Album.Tracks is its item id in rankings. Track.Number
// keeps the provider's 1-based numbering.
//
// # AlbumRow
//
// AlbumRow is one row of the input table: two raters' top picks as 1-based
// track numbers, their album scores, and display dates.
package model
