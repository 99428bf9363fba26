// Package spotify is the album metadata provider backed by the Spotify Web
// API.
//
// An album is fetched in three steps:
//  1. GET /albums/{id} for album fields and the first page of tracks
//  2. the tracks.next links until the listing is complete
//  3. GET /tracks?ids=... in batches of 50 for per-track popularity
//
// Requests are authenticated with the OAuth2 client credentials flow and go
// through the shared rate limited HTTP client.
//
// The dto subpackage holds the wire types.
package spotify
