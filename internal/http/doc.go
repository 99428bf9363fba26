// Package http provides the HTTP client shared by metadata providers and
// the cover art downloader.
//
// # Client
//
// The Client wraps the standard library's http.Client with:
//   - User-Agent and Accept headers
//   - A token-bucket rate limiter (golang.org/x/time/rate)
//   - A circuit breaker (sony/gobreaker) that opens after consecutive
//     temporary failures
//   - Retries with exponential backoff for 429 and 5xx responses
//   - JSON decoding via goccy/go-json
//
// # Usage
//
//	client := http.NewClient(http.ClientConfig{RequestsPerSecond: 5, Burst: 5})
//
//	var v struct{ Name string `json:"name"` }
//	err := client.GetJSON(ctx, url, &v)
//
//	// Download cover art
//	data, err := client.DownloadBytes(ctx, artworkURL)
package http
