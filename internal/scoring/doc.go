// Package scoring compares partial top-N rankings of an album's tracks.
//
// Everything in this package is pure computation over small in-memory
// values. Metadata fetching and artifact writing live elsewhere.
//
// # RankSet
//
// A RankSet is an ordered list of item ids, rank 1 first. Item ids are
// 0-based indexes into an album's ordered track list. FromTrackNumbers is the
// only place where 1-based track numbers become item ids:
//
//	rs, dropped, err := scoring.FromTrackNumbers(album.TrackNumbers(), []int{3, 1, 7}, 5)
//
// # Loss
//
// Loss sums the absolute rank differences over the union of two RankSets.
// Items missing from one side get virtual ranks len+1, len+2, ... in the
// order they appear in the other ranking:
//
//	loss, _ := scoring.Loss(scoring.RankSet{0, 1, 2, 3, 4}, scoring.RankSet{4, 3, 2, 1, 0})
//	// loss == 12
//
// # Baselines
//
// Calibrate runs a seeded Monte Carlo simulation of random top-N picks from
// a universe of k tracks and returns the mean and population standard
// deviation of the loss. BaselineCache memoizes one Baseline per universe
// size and optionally persists it through a BaselineStore.
//
// # Similarity
//
// Similarity is the negated z-score of an observed loss against a Baseline.
// Positive values mean more agreement than chance.
package scoring
