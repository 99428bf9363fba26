package scoring

import (
	"cmp"
	"slices"
)

// TrackPopularity pairs an item id with the platform's popularity score.
type TrackPopularity struct {
	Item       int
	Popularity int
}

// TopByPopularity ranks tracks by popularity, highest first, and keeps the
// first min(n, len(tracks)) item ids. Equal popularity is ordered by item id,
// so earlier tracks on the album win ties.
func TopByPopularity(tracks []TrackPopularity, n int) RankSet {
	sorted := slices.Clone(tracks)
	slices.SortStableFunc(sorted, func(x, y TrackPopularity) int {
		if c := cmp.Compare(y.Popularity, x.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(x.Item, y.Item)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}

	rs := make(RankSet, n)
	for i := range n {
		rs[i] = sorted[i].Item
	}
	return rs
}
