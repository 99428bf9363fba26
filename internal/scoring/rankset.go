package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRankSet is returned when a comparison is asked for an empty ranking.
	ErrEmptyRankSet = errors.New("empty rank set")

	// ErrDuplicateItem is returned when a ranking lists the same item twice.
	ErrDuplicateItem = errors.New("duplicate item in rank set")

	// ErrInvalidTopN is returned for a non-positive N or a ranking longer than N.
	ErrInvalidTopN = errors.New("invalid top-n")

	// ErrInvalidItem is returned for negative item ids.
	ErrInvalidItem = errors.New("invalid item id")
)

// RankSet is an ordered list of distinct item ids, most preferred first.
type RankSet []int

// NewRankSet validates items as a ranking of at most n distinct, non-negative ids.
// The returned RankSet is a copy; items is not retained.
func NewRankSet(items []int, n int) (RankSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopN, n)
	}
	if len(items) > n {
		return nil, fmt.Errorf("%w: %d items for top-%d", ErrInvalidTopN, len(items), n)
	}

	seen := make(map[int]struct{}, len(items))
	rs := make(RankSet, 0, len(items))
	for _, item := range items {
		if item < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidItem, item)
		}
		if _, ok := seen[item]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItem, item)
		}
		seen[item] = struct{}{}
		rs = append(rs, item)
	}
	return rs, nil
}

// Ranks returns a fresh map from item id to its 1-based rank.
func (r RankSet) Ranks() map[int]int {
	ranks := make(map[int]int, len(r))
	for i, item := range r {
		ranks[item] = i + 1
	}
	return ranks
}

// FromTrackNumbers converts 1-based track numbers into a RankSet of item ids.
//
// numbers lists the album's track numbers in track-list order; the item id
// of a track is its index in numbers. This is the only conversion between
// the provider's numbering and item ids.
//
// Picks that name a track the album does not have are dropped and returned
// in dropped, so stale curated data degrades instead of failing. Duplicate
// picks and more than n picks are errors.
func FromTrackNumbers(numbers, picks []int, n int) (rs RankSet, dropped []int, err error) {
	if n > 0 && len(picks) > n {
		return nil, nil, fmt.Errorf("%w: %d picks for top-%d", ErrInvalidTopN, len(picks), n)
	}

	index := make(map[int]int, len(numbers))
	for i, num := range numbers {
		if _, ok := index[num]; !ok {
			index[num] = i
		}
	}

	items := make([]int, 0, len(picks))
	seen := make(map[int]struct{}, len(picks))
	for _, num := range picks {
		if _, ok := seen[num]; ok {
			return nil, nil, fmt.Errorf("%w: track %d", ErrDuplicateItem, num)
		}
		seen[num] = struct{}{}

		item, ok := index[num]
		if !ok {
			dropped = append(dropped, num)
			continue
		}
		items = append(items, item)
	}

	rs, err = NewRankSet(items, n)
	if err != nil {
		return nil, nil, err
	}
	return rs, dropped, nil
}
