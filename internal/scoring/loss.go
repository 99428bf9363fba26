package scoring

// Loss returns the disagreement between two rankings.
//
// Both rankings get a rank map (1..len). Items of b missing from a receive
// virtual ranks in a's map starting at len(a)+1, in the order they appear in
// b; symmetrically for items of a missing from b. The loss is the sum of
// |rankA - rankB| over the union of both rankings.
//
// Loss is symmetric, zero for identical rankings and never negative.
// Returns ErrEmptyRankSet if either ranking is empty.
func Loss(a, b RankSet) (int, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyRankSet
	}
	return loss(a, b), nil
}

func loss(a, b RankSet) int {
	aRanks := a.Ranks()
	bRanks := b.Ranks()

	next := len(a) + 1
	for _, item := range b {
		if _, ok := aRanks[item]; !ok {
			aRanks[item] = next
			next++
		}
	}

	next = len(b) + 1
	for _, item := range a {
		if _, ok := bRanks[item]; !ok {
			bRanks[item] = next
			next++
		}
	}

	// aRanks now covers the union.
	total := 0
	for item, ra := range aRanks {
		d := ra - bRanks[item]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}
