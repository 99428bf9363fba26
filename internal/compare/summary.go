package compare

// PairSummary aggregates one pair across a batch.
type PairSummary struct {
	A, B string

	// Count is the number of albums with a defined similarity.
	Count          int
	MeanSimilarity float64

	// Losses is the number of albums with a defined loss.
	Losses   int
	MeanLoss float64
}

// Key names the pair, e.g. "yagiz_vs_tugba".
func (s PairSummary) Key() string {
	return s.A + "_vs_" + s.B
}

// Summarize averages each pair over the results. Undefined values are
// left out of the means; a pair without any defined value has mean 0.
func Summarize(results []Result) []PairSummary {
	if len(results) == 0 {
		return nil
	}

	var sums [3]PairSummary
	var simTotal, lossTotal [3]float64
	for i, p := range results[0].Pairs {
		sums[i].A, sums[i].B = p.A, p.B
	}

	for _, res := range results {
		for i, p := range res.Pairs {
			if p.Loss != nil {
				sums[i].Losses++
				lossTotal[i] += float64(*p.Loss)
			}
			if p.Similarity != nil {
				sums[i].Count++
				simTotal[i] += *p.Similarity
			}
		}
	}

	out := make([]PairSummary, 0, len(sums))
	for i, s := range sums {
		if s.Count > 0 {
			s.MeanSimilarity = simTotal[i] / float64(s.Count)
		}
		if s.Losses > 0 {
			s.MeanLoss = lossTotal[i] / float64(s.Losses)
		}
		out = append(out, s)
	}
	return out
}
