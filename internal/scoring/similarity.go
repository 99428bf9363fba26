package scoring

// Similarity returns -(loss - mean) / std for the baseline.
//
// Lower loss than chance gives a positive score, higher loss a negative one.
// A zero-variance baseline cannot discriminate and scores 0.
func Similarity(loss int, b Baseline) float64 {
	if b.Std == 0 {
		return 0
	}
	return (b.Mean - float64(loss)) / b.Std
}
