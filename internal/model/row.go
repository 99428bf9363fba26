package model

// AlbumRow is one row of the album table: what two raters picked for an
// album, plus display data passed through to the report.
//
// First and Second are 1-based track numbers, most preferred first.
type AlbumRow struct {
	Album       string   `yaml:"album"`
	ID          string   `yaml:"spotify_id"`
	Artist      string   `yaml:"artist,omitempty"`
	ReleaseDate string   `yaml:"release_date,omitempty"`
	RankingDate string   `yaml:"ranking_date,omitempty"`
	First       []int    `yaml:"first"`
	Second      []int    `yaml:"second"`
	FirstScore  *float64 `yaml:"first_score,omitempty"`
	SecondScore *float64 `yaml:"second_score,omitempty"`
}

// MeanScore averages the two raters' album scores. ok is false unless both
// scores are present.
func (r *AlbumRow) MeanScore() (mean float64, ok bool) {
	if r.FirstScore == nil || r.SecondScore == nil {
		return 0, false
	}
	return (*r.FirstScore + *r.SecondScore) / 2, true
}
