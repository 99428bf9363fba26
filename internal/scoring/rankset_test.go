package scoring

import (
	"errors"
	"slices"
	"testing"
)

func TestNewRankSet(t *testing.T) {
	tests := []struct {
		name    string
		items   []int
		n       int
		wantErr error
	}{
		{"valid", []int{3, 1, 4}, 5, nil},
		{"empty", []int{}, 5, nil},
		{"too long", []int{0, 1, 2, 3, 4, 5}, 5, ErrInvalidTopN},
		{"duplicate", []int{1, 2, 1}, 5, ErrDuplicateItem},
		{"negative", []int{-1}, 5, ErrInvalidItem},
		{"bad n", []int{1}, 0, ErrInvalidTopN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewRankSet(tt.items, tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewRankSet() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && !slices.Equal(rs, RankSet(tt.items)) {
				t.Errorf("NewRankSet() = %v, want %v", rs, tt.items)
			}
		})
	}
}

func TestRankSet_Ranks(t *testing.T) {
	rs := RankSet{7, 2, 5}
	ranks := rs.Ranks()
	want := map[int]int{7: 1, 2: 2, 5: 3}
	for item, rank := range want {
		if ranks[item] != rank {
			t.Errorf("Ranks()[%d] = %d, want %d", item, ranks[item], rank)
		}
	}

	ranks[99] = 4
	if _, ok := rs.Ranks()[99]; ok {
		t.Error("mutating the rank map changed the RankSet")
	}
}

func TestFromTrackNumbers(t *testing.T) {
	numbers := []int{1, 2, 3, 4, 5, 6, 7, 8}

	tests := []struct {
		name        string
		numbers     []int
		picks       []int
		want        RankSet
		wantDropped []int
		wantErr     error
	}{
		{"one based to zero based", numbers, []int{3, 1, 8, 2, 5}, RankSet{2, 0, 7, 1, 4}, nil, nil},
		{"unknown tracks dropped", numbers, []int{3, 12, 1, 9}, RankSet{2, 0}, []int{12, 9}, nil},
		{"gapped numbering", []int{1, 2, 4, 5}, []int{4, 5}, RankSet{2, 3}, nil, nil},
		{"duplicate pick", numbers, []int{3, 3}, nil, nil, ErrDuplicateItem},
		{"too many picks", numbers, []int{1, 2, 3, 4, 5, 6}, nil, nil, ErrInvalidTopN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, dropped, err := FromTrackNumbers(tt.numbers, tt.picks, 5)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromTrackNumbers() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !slices.Equal(rs, tt.want) {
				t.Errorf("FromTrackNumbers() = %v, want %v", rs, tt.want)
			}
			if !slices.Equal(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
		})
	}
}

func TestTopByPopularity(t *testing.T) {
	tracks := []TrackPopularity{
		{Item: 0, Popularity: 40},
		{Item: 1, Popularity: 70},
		{Item: 2, Popularity: 55},
		{Item: 3, Popularity: 70},
		{Item: 4, Popularity: 10},
		{Item: 5, Popularity: 55},
		{Item: 6, Popularity: 90},
	}

	got := TopByPopularity(tracks, 5)
	want := RankSet{6, 1, 3, 2, 5}
	if !slices.Equal(got, want) {
		t.Errorf("TopByPopularity() = %v, want %v", got, want)
	}

	if tracks[0].Item != 0 || tracks[6].Item != 6 {
		t.Error("TopByPopularity reordered its input")
	}

	short := TopByPopularity(tracks[:3], 5)
	if !slices.Equal(short, RankSet{1, 2, 0}) {
		t.Errorf("TopByPopularity(3 tracks) = %v, want [1 2 0]", short)
	}

	if got := TopByPopularity(nil, 5); len(got) != 0 {
		t.Errorf("TopByPopularity(nil) = %v, want empty", got)
	}
}
