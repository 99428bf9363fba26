package report

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Animals", "animals"},
		{"The Dark Side of the Moon", "the-dark-side-of-the-moon"},
		{"Wish You Were Here (2011 Remaster)", "wish-you-were-here-2011-remaster"},
		{"OK Computer OKNOTOK 1997 2017", "ok-computer-oknotok-1997-2017"},
		{"Sigur Rós: Ágætis byrjun", "sigur-rós-ágætis-byrjun"},
		{"AC/DC - Back in Black", "acdc---back-in-black"},
		{"snake_case", "snake_case"},
		{"  ", "--"},
		{"?!", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugSet(t *testing.T) {
	s := newSlugSet("index")

	got := []string{
		s.next("Animals"),
		s.next("animals"),
		s.next("ANIMALS"),
		s.next("Index"),
		s.next("?!"),
		s.next("!?"),
	}
	want := []string{"animals", "animals-2", "animals-3", "index-2", "album", "album-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("next() #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSongsKey(t *testing.T) {
	tests := []struct {
		rater string
		want  string
	}{
		{"yagiz", "yagiz_songs"},
		{"Tuğba", "tuğba_songs"},
		{"Second Rater", "second_rater_songs"},
	}
	for _, tt := range tests {
		if got := SongsKey(tt.rater); got != tt.want {
			t.Errorf("SongsKey(%q) = %q, want %q", tt.rater, got, tt.want)
		}
	}
}
