package report

import (
	"regexp"
	"strconv"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}_-]`)

// Slug derives a file name stem from an album name: lowercase, spaces
// become hyphens, and anything that is not a letter, digit, underscore or
// hyphen is removed.
//
//	Slug("The Dark Side of the Moon") // "the-dark-side-of-the-moon"
//	Slug("Wish You Were Here (2011)") // "wish-you-were-here-2011"
//	Slug("Sigur Rós: ()")             // "sigur-rós-"
func Slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// slugSet hands out unique slugs. Repeats get -2, -3 and so on.
type slugSet struct {
	used map[string]struct{}
}

func newSlugSet(reserved ...string) *slugSet {
	s := &slugSet{used: make(map[string]struct{})}
	for _, r := range reserved {
		s.used[r] = struct{}{}
	}
	return s
}

func (s *slugSet) next(name string) string {
	base := Slug(name)
	if base == "" {
		base = "album"
	}

	slug := base
	for i := 2; ; i++ {
		if _, ok := s.used[slug]; !ok {
			break
		}
		slug = base + "-" + strconv.Itoa(i)
	}
	s.used[slug] = struct{}{}
	return slug
}
