package geodata

import (
	"slices"
	"strings"
)

// TagSet stores normalised country codes.
type TagSet map[string]struct{}

// NewTagSet creates a TagSet holding the given tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

// NormalizeTag lower-cases and trims a configured tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Add adds a configured tag to the set. Blank tags are ignored.
func (s TagSet) Add(tag string) {
	tag = NormalizeTag(tag)
	if tag == "" {
		return
	}
	s[tag] = struct{}{}
}

// AddCode adds a code read from a data file. Only case is folded; padding
// and empty codes are kept as they are.
func (s TagSet) AddCode(code string) {
	s[strings.ToLower(code)] = struct{}{}
}

// Has reports whether tag is in the set, ignoring case.
func (s TagSet) Has(tag string) bool {
	_, ok := s[strings.ToLower(tag)]
	return ok
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s)
}

// Difference returns the tags of s that are absent from other.
func (s TagSet) Difference(other TagSet) TagSet {
	out := make(TagSet)
	for tag := range s {
		if _, ok := other[tag]; !ok {
			out[tag] = struct{}{}
		}
	}
	return out
}

// Intersection returns the tags present in both sets.
func (s TagSet) Intersection(other TagSet) TagSet {
	out := make(TagSet)
	for tag := range s {
		if _, ok := other[tag]; ok {
			out[tag] = struct{}{}
		}
	}
	return out
}

// Sorted returns the tags in lexical order, for rendering.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}
