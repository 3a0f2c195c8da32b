package cache

import (
	"regexp"

	"github.com/pkg/errors"
)

// InvalidatePattern removes every entry whose key matches the regular
// expression pattern and returns how many were removed. Matching runs against
// the raw key. Invalidating an empty namespace returns 0.
func (s *Store) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid cache key pattern %q", pattern)
	}
	return s.invalidateMatching(re.MatchString), nil
}

// InvalidateNamespace removes every key under namespace ns, e.g. "events".
func (s *Store) InvalidateNamespace(ns string) int {
	return s.invalidateMatching(regexp.MustCompile(NamespacePattern(ns)).MatchString)
}

func (s *Store) invalidateMatching(match func(string) bool) int {
	s.mu.Lock()
	removed := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.updateSize(n)
	}
	return removed
}
