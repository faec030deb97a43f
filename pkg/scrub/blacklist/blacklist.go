// Package blacklist loads the banned-term list. The set is immutable
// after loading and safe to share read-only across workers.
package blacklist

import (
	"bufio"
	"os"
	"strings"
)

// Set is an immutable collection of banned terms.
type Set struct {
	terms []string
}

// New builds a Set from the given terms, skipping empties.
func New(terms []string) *Set {
	s := &Set{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			s.terms = append(s.terms, t)
		}
	}
	return s
}

// Load reads a term list from a file, one term per line. Blank lines and
// lines starting with # are skipped.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(terms), nil
}

// Match returns the first banned term contained in text, or "" if none.
func (s *Set) Match(text string) string {
	if s == nil {
		return ""
	}
	for _, t := range s.terms {
		if strings.Contains(text, t) {
			return t
		}
	}
	return ""
}

// Len returns the number of terms.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.terms)
}
