package rules

import (
	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// Repeat collapses phrase repetition within a turn: when the upcoming
// text repeats a phrase just emitted, the repetition is skipped. The
// longest match wins; ties go to the earliest offset because the scan is
// left to right. This is a direct substring scan, not a suffix array.
type Repeat struct {
	minPhrase int // shortest phrase (in runes) worth collapsing
	maxPhrase int // longest lookback window
}

func NewRepeat(minPhrase, maxPhrase int) *Repeat {
	if minPhrase <= 0 {
		minPhrase = 2
	}
	if maxPhrase <= 0 {
		maxPhrase = 30
	}
	return &Repeat{minPhrase: minPhrase, maxPhrase: maxPhrase}
}

func (*Repeat) Name() string { return "repeat" }

func (r *Repeat) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	t.Text = r.collapse(t.Text)
	return dialogue.KeepTurn(t)
}

// collapse repeats single passes until a fixpoint. A single pass is not
// idempotent on its own: skipping a repetition can bring two copies of a
// phrase adjacent that the pass already moved past, so the scan runs
// again until nothing changes.
func (r *Repeat) collapse(s string) string {
	for {
		next := r.collapseOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

// collapseOnce walks the runes once. At each position it looks for the
// longest suffix of the emitted output that matches the upcoming
// remainder and skips it.
func (r *Repeat) collapseOnce(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in))

	for i := 0; i < len(in); {
		limit := len(out)
		if rem := len(in) - i; rem < limit {
			limit = rem
		}
		if limit > r.maxPhrase {
			limit = r.maxPhrase
		}

		skip := 0
		for l := limit; l >= r.minPhrase; l-- {
			if runesEqual(out[len(out)-l:], in[i:i+l]) {
				skip = l
				break
			}
		}
		if skip > 0 {
			i += skip
			continue
		}
		out = append(out, in[i])
		i++
	}
	return string(out)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
