package rules

import (
	"fmt"
	"unicode/utf8"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// Length drops turns outside the configured rune-length bounds. Runs
// after every mutating rule so it judges final text.
type Length struct {
	min int
	max int
}

func NewLength(min, max int) *Length {
	if min <= 0 {
		min = 1
	}
	if max <= 0 {
		max = 200
	}
	return &Length{min: min, max: max}
}

func (*Length) Name() string { return "length" }

func (r *Length) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	n := utf8.RuneCountInString(t.Text)
	if n < r.min {
		return dialogue.DropTurn(fmt.Sprintf("turn shorter than %d runes", r.min))
	}
	if n > r.max {
		return dialogue.DropTurn(fmt.Sprintf("turn longer than %d runes", r.max))
	}
	return dialogue.KeepTurn(t)
}
