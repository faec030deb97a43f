package rules

import (
	"fmt"

	"github.com/dialogkit/scrub/pkg/scrub/blacklist"
	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// Blacklist drops any turn containing a banned term. There is no safe
// excision for profanity embedded in running text, so the whole turn
// goes.
type Blacklist struct {
	set *blacklist.Set
}

func NewBlacklist(set *blacklist.Set) *Blacklist { return &Blacklist{set: set} }

func (*Blacklist) Name() string { return "blacklist" }

func (r *Blacklist) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	if term := r.set.Match(t.Text); term != "" {
		return dialogue.DropTurn(fmt.Sprintf("blacklisted term %q", term))
	}
	return dialogue.KeepTurn(t)
}
