package rules

import (
	"fmt"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
	"github.com/dialogkit/scrub/pkg/scrub/stats"
)

// GenericReply discards dialogues whose final turn is a reply seen
// across too many distinct contexts — "lol"-grade filler with no
// information content. Requires a collected snapshot.
type GenericReply struct {
	snapshot    *stats.Snapshot
	minContexts int64
}

func NewGenericReply(snapshot *stats.Snapshot, minContexts int64) *GenericReply {
	if minContexts <= 0 {
		minContexts = 50
	}
	return &GenericReply{snapshot: snapshot, minContexts: minContexts}
}

func (*GenericReply) Name() string { return "generic" }

func (r *GenericReply) ApplyDialogue(d dialogue.Dialogue) dialogue.Outcome {
	last := d.Turns[len(d.Turns)-1].Text
	if n := r.snapshot.ReplyContexts(last); n >= r.minContexts {
		return dialogue.DropDialogue(fmt.Sprintf("generic reply seen in %d contexts", n))
	}
	return dialogue.KeepDialogue(d)
}

// Advert discards dialogues carrying a mass-pasted reply: one used many
// times, nearly always into a fresh context. Copy-paste advertising
// pastes the same text under unrelated posts, so its distinct-context
// ratio stays close to one.
type Advert struct {
	snapshot *stats.Snapshot
	minUses  int64
	ratio    float64
}

func NewAdvert(snapshot *stats.Snapshot, minUses int64, ratio float64) *Advert {
	if minUses <= 0 {
		minUses = 30
	}
	if ratio <= 0 {
		ratio = 0.9
	}
	return &Advert{snapshot: snapshot, minUses: minUses, ratio: ratio}
}

func (*Advert) Name() string { return "advert" }

func (r *Advert) ApplyDialogue(d dialogue.Dialogue) dialogue.Outcome {
	for i, t := range d.Turns {
		if i == 0 {
			continue
		}
		uses := r.snapshot.ReplyUses(t.Text)
		if uses < r.minUses {
			continue
		}
		if float64(r.snapshot.ReplyContexts(t.Text))/float64(uses) >= r.ratio {
			return dialogue.DropDialogue(fmt.Sprintf("reply pasted across %d contexts", uses))
		}
	}
	return dialogue.KeepDialogue(d)
}
