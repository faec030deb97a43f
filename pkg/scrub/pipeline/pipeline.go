// Package pipeline threads a dialogue through an ordered rule chain.
//
// A dialogue is Active while rules apply, and ends Discarded (routed to
// the dirty sink) or Completed (one or more output dialogues). A
// dropped interior turn acts as a dialogue boundary: the prefix before
// it and the suffix after it continue through the remaining rules as
// independent dialogues. Neighbors of a removed turn are never glued
// together.
package pipeline

import (
	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
	"github.com/dialogkit/scrub/pkg/scrub/rules"
)

// Result collects everything one dialogue produced.
type Result struct {
	Clean  []dialogue.Dialogue
	Dirty  []dialogue.DirtyRecord
	Splits int
	Drops  map[string]int // rule name -> dropped units
}

// Pipeline applies a fixed rule order. Deterministic: identical input
// and configuration yield identical results.
type Pipeline struct {
	chain []rules.Rule
}

// New creates a pipeline over the given rule chain. The caller fixes
// the order; the pipeline never reorders.
func New(chain []rules.Rule) *Pipeline {
	return &Pipeline{chain: chain}
}

// Run processes one dialogue to a terminal state.
func (p *Pipeline) Run(d dialogue.Dialogue) Result {
	res := Result{Drops: make(map[string]int)}
	p.run(d, 0, &res)
	return res
}

func (p *Pipeline) run(d dialogue.Dialogue, from int, res *Result) {
	for i := from; i < len(p.chain); i++ {
		switch r := p.chain[i].(type) {
		case rules.TurnRule:
			frags := p.applyTurnRule(r, d, res)
			switch len(frags) {
			case 0:
				return // every turn dropped
			case 1:
				d = frags[0]
			default:
				// Fan-out: remaining rules apply to each fragment
				// independently, in order, keeping output deterministic.
				res.Splits++
				for _, f := range frags {
					p.run(f, i+1, res)
				}
				return
			}
		case rules.DialogueRule:
			out := r.ApplyDialogue(d)
			switch out.Kind {
			case dialogue.Kept:
				d = out.Dialogue
			case dialogue.DroppedDialogue:
				res.Drops[r.Name()]++
				res.Dirty = append(res.Dirty, dialogue.DirtyRecord{
					Rule:      r.Name(),
					Reason:    out.Reason,
					Partition: d.Partition,
					Session:   d.Session,
					Turns:     d.Texts(),
				})
				return
			case dialogue.SplitDialogue:
				res.Splits++
				for _, f := range out.Splits {
					p.run(f, i+1, res)
				}
				return
			}
		}
	}
	res.Clean = append(res.Clean, d)
}

// applyTurnRule applies r to every turn. Kept turns accumulate into the
// current fragment; each dropped turn closes the fragment and is routed
// to dirty. The returned fragments are the non-empty runs of surviving
// turns in original order.
func (p *Pipeline) applyTurnRule(r rules.TurnRule, d dialogue.Dialogue, res *Result) []dialogue.Dialogue {
	var frags []dialogue.Dialogue
	current := dialogue.Dialogue{Partition: d.Partition, Session: d.Session}

	closeFrag := func() {
		if len(current.Turns) > 0 {
			frags = append(frags, current)
			current = dialogue.Dialogue{Partition: d.Partition, Session: d.Session}
		}
	}

	for _, t := range d.Turns {
		out := r.ApplyTurn(t)
		switch out.Kind {
		case dialogue.Kept:
			current.Turns = append(current.Turns, out.Turn)
		case dialogue.DroppedTurn:
			res.Drops[r.Name()]++
			res.Dirty = append(res.Dirty, dialogue.DirtyRecord{
				Rule:      r.Name(),
				Reason:    out.Reason,
				Partition: d.Partition,
				Session:   d.Session,
				Turns:     []string{t.Text},
			})
			closeFrag()
		case dialogue.DroppedDialogue:
			res.Drops[r.Name()]++
			res.Dirty = append(res.Dirty, dialogue.DirtyRecord{
				Rule:      r.Name(),
				Reason:    out.Reason,
				Partition: d.Partition,
				Session:   d.Session,
				Turns:     d.Texts(),
			})
			return nil
		}
	}
	closeFrag()
	return frags
}
