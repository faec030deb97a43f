// Package rules implements the cleaning rules applied by the dialogue
// pipeline. Each rule operates at a fixed level — turn or dialogue —
// expressed by which interface it implements; the level is never
// inferred from the input.
package rules

import "github.com/dialogkit/scrub/pkg/scrub/dialogue"

// Rule is the common capability of every cleaning rule.
type Rule interface {
	Name() string
}

// TurnRule transforms or drops a single turn.
type TurnRule interface {
	Rule
	ApplyTurn(t dialogue.Turn) dialogue.Outcome
}

// DialogueRule transforms, splits, or discards a whole dialogue.
type DialogueRule interface {
	Rule
	ApplyDialogue(d dialogue.Dialogue) dialogue.Outcome
}
