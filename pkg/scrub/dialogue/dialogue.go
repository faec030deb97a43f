// Package dialogue defines the data model shared by every stage of the
// corpus cleaner: turns, dialogues, rule outcomes, and dirty records.
package dialogue

// Turn is one utterance within a Dialogue. Rules never mutate a Turn in
// place; they return a new one so a pipeline run can be replayed.
type Turn struct {
	Text    string
	Speaker string
	Ordinal int // position within the original dialogue
}

// Dialogue is one conversation session, an ordered non-empty sequence of
// turns. Partition and Session trace it back to its input file and line.
type Dialogue struct {
	Partition string
	Session   int
	Turns     []Turn
}

// Texts returns the turn texts in order.
func (d Dialogue) Texts() []string {
	out := make([]string, len(d.Turns))
	for i, t := range d.Turns {
		out[i] = t.Text
	}
	return out
}

// Clone returns a deep copy so a rule can build a transformed dialogue
// without aliasing the input's turn slice.
func (d Dialogue) Clone() Dialogue {
	c := d
	c.Turns = make([]Turn, len(d.Turns))
	copy(c.Turns, d.Turns)
	return c
}

// OutcomeKind discriminates the variants of Outcome.
type OutcomeKind int

const (
	Kept OutcomeKind = iota
	DroppedTurn
	DroppedDialogue
	SplitDialogue
)

func (k OutcomeKind) String() string {
	switch k {
	case Kept:
		return "kept"
	case DroppedTurn:
		return "dropped-turn"
	case DroppedDialogue:
		return "dropped-dialogue"
	case SplitDialogue:
		return "split-dialogue"
	}
	return "unknown"
}

// Outcome is the result of applying one rule to one turn or dialogue.
// Exactly one variant holds; use the constructors below.
type Outcome struct {
	Kind     OutcomeKind
	Turn     Turn       // valid when Kind==Kept at turn level
	Dialogue Dialogue   // valid when Kind==Kept at dialogue level
	Splits   []Dialogue // valid when Kind==SplitDialogue
	Reason   string     // valid for the dropped variants
}

// KeepTurn marks a turn as kept, possibly transformed.
func KeepTurn(t Turn) Outcome { return Outcome{Kind: Kept, Turn: t} }

// KeepDialogue marks a dialogue as kept, possibly transformed.
func KeepDialogue(d Dialogue) Outcome { return Outcome{Kind: Kept, Dialogue: d} }

// DropTurn removes the turn from its dialogue.
func DropTurn(reason string) Outcome { return Outcome{Kind: DroppedTurn, Reason: reason} }

// DropDialogue discards the whole dialogue, short-circuiting later rules.
func DropDialogue(reason string) Outcome { return Outcome{Kind: DroppedDialogue, Reason: reason} }

// Split replaces the dialogue with the given fragments; the remaining
// rules apply to each fragment independently.
func Split(ds []Dialogue) Outcome { return Outcome{Kind: SplitDialogue, Splits: ds} }

// DirtyRecord is a unit removed by a rule, tagged with the rule that
// removed it. Routed to the dirty sink, never to clean output. ID is
// assigned by the sink at write time.
type DirtyRecord struct {
	ID        string   `json:"id"`
	Rule      string   `json:"rule"`
	Reason    string   `json:"reason"`
	Partition string   `json:"partition"`
	Session   int      `json:"session"`
	Turns     []string `json:"turns"`
}
