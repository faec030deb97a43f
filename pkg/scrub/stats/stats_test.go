package stats

import (
	"fmt"
	"testing"
)

func TestCounterDistinctContexts(t *testing.T) {
	c := NewCounter()
	c.AddDialogue([]string{"how are you", "lol"}, nil)
	c.AddDialogue([]string{"nice goal", "lol"}, nil)
	c.AddDialogue([]string{"nice goal", "lol"}, nil) // same context again

	snap := c.Snapshot()
	if got := snap.ReplyContexts("lol"); got != 2 {
		t.Errorf("distinct contexts = %d, want 2", got)
	}
	if got := snap.ReplyUses("lol"); got != 3 {
		t.Errorf("uses = %d, want 3", got)
	}
}

func TestCounterContextIncludesEarlierReplies(t *testing.T) {
	c := NewCounter()
	// Same final reply, but the paths to it differ at turn two.
	c.AddDialogue([]string{"a", "b", "ok"}, nil)
	c.AddDialogue([]string{"a", "c", "ok"}, nil)

	if got := c.Snapshot().ReplyContexts("ok"); got != 2 {
		t.Errorf("distinct contexts = %d, want 2", got)
	}
}

func TestCounterSkipsEmptyDialogue(t *testing.T) {
	c := NewCounter()
	c.AddDialogue(nil, nil)
	c.AddDialogue([]string{"only opener"}, nil)

	snap := c.Snapshot()
	if snap.Malformed() != 1 {
		t.Errorf("malformed = %d, want 1", snap.Malformed())
	}
	if snap.Dialogues() != 1 {
		t.Errorf("dialogues = %d, want 1", snap.Dialogues())
	}
}

func TestSnapshotUnaffectedByLaterCounting(t *testing.T) {
	tok := func(s string) []string { return []string{s, s} }
	c := NewCounter()
	c.AddDialogue([]string{"x", "lol"}, tok)

	snap := c.Snapshot()
	c.AddDialogue([]string{"y", "lol"}, tok)
	c.AddDialogue([]string{"z", "lol"}, tok)

	if got := snap.ReplyUses("lol"); got != 1 {
		t.Errorf("uses = %d, want 1", got)
	}
	if got := snap.PhraseCount("xx"); got != 1 {
		t.Errorf("PhraseCount(xx) = %d, want 1", got)
	}
	if got := snap.PhraseCount("yy"); got != 0 {
		t.Errorf("PhraseCount(yy) = %d, want 0", got)
	}
}

func TestMerge(t *testing.T) {
	a := NewCounter()
	a.AddDialogue([]string{"x", "lol"}, nil)
	b := NewCounter()
	b.AddDialogue([]string{"y", "lol"}, nil)
	b.AddDialogue([]string{"x", "lol"}, nil) // duplicate of a's context

	a.Merge(b)
	snap := a.Snapshot()
	if got := snap.ReplyContexts("lol"); got != 2 {
		t.Errorf("merged distinct contexts = %d, want 2", got)
	}
	if got := snap.ReplyUses("lol"); got != 3 {
		t.Errorf("merged uses = %d, want 3", got)
	}
	if snap.Dialogues() != 3 {
		t.Errorf("merged dialogues = %d", snap.Dialogues())
	}
}

func TestPhraseCounting(t *testing.T) {
	tok := func(s string) []string {
		out := []string{}
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	c := NewCounter()
	c.AddDialogue([]string{"abc"}, tok)
	c.AddDialogue([]string{"abd"}, tok)

	snap := c.Snapshot()
	if got := snap.PhraseCount("ab"); got != 2 {
		t.Errorf("PhraseCount(ab) = %d, want 2", got)
	}
	if got := snap.PhraseCount("abc"); got != 1 {
		t.Errorf("PhraseCount(abc) = %d, want 1", got)
	}

	top := snap.TopPhrases(1)
	if len(top) != 1 || top[0].Text != "ab" {
		t.Errorf("top = %+v", top)
	}
}

func TestCollectReducesShards(t *testing.T) {
	// 40 shards across 4 workers must agree with a serial count.
	var shards []func(*Counter)
	for i := 0; i < 40; i++ {
		i := i
		shards = append(shards, func(c *Counter) {
			c.AddDialogue([]string{fmt.Sprintf("ctx %d", i), "lol"}, nil)
		})
	}

	snap := Collect(shards, 4)
	if got := snap.ReplyContexts("lol"); got != 40 {
		t.Errorf("distinct contexts = %d, want 40", got)
	}
	if snap.Dialogues() != 40 {
		t.Errorf("dialogues = %d, want 40", snap.Dialogues())
	}
}
