package pipeline

import (
	"reflect"
	"testing"

	"github.com/dialogkit/scrub/pkg/scrub/blacklist"
	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
	"github.com/dialogkit/scrub/pkg/scrub/rules"
)

func dlg(texts ...string) dialogue.Dialogue {
	d := dialogue.Dialogue{Partition: "part.txt"}
	for i, s := range texts {
		d.Turns = append(d.Turns, dialogue.Turn{Text: s, Ordinal: i})
	}
	return d
}

func texts(ds []dialogue.Dialogue) [][]string {
	out := make([][]string, len(ds))
	for i, d := range ds {
		out[i] = d.Texts()
	}
	return out
}

func TestInteriorDropSplitsDialogue(t *testing.T) {
	set := blacklist.New([]string{"BLACKLISTWORD"})
	p := New([]rules.Rule{rules.NewBlacklist(set)})

	res := p.Run(dlg("Hi", "BLACKLISTWORD reply", "ok bye"))

	want := [][]string{{"Hi"}, {"ok bye"}}
	if !reflect.DeepEqual(texts(res.Clean), want) {
		t.Errorf("clean = %v, want %v", texts(res.Clean), want)
	}
	if len(res.Dirty) != 1 {
		t.Fatalf("dirty = %d records, want 1", len(res.Dirty))
	}
	if res.Dirty[0].Rule != "blacklist" {
		t.Errorf("dirty rule = %q", res.Dirty[0].Rule)
	}
	if res.Splits != 1 {
		t.Errorf("splits = %d, want 1", res.Splits)
	}
}

func TestLeadingDropLeavesSingleFragment(t *testing.T) {
	p := New([]rules.Rule{rules.NewURL()})

	res := p.Run(dlg("https://spam.example/offer", "real question", "real answer"))

	want := [][]string{{"real question", "real answer"}}
	if !reflect.DeepEqual(texts(res.Clean), want) {
		t.Errorf("clean = %v, want %v", texts(res.Clean), want)
	}
	if res.Splits != 0 {
		t.Errorf("a single surviving fragment is not a split, got %d", res.Splits)
	}
}

func TestSingleTurnDialogueNeverSplits(t *testing.T) {
	p := New([]rules.Rule{rules.NewURL()})

	res := p.Run(dlg("https://only.a.url/here"))
	if len(res.Clean) != 0 {
		t.Errorf("clean should be empty, got %v", texts(res.Clean))
	}
	if len(res.Dirty) != 1 || res.Dirty[0].Rule != "url" {
		t.Fatalf("expected one url dirty record, got %+v", res.Dirty)
	}
	if res.Splits != 0 {
		t.Errorf("splits = %d, want 0", res.Splits)
	}

	res = p.Run(dlg("no url in sight"))
	if len(res.Clean) != 1 {
		t.Errorf("clean dialogue lost: %v", texts(res.Clean))
	}
}

func TestAllTurnsDroppedDiscardsDialogue(t *testing.T) {
	p := New([]rules.Rule{rules.NewURL()})

	res := p.Run(dlg("http://a.example", "http://b.example"))
	if len(res.Clean) != 0 {
		t.Errorf("clean = %v, want none", texts(res.Clean))
	}
	if len(res.Dirty) != 2 {
		t.Errorf("dirty = %d, want 2", len(res.Dirty))
	}
}

func TestDialogueDropShortCircuits(t *testing.T) {
	// length would drop the empty second turn, but the dialogue-level
	// drop must fire first and skip it.
	p := New([]rules.Rule{dropAll{}, rules.NewLength(1, 200)})

	res := p.Run(dlg("abort this", ""))
	if len(res.Dirty) != 1 {
		t.Fatalf("dirty = %d, want 1 whole-dialogue record", len(res.Dirty))
	}
	if res.Dirty[0].Rule != "dropall" {
		t.Errorf("rule = %q", res.Dirty[0].Rule)
	}
	if got := res.Drops["length"]; got != 0 {
		t.Errorf("length ran after dialogue drop: %d", got)
	}
}

// dropAll is a dialogue-level rule that always discards.
type dropAll struct{}

func (dropAll) Name() string { return "dropall" }
func (dropAll) ApplyDialogue(d dialogue.Dialogue) dialogue.Outcome {
	return dialogue.DropDialogue("always")
}

func TestSplitFansOutRemainingRules(t *testing.T) {
	// After the blacklist split, length still applies to each fragment:
	// the now-too-long turn in the suffix fragment is dropped there.
	set := blacklist.New([]string{"bad"})
	p := New([]rules.Rule{
		rules.NewBlacklist(set),
		rules.NewLength(1, 10),
	})

	res := p.Run(dlg("hi", "bad turn", "short", "this one is far too long to keep"))

	want := [][]string{{"hi"}, {"short"}}
	if !reflect.DeepEqual(texts(res.Clean), want) {
		t.Errorf("clean = %v, want %v", texts(res.Clean), want)
	}
	if res.Drops["length"] != 1 || res.Drops["blacklist"] != 1 {
		t.Errorf("drops = %v", res.Drops)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	set := blacklist.New([]string{"尼玛"})
	chain := []rules.Rule{
		rules.NewWhitespace(),
		rules.NewMention(30),
		rules.NewURL(),
		rules.NewBlacklist(set),
		rules.NewRepeat(2, 30),
		rules.NewLength(1, 200),
	}
	p := New(chain)
	in := dlg("今天 天气 不错", "@friend 哈哈哈哈", "看 https://x.example/p 不错不错", "尼玛怎么回事")

	first := p.Run(in)
	second := p.Run(dlg("今天 天气 不错", "@friend 哈哈哈哈", "看 https://x.example/p 不错不错", "尼玛怎么回事"))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("pipeline not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestOrderingMatters(t *testing.T) {
	// A long URL-only turn: with url first it is attributed to url;
	// with length first it is attributed to length. The canonical
	// order is configuration, and permuting it changes output.
	long := "https://example.com/aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	canonical := New([]rules.Rule{rules.NewURL(), rules.NewLength(1, 20)})
	permuted := New([]rules.Rule{rules.NewLength(1, 20), rules.NewURL()})

	a := canonical.Run(dlg("hello there", long))
	b := permuted.Run(dlg("hello there", long))

	if a.Dirty[0].Rule == b.Dirty[0].Rule {
		t.Errorf("expected differing attribution, both %q", a.Dirty[0].Rule)
	}
	if a.Dirty[0].Rule != "url" {
		t.Errorf("canonical order should attribute to url, got %q", a.Dirty[0].Rule)
	}
}
