package rules

import (
	"regexp"
	"strings"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	mentionPat = regexp.MustCompile(`@+\S{0,30} `)
	bracketPat = regexp.MustCompile(`\[.*?\] *`)
	fwBracket  = regexp.MustCompile(`［.*?］ *`)
	colonPat   = regexp.MustCompile(`[:\s]{4,}`)
	tmPat      = regexp.MustCompile(`(?i)([^a-z])tm([^a-z])`)
	urlPat     = regexp.MustCompile(`https?://[^\s\]]+`)
)

// Whitespace collapses runs of whitespace. CJK-dominant turns lose
// inter-character spaces entirely; segmentation artifacts in scraped
// Chinese text carry no meaning.
type Whitespace struct{}

func NewWhitespace() *Whitespace { return &Whitespace{} }

func (*Whitespace) Name() string { return "whitespace" }

func (*Whitespace) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	s := strings.TrimSpace(spaceRun.ReplaceAllString(t.Text, " "))
	if containsCJK(s) {
		s = strings.ReplaceAll(s, " ", "")
	}
	t.Text = s
	return dialogue.KeepTurn(t)
}

// Mention strips @handle references. Handles followed by a space are
// excised; a short trailing @-tail is truncated. A handle that cannot be
// excised without guessing its boundary drops the turn.
type Mention struct {
	tail int // max rune length of a truncatable trailing @-tail
}

func NewMention(tailLen int) *Mention {
	if tailLen <= 0 {
		tailLen = 30
	}
	return &Mention{tail: tailLen}
}

func (*Mention) Name() string { return "mention" }

func (r *Mention) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	s := mentionPat.ReplaceAllString(t.Text, "")
	if i := strings.LastIndex(s, "@"); i >= 0 && len([]rune(s[i:])) < r.tail {
		s = s[:i]
	}
	if strings.Contains(s, "@") {
		return dialogue.DropTurn("mention without clear boundary")
	}
	t.Text = s
	return dialogue.KeepTurn(t)
}

// Brackets removes [..] and ［..］ spans: platform emotes, repost
// markers, and similar annotations.
type Brackets struct{}

func NewBrackets() *Brackets { return &Brackets{} }

func (*Brackets) Name() string { return "brackets" }

func (*Brackets) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	s := bracketPat.ReplaceAllString(t.Text, "")
	s = fwBracket.ReplaceAllString(s, "")
	t.Text = s
	return dialogue.KeepTurn(t)
}

// Placeholder removes literal platform placeholders such as "[图片]".
type Placeholder struct {
	literals []string
}

func NewPlaceholder(literals []string) *Placeholder {
	if len(literals) == 0 {
		literals = []string{"[图片]", "［图片］"}
	}
	return &Placeholder{literals: literals}
}

func (*Placeholder) Name() string { return "placeholder" }

func (r *Placeholder) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	s := t.Text
	for _, lit := range r.literals {
		s = strings.ReplaceAll(s, lit, "")
	}
	t.Text = s
	return dialogue.KeepTurn(t)
}

// ColonRun deletes runs of four or more colons/whitespace, an ASCII-art
// spam signature.
type ColonRun struct{}

func NewColonRun() *ColonRun { return &ColonRun{} }

func (*ColonRun) Name() string { return "colonrun" }

func (*ColonRun) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	t.Text = colonPat.ReplaceAllString(t.Text, "")
	return dialogue.KeepTurn(t)
}

// Trademark deletes "tm" sandwiched between non-letters, keeping the
// delimiters.
type Trademark struct{}

func NewTrademark() *Trademark { return &Trademark{} }

func (*Trademark) Name() string { return "trademark" }

func (*Trademark) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	t.Text = tmPat.ReplaceAllString(t.Text, "${1}${2}")
	return dialogue.KeepTurn(t)
}

// URL excises URLs from a turn. A turn that is nothing but a URL, or
// whose text is empty after excision, is dropped.
type URL struct{}

func NewURL() *URL { return &URL{} }

func (*URL) Name() string { return "url" }

func (*URL) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	if !strings.Contains(t.Text, "http") {
		return dialogue.KeepTurn(t)
	}
	s := strings.TrimSpace(urlPat.ReplaceAllString(t.Text, ""))
	if s == "" {
		return dialogue.DropTurn("url-only turn")
	}
	t.Text = s
	return dialogue.KeepTurn(t)
}
