package rules

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// HTML strips markup left over from scraping: tags are removed, text
// nodes are kept, and anchor hrefs surface as bare URLs so the url rule
// can judge them. Turns without markup pass through untouched.
type HTML struct{}

func NewHTML() *HTML { return &HTML{} }

func (*HTML) Name() string { return "html" }

func (*HTML) ApplyTurn(t dialogue.Turn) dialogue.Outcome {
	if !strings.ContainsAny(t.Text, "<&") {
		return dialogue.KeepTurn(t)
	}

	doc, err := html.Parse(strings.NewReader(t.Text))
	if err != nil {
		// Unparsable markup leaves nothing trustworthy to keep.
		return dialogue.DropTurn("unparsable markup")
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val != "" {
					if b.Len() > 0 {
						b.WriteString(" ")
					}
					b.WriteString(a.Val)
				}
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	t.Text = strings.TrimSpace(b.String())
	return dialogue.KeepTurn(t)
}
