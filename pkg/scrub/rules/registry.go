package rules

// Canonical is the default rule order. The order is load-bearing; each
// rule operates on the output of the ones before it:
//
//   - whitespace runs first: every later pattern assumes collapsed
//     spacing (mentionPat and colonPat both key on spaces).
//   - html runs before url: stripped anchors surface hrefs as bare URLs
//     that the url rule must then judge.
//   - mention runs before length: mention stripping shortens turns, and
//     length must judge the final text.
//   - brackets/placeholder/colonrun/trademark run before repeat so
//     collapsing sees text with the boilerplate already excised.
//   - blacklist runs after the excision rules: a stripped URL or bracket
//     span may have carried the only banned term, and dropping the turn
//     for it would be a false positive.
//   - repeat runs after every excision rule and before length: excision
//     can bring two copies of a phrase adjacent, and collapsing can
//     shrink a turn under the minimum length.
//   - length runs last among turn rules.
//   - generic/advert run after all turn rules, since they key on final
//     reply text.
var Canonical = []string{
	"whitespace",
	"html",
	"mention",
	"brackets",
	"placeholder",
	"colonrun",
	"trademark",
	"url",
	"blacklist",
	"repeat",
	"length",
	"generic",
	"advert",
}

var statsDependent = map[string]bool{
	"generic": true,
	"advert":  true,
}

// Known reports whether name is a recognized rule name.
func Known(name string) bool {
	for _, n := range Canonical {
		if n == name {
			return true
		}
	}
	return false
}

// StatsDependent reports whether the named rule needs a corpus
// statistics snapshot to run.
func StatsDependent(name string) bool { return statsDependent[name] }
