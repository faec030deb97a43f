// Package stats builds the cross-dialogue aggregates consumed by the
// statistics-dependent rules: how often a reply text recurs across
// distinct contexts, and how often short phrases recur across the
// corpus. Collection is a separate read-only pass; the resulting
// Snapshot is immutable and safe to share across workers without locks.
package stats

import (
	"hash/fnv"
	"sort"
	"strings"
	"sync"
)

// maxPhraseTokens bounds the n-gram length counted per sentence.
const maxPhraseTokens = 4

// Counter accumulates reply and phrase counts for one shard of the
// corpus. Not safe for concurrent use; collect per shard, then Merge.
type Counter struct {
	Dialogues int64
	Malformed int64

	replyContexts map[string]map[uint64]struct{} // reply text -> distinct context hashes
	replyUses     map[string]int64               // reply text -> total occurrences as a reply
	phrases       map[string]int64               // token n-gram -> occurrences
}

// Tokenize is the word-segmentation hook used for phrase counting.
// Pluggable so a real segmenter can replace the built-in one.
type Tokenize func(string) []string

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		replyContexts: make(map[string]map[uint64]struct{}),
		replyUses:     make(map[string]int64),
		phrases:       make(map[string]int64),
	}
}

// AddDialogue updates counts for one session. Every turn after the first
// counts as a reply to the context formed by the turns before it.
func (c *Counter) AddDialogue(turns []string, tokenize Tokenize) {
	if len(turns) == 0 {
		c.Malformed++
		return
	}
	c.Dialogues++

	h := fnv.New64a()
	for i, text := range turns {
		if tokenize != nil {
			c.addPhrases(tokenize(text))
		}
		if i == 0 {
			h.Write([]byte(text))
			continue
		}
		ctx := h.Sum64()
		c.replyUses[text]++
		set, ok := c.replyContexts[text]
		if !ok {
			set = make(map[uint64]struct{})
			c.replyContexts[text] = set
		}
		set[ctx] = struct{}{}

		h.Write([]byte{0})
		h.Write([]byte(text))
	}
}

func (c *Counter) addPhrases(tokens []string) {
	for n := 2; n <= maxPhraseTokens; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			c.phrases[strings.Join(tokens[i:i+n], "")]++
		}
	}
}

// Merge folds other into c. Used by the parallel reduce step.
func (c *Counter) Merge(other *Counter) {
	c.Dialogues += other.Dialogues
	c.Malformed += other.Malformed
	for reply, set := range other.replyContexts {
		dst, ok := c.replyContexts[reply]
		if !ok {
			c.replyContexts[reply] = set
			continue
		}
		for h := range set {
			dst[h] = struct{}{}
		}
	}
	for reply, n := range other.replyUses {
		c.replyUses[reply] += n
	}
	for p, n := range other.phrases {
		c.phrases[p] += n
	}
}

// Snapshot freezes the counter into the read-only form workers consume.
// The maps are copied so later counter mutation cannot reach a snapshot
// already handed out.
func (c *Counter) Snapshot() *Snapshot {
	s := &Snapshot{
		dialogues: c.Dialogues,
		malformed: c.Malformed,
		contexts:  make(map[string]int64, len(c.replyContexts)),
		uses:      make(map[string]int64, len(c.replyUses)),
		phrases:   make(map[string]int64, len(c.phrases)),
	}
	for reply, set := range c.replyContexts {
		s.contexts[reply] = int64(len(set))
	}
	for reply, n := range c.replyUses {
		s.uses[reply] = n
	}
	for p, n := range c.phrases {
		s.phrases[p] = n
	}
	return s
}

// Snapshot is the immutable result of a collection pass. Read-only after
// construction; shared by every worker during the parallel phase.
type Snapshot struct {
	dialogues int64
	malformed int64
	contexts  map[string]int64
	uses      map[string]int64
	phrases   map[string]int64
}

// NewSnapshot builds a snapshot from pre-aggregated maps (used when
// loading a persisted snapshot).
func NewSnapshot(dialogues, malformed int64, contexts, uses, phrases map[string]int64) *Snapshot {
	if contexts == nil {
		contexts = map[string]int64{}
	}
	if uses == nil {
		uses = map[string]int64{}
	}
	if phrases == nil {
		phrases = map[string]int64{}
	}
	return &Snapshot{
		dialogues: dialogues,
		malformed: malformed,
		contexts:  contexts,
		uses:      uses,
		phrases:   phrases,
	}
}

// Dialogues returns the number of sessions counted.
func (s *Snapshot) Dialogues() int64 { return s.dialogues }

// Malformed returns the number of records skipped during collection.
func (s *Snapshot) Malformed() int64 { return s.malformed }

// ReplyContexts returns how many distinct contexts produced reply.
func (s *Snapshot) ReplyContexts(reply string) int64 { return s.contexts[reply] }

// ReplyUses returns how many times reply occurred as a reply at all.
func (s *Snapshot) ReplyUses(reply string) int64 { return s.uses[reply] }

// PhraseCount returns how often the phrase was seen corpus-wide.
func (s *Snapshot) PhraseCount(phrase string) int64 { return s.phrases[phrase] }

// Phrase is a corpus phrase with its frequency.
type Phrase struct {
	Text  string
	Count int64
}

// TopPhrases returns the k most frequent phrases, most frequent first.
// Ties break lexically so reporting is deterministic.
func (s *Snapshot) TopPhrases(k int) []Phrase {
	out := make([]Phrase, 0, len(s.phrases))
	for p, n := range s.phrases {
		out = append(out, Phrase{Text: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Text < out[j].Text
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// Each iterates the aggregate maps, for persistence. Iteration order is
// not deterministic.
func (s *Snapshot) Each(fn func(kind, key string, count int64)) {
	for k, n := range s.contexts {
		fn("context", k, n)
	}
	for k, n := range s.uses {
		fn("use", k, n)
	}
	for k, n := range s.phrases {
		fn("phrase", k, n)
	}
}

// Collect runs counters over the shards concurrently and reduces them
// into one snapshot. Each shard function feeds its own counter, so no
// locking happens on the hot path.
func Collect(shards []func(*Counter), workers int) *Snapshot {
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan func(*Counter))
	results := make(chan *Counter, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := NewCounter()
			for shard := range jobs {
				shard(local)
			}
			results <- local
		}()
	}

	go func() {
		for _, s := range shards {
			jobs <- s
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	total := NewCounter()
	for c := range results {
		total.Merge(c)
	}
	return total.Snapshot()
}
