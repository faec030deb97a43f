package corpusio

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// NewRunID returns a fresh ULID identifying one corpus run.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// CleanWriter writes one clean shard per input partition, mirroring the
// partition's relative path under Dir.
type CleanWriter struct {
	Dir      string
	Compress bool // emit zstd-compressed shards

	// ExpandContext switches output to (context, reply) training pairs:
	// for every dialogue, each prefix ending at turn j>=1 whose final
	// turn has at least MinReplyLen runes becomes its own line.
	ExpandContext bool
	MinReplyLen   int
}

// WritePartition writes the clean dialogues of one partition.
func (w *CleanWriter) WritePartition(rel string, ds []dialogue.Dialogue) error {
	dest := filepath.Join(w.Dir, shardName(rel, w.Compress))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	for _, d := range ds {
		for _, line := range w.lines(d) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create shard: %w", err)
	}
	defer f.Close()

	if !w.Compress {
		_, err := f.WriteString(b.String())
		return err
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	if _, err := enc.Write([]byte(b.String())); err != nil {
		enc.Close()
		return fmt.Errorf("compress shard: %w", err)
	}
	return enc.Close()
}

func (w *CleanWriter) lines(d dialogue.Dialogue) []string {
	texts := d.Texts()
	if !w.ExpandContext {
		return []string{strings.Join(texts, TurnSeparator)}
	}

	minReply := w.MinReplyLen
	if minReply <= 0 {
		minReply = 5
	}
	var lines []string
	for j := 1; j < len(texts); j++ {
		if utf8.RuneCountInString(texts[j]) < minReply {
			continue
		}
		lines = append(lines, strings.Join(texts[:j+1], TurnSeparator))
	}
	return lines
}

// shardName strips a compression suffix from the source partition name
// and applies the writer's own.
func shardName(rel string, compress bool) string {
	rel = strings.TrimSuffix(rel, ".gz")
	rel = strings.TrimSuffix(rel, ".zst")
	if compress {
		rel += ".zst"
	}
	return rel
}

// DirtyWriter appends removed units to a JSONL sink, one record per
// line, each tagged with the rule that removed it and a fresh ULID.
// A nil DirtyWriter discards records; counters still see them.
type DirtyWriter struct {
	f       *os.File
	enc     *json.Encoder
	entropy *ulid.MonotonicEntropy
}

// NewDirtyWriter opens dir/dirty-<runID>.jsonl for appending.
func NewDirtyWriter(dir, runID string) (*DirtyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dirty dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "dirty-"+runID+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("create dirty sink: %w", err)
	}
	return &DirtyWriter{
		f:       f,
		enc:     json.NewEncoder(f),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Write appends the records, assigning IDs.
func (w *DirtyWriter) Write(recs []dialogue.DirtyRecord) error {
	if w == nil {
		return nil
	}
	for _, r := range recs {
		r.ID = ulid.MustNew(ulid.Now(), w.entropy).String()
		if err := w.enc.Encode(r); err != nil {
			return fmt.Errorf("write dirty record: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the sink.
func (w *DirtyWriter) Close() error {
	if w == nil {
		return nil
	}
	return w.f.Close()
}
