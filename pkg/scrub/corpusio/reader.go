// Package corpusio reads raw dialogue partitions and writes the clean
// and dirty corpora. One input file is one partition; a partition holds
// one session per line with turns separated by a double tab.
package corpusio

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
)

// TurnSeparator splits a session line into turns.
const TurnSeparator = "\t\t"

// maxLineBytes bounds a single session line. Scraped corpora carry the
// occasional megabyte-long spam line.
const maxLineBytes = 4 << 20

// Dataloader yields dialogues from a directory of partition files.
type Dataloader struct {
	Dir string
}

// Partitions returns the relative paths of every corpus file under Dir,
// in lexical order. Lexical order is the partition order every
// downstream merge preserves.
func (d *Dataloader) Partitions() ([]string, error) {
	var parts []string
	err := filepath.WalkDir(d.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".txt") ||
			strings.HasSuffix(name, ".txt.gz") ||
			strings.HasSuffix(name, ".txt.zst") {
			rel, err := filepath.Rel(d.Dir, path)
			if err != nil {
				return err
			}
			parts = append(parts, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.Dir, err)
	}
	sort.Strings(parts)
	return parts, nil
}

// ReadPartition parses one partition into dialogues, preserving session
// and turn order. Malformed lines, including lines over maxLineBytes,
// are counted and skipped, never fatal to the partition.
func (d *Dataloader) ReadPartition(rel string) ([]dialogue.Dialogue, int, error) {
	f, err := os.Open(filepath.Join(d.Dir, rel))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r, closer, err := decode(f, rel)
	if err != nil {
		return nil, 0, err
	}
	if closer != nil {
		defer closer()
	}

	var (
		out       []dialogue.Dialogue
		malformed int
		session   int
	)
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, tooLong, rdErr := nextLine(br)
		switch {
		case tooLong:
			session++
			malformed++
		case line != "":
			session++
			raw := strings.Split(line, TurnSeparator)
			turns := make([]dialogue.Turn, 0, len(raw))
			empty := true
			for i, text := range raw {
				if strings.TrimSpace(text) != "" {
					empty = false
				}
				turns = append(turns, dialogue.Turn{Text: text, Ordinal: i})
			}
			if empty {
				malformed++
				break
			}
			out = append(out, dialogue.Dialogue{
				Partition: rel,
				Session:   session - 1,
				Turns:     turns,
			})
		}
		if rdErr == io.EOF {
			return out, malformed, nil
		}
		if rdErr != nil {
			return out, malformed, fmt.Errorf("read %s: %w", rel, rdErr)
		}
	}
}

// nextLine reads one newline-terminated line, stripping the terminator
// and a trailing carriage return. A line over maxLineBytes is drained
// and reported as tooLong with empty text, so the caller can count it
// malformed and keep scanning the rest of the partition.
func nextLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)
		if err == bufio.ErrBufferFull {
			if len(buf) > maxLineBytes {
				return "", true, drainLine(br)
			}
			continue
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		s := strings.TrimSuffix(string(buf), "\n")
		s = strings.TrimSuffix(s, "\r")
		return s, false, err
	}
}

// drainLine discards input up to and including the next newline.
func drainLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			continue
		}
		return err
	}
}

// decode wraps r in the decompressor the file name calls for.
func decode(r io.Reader, name string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd %s: %w", name, err)
		}
		return dec, dec.Close, nil
	}
	return r, nil, nil
}
