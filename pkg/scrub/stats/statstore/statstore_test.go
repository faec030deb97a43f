package statstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dialogkit/scrub/pkg/scrub/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := stats.NewCounter()
	c.AddDialogue([]string{"hello", "lol"}, nil)
	c.AddDialogue([]string{"goal", "lol"}, nil)
	snap := c.Snapshot()

	if err := s.Save(ctx, "fp1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, hit, err := s.Load(ctx, "fp1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got := loaded.ReplyContexts("lol"); got != 2 {
		t.Errorf("contexts = %d, want 2", got)
	}
	if got := loaded.ReplyUses("lol"); got != 2 {
		t.Errorf("uses = %d, want 2", got)
	}
	if loaded.Dialogues() != 2 {
		t.Errorf("dialogues = %d, want 2", loaded.Dialogues())
	}
}

func TestLoadMissesUnknownFingerprint(t *testing.T) {
	s := openTestStore(t)

	_, hit, err := s.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if hit {
		t.Error("expected miss")
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	old := stats.NewCounter()
	old.AddDialogue([]string{"a", "stale"}, nil)
	if err := s.Save(ctx, "fp", old.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := stats.NewCounter()
	fresh.AddDialogue([]string{"a", "new"}, nil)
	if err := s.Save(ctx, "fp", fresh.Snapshot()); err != nil {
		t.Fatalf("resave: %v", err)
	}

	loaded, _, err := s.Load(ctx, "fp")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ReplyUses("stale") != 0 {
		t.Error("stale counts survived resave")
	}
	if loaded.ReplyUses("new") != 1 {
		t.Error("fresh counts missing")
	}
}

func TestFingerprintTracksFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.txt")
	if err := os.WriteFile(path, []byte("a\t\tb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fp1, err := Fingerprint(dir, []string{"part.txt"})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	// Grow the file and push mtime forward.
	if err := os.WriteFile(path, []byte("a\t\tb\nc\t\td\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	fp2, err := Fingerprint(dir, []string{"part.txt"})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if fp1 == fp2 {
		t.Error("fingerprint unchanged after file change")
	}
}
