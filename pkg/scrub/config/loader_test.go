package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dialogkit/scrub/pkg/scrub/rules"
	"github.com/dialogkit/scrub/pkg/scrub/scruberr"
	"github.com/dialogkit/scrub/pkg/scrub/stats"
)

func TestLoaderBuildsChainInConfiguredOrder(t *testing.T) {
	cfg := Default()
	cfg.Rules = []string{"url", "whitespace", "length"}

	comp, err := (&Loader{Cfg: cfg}).Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(comp.Chain) != 3 {
		t.Fatalf("chain length = %d", len(comp.Chain))
	}
	want := []string{"url", "whitespace", "length"}
	for i, r := range comp.Chain {
		if r.Name() != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, r.Name(), want[i])
		}
	}
}

func TestLoaderRejectsStatsRuleWithoutSnapshot(t *testing.T) {
	cfg := Default()
	cfg.Rules = []string{"whitespace", "generic"}

	_, err := (&Loader{Cfg: cfg}).Load(nil)
	if !errors.Is(err, scruberr.ErrStatsUnavailable) {
		t.Errorf("err = %v, want ErrStatsUnavailable", err)
	}
}

func TestLoaderAcceptsStatsRuleWithSnapshot(t *testing.T) {
	cfg := Default()
	cfg.Rules = []string{"generic", "advert"}

	comp, err := (&Loader{Cfg: cfg}).Load(stats.NewCounter().Snapshot())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, r := range comp.Chain {
		if _, ok := r.(rules.DialogueRule); !ok {
			t.Errorf("%q should be a dialogue rule", r.Name())
		}
	}
}

func TestLoaderReadsBlacklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bl.txt")
	if err := os.WriteFile(path, []byte("尼玛\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Rules = []string{"blacklist"}
	cfg.BlacklistPath = path

	comp, err := (&Loader{Cfg: cfg}).Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if comp.Blacklist.Len() != 1 {
		t.Errorf("blacklist len = %d", comp.Blacklist.Len())
	}
}
