// Command scrub cleans a directory of multi-turn dialogue corpora,
// writing clean sessions to the output directory and rule-attributed
// dirty records to the dirty directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/dialogkit/scrub/pkg/scrub/config"
	"github.com/dialogkit/scrub/pkg/scrub/dispatch"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (flags override it)")
		inDir      = flag.String("in", "", "raw input directory")
		outDir     = flag.String("out", "", "clean output directory")
		dirtyDir   = flag.String("dirty", "", "dirty output directory (empty: dirty records are discarded)")
		toolData   = flag.String("tooldata", "", "tool-data directory for the statistics cache")
		workers    = flag.Int("workers", 0, "worker pool size")
		batch      = flag.Int("batch", 0, "max sessions per batch")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	if *inDir != "" {
		cfg.InputDir = *inDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *dirtyDir != "" {
		cfg.DirtyDir = *dirtyDir
	}
	if *toolData != "" {
		cfg.ToolDataDir = *toolData
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *batch > 0 {
		cfg.MaxBatchSessions = *batch
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	sum, err := dispatch.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	c := sum.Counters
	log.Printf("run %s finished in %s", sum.RunID, time.Since(start).Round(time.Millisecond))
	log.Printf("partitions=%d dialogues=%d clean=%d dirty=%d splits=%d malformed=%d",
		c.Partitions, c.Dialogues, c.Clean, c.Dirty, c.Splits, c.Malformed)

	names := make([]string, 0, len(c.ByRule))
	for name := range c.ByRule {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("  rule %-16s dropped %d", name, c.ByRule[name])
	}

	if len(sum.TopPhrases) > 0 {
		log.Printf("top corpus phrases:")
		for _, p := range sum.TopPhrases[:min(5, len(sum.TopPhrases))] {
			log.Printf("  %8d  %s", p.Count, p.Text)
		}
	}
	fmt.Println("over")
}
