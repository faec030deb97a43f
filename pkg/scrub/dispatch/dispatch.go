// Package dispatch partitions the corpus into batches, fans them out to
// a fixed-size worker pool, and merges per-batch outputs back in
// partition order. Worker completion order never leaks into output
// order.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/dialogkit/scrub/pkg/scrub/config"
	"github.com/dialogkit/scrub/pkg/scrub/corpusio"
	"github.com/dialogkit/scrub/pkg/scrub/dialogue"
	"github.com/dialogkit/scrub/pkg/scrub/pipeline"
	"github.com/dialogkit/scrub/pkg/scrub/rules"
	"github.com/dialogkit/scrub/pkg/scrub/stats"
	"github.com/dialogkit/scrub/pkg/scrub/stats/statstore"
)

// ruleProcessingError tags dirty records produced by a worker fault
// rather than a cleaning rule.
const ruleProcessingError = "processing-error"

// Batch is a bounded group of dialogues from one partition.
type Batch struct {
	Partition string
	Index     int // dispatch order; merge happens in this order
	Dialogues []dialogue.Dialogue
}

// Counters aggregates what happened to the corpus.
type Counters struct {
	Partitions int
	Dialogues  int // sessions fed to the pipeline
	Clean      int // dialogues written to clean output
	Dirty      int // dirty records produced
	Splits     int
	Malformed  int
	ByRule     map[string]int
}

func newCounters() Counters { return Counters{ByRule: make(map[string]int)} }

func (c *Counters) merge(o Counters) {
	c.Partitions += o.Partitions
	c.Dialogues += o.Dialogues
	c.Clean += o.Clean
	c.Dirty += o.Dirty
	c.Splits += o.Splits
	c.Malformed += o.Malformed
	for name, n := range o.ByRule {
		c.ByRule[name] += n
	}
}

// batchResult is one worker's output for one batch. processed is false
// for batches cancellation left unassigned; their zero values must not
// be mistaken for an empty clean output.
type batchResult struct {
	processed bool
	clean     []dialogue.Dialogue
	dirty     []dialogue.DirtyRecord
	counters  Counters
}

// Summary is what a completed run reports.
type Summary struct {
	RunID    string
	Counters Counters
	// TopPhrases is filled when a statistics pass ran, for noise
	// reporting.
	TopPhrases []stats.Phrase
}

// Run executes a full corpus run: validate, collect statistics if any
// enabled rule needs them, process every batch on the pool, and merge
// outputs. Configuration errors abort before any batch is dispatched;
// per-batch faults are isolated to their batch.
func Run(ctx context.Context, cfg config.Config) (Summary, error) {
	sum := Summary{RunID: corpusio.NewRunID(), Counters: newCounters()}

	if err := cfg.Validate(); err != nil {
		return sum, err
	}

	loader := &corpusio.Dataloader{Dir: cfg.InputDir}
	partitions, err := loader.Partitions()
	if err != nil {
		return sum, err
	}
	sum.Counters.Partitions = len(partitions)

	var snapshot *stats.Snapshot
	if cfg.NeedsStats() {
		snapshot, err = collectStats(ctx, cfg, loader, partitions)
		if err != nil {
			return sum, err
		}
		sum.TopPhrases = snapshot.TopPhrases(20)
	}

	comps, err := (&config.Loader{Cfg: cfg}).Load(snapshot)
	if err != nil {
		return sum, err
	}
	pipe := pipeline.New(comps.Chain)

	var dirtyOut *corpusio.DirtyWriter
	if cfg.DirtyDir != "" {
		dirtyOut, err = corpusio.NewDirtyWriter(cfg.DirtyDir, sum.RunID)
		if err != nil {
			return sum, err
		}
		defer dirtyOut.Close()
	}
	cleanOut := &corpusio.CleanWriter{
		Dir:           cfg.OutputDir,
		Compress:      cfg.CompressOutput,
		ExpandContext: cfg.ExpandContext,
		MinReplyLen:   cfg.MinReplyLen,
	}

	// Load partitions and slice them into bounded batches. A partition
	// that cannot be read is logged and counted, not fatal.
	var batches []Batch
	for _, rel := range partitions {
		ds, malformed, err := loader.ReadPartition(rel)
		sum.Counters.Malformed += malformed
		if err != nil {
			log.Printf("partition %s unreadable: %v", rel, err)
			sum.Counters.Malformed++
			continue
		}
		for start := 0; start < len(ds); start += cfg.MaxBatchSessions {
			end := start + cfg.MaxBatchSessions
			if end > len(ds) {
				end = len(ds)
			}
			batches = append(batches, Batch{
				Partition: rel,
				Index:     len(batches),
				Dialogues: ds[start:end],
			})
		}
	}

	results := runPool(ctx, pipe, batches, cfg.Workers)

	// Merge in batch index order. Batches were built in partition
	// order, so concatenating per index preserves partition order no
	// matter which worker finished first.
	perPartition := make(map[string][]dialogue.Dialogue, len(partitions))
	for i := range results {
		res := &results[i]
		if !res.processed {
			continue
		}
		sum.Counters.merge(res.counters)
		perPartition[batches[i].Partition] = append(perPartition[batches[i].Partition], res.clean...)
		if err := dirtyOut.Write(res.dirty); err != nil {
			return sum, err
		}
	}
	// Only partitions whose batches actually ran get a shard; a run cut
	// short by cancellation must not overwrite shards with empty files.
	for _, rel := range partitions {
		ds, ok := perPartition[rel]
		if !ok {
			continue
		}
		if err := cleanOut.WritePartition(rel, ds); err != nil {
			return sum, fmt.Errorf("write clean partition %s: %w", rel, err)
		}
	}
	return sum, nil
}

// collectStats produces the statistics snapshot, going through the
// tool-data cache when one is configured.
func collectStats(ctx context.Context, cfg config.Config, loader *corpusio.Dataloader, partitions []string) (*stats.Snapshot, error) {
	var store *statstore.Store
	var fingerprint string

	if cfg.ToolDataDir != "" {
		fp, err := statstore.Fingerprint(cfg.InputDir, partitions)
		if err != nil {
			return nil, err
		}
		fingerprint = fp

		store, err = statstore.Open(ctx, filepath.Join(cfg.ToolDataDir, "stats.db"))
		if err != nil {
			return nil, fmt.Errorf("open stats cache: %w", err)
		}
		defer store.Close()

		snap, hit, err := store.Load(ctx, fingerprint)
		if err != nil {
			return nil, fmt.Errorf("load stats cache: %w", err)
		}
		if hit {
			log.Printf("statistics cache hit (%d dialogues)", snap.Dialogues())
			return snap, nil
		}
	}

	shards := make([]func(*stats.Counter), 0, len(partitions))
	for _, rel := range partitions {
		rel := rel
		shards = append(shards, func(c *stats.Counter) {
			ds, malformed, err := loader.ReadPartition(rel)
			c.Malformed += int64(malformed)
			if err != nil {
				log.Printf("statistics pass: partition %s unreadable: %v", rel, err)
				c.Malformed++
				return
			}
			for _, d := range ds {
				c.AddDialogue(d.Texts(), rules.Tokenize)
			}
		})
	}

	snap := stats.Collect(shards, cfg.Workers)
	log.Printf("statistics collected: %d dialogues, %d malformed", snap.Dialogues(), snap.Malformed())

	if store != nil {
		if err := store.Save(ctx, fingerprint, snap); err != nil {
			return nil, fmt.Errorf("save stats cache: %w", err)
		}
	}
	return snap, nil
}

// runPool processes batches on a fixed-size pool and returns results
// indexed by batch index. Once a batch starts it runs to completion;
// cancellation only stops unassigned batches.
func runPool(ctx context.Context, pipe *pipeline.Pipeline, batches []Batch, workers int) []batchResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]batchResult, len(batches))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = runBatch(pipe, batches[idx])
			}
		}()
	}

	for i := range batches {
		// Checked before the send: select would pick arbitrarily between
		// a done context and a ready worker.
		if ctx.Err() != nil {
			// Remaining batches stay zero-valued; their dialogues were
			// never processed and produce no output.
			close(jobs)
			wg.Wait()
			return results
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// runBatch runs the pipeline over one batch. A panic inside a rule is
// confined to the batch: its dialogues are routed to dirty output
// tagged processing-error and siblings keep running.
func runBatch(pipe *pipeline.Pipeline, b Batch) (res batchResult) {
	res.processed = true
	res.counters = newCounters()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("batch %d (%s) failed: %v", b.Index, b.Partition, r)
			res.clean = nil
			res.dirty = res.dirty[:0]
			for _, d := range b.Dialogues {
				res.dirty = append(res.dirty, dialogue.DirtyRecord{
					Rule:      ruleProcessingError,
					Reason:    fmt.Sprint(r),
					Partition: d.Partition,
					Session:   d.Session,
					Turns:     d.Texts(),
				})
			}
			res.counters = newCounters()
			res.counters.Dialogues = len(b.Dialogues)
			res.counters.Dirty = len(res.dirty)
			res.counters.ByRule[ruleProcessingError] = len(b.Dialogues)
		}
	}()

	for _, d := range b.Dialogues {
		out := pipe.Run(d)
		res.counters.Dialogues++
		res.counters.Clean += len(out.Clean)
		res.counters.Dirty += len(out.Dirty)
		res.counters.Splits += out.Splits
		for name, n := range out.Drops {
			res.counters.ByRule[name] += n
		}
		res.clean = append(res.clean, out.Clean...)
		res.dirty = append(res.dirty, out.Dirty...)
	}
	return res
}
