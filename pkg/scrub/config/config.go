// Package config defines the run configuration: which rules run, in
// what order, with which parameters, over which directories.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dialogkit/scrub/pkg/scrub/rules"
	"github.com/dialogkit/scrub/pkg/scrub/scruberr"
)

// Config is the recognized-options structure. Rule order in Rules is
// the order the pipeline applies; it is configuration, never inferred.
type Config struct {
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	DirtyDir    string `yaml:"dirty_dir"`     // empty: dirty records counted, not written
	ToolDataDir string `yaml:"tool_data_dir"` // statistics cache location; empty: no cache

	Workers          int `yaml:"workers"`
	MaxBatchSessions int `yaml:"max_batch_sessions"`

	Rules []string `yaml:"rules"`

	BlacklistPath string   `yaml:"blacklist_path"`
	Placeholders  []string `yaml:"placeholders"`

	MentionTail int `yaml:"mention_tail"`
	MinTurnLen  int `yaml:"min_turn_len"`
	MaxTurnLen  int `yaml:"max_turn_len"`
	MinPhrase   int `yaml:"min_phrase"`
	MaxPhrase   int `yaml:"max_phrase"`

	GenericMinContexts int64   `yaml:"generic_min_contexts"`
	AdMinUses          int64   `yaml:"ad_min_uses"`
	AdReplyRatio       float64 `yaml:"ad_reply_ratio"`

	ExpandContext  bool `yaml:"expand_context"`
	MinReplyLen    int  `yaml:"min_reply_len"`
	CompressOutput bool `yaml:"compress_output"`
}

// Default returns the configuration used when a field is unset.
func Default() Config {
	return Config{
		Workers:            4,
		MaxBatchSessions:   5000,
		Rules:              append([]string(nil), rules.Canonical...),
		MentionTail:        30,
		MinTurnLen:         1,
		MaxTurnLen:         200,
		MinPhrase:          2,
		MaxPhrase:          30,
		GenericMinContexts: 50,
		AdMinUses:          30,
		AdReplyRatio:       0.9,
		MinReplyLen:        5,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks everything that must hold before any batch is
// dispatched. Failures here are fatal; no partial output is produced.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input_dir is required", scruberr.ErrInvalidConfig)
	}
	if st, err := os.Stat(c.InputDir); err != nil || !st.IsDir() {
		return fmt.Errorf("%w: input_dir %s is not a directory", scruberr.ErrInvalidConfig, c.InputDir)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", scruberr.ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", scruberr.ErrInvalidConfig)
	}
	if c.MaxBatchSessions <= 0 {
		return fmt.Errorf("%w: max_batch_sessions must be positive", scruberr.ErrInvalidConfig)
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: no rules enabled", scruberr.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Rules))
	for _, name := range c.Rules {
		if !rules.Known(name) {
			return fmt.Errorf("%w: %q", scruberr.ErrUnknownRule, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: rule %q listed twice", scruberr.ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	if seen["blacklist"] && c.BlacklistPath == "" {
		return fmt.Errorf("%w: blacklist rule enabled without blacklist_path", scruberr.ErrInvalidConfig)
	}
	return nil
}

// NeedsStats reports whether any enabled rule requires the corpus
// statistics pass.
func (c Config) NeedsStats() bool {
	for _, name := range c.Rules {
		if rules.StatsDependent(name) {
			return true
		}
	}
	return false
}
