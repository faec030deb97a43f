package config

import (
	"fmt"

	"github.com/dialogkit/scrub/pkg/scrub/blacklist"
	"github.com/dialogkit/scrub/pkg/scrub/rules"
	"github.com/dialogkit/scrub/pkg/scrub/scruberr"
	"github.com/dialogkit/scrub/pkg/scrub/stats"
)

// Components holds the runtime collaborators assembled from a Config.
type Components struct {
	Chain     []rules.Rule
	Blacklist *blacklist.Set
}

// Loader assembles rule chains from a validated Config. The statistics
// snapshot is handed in explicitly; statistics-dependent rules never
// reach for ambient state.
type Loader struct {
	Cfg Config
}

// Load reads external collaborators (the blacklist) and builds the rule
// chain in the configured order.
func (l *Loader) Load(snapshot *stats.Snapshot) (*Components, error) {
	comp := &Components{}

	if l.Cfg.BlacklistPath != "" {
		set, err := blacklist.Load(l.Cfg.BlacklistPath)
		if err != nil {
			return nil, fmt.Errorf("load blacklist: %w", err)
		}
		comp.Blacklist = set
	}

	for _, name := range l.Cfg.Rules {
		r, err := l.build(name, snapshot, comp.Blacklist)
		if err != nil {
			return nil, err
		}
		comp.Chain = append(comp.Chain, r)
	}
	return comp, nil
}

func (l *Loader) build(name string, snapshot *stats.Snapshot, set *blacklist.Set) (rules.Rule, error) {
	if rules.StatsDependent(name) && snapshot == nil {
		return nil, fmt.Errorf("%w: rule %q", scruberr.ErrStatsUnavailable, name)
	}

	switch name {
	case "whitespace":
		return rules.NewWhitespace(), nil
	case "html":
		return rules.NewHTML(), nil
	case "mention":
		return rules.NewMention(l.Cfg.MentionTail), nil
	case "brackets":
		return rules.NewBrackets(), nil
	case "placeholder":
		return rules.NewPlaceholder(l.Cfg.Placeholders), nil
	case "colonrun":
		return rules.NewColonRun(), nil
	case "trademark":
		return rules.NewTrademark(), nil
	case "url":
		return rules.NewURL(), nil
	case "blacklist":
		return rules.NewBlacklist(set), nil
	case "repeat":
		return rules.NewRepeat(l.Cfg.MinPhrase, l.Cfg.MaxPhrase), nil
	case "length":
		return rules.NewLength(l.Cfg.MinTurnLen, l.Cfg.MaxTurnLen), nil
	case "generic":
		return rules.NewGenericReply(snapshot, l.Cfg.GenericMinContexts), nil
	case "advert":
		return rules.NewAdvert(snapshot, l.Cfg.AdMinUses, l.Cfg.AdReplyRatio), nil
	}
	return nil, fmt.Errorf("%w: %q", scruberr.ErrUnknownRule, name)
}
