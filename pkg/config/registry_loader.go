package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/subscr"
)

// registryFile is the on-disk shape of a static-registry override: one
// entry per pattern, naming the clients subscribed to it. Every listed
// (pattern, client) pair gets the full capability triple, matching the
// compiled-in seed registry's semantics: the data model keeps the three
// bits independent, but nothing in this system sets them individually yet.
type registryFile struct {
	Patterns []registryFilePattern `yaml:"patterns"`
}

type registryFilePattern struct {
	Pattern string   `yaml:"pattern"`
	Clients []string `yaml:"clients"`
}

// LoadRegistry builds the subscription map named by cfg: from cfg.Path if
// set, otherwise from the compiled-in seed entries
// (internal/subscr.SeedEntries) — so the system boots with a working
// registry even with zero configuration. The result is immutable after
// construction; there is no dynamic rediscovery once the process starts.
func LoadRegistry(cfg RegistryConfig) (*subscr.Map, error) {
	if cfg.Path == "" {
		return subscr.New(subscr.SeedEntries(), cfg.MaxPatterns)
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("config: read registry file %s: %w", cfg.Path, err)
	}

	var rf registryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("config: parse registry file %s: %w", cfg.Path, err)
	}

	entries := make([]subscr.Entry, 0, len(rf.Patterns))
	for _, p := range rf.Patterns {
		subs := make(map[clientid.ID]subscr.Capabilities, len(p.Clients))
		for _, name := range p.Clients {
			id, ok := clientid.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("config: registry file %s: unknown client %q for pattern %q", cfg.Path, name, p.Pattern)
			}
			subs[id] = subscr.AllBits
		}
		entries = append(entries, subscr.Entry{Pattern: p.Pattern, Subscribers: subs})
	}

	return subscr.New(entries, cfg.MaxPatterns)
}
