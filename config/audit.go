package config

import (
	"fmt"

	rosterlog "rosterd/core/roster/logging"
)

// AuditConfig defines settings for solve audit-log storage.
type AuditConfig struct {
	// Backend selects the store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *AuditConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "solves.jsonl"
	}
}

// Validate checks mandatory fields.
func (c AuditConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "none":
	default:
		return fmt.Errorf("unknown audit backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("audit path is required")
	}
	return nil
}

// NewStore opens the configured store.
func (c AuditConfig) NewStore() (rosterlog.Store, error) {
	switch c.Backend {
	case "sqlite":
		return rosterlog.NewSQLiteStore(c.Path)
	case "none":
		return rosterlog.NopStore{}, nil
	default:
		return rosterlog.NewJSONLStore(c.Path)
	}
}
