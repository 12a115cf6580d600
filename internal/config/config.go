// Package config loads the subscription server's tuning and connection
// settings from a single TOML file, the way the teacher's internal/tqw
// loads world data: read the whole file into memory and hand it to
// toml.Unmarshal rather than streaming a decoder over an os.File.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/boolpred/internal/predset"
	"github.com/dekarrin/boolpred/server"
)

// Predicates holds the §4.5 decision-tree tuning parameters as they
// appear in a TOML file, prior to conversion to predset.Config.
type Predicates struct {
	MinCount   int     `toml:"min_count"`
	MaxDepth   int     `toml:"max_depth"`
	MinBenefit float64 `toml:"min_benefit"`
}

// Database holds the persistence settings as they appear in a TOML
// file.
type Database struct {
	Type string `toml:"type"`
	Path string `toml:"path"`
}

// File is the on-disk shape of a server configuration file, e.g.:
//
//	listen_addr = ":8080"
//	token_secret = "change-me-change-me-change-me-!"
//	unauth_delay_millis = 1000
//
//	[database]
//	type = "sqlite"
//	path = "data/subscriptions.db"
//
//	[predicates]
//	min_count = 2
//	max_depth = 6
//	min_benefit = 0.1
type File struct {
	ListenAddr        string     `toml:"listen_addr"`
	TokenSecret       string     `toml:"token_secret"`
	UnauthDelayMillis int        `toml:"unauth_delay_millis"`
	SnapshotPath      string     `toml:"snapshot_path"`
	Database          Database   `toml:"database"`
	Predicates        Predicates `toml:"predicates"`
}

// Load reads and parses the TOML file at path into a server.Config,
// filling in defaults for anything left unset exactly as a zero-value
// server.Config would via FillDefaults.
func Load(path string) (server.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return server.Config{}, fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return server.Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return f.ToServerConfig(), nil
}

// ToServerConfig converts the decoded TOML shape into a server.Config,
// with unset fields left for FillDefaults to handle.
func (f File) ToServerConfig() server.Config {
	cfg := server.Config{
		ListenAddr:        f.ListenAddr,
		UnauthDelayMillis: f.UnauthDelayMillis,
		SnapshotPath:      f.SnapshotPath,
	}

	if f.TokenSecret != "" {
		cfg.TokenSecret = []byte(f.TokenSecret)
	}

	if f.Database.Type != "" {
		dbType, err := server.ParseDBType(f.Database.Type)
		if err == nil {
			cfg.DB = server.Database{Type: dbType, Path: f.Database.Path}
		}
	}

	if f.Predicates != (Predicates{}) {
		cfg.Preds = predset.Config{
			MinCount:   f.Predicates.MinCount,
			MaxDepth:   f.Predicates.MaxDepth,
			MinBenefit: f.Predicates.MinBenefit,
		}
	}

	return cfg.FillDefaults()
}
