package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dekarrin/boolpred/internal/predset"
	"github.com/dekarrin/boolpred/server/dao"
	"github.com/dekarrin/boolpred/server/dao/inmem"
	"github.com/dekarrin/boolpred/server/dao/sqlite"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string { return string(dbt) }

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(s) {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a
// persistence layer.
type Database struct {
	Type DBType

	// Path is the sqlite database file path. Only applicable for
	// DatabaseSQLite.
	Path string
}

// Connect performs all logic needed to connect to the configured DB and
// initialize the store for use.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewStore(), nil
	case DatabaseSQLite:
		if err := os.MkdirAll(parentDir(db.Path), 0770); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := sqlite.Open(db.Path)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type)
	}
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

// Validate returns an error if Database does not have the fields needed
// for its Type set.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.Path == "" {
			return fmt.Errorf("path not set")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type)
	}
}

// Config is the full configuration of a running subscription server.
type Config struct {
	// ListenAddr is the address ServeForever binds to, e.g. ":8080".
	ListenAddr string

	// TokenSecret signs publisher bearer tokens. Must be between
	// MinSecretSize and MaxSecretSize bytes.
	TokenSecret []byte

	// DB configures the subscription/publisher persistence layer.
	DB Database

	// Preds tunes the OptimizedPredicateSet decision-tree compiler
	// (§4.5): min_count, max_depth, min_benefit.
	Preds predset.Config

	// SnapshotPath, if set, is where the compiled decision tree's
	// branch-selection hint is persisted between restarts so the first
	// compile after a restart can skip re-mining subexpressions across
	// an unchanged subscription population. Empty disables snapshotting.
	SnapshotPath string

	// UnauthDelayMillis is extra latency added before an unauthorized or
	// unauthenticated response, as an anti-flood measure for naive
	// clients. Negative disables the delay.
	UnauthDelayMillis int
}

// UnauthDelay returns UnauthDelayMillis as a time.Duration, or zero if
// negative.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 0 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a copy of cfg with unset values replaced by
// their defaults.
func (cfg Config) FillDefaults() Config {
	filled := cfg

	if filled.ListenAddr == "" {
		filled.ListenAddr = ":8080"
	}
	if filled.TokenSecret == nil {
		filled.TokenSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")
	}
	if filled.DB.Type == DatabaseNone || filled.DB.Type == "" {
		filled.DB = Database{Type: DatabaseInMemory}
	}
	if filled.Preds == (predset.Config{}) {
		filled.Preds = predset.DefaultConfig()
	}
	if filled.UnauthDelayMillis == 0 {
		filled.UnauthDelayMillis = 1000
	}

	return filled
}

// Validate returns an error if cfg has invalid or unset-without-default
// field values. Call on the result of FillDefaults if defaults should
// be accepted.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.Preds.MinCount < 2 {
		return fmt.Errorf("preds: min_count must be >= 2")
	}
	if cfg.Preds.MaxDepth < 1 {
		return fmt.Errorf("preds: max_depth must be >= 1")
	}
	return nil
}
