// Package store persists generated levels, the calendar index that maps
// cadence keys to them, the run ledger that serializes concurrent cron
// runs, and the per-cadence rule history.
package store

import (
	"context"

	"github.com/rutacat/rutacat/internal/level"
)

// Store is the minimal interface every backing store implements.
type Store interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close() error
}

// LevelStore is the persistence surface the scheduler works against.
type LevelStore interface {
	Store

	// SaveLevel stores a level and its calendar row in one transaction.
	// A level already present for (cadence, key, mode) yields
	// ErrAlreadyExists and leaves the stored level untouched.
	SaveLevel(ctx context.Context, cadence, key, mode string, lvl *level.Level) error

	// GetLevel fetches the level for a slot, or ErrNotFound.
	GetLevel(ctx context.Context, cadence, key, mode string) (*level.Level, error)

	// ExistingKeys reports which of the given keys already hold a level.
	// One bulk query, not N lookups; backfill depends on that.
	ExistingKeys(ctx context.Context, cadence, mode string, keys []string) (map[string]bool, error)

	// ClaimRun inserts into the run ledger if absent and reports whether
	// this caller won the claim. The loser of a concurrent race gets
	// false with no error.
	ClaimRun(ctx context.Context, cadence, key, mode, purpose string) (bool, error)

	// RecentRuleIDs returns the bounded rule history for a cadence,
	// newest first.
	RecentRuleIDs(ctx context.Context, cadence string) ([]string, error)

	// AppendRuleID records an issued rule id, trimming the history to its
	// capacity.
	AppendRuleID(ctx context.Context, cadence, ruleID string) error

	// CountLevels counts stored levels for a cadence.
	CountLevels(ctx context.Context, cadence string) (int, error)

	// LatestKey returns the most recent cadence key holding a level, or
	// ErrNotFound when the cadence is empty.
	LatestKey(ctx context.Context, cadence string) (string, error)
}
