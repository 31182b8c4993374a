// Package store defines the persistence interfaces the pipeline and commands
// depend on. The concrete Postgres implementation lives in store/postgres.
package store

import (
	"context"
	"errors"

	"github.com/qsplit-dev/qsplit/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ConfigStore holds the run-scoped settings. Values are encrypted at rest and
// decrypted on read.
type ConfigStore interface {
	// Get returns the decrypted value for key, or ErrNotFound.
	Get(ctx context.Context, key model.ConfigKey) (string, error)
	// Set upserts the value for key.
	Set(ctx context.Context, key model.ConfigKey, value string) error
	// All returns every stored key with its decrypted value.
	All(ctx context.Context) (map[model.ConfigKey]string, error)
}

// ExclusionStore holds the hashed identifiers whose incoming transactions are
// never split.
type ExclusionStore interface {
	List(ctx context.Context) ([]model.Exclusion, error)
	Create(ctx context.Context, name, ibanHash string) (model.Exclusion, error)
	// Delete removes an exclusion, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

// WatchedAccountStore holds the source accounts the pipeline polls.
type WatchedAccountStore interface {
	List(ctx context.Context) ([]model.WatchedAccount, error)
	Create(ctx context.Context, name, externalID string) (model.WatchedAccount, error)
	// Delete removes a watched account, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
	// FindByExternalID returns nil when the account is not watched.
	FindByExternalID(ctx context.Context, externalID string) (*model.WatchedAccount, error)
}

// ProcessedStore records handled transactions exactly once. The unique
// constraint on the transaction ID is the enforcement point for idempotency;
// Exists is an optimization, not a guarantee.
type ProcessedStore interface {
	Exists(ctx context.Context, transactionID string) (bool, error)
	// CreateBatch inserts the records, silently skipping duplicates.
	CreateBatch(ctx context.Context, records []model.ProcessedTransaction) error
}
