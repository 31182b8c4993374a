// Package postgres implements the store interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qsplit-dev/qsplit/internal/model"
	"github.com/qsplit-dev/qsplit/internal/secret"
	"github.com/qsplit-dev/qsplit/internal/store"
)

// Storage bundles the per-record stores over one connection pool.
type Storage struct {
	Configs    *ConfigStorage
	Exclusions *ExclusionStorage
	Watched    *WatchedAccountStorage
	Processed  *ProcessedStorage
}

// NewStorage creates a Storage. Config values pass through the cipher on the
// way in and out.
func NewStorage(db *pgxpool.Pool, cipher *secret.Cipher) *Storage {
	return &Storage{
		Configs:    &ConfigStorage{db: db, cipher: cipher},
		Exclusions: &ExclusionStorage{db: db},
		Watched:    &WatchedAccountStorage{db: db},
		Processed:  &ProcessedStorage{db: db},
	}
}

// ConfigStorage implements store.ConfigStore.
type ConfigStorage struct {
	db     *pgxpool.Pool
	cipher *secret.Cipher
}

func (s *ConfigStorage) Get(ctx context.Context, key model.ConfigKey) (string, error) {
	var encrypted string
	err := s.db.QueryRow(ctx, "SELECT value FROM configs WHERE key = $1", string(key)).Scan(&encrypted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("get config %s: %w", key, err)
	}
	value, err := s.cipher.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt config %s: %w", key, err)
	}
	return value, nil
}

func (s *ConfigStorage) Set(ctx context.Context, key model.ConfigKey, value string) error {
	encrypted, err := s.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypt config %s: %w", key, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO configs (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, string(key), encrypted)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}

func (s *ConfigStorage) All(ctx context.Context) (map[model.ConfigKey]string, error) {
	rows, err := s.db.Query(ctx, "SELECT key, value FROM configs")
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	values := make(map[model.ConfigKey]string)
	for rows.Next() {
		var key, encrypted string
		if err := rows.Scan(&key, &encrypted); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		value, err := s.cipher.Decrypt(encrypted)
		if err != nil {
			return nil, fmt.Errorf("decrypt config %s: %w", key, err)
		}
		values[model.ConfigKey(key)] = value
	}
	return values, rows.Err()
}

// ExclusionStorage implements store.ExclusionStore.
type ExclusionStorage struct {
	db *pgxpool.Pool
}

func (s *ExclusionStorage) List(ctx context.Context) ([]model.Exclusion, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, iban, created_at FROM exclusions ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	var exclusions []model.Exclusion
	for rows.Next() {
		var e model.Exclusion
		if err := rows.Scan(&e.ID, &e.Name, &e.IBANHash, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}

func (s *ExclusionStorage) Create(ctx context.Context, name, ibanHash string) (model.Exclusion, error) {
	var e model.Exclusion
	err := s.db.QueryRow(ctx, `
		INSERT INTO exclusions (name, iban)
		VALUES ($1, $2)
		RETURNING id, name, iban, created_at
	`, name, ibanHash).Scan(&e.ID, &e.Name, &e.IBANHash, &e.CreatedAt)
	if err != nil {
		return model.Exclusion{}, fmt.Errorf("create exclusion: %w", err)
	}
	return e, nil
}

func (s *ExclusionStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.Exec(ctx, "DELETE FROM exclusions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete exclusion %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// WatchedAccountStorage implements store.WatchedAccountStore.
type WatchedAccountStorage struct {
	db *pgxpool.Pool
}

func (s *WatchedAccountStorage) List(ctx context.Context) ([]model.WatchedAccount, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, qonto_id, created_at FROM watched_accounts ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list watched accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.WatchedAccount
	for rows.Next() {
		var a model.WatchedAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.ExternalID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watched account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *WatchedAccountStorage) Create(ctx context.Context, name, externalID string) (model.WatchedAccount, error) {
	var a model.WatchedAccount
	err := s.db.QueryRow(ctx, `
		INSERT INTO watched_accounts (name, qonto_id)
		VALUES ($1, $2)
		RETURNING id, name, qonto_id, created_at
	`, name, externalID).Scan(&a.ID, &a.Name, &a.ExternalID, &a.CreatedAt)
	if err != nil {
		return model.WatchedAccount{}, fmt.Errorf("create watched account: %w", err)
	}
	return a, nil
}

func (s *WatchedAccountStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.Exec(ctx, "DELETE FROM watched_accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete watched account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *WatchedAccountStorage) FindByExternalID(ctx context.Context, externalID string) (*model.WatchedAccount, error) {
	var a model.WatchedAccount
	err := s.db.QueryRow(ctx,
		"SELECT id, name, qonto_id, created_at FROM watched_accounts WHERE qonto_id = $1",
		externalID,
	).Scan(&a.ID, &a.Name, &a.ExternalID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find watched account: %w", err)
	}
	return &a, nil
}

// ProcessedStorage implements store.ProcessedStore.
type ProcessedStorage struct {
	db *pgxpool.Pool
}

func (s *ProcessedStorage) Exists(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM processed_transactions WHERE transaction_id = $1)",
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed transaction: %w", err)
	}
	return exists, nil
}

// CreateBatch inserts the records in one round trip. The unique constraint on
// transaction_id makes duplicate insertion a no-op rather than an error.
func (s *ProcessedStorage) CreateBatch(ctx context.Context, records []model.ProcessedTransaction) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO processed_transactions (transaction_id, amount, reference, label, amount_split)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (transaction_id) DO NOTHING
		`, r.TransactionID, r.Amount.StringFixed(2), r.Reference, r.Label, r.AmountSplit.StringFixed(2))
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert processed transaction: %w", err)
		}
	}
	return nil
}
