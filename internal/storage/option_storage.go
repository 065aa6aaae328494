package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OptionStorage is the host's named configuration values table.
type OptionStorage struct {
	db *sqlx.DB
}

func NewOptionStorage(db *sqlx.DB) *OptionStorage {
	return &OptionStorage{db: db}
}

func (s *OptionStorage) Get(ctx context.Context, name string) (string, error) {
	var value string

	query := s.db.Rebind(`SELECT value FROM options WHERE name = ?`)
	if err := s.db.GetContext(ctx, &value, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select option %s: %w", name, err)
	}

	return value, nil
}

func (s *OptionStorage) Set(ctx context.Context, name, value string) error {
	query := s.db.Rebind(`
		INSERT INTO options (name, value)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`)
	if _, err := s.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("set option %s: %w", name, err)
	}
	return nil
}

// SetDefault stores value only if the option has never been set.
func (s *OptionStorage) SetDefault(ctx context.Context, name, value string) error {
	query := s.db.Rebind(`
		INSERT INTO options (name, value)
		VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`)
	if _, err := s.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("default option %s: %w", name, err)
	}
	return nil
}

func (s *OptionStorage) Delete(ctx context.Context, name string) error {
	query := s.db.Rebind(`DELETE FROM options WHERE name = ?`)
	if _, err := s.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("delete option %s: %w", name, err)
	}
	return nil
}
