package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PluginStorage is the generic (type, aux, data) table plugins share.
// At most one row exists per (type, aux) pair.
type PluginStorage struct {
	db *sqlx.DB
}

func NewPluginStorage(db *sqlx.DB) *PluginStorage {
	return &PluginStorage{db: db}
}

func (s *PluginStorage) Get(ctx context.Context, typ, aux string) (string, error) {
	var data string

	query := s.db.Rebind(`SELECT data FROM plugin_storage WHERE type = ? AND aux = ?`)
	if err := s.db.GetContext(ctx, &data, query, typ, aux); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select %s/%s: %w", typ, aux, err)
	}

	return data, nil
}

func (s *PluginStorage) Upsert(ctx context.Context, typ, aux, data string) error {
	query := s.db.Rebind(`
		INSERT INTO plugin_storage (type, aux, data)
		VALUES (?, ?, ?)
		ON CONFLICT (type, aux) DO UPDATE SET data = excluded.data
	`)
	if _, err := s.db.ExecContext(ctx, query, typ, aux, data); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", typ, aux, err)
	}
	return nil
}

func (s *PluginStorage) Delete(ctx context.Context, typ, aux string) error {
	query := s.db.Rebind(`DELETE FROM plugin_storage WHERE type = ? AND aux = ?`)
	_, err := s.db.ExecContext(ctx, query, typ, aux)
	return err
}
