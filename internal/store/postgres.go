package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/tallyreview/internal/config"
	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool used by the change log.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS edit_changes (
	id          BIGSERIAL PRIMARY KEY,
	file_id     TEXT        NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL,
	edited_at   TIMESTAMPTZ NOT NULL,
	row_id      TEXT        NOT NULL,
	column_key  TEXT        NOT NULL,
	old_value   TEXT        NOT NULL,
	new_value   TEXT        NOT NULL,
	ip_address  TEXT        NOT NULL DEFAULT '',
	user_agent  TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS edit_changes_file_idx ON edit_changes (file_id, edited_at);
`

const insertChangeSQL = `INSERT INTO edit_changes
	(file_id, saved_at, edited_at, row_id, column_key, old_value, new_value, ip_address, user_agent)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const listChangesSQL = `SELECT saved_at, edited_at, row_id, column_key, old_value, new_value, ip_address, user_agent
	FROM edit_changes WHERE file_id = $1 ORDER BY edited_at, id`

// ChangeRecord is one stored edit.
type ChangeRecord struct {
	FileID    string    `json:"fileId"`
	SavedAt   time.Time `json:"savedAt"`
	EditedAt  time.Time `json:"editedAt"`
	RowID     string    `json:"rowId"`
	ColumnKey string    `json:"columnKey"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// PostgresChangeLog stores edit histories in the edit_changes table.
type PostgresChangeLog struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresChangeLog wraps db.
func NewPostgresChangeLog(db DBTX) *PostgresChangeLog {
	return &PostgresChangeLog{db: db, now: time.Now}
}

// OpenPool connects to PostgreSQL with the configured pool limits and
// verifies the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the edit_changes table if needed.
func (l *PostgresChangeLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create edit_changes: %w", err)
	}
	return nil
}

// RecordChanges implements core.ChangeRecorder. All entries of one save
// are written in a single transaction.
func (l *PostgresChangeLog) RecordChanges(ctx context.Context, fileID string, history []core.EditHistoryEntry) error {
	if len(history) == 0 {
		return nil
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	savedAt := l.now().UTC()
	editor := core.EditorFrom(ctx)

	for _, e := range history {
		if _, err := tx.Exec(ctx, insertChangeSQL,
			fileID, savedAt, e.Time().UTC(), e.RowID, e.ColumnKey, e.OldValue, e.NewValue, editor.IP, editor.UserAgent,
		); err != nil {
			return fmt.Errorf("insert change %s/%s: %w", e.RowID, e.ColumnKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListChanges returns every stored edit for fileID in edit order.
func (l *PostgresChangeLog) ListChanges(ctx context.Context, fileID string) ([]ChangeRecord, error) {
	rows, err := l.db.Query(ctx, listChangesSQL, fileID)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	out := []ChangeRecord{}
	for rows.Next() {
		rec := ChangeRecord{FileID: fileID}
		if err := rows.Scan(&rec.SavedAt, &rec.EditedAt, &rec.RowID, &rec.ColumnKey,
			&rec.OldValue, &rec.NewValue, &rec.IPAddress, &rec.UserAgent); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read changes: %w", err)
	}
	return out, nil
}
