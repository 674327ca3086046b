package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite mirrors every destination table into a local database, giving
// each run a queryable copy of exactly what was published. Schema is
// generic: one row per published row, cells JSON-encoded.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the mirror database with WAL mode and a
// single-writer pool.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sheet_rows (
			destination TEXT    NOT NULL,
			pos         INTEGER NOT NULL,
			cells       TEXT    NOT NULL,
			PRIMARY KEY (destination, pos)
		);

		CREATE TABLE IF NOT EXISTS sheet_meta (
			destination TEXT PRIMARY KEY,
			header      TEXT    NOT NULL,
			freshness   TEXT    NOT NULL,
			row_count   INTEGER NOT NULL,
			written_at  INTEGER NOT NULL
		);
	`)
	return err
}

// ReplaceTable swaps the destination's rows in one transaction:
// delete-all then insert, plus the freshness row in sheet_meta. The
// destination is never observable half-written.
func (s *SQLite) ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE destination = ?`, destinationID); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite delete %q: %w", destinationID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sheet_rows (destination, pos, cells) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for pos, row := range table.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite marshal row %d: %w", pos, err)
		}
		if _, err := stmt.ExecContext(ctx, destinationID, pos, string(cells)); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert %q row %d: %w", destinationID, pos, err)
		}
	}

	header, err := json.Marshal(table.Header)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite marshal header: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sheet_meta (destination, header, freshness, row_count, written_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(destination) DO UPDATE SET
			header = excluded.header,
			freshness = excluded.freshness,
			row_count = excluded.row_count,
			written_at = excluded.written_at
	`, destinationID, string(header), freshnessMarker, len(table.Rows), time.Now().Unix())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite meta %q: %w", destinationID, err)
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
