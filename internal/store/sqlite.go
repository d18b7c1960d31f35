package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ledger-chat-backend/internal/conversation"
	"ledger-chat-backend/internal/ledger"
)

// SQLiteLedger is the zero-config LedgerStore backend, used when no Postgres
// DSN is configured.
type SQLiteLedger struct {
	db *sql.DB
}

var _ conversation.LedgerStore = (*SQLiteLedger)(nil)

func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency across conversations.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteLedger{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteLedger) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_date TEXT NOT NULL,
		item TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(entry_date);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

func (s *SQLiteLedger) Insert(ctx context.Context, date, item string, amount int64) (ledger.Entry, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (entry_date, item, amount, created_at) VALUES (?, ?, ?, ?)`,
		date, item, amount, time.Now().Unix(),
	)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("read inserted id: %w", err)
	}
	return ledger.Entry{ID: id, Date: date, Item: item, Amount: amount}, nil
}

func (s *SQLiteLedger) List(ctx context.Context, date string, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = candidateLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries
		 WHERE (? = '' OR entry_date = ?)
		 ORDER BY id DESC
		 LIMIT ?`,
		date, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *SQLiteLedger) Sum(ctx context.Context, date string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE (? = '' OR entry_date = ?)`,
		date, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", err)
	}
	return total, nil
}

func (s *SQLiteLedger) Last(ctx context.Context) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries ORDER BY id DESC LIMIT 1`,
	).Scan(&entry.ID, &entry.Date, &entry.Item, &entry.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last ledger entry: %w", err)
	}
	return &entry, nil
}

func (s *SQLiteLedger) FindCandidates(ctx context.Context, item, date string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries
		 WHERE (? = '' OR entry_date = ?)
		 ORDER BY id ASC
		 LIMIT ?`,
		date, date, candidateLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return filterByItem(entries, item), nil
}

func (s *SQLiteLedger) UpdateAmount(ctx context.Context, id, amount int64) (*ledger.Entry, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE ledger_entries SET amount = ? WHERE id = ?`, amount, id)
	if err != nil {
		return nil, fmt.Errorf("update ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("read update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	var entry ledger.Entry
	err = s.db.QueryRowContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries WHERE id = ?`, id,
	).Scan(&entry.ID, &entry.Date, &entry.Item, &entry.Amount)
	if err != nil {
		return nil, fmt.Errorf("reload updated entry: %w", err)
	}
	return &entry, nil
}

func (s *SQLiteLedger) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read delete result: %w", err)
	}
	return affected > 0, nil
}
