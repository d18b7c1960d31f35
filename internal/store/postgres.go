package store

import (
	"context"
	"database/sql"
	"fmt"

	"ledger-chat-backend/internal/conversation"
	"ledger-chat-backend/internal/db"
	"ledger-chat-backend/internal/ledger"
)

// PostgresLedger stores ledger entries in PostgreSQL.
type PostgresLedger struct {
	db *db.DB
}

var _ conversation.LedgerStore = (*PostgresLedger)(nil)

func NewPostgresLedger(database *db.DB) *PostgresLedger {
	return &PostgresLedger{db: database}
}

func (p *PostgresLedger) Insert(ctx context.Context, date, item string, amount int64) (ledger.Entry, error) {
	entry := ledger.Entry{Date: date, Item: item, Amount: amount}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (entry_date, item, amount, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id`,
		date, item, amount,
	).Scan(&entry.ID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return entry, nil
}

func (p *PostgresLedger) List(ctx context.Context, date string, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = candidateLimit
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries
		 WHERE ($1 = '' OR entry_date = $1)
		 ORDER BY id DESC
		 LIMIT $2`,
		date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (p *PostgresLedger) Sum(ctx context.Context, date string) (int64, error) {
	var total int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		 WHERE ($1 = '' OR entry_date = $1)`,
		date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return total, nil
}

func (p *PostgresLedger) Last(ctx context.Context) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := p.db.QueryRowContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries
		 ORDER BY id DESC
		 LIMIT 1`,
	).Scan(&entry.ID, &entry.Date, &entry.Item, &entry.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last ledger entry: %w", err)
	}
	return &entry, nil
}

func (p *PostgresLedger) FindCandidates(ctx context.Context, item, date string) ([]ledger.Entry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, entry_date, item, amount FROM ledger_entries
		 WHERE ($1 = '' OR entry_date = $1)
		 ORDER BY id ASC
		 LIMIT $2`,
		date, candidateLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return filterByItem(entries, item), nil
}

func (p *PostgresLedger) UpdateAmount(ctx context.Context, id, amount int64) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := p.db.QueryRowContext(ctx,
		`UPDATE ledger_entries SET amount = $2
		 WHERE id = $1
		 RETURNING id, entry_date, item, amount`,
		id, amount,
	).Scan(&entry.ID, &entry.Date, &entry.Item, &entry.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return &entry, nil
}

func (p *PostgresLedger) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

func scanEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Item, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
