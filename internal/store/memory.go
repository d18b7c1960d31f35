package store

import (
	"context"
	"sync"

	"ledger-chat-backend/internal/conversation"
	"ledger-chat-backend/internal/ledger"
)

// MemoryLedger is the in-memory LedgerStore. It backs tests and makes the
// server runnable without any database at hand.
type MemoryLedger struct {
	mu      sync.RWMutex
	nextID  int64
	entries []ledger.Entry
}

var _ conversation.LedgerStore = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{nextID: 1}
}

func (m *MemoryLedger) Insert(_ context.Context, date, item string, amount int64) (ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := ledger.Entry{ID: m.nextID, Date: date, Item: item, Amount: amount}
	m.nextID++
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MemoryLedger) List(_ context.Context, date string, limit int) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = candidateLimit
	}
	out := make([]ledger.Entry, 0, limit)
	// Newest first.
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if date == "" || m.entries[i].Date == date {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *MemoryLedger) Sum(_ context.Context, date string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, e := range m.entries {
		if date == "" || e.Date == date {
			total += e.Amount
		}
	}
	return total, nil
}

func (m *MemoryLedger) Last(_ context.Context) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.entries) == 0 {
		return nil, nil
	}
	entry := m.entries[len(m.entries)-1]
	return &entry, nil
}

func (m *MemoryLedger) FindCandidates(_ context.Context, item, date string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Entry, 0, 8)
	for _, e := range m.entries {
		if date != "" && e.Date != date {
			continue
		}
		if !matchItem(e.Item, item) {
			continue
		}
		out = append(out, e)
		if len(out) >= candidateLimit {
			break
		}
	}
	return out, nil
}

func (m *MemoryLedger) UpdateAmount(_ context.Context, id, amount int64) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Amount = amount
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

func (m *MemoryLedger) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
