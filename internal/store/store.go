// Package store provides the ledger persistence backends and the in-memory
// conversation session store.
package store

import (
	"strings"

	"ledger-chat-backend/internal/ledger"
)

const candidateLimit = 100

// matchItem is the candidate match rule shared by every backend: empty needle
// matches everything, otherwise a whitespace-insensitive, case-insensitive
// substring match against the stored item.
func matchItem(entryItem, needle string) bool {
	n := foldItem(needle)
	if n == "" {
		return true
	}
	return strings.Contains(foldItem(entryItem), n)
}

func foldItem(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func filterByItem(entries []ledger.Entry, item string) []ledger.Entry {
	if strings.TrimSpace(item) == "" {
		return entries
	}
	out := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if matchItem(e.Item, item) {
			out = append(out, e)
		}
	}
	return out
}
