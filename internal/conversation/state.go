package conversation

import (
	"context"

	"ledger-chat-backend/internal/ledger"
)

// LedgerStore is the external collaborator every action node talks to. All
// match semantics (item fuzziness, date filtering) live behind it; the
// controller only interprets candidate counts.
type LedgerStore interface {
	Insert(ctx context.Context, date, item string, amount int64) (ledger.Entry, error)
	List(ctx context.Context, date string, limit int) ([]ledger.Entry, error)
	Sum(ctx context.Context, date string) (int64, error)
	Last(ctx context.Context) (*ledger.Entry, error)
	FindCandidates(ctx context.Context, item, date string) ([]ledger.Entry, error)
	UpdateAmount(ctx context.Context, id, amount int64) (*ledger.Entry, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingConfirm
	PendingSelection
)

func (k PendingKind) String() string {
	switch k {
	case PendingConfirm:
		return "confirm"
	case PendingSelection:
		return "selection"
	default:
		return "none"
	}
}

// Action is a deferred mutation awaiting a confirm or selection decision.
// For a pending selection it is the template applied to the chosen entry.
type Action struct {
	Kind    ledger.Kind `json:"kind"` // delete or update
	EntryID int64       `json:"entryId,omitempty"`
	Amount  int64       `json:"amount,omitempty"` // new amount for update
}

// Pending is the single sub-protocol slot on a session. One struct with a
// discriminating kind keeps "at most one pending decision" true by
// construction rather than by convention.
type Pending struct {
	Kind       PendingKind    `json:"kind"`
	Token      string         `json:"token,omitempty"`
	Prompt     string         `json:"prompt,omitempty"`
	Action     Action         `json:"action,omitempty"`
	Candidates []ledger.Entry `json:"candidates,omitempty"`
}

func (p Pending) IsZero() bool { return p.Kind == PendingNone }

// SessionState is the only thing persisted across turns. It is a value: a
// turn takes one in and hands a new one back.
type SessionState struct {
	Pending Pending       `json:"pending"`
	Intent  ledger.Intent `json:"intent"` // last resolved intent
}

func clearedPending(state SessionState) SessionState {
	state.Pending = Pending{}
	return state
}
