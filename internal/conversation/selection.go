package conversation

import (
	"context"
	"log"

	"github.com/google/uuid"

	"ledger-chat-backend/internal/ledger"
)

// SelectionManager owns the multi-candidate sub-protocol: it stores an ordered
// candidate list plus the action shape to apply once an id is chosen.
type SelectionManager struct {
	store    LedgerStore
	confirms *ConfirmationManager
}

func (m *SelectionManager) Create(action Action, candidates []ledger.Entry, verb string) Pending {
	return Pending{
		Kind:       PendingSelection,
		Token:      newToken(),
		Prompt:     promptSelect(verb, candidates),
		Action:     action,
		Candidates: candidates,
	}
}

// Resolve settles a pending selection. An id outside the stored candidate
// list re-prompts without mutating anything. A destructive template (delete)
// chains into a confirm instead of executing directly.
func (m *SelectionManager) Resolve(ctx context.Context, state SessionState, token string, chosenID int64) (string, SessionState) {
	if state.Pending.Kind != PendingSelection || token == "" || token != state.Pending.Token {
		return replyStaleToken, state
	}

	var chosen *ledger.Entry
	for i := range state.Pending.Candidates {
		if state.Pending.Candidates[i].ID == chosenID {
			chosen = &state.Pending.Candidates[i]
			break
		}
	}
	if chosen == nil {
		return promptSelectAgain(state.Pending.Candidates), state
	}

	action := state.Pending.Action
	switch action.Kind {
	case ledger.KindUpdate:
		updated, err := m.store.UpdateAmount(ctx, chosen.ID, action.Amount)
		if err != nil || updated == nil {
			if err != nil {
				log.Printf("[selection] update %d failed: %v", chosen.ID, err)
			}
			return replyUpdateFailed, clearedPending(state)
		}
		return replyUpdated(*updated), clearedPending(state)
	case ledger.KindDelete:
		// Delete stays behind a confirm even after an explicit choice.
		pending := m.confirms.Create(Action{Kind: ledger.KindDelete, EntryID: chosen.ID}, promptDeleteConfirm(*chosen))
		state.Pending = pending
		return pending.Prompt, state
	default:
		return "알 수 없는 선택 작업이에요.", clearedPending(state)
	}
}

// newToken is indirected for tests that need predictable tokens.
var newToken = uuid.NewString
