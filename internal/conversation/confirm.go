package conversation

import (
	"context"
	"log"
	"strings"

	"ledger-chat-backend/internal/ledger"
)

// yesWords and noWords are the only chat inputs accepted as a confirm
// decision; matching is exact on the trimmed, lowercased message so that
// "삭제 취소" while a confirm for something else is pending re-prompts instead
// of being misread as a cancel.
var (
	yesWords = map[string]struct{}{
		"yes": {}, "y": {}, "네": {}, "응": {}, "확인": {}, "진행": {}, "삭제해": {}, "해줘": {},
	}
	noWords = map[string]struct{}{
		"no": {}, "n": {}, "아니": {}, "취소": {}, "안해": {}, "안 할래": {},
	}
)

func isYesWord(msg string) bool {
	_, ok := yesWords[strings.ToLower(strings.TrimSpace(msg))]
	return ok
}

func isNoWord(msg string) bool {
	_, ok := noWords[strings.ToLower(strings.TrimSpace(msg))]
	return ok
}

// ConfirmationManager owns the confirm sub-protocol: it arms a single-use
// token guarding a deferred mutation and executes that mutation at most once.
type ConfirmationManager struct {
	store LedgerStore
}

// Create arms a pending confirm for the given action. The prompt doubles as
// the reply that asks the user to decide.
func (m *ConfirmationManager) Create(action Action, prompt string) Pending {
	return Pending{
		Kind:   PendingConfirm,
		Token:  newToken(),
		Prompt: prompt,
		Action: action,
	}
}

// Resolve settles a pending confirm. A token that does not match the currently
// armed one (including an already-consumed one) is stale: the reply asks the
// user to restart and nothing is mutated. A decision outside yes/no re-prompts
// without consuming the token.
func (m *ConfirmationManager) Resolve(ctx context.Context, state SessionState, token, decision string) (string, SessionState) {
	if state.Pending.Kind != PendingConfirm || token == "" || token != state.Pending.Token {
		return replyStaleToken, state
	}

	switch {
	case isYesWord(decision):
		return m.execute(ctx, state)
	case isNoWord(decision):
		return replyCancelled, clearedPending(state)
	default:
		return replyConfirmAgain, state
	}
}

func (m *ConfirmationManager) execute(ctx context.Context, state SessionState) (string, SessionState) {
	action := state.Pending.Action
	switch action.Kind {
	case ledger.KindDelete:
		ok, err := m.store.Delete(ctx, action.EntryID)
		if err != nil || !ok {
			if err != nil {
				log.Printf("[confirm] delete %d failed: %v", action.EntryID, err)
			}
			return replyDeleteFailed, clearedPending(state)
		}
		return replyDeleteDone, clearedPending(state)
	case ledger.KindUpdate:
		updated, err := m.store.UpdateAmount(ctx, action.EntryID, action.Amount)
		if err != nil || updated == nil {
			if err != nil {
				log.Printf("[confirm] update %d failed: %v", action.EntryID, err)
			}
			return replyUpdateFailed, clearedPending(state)
		}
		return replyUpdated(*updated), clearedPending(state)
	default:
		return "지원하지 않는 확인 작업이에요.", clearedPending(state)
	}
}
