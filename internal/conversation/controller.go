// Package conversation is the turn-level state machine: it routes each
// incoming message on the session's pending state, dispatches resolved intents
// to exactly one action node, and guarantees every turn ends with a reply.
package conversation

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ledger-chat-backend/internal/ledger"
)

const (
	listLimit = 10
)

type Controller struct {
	store    LedgerStore
	resolver *ledger.Resolver
	confirms *ConfirmationManager
	selects  *SelectionManager
}

func New(store LedgerStore, resolver *ledger.Resolver) *Controller {
	confirms := &ConfirmationManager{store: store}
	return &Controller{
		store:    store,
		resolver: resolver,
		confirms: confirms,
		selects:  &SelectionManager{store: store, confirms: confirms},
	}
}

// Process handles one conversational turn. Routing precedence at entry is
// load-bearing: empty message, then pending confirm, then pending selection,
// then intent extraction. A stray message while a decision is outstanding is
// always read as that decision, never as a new request.
func (c *Controller) Process(ctx context.Context, state SessionState, message string) (string, SessionState) {
	if strings.TrimSpace(message) == "" {
		return replyEmptyMessage, state
	}
	switch state.Pending.Kind {
	case PendingConfirm:
		return c.confirmTurn(ctx, state, message)
	case PendingSelection:
		return c.selectionTurn(ctx, state, message)
	}

	intent := c.resolver.Resolve(ctx, message)
	state.Intent = intent
	return c.dispatch(ctx, state, message, intent)
}

// DecideConfirm settles a pending confirm through the explicit decision
// endpoint. Replaying a consumed token is a stale-token reply, never a second
// mutation.
func (c *Controller) DecideConfirm(ctx context.Context, state SessionState, token, decision string) (string, SessionState) {
	return c.confirms.Resolve(ctx, state, token, decision)
}

// DecideSelection settles a pending selection through the explicit choice
// endpoint.
func (c *Controller) DecideSelection(ctx context.Context, state SessionState, token string, entryID int64) (string, SessionState) {
	return c.selects.Resolve(ctx, state, token, entryID)
}

// confirmTurn coerces a chat message into a confirm decision against the
// currently armed token.
func (c *Controller) confirmTurn(ctx context.Context, state SessionState, message string) (string, SessionState) {
	if state.Pending.Token == "" {
		return replyNothingToConfirm, clearedPending(state)
	}
	return c.confirms.Resolve(ctx, state, state.Pending.Token, message)
}

var reFirstNumber = regexp.MustCompile(`\d+`)

// selectionTurn coerces a chat message into a candidate choice: cancel words
// drop the selection, the first number is taken as the chosen id.
func (c *Controller) selectionTurn(ctx context.Context, state SessionState, message string) (string, SessionState) {
	if state.Pending.Token == "" {
		return replyNothingToSelect, clearedPending(state)
	}
	msg := strings.TrimSpace(message)
	msgL := strings.ToLower(msg)
	if strings.Contains(msg, "취소") || msgL == "cancel" || msgL == "no" || msgL == "n" {
		return replySelectCancelled, clearedPending(state)
	}
	m := reFirstNumber.FindString(msg)
	if m == "" {
		return promptSelectID(state.Pending.Candidates), state
	}
	chosenID, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return promptSelectID(state.Pending.Candidates), state
	}
	return c.selects.Resolve(ctx, state, state.Pending.Token, chosenID)
}

func (c *Controller) dispatch(ctx context.Context, state SessionState, message string, intent ledger.Intent) (string, SessionState) {
	switch intent.Kind {
	case ledger.KindInsert:
		return c.runInsert(ctx, state, message, intent)
	case ledger.KindSelect:
		return c.runSelect(ctx, state, intent)
	case ledger.KindSum:
		return c.runSum(ctx, state, intent)
	case ledger.KindUpdate:
		return c.runUpdatePrepare(ctx, state, intent)
	case ledger.KindDelete:
		return c.runDeletePrepare(ctx, state, intent)
	default:
		return c.runUnknown(state)
	}
}

func (c *Controller) runInsert(ctx context.Context, state SessionState, message string, intent ledger.Intent) (string, SessionState) {
	amount := intent.Amount
	item := intent.Item
	date := intent.Date

	candidates := c.resolver.BulkInsertCandidates(ctx, message, date)
	if len(candidates) >= 2 {
		saved := make([]ledger.Entry, 0, len(candidates))
		for _, cand := range candidates {
			entry, err := c.store.Insert(ctx, cand.Date, cand.Item, cand.Amount)
			if err != nil {
				log.Printf("[insert] bulk insert failed: %v", err)
				return replyInsertFailed, clearedPending(state)
			}
			saved = append(saved, entry)
		}
		return replyBulkSaved(saved), clearedPending(state)
	}
	if len(candidates) == 1 && (amount == nil || item == "") {
		amount = &candidates[0].Amount
		item = candidates[0].Item
		date = candidates[0].Date
	}

	if amount == nil {
		return replyNeedAmount, clearedPending(state)
	}
	if item == "" {
		return replyNeedItem, clearedPending(state)
	}

	entry, err := c.store.Insert(ctx, date, item, *amount)
	if err != nil {
		log.Printf("[insert] insert failed: %v", err)
		return replyInsertFailed, clearedPending(state)
	}
	return replySaved(entry), clearedPending(state)
}

func (c *Controller) runSelect(ctx context.Context, state SessionState, intent ledger.Intent) (string, SessionState) {
	entries, err := c.store.List(ctx, intent.Date, listLimit)
	if err != nil {
		log.Printf("[select] list failed: %v", err)
		return replySelectFailed, clearedPending(state)
	}
	return formatEntries(entries), clearedPending(state)
}

func (c *Controller) runSum(ctx context.Context, state SessionState, intent ledger.Intent) (string, SessionState) {
	total, err := c.store.Sum(ctx, intent.Date)
	if err != nil {
		log.Printf("[sum] sum failed: %v", err)
		return replySumFailed, clearedPending(state)
	}
	return replySum(intent.Date, total), clearedPending(state)
}

// runUpdatePrepare applies a fully-specified single-candidate update directly;
// only a multi-candidate match defers to selection. Delete is the one action
// that always needs a confirm.
func (c *Controller) runUpdatePrepare(ctx context.Context, state SessionState, intent ledger.Intent) (string, SessionState) {
	if intent.Amount == nil {
		return replyNeedUpdateAmount, clearedPending(state)
	}
	amount := *intent.Amount

	if intent.Target == ledger.TargetLast {
		last, err := c.store.Last(ctx)
		if err != nil {
			log.Printf("[update] last lookup failed: %v", err)
			return replyUpdateFailed, clearedPending(state)
		}
		if last == nil {
			return replyNoLastEntry, clearedPending(state)
		}
		return c.applyUpdate(ctx, state, last.ID, amount)
	}

	var candidates []ledger.Entry
	if intent.Item != "" || intent.Date != "" {
		found, err := c.store.FindCandidates(ctx, intent.Item, intent.Date)
		if err != nil {
			log.Printf("[update] candidate lookup failed: %v", err)
			return replySelectFailed, clearedPending(state)
		}
		if len(found) == 0 {
			return replyNoUpdateTarget, clearedPending(state)
		}
		candidates = found
	} else {
		last, err := c.store.Last(ctx)
		if err != nil {
			log.Printf("[update] last lookup failed: %v", err)
			return replyUpdateFailed, clearedPending(state)
		}
		if last == nil {
			return replyNoLastEntry, clearedPending(state)
		}
		candidates = []ledger.Entry{*last}
	}

	if len(candidates) == 1 {
		return c.applyUpdate(ctx, state, candidates[0].ID, amount)
	}

	pending := c.selects.Create(Action{Kind: ledger.KindUpdate, Amount: amount}, candidates, "수정")
	state.Pending = pending
	return pending.Prompt, state
}

func (c *Controller) applyUpdate(ctx context.Context, state SessionState, id, amount int64) (string, SessionState) {
	updated, err := c.store.UpdateAmount(ctx, id, amount)
	if err != nil || updated == nil {
		if err != nil {
			log.Printf("[update] update %d failed: %v", id, err)
		}
		return replyUpdateFailed, clearedPending(state)
	}
	return replyUpdated(*updated), clearedPending(state)
}

func (c *Controller) runDeletePrepare(ctx context.Context, state SessionState, intent ledger.Intent) (string, SessionState) {
	if intent.Target == ledger.TargetLast {
		last, err := c.store.Last(ctx)
		if err != nil {
			log.Printf("[delete] last lookup failed: %v", err)
			return replyDeleteFailed, clearedPending(state)
		}
		if last == nil {
			return replyNoDeleteEntries, clearedPending(state)
		}
		return c.armDeleteConfirm(state, *last)
	}

	var candidates []ledger.Entry
	if intent.Item != "" || intent.Date != "" {
		found, err := c.store.FindCandidates(ctx, intent.Item, intent.Date)
		if err != nil {
			log.Printf("[delete] candidate lookup failed: %v", err)
			return replySelectFailed, clearedPending(state)
		}
		if len(found) == 0 {
			return replyNoDeleteTarget, clearedPending(state)
		}
		candidates = found
	} else {
		last, err := c.store.Last(ctx)
		if err != nil {
			log.Printf("[delete] last lookup failed: %v", err)
			return replyDeleteFailed, clearedPending(state)
		}
		if last == nil {
			return replyNoDeleteEntries, clearedPending(state)
		}
		candidates = []ledger.Entry{*last}
	}

	if len(candidates) == 1 {
		return c.armDeleteConfirm(state, candidates[0])
	}

	pending := c.selects.Create(Action{Kind: ledger.KindDelete}, candidates, "삭제")
	state.Pending = pending
	return pending.Prompt, state
}

func (c *Controller) armDeleteConfirm(state SessionState, entry ledger.Entry) (string, SessionState) {
	pending := c.confirms.Create(Action{Kind: ledger.KindDelete, EntryID: entry.ID}, promptDeleteConfirm(entry))
	state.Pending = pending
	return pending.Prompt, state
}

func (c *Controller) runUnknown(state SessionState) (string, SessionState) {
	return replyUnknown, clearedPending(state)
}
