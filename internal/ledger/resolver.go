package ledger

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"
)

// Resolver layers the extraction pipeline: heuristic first pass, full-JSON
// oracle pass, then per-field oracle retries for slots the intent kind still
// needs. Oracle failures at any step degrade to the heuristic result.
type Resolver struct {
	LLM *Extractor // nil disables oracle calls entirely
	Now func() time.Time
}

func NewResolver(llm *Extractor) *Resolver {
	return &Resolver{LLM: llm, Now: time.Now}
}

func (r *Resolver) Resolve(ctx context.Context, message string) Intent {
	today := r.Now()
	resolved := r.resolveOnce(ctx, message, today)
	r.retryMissingFields(ctx, message, today, &resolved)
	if resolved.Kind == KindInsert && resolved.Date == "" {
		resolved.Date = today.Format(DateLayout)
	}
	return resolved
}

// resolveOnce merges the heuristic and full-JSON oracle passes without
// per-field retries.
func (r *Resolver) resolveOnce(ctx context.Context, message string, today time.Time) Intent {
	heur := HeuristicIntent(message, today)
	if r.LLM == nil {
		return heur
	}
	full, err := r.LLM.ExtractIntent(ctx, message, today)
	if err != nil {
		log.Printf("[intent] full extraction failed, continuing with heuristics: %v", err)
		return heur
	}
	if full == nil {
		return heur
	}
	return mergeIntent(heur, *full)
}

// mergeIntent prefers the oracle's validated values and keeps the heuristic's
// as the safety net.
func mergeIntent(heur, llm Intent) Intent {
	out := llm
	if out.Kind == KindUnknown {
		out.Kind = heur.Kind
	}
	if out.Date == "" {
		out.Date = heur.Date
	}
	if out.Item == "" {
		out.Item = heur.Item
	}
	if out.Amount == nil {
		out.Amount = heur.Amount
	}
	if out.Target == "" {
		out.Target = heur.Target
	}
	return out
}

func (r *Resolver) retryMissingFields(ctx context.Context, message string, today time.Time, resolved *Intent) {
	if r.LLM == nil {
		return
	}
	// Fixed order: date, item, amount.
	if resolved.Date == "" && HasDateHint(message) {
		if date, err := r.LLM.ExtractDateField(ctx, message, today); err != nil {
			log.Printf("[intent] date retry failed: %v", err)
		} else if date != "" {
			resolved.Date = date
		}
	}
	if resolved.Item == "" && kindNeedsItem(*resolved) {
		if item, err := r.LLM.ExtractItemField(ctx, message); err != nil {
			log.Printf("[intent] item retry failed: %v", err)
		} else if item != "" {
			resolved.Item = item
		}
	}
	if resolved.Amount == nil && kindNeedsAmount(resolved.Kind) {
		if amount, err := r.LLM.ExtractAmountField(ctx, message); err != nil {
			log.Printf("[intent] amount retry failed: %v", err)
		} else if amount != nil {
			resolved.Amount = amount
		}
	}
}

func kindNeedsItem(in Intent) bool {
	switch in.Kind {
	case KindInsert:
		return true
	case KindUpdate, KindDelete:
		// A target=last reference needs no item filter.
		return in.Target != TargetLast
	default:
		return false
	}
}

func kindNeedsAmount(kind Kind) bool {
	return kind == KindInsert || kind == KindUpdate
}

// InsertCandidate is one entry of a multi-entry insert message.
type InsertCandidate struct {
	Date   string
	Item   string
	Amount int64
}

var reCommaSplit = regexp.MustCompile(`\s*,\s*`)

// BulkInsertCandidates splits a comma-separated insert message
// ("커피 4500원, 빵 2000원") and extracts each segment independently. Two or
// more candidates make a bulk insert; a single one is still returned so the
// caller can backfill slots the whole-message pass missed.
func (r *Resolver) BulkInsertCandidates(ctx context.Context, message, defaultDate string) []InsertCandidate {
	if !strings.Contains(message, "원") || !strings.Contains(message, ",") {
		return nil
	}
	today := r.Now()
	if defaultDate == "" {
		defaultDate = ExtractDate(message, today)
	}
	if defaultDate == "" {
		defaultDate = today.Format(DateLayout)
	}

	var segments []string
	for _, segment := range reCommaSplit.Split(message, -1) {
		if s := strings.TrimSpace(segment); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return nil
	}

	var candidates []InsertCandidate
	for _, segment := range segments {
		parsed := r.resolveOnce(ctx, segment, today)
		if parsed.Kind != KindInsert || parsed.Item == "" || parsed.Amount == nil {
			continue
		}
		// A segment keeps its own date only when it actually mentions one;
		// otherwise it inherits the message-level date.
		date := parsed.Date
		if date == "" || !HasDateHint(segment) {
			date = defaultDate
		}
		candidates = append(candidates, InsertCandidate{Date: date, Item: parsed.Item, Amount: *parsed.Amount})
	}
	return candidates
}
