package ledger

import (
	"regexp"
	"strings"
	"time"
)

type Kind string

const (
	KindInsert  Kind = "insert"
	KindSelect  Kind = "select"
	KindUpdate  Kind = "update"
	KindDelete  Kind = "delete"
	KindSum     Kind = "sum"
	KindUnknown Kind = "unknown"
)

// TargetLast marks intents that refer back to the most recent entry
// ("방금 그거 지워줘").
const TargetLast = "last"

// ParseKind maps free-form kind text onto the closed intent enum.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInsert, KindSelect, KindUpdate, KindDelete, KindSum:
		return Kind(strings.ToLower(strings.TrimSpace(s)))
	default:
		return KindUnknown
	}
}

// Intent is the canonical per-turn extraction result. Zero values mean
// "unspecified": empty Date is not today, nil Amount is not zero won.
type Intent struct {
	Kind   Kind
	Date   string // ISO YYYY-MM-DD or empty
	Item   string // literal substring of the user's message, or empty
	Amount *int64 // non-negative KRW, nil when unspecified
	Target string // TargetLast or empty
}

// Entry is one ledger row as the conversation layer sees it. Ids are owned by
// the store; the core never invents them.
type Entry struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Item   string `json:"item"`
	Amount int64  `json:"amount"`
}

var (
	reWonAmount = regexp.MustCompile(`([\d,]+(?:\.\d+)?)\s*(천|만)?\s*원`)
	reBareDigit = regexp.MustCompile(`\b\d+\b`)
)

var targetLastCues = []string{"방금", "최근", "그거", "그것", "마지막"}

// HeuristicIntent is the rule-based first pass over the raw message. It is
// deliberately conservative: it never guesses an item, and the only default it
// injects is today's date for insert-shaped text with no date mentioned.
func HeuristicIntent(message string, today time.Time) Intent {
	msg := message
	msgL := strings.ToLower(message)

	kind := KindUnknown
	switch {
	case containsAny(msg, "총합", "합계") || containsAny(msgL, "sum", "total"):
		kind = KindSum
	case containsAny(msg, "삭제", "지워") || strings.Contains(msgL, "delete"):
		kind = KindDelete
	case containsAny(msg, "수정", "바꿔") || containsAny(msgL, "change", "update"):
		kind = KindUpdate
	case containsAny(msg, "내역", "조회", "뭐") || containsAny(msgL, "what did i", "list"):
		kind = KindSelect
	case reWonAmount.MatchString(msg) || reBareDigit.MatchString(msgL):
		kind = KindInsert
	}

	target := ""
	if containsAny(msg, targetLastCues...) || strings.Contains(msgL, "last") {
		target = TargetLast
	}

	var amount *int64
	if m := reWonAmount.FindStringSubmatch(msg); m != nil {
		amount = parseAmountText(m[1] + m[2])
	}

	date := ExtractDate(msg, today)
	if kind == KindInsert && date == "" {
		date = today.Format(DateLayout)
	}

	return Intent{Kind: kind, Date: date, Amount: amount, Target: target}
}

// IsItemSubstring enforces the extractor contract that an item is quoted
// verbatim from the message. Whitespace differences are forgiven, paraphrase
// and translation are not.
func IsItemSubstring(message, item string) bool {
	msg := strings.TrimSpace(message)
	it := strings.TrimSpace(item)
	if msg == "" || it == "" {
		return false
	}
	if strings.Contains(msg, it) {
		return true
	}
	return strings.Contains(stripSpaces(msg), stripSpaces(it))
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
