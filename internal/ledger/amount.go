package ledger

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reScaledAmount = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(천|만)?\s*원?$`)
	reNonDigit     = regexp.MustCompile(`[^0-9]`)
)

// ParseAmount normalizes an amount from whatever shape the oracle or the
// message produced: JSON number, numeric string, "4,500원", "4.5천원", "1만원".
// Returns nil for anything that does not yield a non-negative integer.
func ParseAmount(v any) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		return nonNegative(int64(t))
	case int64:
		return nonNegative(t)
	case float64:
		if t != math.Trunc(t) {
			return nil
		}
		return nonNegative(int64(t))
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil
		}
		return nonNegative(n)
	case string:
		return parseAmountText(t)
	default:
		return nil
	}
}

func parseAmountText(s string) *int64 {
	text := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), ",", "")
	if text == "" {
		return nil
	}
	if m := reScaledAmount.FindStringSubmatch(text); m != nil {
		number, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		scale := 1.0
		switch m[2] {
		case "천":
			scale = 1000
		case "만":
			scale = 10000
		}
		return nonNegative(int64(number * scale))
	}
	cleaned := reNonDigit.ReplaceAllString(text, "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return nonNegative(n)
}

func nonNegative(n int64) *int64 {
	if n < 0 {
		return nil
	}
	return &n
}
