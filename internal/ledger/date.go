package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the ISO form every date carries past extraction.
const DateLayout = "2006-01-02"

var (
	reISODate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reYearMD     = regexp.MustCompile(`^(\d{2,4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일$`)
	reMonthDay   = regexp.MustCompile(`^(\d{1,2})\s*월\s*(\d{1,2})\s*일$`)
	reDayOfMonth = regexp.MustCompile(`^(\d{1,2})\s*일$`)
	reDaysAgoKo  = regexp.MustCompile(`(\d+)\s*일\s*전`)
	reDaysAgoEn  = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
)

// NormalizeDate turns a date expression into ISO YYYY-MM-DD, resolved against
// today. It returns "" when the text expresses no recognizable date; callers
// must treat "" as "unspecified", not as "today".
func NormalizeDate(text string, today time.Time) string {
	value := strings.ToLower(strings.TrimSpace(text))
	if value == "" {
		return ""
	}

	if reISODate.MatchString(value) {
		if _, err := time.Parse(DateLayout, value); err != nil {
			return ""
		}
		return value
	}

	if m := reYearMD.FindStringSubmatch(value); m != nil {
		year := atoi(m[1])
		if year < 100 {
			year += 2000
		}
		return makeDate(year, atoi(m[2]), atoi(m[3]))
	}

	if m := reMonthDay.FindStringSubmatch(value); m != nil {
		return makeDate(today.Year(), atoi(m[1]), atoi(m[2]))
	}

	switch value {
	case "today", "오늘":
		return today.Format(DateLayout)
	case "yesterday", "어제":
		return today.AddDate(0, 0, -1).Format(DateLayout)
	case "day before yesterday", "2 days ago", "two days ago", "그제", "엊그제":
		return today.AddDate(0, 0, -2).Format(DateLayout)
	}

	if m := reDaysAgoKo.FindStringSubmatch(value); m != nil {
		return today.AddDate(0, 0, -atoi(m[1])).Format(DateLayout)
	}
	if m := reDaysAgoEn.FindStringSubmatch(value); m != nil {
		return today.AddDate(0, 0, -atoi(m[1])).Format(DateLayout)
	}

	if m := reDayOfMonth.FindStringSubmatch(value); m != nil {
		return makeDate(today.Year(), int(today.Month()), atoi(m[1]))
	}

	return ""
}

var dateScanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
	regexp.MustCompile(`\d{2,4}\s*년\s*\d{1,2}\s*월\s*\d{1,2}\s*일`),
	regexp.MustCompile(`\d{1,2}\s*월\s*\d{1,2}\s*일`),
	reDaysAgoKo,
	reDaysAgoEn,
}

var reBareDay = regexp.MustCompile(`\d{1,2}\s*일`)

// ExtractDate scans a free-text message for the first date expression that
// normalizes cleanly. Returns "" when the message mentions no date.
func ExtractDate(message string, today time.Time) string {
	msg := strings.ToLower(message)

	for _, pat := range dateScanPatterns {
		if m := pat.FindString(msg); m != "" {
			if normalized := NormalizeDate(m, today); normalized != "" {
				return normalized
			}
		}
	}

	// Bare "N일" counts only when not followed by 전 (that form is relative).
	for _, loc := range reBareDay.FindAllStringIndex(msg, -1) {
		if followedByJeon(msg, loc[1]) {
			continue
		}
		if normalized := NormalizeDate(msg[loc[0]:loc[1]], today); normalized != "" {
			return normalized
		}
	}

	if strings.Contains(msg, "오늘") || strings.Contains(msg, "today") {
		return today.Format(DateLayout)
	}
	if strings.Contains(msg, "어제") || strings.Contains(msg, "yesterday") {
		return today.AddDate(0, 0, -1).Format(DateLayout)
	}
	if strings.Contains(msg, "그제") || strings.Contains(msg, "엊그제") {
		return today.AddDate(0, 0, -2).Format(DateLayout)
	}
	return ""
}

// HasDateHint reports whether the message contains anything date-shaped, even
// if it failed to normalize. Used to decide whether a per-field date retry is
// worth an oracle call.
func HasDateHint(message string) bool {
	msg := strings.ToLower(message)
	for _, pat := range dateScanPatterns {
		if pat.MatchString(msg) {
			return true
		}
	}
	if reBareDay.MatchString(msg) {
		return true
	}
	for _, kw := range []string{"오늘", "어제", "그제", "엊그제", "today", "yesterday"} {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func followedByJeon(s string, idx int) bool {
	for _, r := range s[idx:] {
		if unicode.IsSpace(r) {
			continue
		}
		return r == '전'
	}
	return false
}

func makeDate(year, month, day int) string {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return t.Format(DateLayout)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
