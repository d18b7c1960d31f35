package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"iso", "2024-03-08", "2024-03-08"},
		{"iso invalid day", "2024-02-31", ""},
		{"non padded iso rejected", "2024-3-10", ""},
		{"today ko", "오늘", "2024-03-10"},
		{"yesterday ko", "어제", "2024-03-09"},
		{"day before yesterday ko", "그제", "2024-03-08"},
		{"day before yesterday alt", "엊그제", "2024-03-08"},
		{"yesterday en", "yesterday", "2024-03-09"},
		{"days ago ko", "3일 전", "2024-03-07"},
		{"days ago ko no space", "3일전", "2024-03-07"},
		{"days ago en", "2 days ago", "2024-03-08"},
		{"month day", "3월 5일", "2024-03-05"},
		{"month day no space", "3월5일", "2024-03-05"},
		{"year month day", "2023년 12월 25일", "2023-12-25"},
		{"two digit year", "23년 12월 25일", "2023-12-25"},
		{"day of month", "5일", "2024-03-05"},
		{"invalid month", "13월 1일", ""},
		{"empty", "", ""},
		{"garbage", "커피", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeDate(tc.in, today))
		})
	}
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"relative word in sentence", "어제 커피 4500원", "2024-03-09"},
		{"iso in sentence", "2024-02-10 내역 보여줘", "2024-02-10"},
		{"month day in sentence", "3월 5일 점심 12000원", "2024-03-05"},
		{"days ago in sentence", "3일 전 택시비 알려줘", "2024-03-07"},
		{"bare day", "5일 내역 조회", "2024-03-05"},
		{"day followed by jeon is relative", "20일 전 내역 조회", "2024-02-19"},
		{"no date", "커피 4500원", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractDate(tc.in, today))
		})
	}
}

func TestHasDateHint(t *testing.T) {
	require.True(t, HasDateHint("어제 커피 4500원"))
	require.True(t, HasDateHint("3일 전에 쓴 거"))
	require.True(t, HasDateHint("2024-03-08 내역"))
	require.False(t, HasDateHint("커피 4500원"))
	require.False(t, HasDateHint("총합 알려줘"))
}
