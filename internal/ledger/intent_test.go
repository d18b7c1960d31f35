package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	require.Equal(t, KindInsert, ParseKind("insert"))
	require.Equal(t, KindSum, ParseKind(" SUM "))
	require.Equal(t, KindUnknown, ParseKind("buy"))
	require.Equal(t, KindUnknown, ParseKind(""))
}

func TestHeuristicIntentKinds(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Kind
	}{
		{"sum ko", "이번 달 총합 알려줘", KindSum},
		{"sum en", "what is the total", KindSum},
		{"delete ko", "어제 커피 지워줘", KindDelete},
		{"update ko", "커피 금액 바꿔줘", KindUpdate},
		{"select ko", "어제 내역 보여줘", KindSelect},
		{"select what", "어제 뭐 샀지", KindSelect},
		{"insert by amount", "커피 4500원", KindInsert},
		{"unknown", "안녕하세요", KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HeuristicIntent(tc.in, today).Kind)
		})
	}
}

func TestHeuristicIntentSlots(t *testing.T) {
	t.Run("amount with unit", func(t *testing.T) {
		in := HeuristicIntent("점심 1.2만원", today)
		require.Equal(t, KindInsert, in.Kind)
		require.NotNil(t, in.Amount)
		require.Equal(t, int64(12000), *in.Amount)
	})

	t.Run("insert defaults date to today", func(t *testing.T) {
		in := HeuristicIntent("커피 4500원", today)
		require.Equal(t, "2024-03-10", in.Date)
	})

	t.Run("insert keeps mentioned date", func(t *testing.T) {
		in := HeuristicIntent("어제 커피 4500원", today)
		require.Equal(t, "2024-03-09", in.Date)
	})

	t.Run("non insert leaves date empty", func(t *testing.T) {
		in := HeuristicIntent("총합 알려줘", today)
		require.Equal(t, "", in.Date)
	})

	t.Run("target last", func(t *testing.T) {
		in := HeuristicIntent("방금 그거 지워줘", today)
		require.Equal(t, KindDelete, in.Kind)
		require.Equal(t, TargetLast, in.Target)
	})

	t.Run("never guesses item", func(t *testing.T) {
		in := HeuristicIntent("커피 4500원", today)
		require.Equal(t, "", in.Item)
	})
}

func TestIsItemSubstring(t *testing.T) {
	require.True(t, IsItemSubstring("어제 커피 4500원", "커피"))
	require.True(t, IsItemSubstring("스타 벅스 커피", "스타벅스"))
	require.False(t, IsItemSubstring("어제 커피 4500원", "아메리카노"))
	require.False(t, IsItemSubstring("어제 커피 4500원", ""))
	require.False(t, IsItemSubstring("", "커피"))
}
