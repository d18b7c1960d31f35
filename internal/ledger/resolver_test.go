package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return today }

func newTestResolver(client ChatCompleter) *Resolver {
	r := NewResolver(NewExtractor(testSpec(), client, "test-model"))
	r.Now = fixedNow
	return r
}

func TestResolveHeuristicOnly(t *testing.T) {
	r := NewResolver(nil)
	r.Now = fixedNow

	got := r.Resolve(context.Background(), "어제 커피 4500원")
	require.Equal(t, KindInsert, got.Kind)
	require.Equal(t, "2024-03-09", got.Date)
	require.Equal(t, "", got.Item)
	require.NotNil(t, got.Amount)
	require.Equal(t, int64(4500), *got.Amount)
}

func TestResolvePrefersOracleFields(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":"2024-03-09","item":"커피","amount":4500,"target":null}`,
	}}
	r := newTestResolver(client)

	got := r.Resolve(context.Background(), "어제 커피 4500원")
	require.Equal(t, KindInsert, got.Kind)
	require.Equal(t, "커피", got.Item)
	require.Equal(t, "2024-03-09", got.Date)
}

func TestResolveDegradesOnTransportError(t *testing.T) {
	client := &fakeCompleter{err: errors.New("timeout")}
	r := newTestResolver(client)

	got := r.Resolve(context.Background(), "커피 4500원")
	require.Equal(t, KindInsert, got.Kind)
	require.NotNil(t, got.Amount)
	require.Equal(t, int64(4500), *got.Amount)
	require.Equal(t, "2024-03-10", got.Date)
}

func TestResolveRetriesMissingItem(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":null,"item":null,"amount":4500,"target":null}`,
		"커피",
	}}
	r := newTestResolver(client)

	got := r.Resolve(context.Background(), "커피 4500원")
	require.Equal(t, KindInsert, got.Kind)
	require.Equal(t, "커피", got.Item)
	require.Equal(t, 2, client.calls)
}

func TestResolveSkipsItemRetryForLastTarget(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"delete","date":null,"item":null,"amount":null,"target":"last"}`,
	}}
	r := newTestResolver(client)

	got := r.Resolve(context.Background(), "방금 그거 지워줘")
	require.Equal(t, KindDelete, got.Kind)
	require.Equal(t, TargetLast, got.Target)
	require.Equal(t, 1, client.calls)
}

func TestResolveInsertDefaultsDateToToday(t *testing.T) {
	r := NewResolver(nil)
	r.Now = fixedNow

	got := r.Resolve(context.Background(), "커피 4500원")
	require.Equal(t, "2024-03-10", got.Date)
}

func TestBulkInsertCandidates(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":"2024-03-09","item":"커피","amount":4500,"target":null}`,
		`{"intent":"insert","date":null,"item":"빵","amount":2000,"target":null}`,
	}}
	r := newTestResolver(client)

	got := r.BulkInsertCandidates(context.Background(), "어제 커피 4500원, 빵 2000원", "")
	require.Len(t, got, 2)
	require.Equal(t, InsertCandidate{Date: "2024-03-09", Item: "커피", Amount: 4500}, got[0])
	// Segments without their own date inherit the message-level one.
	require.Equal(t, InsertCandidate{Date: "2024-03-09", Item: "빵", Amount: 2000}, got[1])
}

func TestBulkInsertCandidatesNeedsCommaAndWon(t *testing.T) {
	r := NewResolver(nil)
	r.Now = fixedNow

	require.Nil(t, r.BulkInsertCandidates(context.Background(), "커피 4500원", ""))
	require.Nil(t, r.BulkInsertCandidates(context.Background(), "커피, 빵", ""))
}
