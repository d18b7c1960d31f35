package ledger

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func testSpec() PromptSpec {
	var spec PromptSpec
	spec.System = "Extract a ledger intent. Today is {today}."
	spec.Fields = []PromptField{
		{Name: "intent", Type: "string"},
		{Name: "date", Type: "string"},
		{Name: "item", Type: "string"},
		{Name: "amount", Type: "integer"},
		{Name: "target", Type: "string"},
	}
	return spec
}

func TestExtractIntentValidJSON(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":"어제","item":"커피","amount":4500,"target":null}`,
	}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "어제 커피 4500원", today)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, KindInsert, got.Kind)
	require.Equal(t, "2024-03-09", got.Date)
	require.Equal(t, "커피", got.Item)
	require.NotNil(t, got.Amount)
	require.Equal(t, int64(4500), *got.Amount)
	require.Equal(t, "", got.Target)
}

func TestExtractIntentChattyOutput(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		"Sure, here is the intent:\n```json\n{\"intent\":\"sum\",\"date\":\"2024-03-09\",\"item\":null,\"amount\":null,\"target\":null}\n```",
	}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "어제 총합", today)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, KindSum, got.Kind)
	require.Equal(t, "2024-03-09", got.Date)
}

func TestExtractIntentMalformed(t *testing.T) {
	client := &fakeCompleter{replies: []string{"I could not parse that."}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "어제 커피 4500원", today)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestExtractIntentTransportError(t *testing.T) {
	client := &fakeCompleter{err: errors.New("connection refused")}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "어제 커피 4500원", today)
	require.Error(t, err)
	require.Nil(t, got)
}

func TestExtractIntentDropsInventedItem(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":null,"item":"아메리카노","amount":4500,"target":null}`,
	}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "어제 커피 4500원", today)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "", got.Item)
}

func TestExtractIntentDropsBadFieldsKeepsRest(t *testing.T) {
	client := &fakeCompleter{replies: []string{
		`{"intent":"insert","date":"not a date","item":"커피","amount":-5,"target":"first"}`,
	}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractIntent(context.Background(), "커피 4500원", today)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, KindInsert, got.Kind)
	require.Equal(t, "", got.Date)
	require.Equal(t, "커피", got.Item)
	require.Nil(t, got.Amount)
	require.Equal(t, "", got.Target)
}

func TestExtractDateField(t *testing.T) {
	client := &fakeCompleter{replies: []string{"2024-03-07"}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractDateField(context.Background(), "3일 전 커피", today)
	require.NoError(t, err)
	require.Equal(t, "2024-03-07", got)
}

func TestExtractDateFieldNull(t *testing.T) {
	client := &fakeCompleter{replies: []string{"null"}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractDateField(context.Background(), "커피 4500원", today)
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestExtractItemFieldRejectsParaphrase(t *testing.T) {
	client := &fakeCompleter{replies: []string{"아메리카노"}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractItemField(context.Background(), "어제 커피 4500원")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestExtractItemFieldVerbatim(t *testing.T) {
	client := &fakeCompleter{replies: []string{`"커피"`}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractItemField(context.Background(), "어제 커피 4500원")
	require.NoError(t, err)
	require.Equal(t, "커피", got)
}

func TestExtractAmountField(t *testing.T) {
	client := &fakeCompleter{replies: []string{"4500"}}
	e := NewExtractor(testSpec(), client, "test-model")

	got, err := e.ExtractAmountField(context.Background(), "커피 4500원")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(4500), *got)
}
