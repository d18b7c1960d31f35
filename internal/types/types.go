package types

import "ledger-chat-backend/internal/ledger"

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ConfirmRequest struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	Decision  string `json:"decision"`
}

type SelectRequest struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	EntryID   int64  `json:"entryId"`
}

// PendingResponse surfaces an outstanding confirm/selection so a thin client
// can render the sub-dialogue and answer through the decision endpoints.
type PendingResponse struct {
	Kind       string         `json:"kind"`
	Token      string         `json:"token"`
	Prompt     string         `json:"prompt,omitempty"`
	Candidates []ledger.Entry `json:"candidates,omitempty"`
}

type ChatResponse struct {
	SessionID string           `json:"sessionId"`
	Reply     string           `json:"reply"`
	Pending   *PendingResponse `json:"pending,omitempty"`
}

type EntriesResponse struct {
	Entries []ledger.Entry `json:"entries"`
}

type SumResponse struct {
	Date  string `json:"date,omitempty"`
	Total int64  `json:"total"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
