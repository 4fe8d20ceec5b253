package models

// HistoryMessage is one earlier turn a caller may replay to the assistant.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AskRequest is the body of POST /ask. The chat widget only ever sends the
// question; history is accepted for callers that keep their own transcript.
type AskRequest struct {
	Question string           `json:"question"`
	History  []HistoryMessage `json:"history,omitempty"`
}

// AskResponse is the body returned by POST /ask on success.
type AskResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned by every endpoint on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
