package models

// Document represents a single chunk stored in the vector database.
type Document struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ListDocumentsResponse is the structure for the response of GET /api/v1/documents.
type ListDocumentsResponse struct {
	Count     int        `json:"count"`
	Documents []Document `json:"documents"`
}

// SourceDocument represents a chunk of text and its origin.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestDocumentRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

type IngestDocumentResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Chunks  int    `json:"chunks"`
}
