package domain

import "encoding/json"

// RetrievalMode selects how the backend ranks RAG results.
type RetrievalMode string

const (
	RetrievalVector RetrievalMode = "vector"
	RetrievalHybrid RetrievalMode = "hybrid"
	RetrievalIntel  RetrievalMode = "intel"
)

// ChunkMode selects how an uploaded document is split during ingestion.
type ChunkMode string

const (
	ChunkFixed     ChunkMode = "fixed"
	ChunkParagraph ChunkMode = "paragraph"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ChatResponse is the body returned by /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// IngestRequest describes a single multipart upload to /rag/ingest.
type IngestRequest struct {
	Path      string    `json:"-" form:"file"`
	ChunkMode ChunkMode `json:"-" form:"chunk_mode" validate:"omitempty,oneof=fixed paragraph"`
}

// QueryRequest is the body of POST /rag/query.
type QueryRequest struct {
	Query              string        `json:"query"`
	TopK               int           `json:"top_k" validate:"min=1,max=20"`
	RetrievalMode      RetrievalMode `json:"retrieval_mode,omitempty" validate:"omitempty,oneof=vector hybrid intel"`
	DocIDs             []string      `json:"doc_ids,omitempty"`
	RequiredThreatTags []string      `json:"required_threat_tags,omitempty"`
}

// QueryResponse keeps results as raw JSON so rendering preserves the server's key order.
type QueryResponse struct {
	Results json.RawMessage `json:"results"`
}

// Point is a projected vector in the normalized [-5, 5] domain.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VectorPayload is the body returned by GET /vectors/umap.
type VectorPayload struct {
	Points   []Point         `json:"points"`
	Metadata json.RawMessage `json:"metadata"`
}

// IocRequest is the body of POST /utils/ioc_extract.
type IocRequest struct {
	Text string `json:"text"`
}

// IocResponse wraps the extracted indicators.
type IocResponse struct {
	IOCs json.RawMessage `json:"iocs"`
}

// HeaderRequest is the body of POST /utils/headers.
type HeaderRequest struct {
	Headers string `json:"headers"`
}

// HeaderResponse wraps the parsed header entries.
type HeaderResponse struct {
	Headers json.RawMessage `json:"headers"`
}

// LogRequest is the body of POST /utils/log_summary.
type LogRequest struct {
	Text string `json:"text"`
}

// EmbedRequest is the body of POST /embed.
type EmbedRequest struct {
	Texts []string `json:"texts" validate:"min=1"`
}

// IngestSummary is the subset of an ingest result the bulk commands report on.
// The full body stays opaque everywhere else.
type IngestSummary struct {
	DocID  string `json:"doc_id"`
	Chunks int    `json:"chunks"`
}
