package domain

import (
	"context"
	"encoding/json"
)

// Backend is the set of HTTP operations the client shim issues against the assistant API.
// Opaque bodies are returned as raw JSON.
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Ingest(ctx context.Context, req IngestRequest) (json.RawMessage, error)
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
	Vectors(ctx context.Context) (VectorPayload, error)
	ExtractIOCs(ctx context.Context, req IocRequest) (IocResponse, error)
	ParseHeaders(ctx context.Context, req HeaderRequest) (HeaderResponse, error)
	SummarizeLogs(ctx context.Context, req LogRequest) (json.RawMessage, error)
	Embed(ctx context.Context, req EmbedRequest) (json.RawMessage, error)
}
