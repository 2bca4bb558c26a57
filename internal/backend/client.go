package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cybersandbox/internal/codec"
	"cybersandbox/internal/domain"
)

// Route paths on the assistant API.
const (
	PathChat       = "/chat"
	PathIngest     = "/rag/ingest"
	PathQuery      = "/rag/query"
	PathVectors    = "/vectors/umap"
	PathIOC        = "/utils/ioc_extract"
	PathHeaders    = "/utils/headers"
	PathLogSummary = "/utils/log_summary"
	PathEmbed      = "/embed"
)

// RequestIDHeader carries a per-request id so backend audit lines can be matched to client logs.
const RequestIDHeader = "X-Request-ID"

// Config configures the backend client.
type Config struct {
	BaseURL string
	// Timeout bounds each request at the transport level. Zero keeps the default.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Registerer prometheus.Registerer
}

// Client is a JSON/multipart HTTP client for the assistant API implementing domain.Backend.
// It never retries.
type Client struct {
	baseURL string
	client  *http.Client
	obs     *observer
}

var _ domain.Backend = (*Client)(nil)

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		t := cfg.Timeout
		if t == 0 {
			t = 60 * time.Second
		}
		hc = &http.Client{Timeout: t}
	}
	obs, err := newObserver(cfg.Logger, cfg.Registerer)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: base, client: hc, obs: obs}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	var out domain.ChatResponse
	err := c.postJSON(ctx, "chat", PathChat, req, &out)
	return out, err
}

func (c *Client) Ingest(ctx context.Context, req domain.IngestRequest) (json.RawMessage, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(req.Path))
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	mode := req.ChunkMode
	if mode == "" {
		mode = domain.ChunkFixed
	}
	path := PathIngest + "?" + url.Values{"chunk_mode": {string(mode)}}.Encode()

	var out json.RawMessage
	err = c.do(ctx, "ingest", http.MethodPost, path, &body, mw.FormDataContentType(), &out)
	return out, err
}

func (c *Client) Query(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error) {
	var out domain.QueryResponse
	err := c.postJSON(ctx, "query", PathQuery, req, &out)
	return out, err
}

func (c *Client) Vectors(ctx context.Context) (domain.VectorPayload, error) {
	var out domain.VectorPayload
	err := c.do(ctx, "vectors", http.MethodGet, PathVectors, nil, "", &out)
	return out, err
}

func (c *Client) ExtractIOCs(ctx context.Context, req domain.IocRequest) (domain.IocResponse, error) {
	var out domain.IocResponse
	err := c.postJSON(ctx, "ioc_extract", PathIOC, req, &out)
	return out, err
}

func (c *Client) ParseHeaders(ctx context.Context, req domain.HeaderRequest) (domain.HeaderResponse, error) {
	var out domain.HeaderResponse
	err := c.postJSON(ctx, "headers", PathHeaders, req, &out)
	return out, err
}

func (c *Client) SummarizeLogs(ctx context.Context, req domain.LogRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.postJSON(ctx, "log_summary", PathLogSummary, req, &out)
	return out, err
}

func (c *Client) Embed(ctx context.Context, req domain.EmbedRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.postJSON(ctx, "embed", PathEmbed, req, &out)
	return out, err
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any, out any) error {
	data, err := codec.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(data), "application/json", out)
}

// do sends one request and decodes a 2xx body into out. A *json.RawMessage out receives the
// body verbatim after a validity check.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) (err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() { c.obs.observe(op, requestID, start, err) }()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(op, resp.StatusCode, resp.Status, payload)
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		if !codec.Valid(payload) {
			return newFormatError(op, resp.StatusCode, nil)
		}
		*raw = json.RawMessage(bytes.TrimSpace(payload))
		return nil
	}
	if err := codec.Unmarshal(payload, out); err != nil {
		return newFormatError(op, resp.StatusCode, err)
	}
	return nil
}
