// Package shim maps UI triggers onto backend requests and turns the replies into output region
// text. Every front-end (terminal UI, headless commands) drives the same action table.
package shim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cybersandbox/internal/domain"
	"cybersandbox/internal/render"
)

// Panels.
const (
	PanelChat    = "panel-chat"
	PanelRAG     = "panel-rag"
	PanelVectors = "panel-vectors"
	PanelUtils   = "panel-utils"
)

// Triggers.
const (
	TriggerChat    = "chat-send"
	TriggerIngest  = "rag-ingest"
	TriggerQuery   = "rag-query"
	TriggerVectors = "vectors-load"
	TriggerIOC     = "ioc-extract"
	TriggerHeaders = "headers-parse"
	TriggerLogs    = "log-summary"
	TriggerEmbed   = "embed-texts"
)

// Input fields.
const (
	FieldChatMessage   = "chat-message"
	FieldSystemPrompt  = "chat-system-prompt"
	FieldIngestFile    = "rag-file"
	FieldChunkMode     = "rag-chunk-mode"
	FieldQuery         = "rag-query-text"
	FieldTopK          = "rag-top-k"
	FieldRetrievalMode = "rag-retrieval-mode"
	FieldDocIDs        = "rag-doc-ids"
	FieldThreatTags    = "rag-threat-tags"
	FieldIOCText       = "ioc-text"
	FieldHeaders       = "headers-text"
	FieldLogText       = "log-text"
	FieldEmbedTexts    = "embed-texts"
)

// Output regions.
const (
	RegionChat    = "chat-output"
	RegionIngest  = "rag-ingest-result"
	RegionQuery   = "rag-results"
	RegionVectors = "vector-metadata"
	RegionIOC     = "ioc-output"
	RegionHeaders = "headers-output"
	RegionLogs    = "log-output"
	RegionEmbed   = "embed-output"
)

// Kind tells a front-end how region text may be decorated.
type Kind int

const (
	KindText Kind = iota
	KindJSON
)

// Inputs holds the current values of the labelled controls, keyed by field id.
type Inputs map[string]string

// Defaults seeds fields the user left empty.
type Defaults struct {
	TopK          int
	RetrievalMode domain.RetrievalMode
	ChunkMode     domain.ChunkMode
	SystemPrompt  string
}

// Outcome is the final render of one request.
type Outcome struct {
	Trigger string
	Region  string
	Text    string
	Points  []domain.Point
	Err     error
	token   uint64
}

// Start is what a trigger produces synchronously: the text to show right away and, when a
// request is due, the function that performs it.
type Start struct {
	Region string
	Text   string
	Err    error
	Run    func(ctx context.Context) Outcome
}

// Action is one row of the trigger table.
type Action struct {
	Trigger string
	Panel   string
	Region  string
	Pending string
	Kind    Kind

	run func(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error)
}

// Options configures a Shim.
type Options struct {
	Defaults Defaults
	// DiscardStale drops replies superseded by a later request on the same region.
	// Off by default: the last reply to arrive wins.
	DiscardStale bool
}

// Shim executes actions against a backend.
type Shim struct {
	backend  domain.Backend
	defaults Defaults
	table    []Action
	byID     map[string]int

	discardStale bool
	mu           sync.Mutex
	tokens       map[string]uint64
}

// New builds the action table once.
func New(be domain.Backend, opts Options) *Shim {
	d := opts.Defaults
	if d.TopK == 0 {
		d.TopK = 5
	}
	if d.RetrievalMode == "" {
		d.RetrievalMode = domain.RetrievalVector
	}
	if d.ChunkMode == "" {
		d.ChunkMode = domain.ChunkFixed
	}
	s := &Shim{
		backend:      be,
		defaults:     d,
		discardStale: opts.DiscardStale,
		tokens:       map[string]uint64{},
	}
	s.table = actionTable()
	s.byID = make(map[string]int, len(s.table))
	for i, a := range s.table {
		s.byID[a.Trigger] = i
	}
	return s
}

// Actions returns the trigger table in declaration order.
func (s *Shim) Actions() []Action { return append([]Action(nil), s.table...) }

// Action looks up a trigger.
func (s *Shim) Action(trigger string) (Action, bool) {
	i, ok := s.byID[trigger]
	if !ok {
		return Action{}, false
	}
	return s.table[i], true
}

// ActionForRegion finds the action that writes region.
func (s *Shim) ActionForRegion(region string) (Action, bool) {
	for _, a := range s.table {
		if a.Region == region {
			return a, true
		}
	}
	return Action{}, false
}

// Defaults returns the effective field defaults.
func (s *Shim) Defaults() Defaults { return s.defaults }

// Begin captures inputs for trigger. A failed pre-check yields a Start with no Run and the
// static message as Text; otherwise Text is the pending placeholder.
func (s *Shim) Begin(trigger string, in Inputs) Start {
	a, ok := s.Action(trigger)
	if !ok {
		err := fmt.Errorf("unknown trigger %q", trigger)
		return Start{Text: render.Error(err), Err: err}
	}
	if err := s.precheck(a, in); err != nil {
		return Start{Region: a.Region, Text: err.Error(), Err: err}
	}
	token := s.nextToken(a.Region)
	snapshot := make(Inputs, len(in))
	for k, v := range in {
		snapshot[k] = v
	}
	return Start{
		Region: a.Region,
		Text:   a.Pending,
		Run: func(ctx context.Context) Outcome {
			text, points, err := a.run(s, ctx, snapshot)
			if err != nil {
				text = render.Error(err)
			}
			return Outcome{Trigger: a.Trigger, Region: a.Region, Text: text, Points: points, Err: err, token: token}
		},
	}
}

// Invoke runs a trigger to completion. Pre-check failures come back as an Outcome carrying
// the static message.
func (s *Shim) Invoke(ctx context.Context, trigger string, in Inputs) Outcome {
	st := s.Begin(trigger, in)
	if st.Run == nil {
		return Outcome{Trigger: trigger, Region: st.Region, Text: st.Text, Err: st.Err}
	}
	return st.Run(ctx)
}

// Accept reports whether o may be rendered. Without DiscardStale every reply is accepted.
func (s *Shim) Accept(o Outcome) bool {
	if !s.discardStale {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[o.Region] == o.token
}

func (s *Shim) nextToken(region string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[region]++
	return s.tokens[region]
}

func (s *Shim) precheck(a Action, in Inputs) error {
	switch a.Trigger {
	case TriggerIngest:
		if strings.TrimSpace(in[FieldIngestFile]) == "" {
			return &ValidationError{Message: MsgSelectFile}
		}
		_, err := s.ingestRequest(in)
		return err
	case TriggerQuery:
		_, err := s.queryRequest(in)
		return err
	case TriggerEmbed:
		return check(embedRequest(in))
	}
	return nil
}

func (s *Shim) ingestRequest(in Inputs) (domain.IngestRequest, error) {
	req := domain.IngestRequest{
		Path:      strings.TrimSpace(in[FieldIngestFile]),
		ChunkMode: domain.ChunkMode(strings.TrimSpace(in[FieldChunkMode])),
	}
	if req.ChunkMode == "" {
		req.ChunkMode = s.defaults.ChunkMode
	}
	return req, check(req)
}

func (s *Shim) queryRequest(in Inputs) (domain.QueryRequest, error) {
	req := domain.QueryRequest{
		Query:              in[FieldQuery],
		TopK:               s.defaults.TopK,
		RetrievalMode:      domain.RetrievalMode(strings.TrimSpace(in[FieldRetrievalMode])),
		DocIDs:             splitList(in[FieldDocIDs]),
		RequiredThreatTags: splitList(in[FieldThreatTags]),
	}
	if raw := strings.TrimSpace(in[FieldTopK]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, &ValidationError{Message: "top_k must be a number."}
		}
		req.TopK = n
	}
	if req.RetrievalMode == "" {
		req.RetrievalMode = s.defaults.RetrievalMode
	}
	return req, check(req)
}

func embedRequest(in Inputs) domain.EmbedRequest {
	var texts []string
	for _, line := range strings.Split(in[FieldEmbedTexts], "\n") {
		if strings.TrimSpace(line) != "" {
			texts = append(texts, line)
		}
	}
	return domain.EmbedRequest{Texts: texts}
}

// splitList parses a comma separated control value; blanks are dropped.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
