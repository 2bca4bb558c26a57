package shim

import (
	"context"

	"cybersandbox/internal/domain"
	"cybersandbox/internal/render"
)

func actionTable() []Action {
	return []Action{
		{
			Trigger: TriggerChat, Panel: PanelChat, Region: RegionChat,
			Pending: "Thinking...", Kind: KindText, run: runChat,
		},
		{
			Trigger: TriggerIngest, Panel: PanelRAG, Region: RegionIngest,
			Pending: "Uploading...", Kind: KindJSON, run: runIngest,
		},
		{
			Trigger: TriggerQuery, Panel: PanelRAG, Region: RegionQuery,
			Pending: "Searching...", Kind: KindJSON, run: runQuery,
		},
		{
			Trigger: TriggerVectors, Panel: PanelVectors, Region: RegionVectors,
			Pending: "Loading vectors...", Kind: KindJSON, run: runVectors,
		},
		{
			Trigger: TriggerIOC, Panel: PanelUtils, Region: RegionIOC,
			Pending: "Extracting...", Kind: KindJSON, run: runIOC,
		},
		{
			Trigger: TriggerHeaders, Panel: PanelUtils, Region: RegionHeaders,
			Pending: "Parsing...", Kind: KindJSON, run: runHeaders,
		},
		{
			Trigger: TriggerLogs, Panel: PanelUtils, Region: RegionLogs,
			Pending: "Summarizing...", Kind: KindJSON, run: runLogs,
		},
		{
			Trigger: TriggerEmbed, Panel: PanelUtils, Region: RegionEmbed,
			Pending: "Embedding...", Kind: KindJSON, run: runEmbed,
		},
	}
}

func runChat(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	prompt := in[FieldSystemPrompt]
	if prompt == "" {
		prompt = s.defaults.SystemPrompt
	}
	resp, err := s.backend.Chat(ctx, domain.ChatRequest{Message: in[FieldChatMessage], SystemPrompt: prompt})
	if err != nil {
		return "", nil, err
	}
	return resp.Response, nil, nil
}

func runIngest(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	req, err := s.ingestRequest(in)
	if err != nil {
		return "", nil, err
	}
	raw, err := s.backend.Ingest(ctx, req)
	if err != nil {
		return "", nil, err
	}
	return render.JSON(raw), nil, nil
}

func runQuery(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	req, err := s.queryRequest(in)
	if err != nil {
		return "", nil, err
	}
	resp, err := s.backend.Query(ctx, req)
	if err != nil {
		return "", nil, err
	}
	return render.JSON(resp.Results), nil, nil
}

func runVectors(s *Shim, ctx context.Context, _ Inputs) (string, []domain.Point, error) {
	v, err := s.backend.Vectors(ctx)
	if err != nil {
		return "", nil, err
	}
	return render.JSON(v.Metadata), v.Points, nil
}

func runIOC(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	resp, err := s.backend.ExtractIOCs(ctx, domain.IocRequest{Text: in[FieldIOCText]})
	if err != nil {
		return "", nil, err
	}
	return render.JSON(resp.IOCs), nil, nil
}

func runHeaders(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	resp, err := s.backend.ParseHeaders(ctx, domain.HeaderRequest{Headers: in[FieldHeaders]})
	if err != nil {
		return "", nil, err
	}
	return render.JSON(resp.Headers), nil, nil
}

func runLogs(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	raw, err := s.backend.SummarizeLogs(ctx, domain.LogRequest{Text: in[FieldLogText]})
	if err != nil {
		return "", nil, err
	}
	return render.JSON(raw), nil, nil
}

func runEmbed(s *Shim, ctx context.Context, in Inputs) (string, []domain.Point, error) {
	raw, err := s.backend.Embed(ctx, embedRequest(in))
	if err != nil {
		return "", nil, err
	}
	return render.JSON(raw), nil, nil
}
