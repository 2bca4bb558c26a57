// Package brief assembles offline security briefs from awareness tips, a risk rating and an
// optional compliance checklist.
package brief

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cybersandbox/internal/logger"
)

// Defaults applied to empty Request fields.
const (
	DefaultAudience   = AudienceSmallBusinesses
	DefaultTopic      = TopicIdentity
	DefaultImpact     = "medium"
	DefaultLikelihood = "possible"
)

// Request describes one brief.
type Request struct {
	Prompt      string
	Audience    string
	Topic       string
	Compliance  string
	Impact      string
	Likelihood  string
	IncludeFact bool
}

// ToolCall records which table produced part of a brief and with what arguments.
type ToolCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// Response is a finished brief.
type Response struct {
	Message   string     `json:"message"`
	Fact      string     `json:"fact,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls"`
}

// Build renders the brief for req. The logger is taken from ctx.
func Build(ctx context.Context, req Request, p Picker) (Response, error) {
	req = withDefaults(req)
	log := logger.FromContext(ctx).Named("brief")
	log.Info("building security brief",
		zap.String("audience", req.Audience),
		zap.String("topic", req.Topic),
		zap.String("compliance", req.Compliance),
		zap.String("impact", req.Impact),
		zap.String("likelihood", req.Likelihood),
	)

	tip, err := LookupTip(req.Audience, req.Topic)
	if err != nil {
		return Response{}, err
	}
	risk, err := Assess(tip.Audience, req.Impact, req.Likelihood, req.Prompt)
	if err != nil {
		return Response{}, err
	}

	lines := []string{
		"Audience: " + displayName(tip.Audience),
		"Prompt: " + req.Prompt,
		"",
		"Focus area (" + tip.Topic + "): " + tip.Summary,
		"Key actions:",
	}
	lines = appendBullets(lines, tip.Actions)
	lines = append(lines, "",
		"Risk rating: "+displayName(risk.Level)+" (score "+strconv.Itoa(risk.Score)+")",
		"Risk recommendations:",
	)
	lines = appendBullets(lines, risk.Recommendations)

	calls := []ToolCall{
		{Name: "security_awareness", Arguments: map[string]string{"audience": tip.Audience, "topic": req.Topic}},
		{Name: "risk_assessor", Arguments: map[string]string{
			"audience":    tip.Audience,
			"impact":      req.Impact,
			"likelihood":  req.Likelihood,
			"description": req.Prompt,
		}},
	}

	if req.Compliance != "" {
		g, err := LookupGuide(req.Compliance)
		if err != nil {
			return Response{}, err
		}
		lines = append(lines, "", "Compliance ("+g.Title+"):")
		lines = appendBullets(lines, g.Checklist)
		calls = append(calls, ToolCall{Name: "compliance_guides", Arguments: map[string]string{"standard": req.Compliance}})
	}

	resp := Response{Message: strings.Join(lines, "\n"), ToolCalls: calls}
	if req.IncludeFact {
		resp.Fact = RandomFact(p)
	}

	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	log.Debug("brief assembled", zap.Strings("tool_calls", names), zap.Bool("fact_included", resp.Fact != ""))
	return resp, nil
}

func withDefaults(req Request) Request {
	if strings.TrimSpace(req.Audience) == "" {
		req.Audience = DefaultAudience
	}
	if strings.TrimSpace(req.Topic) == "" {
		req.Topic = DefaultTopic
	}
	if strings.TrimSpace(req.Impact) == "" {
		req.Impact = DefaultImpact
	}
	if strings.TrimSpace(req.Likelihood) == "" {
		req.Likelihood = DefaultLikelihood
	}
	req.Compliance = strings.TrimSpace(req.Compliance)
	return req
}

func appendBullets(lines, items []string) []string {
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return lines
}

// displayName turns "small_businesses" into "Small Businesses".
func displayName(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
