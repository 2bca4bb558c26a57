package brief

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cybersandbox/internal/logger"
)

type fixedPicker int

func (p fixedPicker) IntN(n int) int { return int(p) % n }

func TestAssess_Levels(t *testing.T) {
	tests := []struct {
		impact     string
		likelihood string
		score      int
		level      string
		base       int
	}{
		{"low", "unlikely", 1, LevelLow, 2},
		{"low", "possible", 2, LevelLow, 2},
		{"medium", "unlikely", 2, LevelLow, 2},
		{"low", "likely", 3, LevelModerate, 3},
		{"high", "unlikely", 3, LevelModerate, 3},
		{"medium", "possible", 4, LevelModerate, 3},
		{"medium", "likely", 6, LevelHigh, 3},
		{"high", "possible", 6, LevelHigh, 3},
		{"high", "likely", 9, LevelHigh, 3},
	}
	for _, tt := range tests {
		t.Run(tt.impact+"/"+tt.likelihood, func(t *testing.T) {
			r, err := Assess(AudienceIndividuals, tt.impact, tt.likelihood, "")
			require.NoError(t, err)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.level, r.Level)
			require.Len(t, r.Recommendations, tt.base+1)
			assert.Equal(t, audienceAdvice[AudienceIndividuals], r.Recommendations[tt.base])
		})
	}
}

func TestAssess_ContextFirstAndNormalized(t *testing.T) {
	r, err := Assess(" Rural_Operations ", "HIGH", "Likely", "  vendor breach ")
	require.NoError(t, err)
	assert.Equal(t, "Context: vendor breach", r.Recommendations[0])
	assert.Equal(t, audienceAdvice[AudienceRuralOperations], r.Recommendations[len(r.Recommendations)-1])
	assert.Len(t, r.Recommendations, 5)
}

func TestAssess_Unknown(t *testing.T) {
	tests := []struct {
		name                         string
		audience, impact, likelihood string
		want                         string
	}{
		{"audience", "enterprises", "low", "likely", `audience "enterprises", expected one of individuals, rural_operations, small_businesses`},
		{"impact", AudienceIndividuals, "severe", "likely", `impact "severe", expected one of high, low, medium`},
		{"likelihood", AudienceIndividuals, "low", "certain", `likelihood "certain", expected one of likely, possible, unlikely`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assess(tt.audience, tt.impact, tt.likelihood, "")
			require.ErrorIs(t, err, ErrUnknownOption)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLookupTip(t *testing.T) {
	tip, err := LookupTip("Small_Businesses", " Supply_Chain")
	require.NoError(t, err)
	assert.Equal(t, AudienceSmallBusinesses, tip.Audience)
	assert.Equal(t, TopicSupplyChain, tip.Topic)
	assert.Len(t, tip.Actions, 3)

	tip.Actions[0] = "changed"
	again, err := LookupTip(AudienceSmallBusinesses, TopicSupplyChain)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Actions[0])
}

func TestLookupTip_IndividualsHaveNoSupplyChain(t *testing.T) {
	_, err := LookupTip(AudienceIndividuals, TopicSupplyChain)
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Contains(t, err.Error(), "expected one of cloud, devices, identity, incident_response")
}

func TestLookupGuide(t *testing.T) {
	g, err := LookupGuide("PCI-DSS")
	require.NoError(t, err)
	assert.Equal(t, "pci-dss", g.Standard)
	assert.Equal(t, "PCI-DSS Essentials", g.Title)
	assert.Len(t, g.Checklist, 5)

	_, err = LookupGuide("soc2")
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Contains(t, err.Error(), "expected one of hipaa, nist-csf, pci-dss")
}

func TestRandomFact(t *testing.T) {
	assert.Equal(t, Facts[2], RandomFact(fixedPicker(2)))
	assert.Equal(t, Facts[1], RandomFact(fixedPicker(0), Facts[0]))
	assert.Equal(t, Facts[0], RandomFact(fixedPicker(0), Facts...), "all avoided falls back to the full list")
	assert.Contains(t, Facts, RandomFact(nil))
}

func TestBuild_Layout(t *testing.T) {
	resp, err := Build(context.Background(), Request{
		Prompt:     "Is our payroll portal safe?",
		Compliance: "hipaa",
		Impact:     "high",
		Likelihood: "likely",
	}, nil)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Audience: Small Businesses",
		"Prompt: Is our payroll portal safe?",
		"",
		"Focus area (identity): Protect payroll and invoicing systems from takeover attempts.",
		"Key actions:",
		"- Require MFA for accounting and banking portals.",
		"- Review vendor change requests by phone before approving.",
		"- Limit admin rights on finance workstations to dedicated users.",
		"",
		"Risk rating: High (score 9)",
		"Risk recommendations:",
		"- Context: Is our payroll portal safe?",
		"- Escalate to leadership and activate the incident response plan.",
		"- Contain affected systems and preserve forensic artifacts.",
		"- Initiate external notification workflows required by policy or regulation.",
		"- Validate vendor access, finance controls, and privileged account hygiene.",
		"",
		"Compliance (HIPAA Security Rule):",
		"- Document risk analysis covering ePHI storage and access.",
		"- Assign a security officer to enforce policies.",
		"- Encrypt laptops and mobile devices that handle patient data.",
		"- Train staff annually on privacy and breach reporting.",
		"- Sign Business Associate Agreements with all vendors.",
	}, "\n")
	assert.Equal(t, want, resp.Message)
	assert.Empty(t, resp.Fact)

	require.Len(t, resp.ToolCalls, 3)
	assert.Equal(t, "security_awareness", resp.ToolCalls[0].Name)
	assert.Equal(t, "risk_assessor", resp.ToolCalls[1].Name)
	assert.Equal(t, "likely", resp.ToolCalls[1].Arguments["likelihood"])
	assert.Equal(t, ToolCall{Name: "compliance_guides", Arguments: map[string]string{"standard": "hipaa"}}, resp.ToolCalls[2])
}

func TestBuild_DefaultsAndFact(t *testing.T) {
	resp, err := Build(context.Background(), Request{Prompt: "p", IncludeFact: true}, fixedPicker(4))
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Risk rating: Moderate (score 4)")
	assert.NotContains(t, resp.Message, "Compliance")
	assert.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, Facts[4], resp.Fact)
}

func TestBuild_UnknownTopic(t *testing.T) {
	_, err := Build(context.Background(), Request{Prompt: "p", Audience: AudienceIndividuals, Topic: TopicSupplyChain}, nil)
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestBuild_LogsThroughContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	_, err := Build(ctx, Request{Prompt: "p", Compliance: "nist-csf"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("building security brief").Len())
	done := logs.FilterMessage("brief assembled").All()
	require.Len(t, done, 1)
	assert.Equal(t, "brief", done[0].LoggerName)
}
