package brief

import "strings"

// Risk levels.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
)

var impactWeights = map[string]int{"low": 1, "medium": 2, "high": 3}

var likelihoodWeights = map[string]int{"unlikely": 1, "possible": 2, "likely": 3}

var baseRecommendations = map[string][]string{
	LevelLow: {
		"Document the finding, assign an owner, and monitor quarterly.",
		"Confirm baseline controls remain effective and evidence is retained.",
	},
	LevelModerate: {
		"Schedule remediation within the next sprint or 30 days.",
		"Track mitigation in a risk register with executive visibility.",
		"Add the scenario to quarterly tabletop drills.",
	},
	LevelHigh: {
		"Escalate to leadership and activate the incident response plan.",
		"Contain affected systems and preserve forensic artifacts.",
		"Initiate external notification workflows required by policy or regulation.",
	},
}

var audienceAdvice = map[string]string{
	AudienceIndividuals:     "Use password managers, passkeys, and tested backups for critical accounts.",
	AudienceSmallBusinesses: "Validate vendor access, finance controls, and privileged account hygiene.",
	AudienceRuralOperations: "Coordinate with co-op and field technology partners on failover and response testing.",
}

// RiskReport is a qualitative rating with mitigation steps.
type RiskReport struct {
	Level           string   `json:"level"`
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations"`
}

// Assess scores impact (low, medium, high) times likelihood (unlikely, possible, likely).
// Scores up to 2 are low, up to 4 moderate, anything above high. A non-empty description is
// added as the first recommendation and the audience's advice as the last.
func Assess(audience, impact, likelihood, description string) (RiskReport, error) {
	a := normalize(audience)
	advice, ok := audienceAdvice[a]
	if !ok {
		return RiskReport{}, unknown("audience", audience, keys(audienceAdvice))
	}
	iw, ok := impactWeights[normalize(impact)]
	if !ok {
		return RiskReport{}, unknown("impact", impact, keys(impactWeights))
	}
	lw, ok := likelihoodWeights[normalize(likelihood)]
	if !ok {
		return RiskReport{}, unknown("likelihood", likelihood, keys(likelihoodWeights))
	}

	score := iw * lw
	level := LevelHigh
	switch {
	case score <= 2:
		level = LevelLow
	case score <= 4:
		level = LevelModerate
	}

	recs := make([]string, 0, len(baseRecommendations[level])+2)
	if d := strings.TrimSpace(description); d != "" {
		recs = append(recs, "Context: "+d)
	}
	recs = append(recs, baseRecommendations[level]...)
	recs = append(recs, advice)
	return RiskReport{Level: level, Score: score, Recommendations: recs}, nil
}
