package brief

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownOption is wrapped by every lookup that names an audience, topic, scale value or
// standard that is not in the tables.
var ErrUnknownOption = errors.New("unknown option")

// Audiences.
const (
	AudienceIndividuals     = "individuals"
	AudienceSmallBusinesses = "small_businesses"
	AudienceRuralOperations = "rural_operations"
)

// Topics.
const (
	TopicIdentity         = "identity"
	TopicDevices          = "devices"
	TopicCloud            = "cloud"
	TopicSupplyChain      = "supply_chain"
	TopicIncidentResponse = "incident_response"
)

// Tip is awareness guidance for one audience and topic.
type Tip struct {
	Audience string
	Topic    string
	Summary  string
	Actions  []string
}

type tipText struct {
	summary string
	actions []string
}

var tips = map[string]map[string]tipText{
	AudienceIndividuals: {
		TopicIdentity: {
			summary: "Monitor credit and enable alerts to catch fraud early.",
			actions: []string{
				"Freeze credit with the major bureaus to block unauthorized loans.",
				"Set up SMS alerts on bank accounts for transactions over $50.",
				"Use password managers to generate unique credentials for every site.",
			},
		},
		TopicDevices: {
			summary: "Keep phones and laptops patched and backed up.",
			actions: []string{
				"Schedule automatic updates on mobile devices weekly.",
				"Install reputable antivirus and allow real-time scanning.",
				"Enable encrypted backups to a trusted cloud provider.",
			},
		},
		TopicCloud: {
			summary: "Protect cloud accounts with hardened authentication and alerting.",
			actions: []string{
				"Enable phishing-resistant MFA wherever passkeys are supported.",
				"Turn on impossible-travel and suspicious-login alerts.",
				"Review third-party app access to email and storage quarterly.",
			},
		},
		TopicIncidentResponse: {
			summary: "Prepare simple but practiced response steps before an emergency.",
			actions: []string{
				"Keep an offline contact sheet for banks, providers, and family stakeholders.",
				"Document account recovery steps for critical services in a secure vault.",
				"Practice one yearly ransomware and identity theft tabletop scenario.",
			},
		},
	},
	AudienceSmallBusinesses: {
		TopicIdentity: {
			summary: "Protect payroll and invoicing systems from takeover attempts.",
			actions: []string{
				"Require MFA for accounting and banking portals.",
				"Review vendor change requests by phone before approving.",
				"Limit admin rights on finance workstations to dedicated users.",
			},
		},
		TopicDevices: {
			summary: "Harden point-of-sale and office endpoints in busy storefronts.",
			actions: []string{
				"Deploy endpoint detection with centralized alerting.",
				"Isolate point-of-sale networks from guest Wi-Fi segments.",
				"Maintain an asset inventory with warranty and patch status.",
			},
		},
		TopicCloud: {
			summary: "Establish a zero-trust baseline for SaaS and cloud administration.",
			actions: []string{
				"Enforce conditional access for privileged roles and remote admins.",
				"Route cloud audit logs to a SIEM with 12+ months retention.",
				"Require just-in-time elevation for finance and HR cloud tenants.",
			},
		},
		TopicSupplyChain: {
			summary: "Reduce third-party cyber exposure through measurable vendor controls.",
			actions: []string{
				"Inventory critical suppliers and assign a cyber risk tier to each.",
				"Add contract clauses for breach notification and vulnerability disclosure.",
				"Verify software updates using signed packages and approved repositories.",
			},
		},
		TopicIncidentResponse: {
			summary: "Operationalize incident response with executive and legal readiness.",
			actions: []string{
				"Maintain a 24/7 escalation tree that includes legal and communications leads.",
				"Define evidence handling steps to preserve forensic timelines.",
				"Run quarterly tabletops that include ransomware, BEC, and cloud takeover playbooks.",
			},
		},
	},
	AudienceRuralOperations: {
		TopicIdentity: {
			summary: "Defend co-op shared accounts from password reuse attacks.",
			actions: []string{
				"Rotate shared passwords every 90 days and store in a vault.",
				"Require call-back verification for wire transfer approvals.",
				"Provide phishing simulations before harvest and tax seasons.",
			},
		},
		TopicDevices: {
			summary: "Fortify operational equipment that depends on remote access.",
			actions: []string{
				"Place firewalls in front of irrigation and SCADA controllers.",
				"Use LTE failover with VPN tunnels for remote sites.",
				"Schedule quarterly tabletop exercises for outage response.",
			},
		},
		TopicCloud: {
			summary: "Secure distributed cloud operations for remote facilities and co-ops.",
			actions: []string{
				"Segment farm management SaaS identities from operational administrator accounts.",
				"Mirror cloud logs to low-bandwidth friendly storage for continuity.",
				"Validate backup restore procedures before peak planting and harvest windows.",
			},
		},
		TopicSupplyChain: {
			summary: "Prepare for supplier disruption and compromised service providers.",
			actions: []string{
				"Map dependencies for seed, fuel, and logistics platforms with cyber contacts.",
				"Require MFA and least privilege for contractor remote maintenance tools.",
				"Develop contingency playbooks for telecom and satellite service outages.",
			},
		},
		TopicIncidentResponse: {
			summary: "Coordinate cyber incident response across distributed rural teams.",
			actions: []string{
				"Pre-stage incident communication templates for low-connectivity sites.",
				"Assign a response captain for each region and test handoffs twice a year.",
				"Capture lessons learned after every outage and update SOPs within 10 business days.",
			},
		},
	},
}

// LookupTip returns the guidance for audience and topic. Both are matched case-insensitively
// after trimming.
func LookupTip(audience, topic string) (Tip, error) {
	a := normalize(audience)
	topics, ok := tips[a]
	if !ok {
		return Tip{}, unknown("audience", audience, keys(tips))
	}
	t := normalize(topic)
	text, ok := topics[t]
	if !ok {
		return Tip{}, fmt.Errorf("%w: topic %q for audience %q, expected one of %s",
			ErrUnknownOption, topic, a, strings.Join(keys(topics), ", "))
	}
	return Tip{
		Audience: a,
		Topic:    t,
		Summary:  text.summary,
		Actions:  append([]string(nil), text.actions...),
	}, nil
}

// Audiences lists the known audiences in sorted order.
func Audiences() []string { return keys(tips) }

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func unknown(label, value string, options []string) error {
	return fmt.Errorf("%w: %s %q, expected one of %s", ErrUnknownOption, label, value, strings.Join(options, ", "))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
