package brief

// Guide is a short checklist for a compliance standard.
type Guide struct {
	Standard  string
	Title     string
	Checklist []string
}

var guides = map[string]Guide{
	"nist-csf": {
		Title: "NIST Cybersecurity Framework",
		Checklist: []string{
			"Identify critical assets and data owners.",
			"Protect with MFA, encryption at rest, and least privilege.",
			"Detect by enabling centralized logging and alert triage.",
			"Respond through a written incident response playbook.",
			"Recover using tested backups and post-incident reviews.",
		},
	},
	"hipaa": {
		Title: "HIPAA Security Rule",
		Checklist: []string{
			"Document risk analysis covering ePHI storage and access.",
			"Assign a security officer to enforce policies.",
			"Encrypt laptops and mobile devices that handle patient data.",
			"Train staff annually on privacy and breach reporting.",
			"Sign Business Associate Agreements with all vendors.",
		},
	},
	"pci-dss": {
		Title: "PCI-DSS Essentials",
		Checklist: []string{
			"Isolate cardholder data networks from guest Wi-Fi.",
			"Change default POS passwords and disable unused services.",
			"Quarterly vulnerability scans with an ASV provider.",
			"Maintain access logs for one year with 90 days immediately available.",
			"Run annual penetration tests or after major changes.",
		},
	},
}

// LookupGuide returns the checklist for standard, e.g. "nist-csf".
func LookupGuide(standard string) (Guide, error) {
	key := normalize(standard)
	g, ok := guides[key]
	if !ok {
		return Guide{}, unknown("standard", standard, keys(guides))
	}
	g.Standard = key
	g.Checklist = append([]string(nil), g.Checklist...)
	return g, nil
}
