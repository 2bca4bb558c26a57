package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cybersandbox/internal/codec"
)

// ManifestName is written next to the seeded documents.
const ManifestName = "demo_manifest.json"

// DemoDoc is one sanitized sample document.
type DemoDoc struct {
	Name    string
	Content string
}

// DemoDocs are the sample documents written by Seed.
var DemoDocs = []DemoDoc{
	{
		Name:    "CLIENT_001_policy.md",
		Content: "# CLIENT_001 Security Policy\n\nAll remote access must use MFA. Weekly patch windows occur on Tuesdays. Incident hotline: CLIENT_NAME-SECURE.",
	},
	{
		Name:    "CLIENT_002_incident.txt",
		Content: "2024-05-01 13:22Z CLIENT_002 reported phishing attempts from example.net. Blocked IP: 203.0.113.4.",
	},
	{
		Name:    "CLIENT_003_audit.md",
		Content: "Findings:\n- Missing asset inventory updates\n- Legacy firewall rules allow broad CIDR 10.0.0.0/8",
	},
}

// Seed writes DemoDocs and a sorted manifest into dir and returns the document paths.
func Seed(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	names := make([]string, 0, len(DemoDocs))
	paths := make([]string, 0, len(DemoDocs))
	for _, d := range DemoDocs {
		p := filepath.Join(dir, d.Name)
		if err := os.WriteFile(p, []byte(d.Content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", d.Name, err)
		}
		names = append(names, d.Name)
		paths = append(paths, p)
	}
	sort.Strings(names)

	raw, err := codec.Marshal(names)
	if err != nil {
		return nil, err
	}
	manifest, err := codec.Pretty(raw)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return paths, nil
}
