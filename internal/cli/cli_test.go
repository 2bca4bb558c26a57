package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cybersandbox/internal/config"
	"cybersandbox/internal/logger"
	"cybersandbox/internal/mockbackend"
)

type harness struct {
	mock    *mockbackend.Server
	url     string
	dataDir string
	config  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock := mockbackend.New(nil)
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	return &harness{
		mock:    mock,
		url:     srv.URL,
		dataDir: filepath.Join(dir, "data"),
		config:  filepath.Join(dir, "absent.yaml"),
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := h.runApp(t, stdin, args...)
	return out, err
}

// runApp also returns the app so tests can inspect what was built and released.
func (h *harness) runApp(t *testing.T, stdin string, args ...string) (string, *app, error) {
	t.Helper()
	a := &app{}
	root := newRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	err := execute(context.Background(), a, root,
		append([]string{"--config", h.config, "--base-url", h.url, "--data-dir", h.dataDir}, args...))
	return out.String(), a, err
}

func TestChatCommand(t *testing.T) {
	h := newHarness(t)
	h.mock.Set("/chat", http.StatusOK, `{"response":"Patch on Tuesdays."}`)

	out, err := h.run(t, "", "chat", "when", "do", "we", "patch?")
	require.NoError(t, err)
	assert.Equal(t, "Patch on Tuesdays.\n", out)

	reqs := h.mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0].Body), `"message":"when do we patch?"`)
	assert.Contains(t, string(reqs[0].Body), `"system_prompt":"You are Iron Dillo`)
}

func TestChatCommand_ErrorStatusLine(t *testing.T) {
	h := newHarness(t)
	h.mock.Set("/chat", http.StatusServiceUnavailable, "")

	out, err := h.run(t, "", "chat", "hello")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Equal(t, "Error: 503 Service Unavailable\n", out)
}

func TestLogLevelFlagOverridesBadEnv(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "loud")
	h := newHarness(t)
	h.mock.Set("/chat", http.StatusOK, `{"response":"ok"}`)

	out, a, err := h.runApp(t, "", "--log-level", "warn", "chat", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
	assert.Equal(t, "warn", a.cfg.Logging.Level)
	assert.Len(t, h.mock.Requests(), 1)
}

func TestBadEnvLogLevelWithoutFlagFails(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "loud")
	h := newHarness(t)

	_, err := h.run(t, "", "chat", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported log level "loud"`)
	assert.Empty(t, h.mock.Requests())
}

func TestFailedCommandStillReleasesResources(t *testing.T) {
	h := newHarness(t)
	h.mock.Set("/chat", http.StatusServiceUnavailable, "")

	_, a, err := h.runApp(t, "", "chat", "hello")
	require.Error(t, err)
	require.NotNil(t, a.prefs)
	_, err = a.prefs.List(context.Background())
	assert.Error(t, err, "preferences store should be closed")
}

func TestSetupStoresLoggerInContext(t *testing.T) {
	h := newHarness(t)
	a := &app{}
	root := newRootCommand(a)
	var seen *zap.Logger
	root.AddCommand(&cobra.Command{
		Use: "whoami",
		RunE: func(cmd *cobra.Command, args []string) error {
			seen = logger.FromContext(cmd.Context())
			return nil
		},
	})
	root.SetOut(&bytes.Buffer{})
	err := execute(context.Background(), a, root,
		[]string{"--config", h.config, "--base-url", h.url, "--data-dir", h.dataDir, "whoami"})
	require.NoError(t, err)
	assert.Same(t, a.logger, seen)
}

func TestQueryCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "query", "-k", "3", "--mode", "hybrid", "--tag", "phishing", "remote", "access")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"doc_id\": \"demo-0001\""))

	body := string(h.mock.Requests()[0].Body)
	assert.Contains(t, body, `"top_k":3`)
	assert.Contains(t, body, `"retrieval_mode":"hybrid"`)
	assert.Contains(t, body, `"required_threat_tags":["phishing"]`)
}

func TestQueryCommand_Validation(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "query", "-k", "50", "anything")
	require.Error(t, err)
	assert.Equal(t, "top_k must be at most 20.\n", out)
	assert.Empty(t, h.mock.Requests())
}

func TestIngestCommand(t *testing.T) {
	h := newHarness(t)
	doc := filepath.Join(t.TempDir(), "policy.md")
	require.NoError(t, os.WriteFile(doc, []byte("MFA everywhere"), 0o644))

	out, err := h.run(t, "", "ingest", "--chunk-mode", "paragraph", doc)
	require.NoError(t, err)
	assert.Equal(t, "Ingested demo-0001 with 3 chunks\n", out)
	assert.Equal(t, "chunk_mode=paragraph", h.mock.Requests()[0].Query)

	_, err = h.run(t, "", "ingest", doc, "/missing/one.md")
	require.Error(t, err)
	assert.Equal(t, "missing files: /missing/one.md", err.Error())

	_, err = h.run(t, "", "ingest", "--chunk-mode", "sentence", doc)
	require.Error(t, err)
	assert.Equal(t, "chunk_mode must be one of fixed, paragraph.", err.Error())
}

func TestVectorsCommand(t *testing.T) {
	h := newHarness(t)
	png := filepath.Join(t.TempDir(), "plot.png")

	out, err := h.run(t, "", "vectors", "--png", png, "--size", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "*")
	assert.Contains(t, out, `"method": "umap"`)
	assert.Contains(t, out, "Plot saved to "+png)

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestUtilityCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "ioc", "beacon", "to", "203.0.113.4")
	require.NoError(t, err)
	assert.Contains(t, out, `"203.0.113.4"`)

	out, err = h.run(t, "From: alerts@example.net\n", "headers", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"Received-SPF"`)

	logFile := filepath.Join(t.TempDir(), "auth.log")
	require.NoError(t, os.WriteFile(logFile, []byte("ERROR sshd failed login\n"), 0o644))
	out, err = h.run(t, "", "logs", "--file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"top_sources"`)

	out, err = h.run(t, "", "embed", "first text", "second text")
	require.NoError(t, err)
	assert.Contains(t, out, `"embeddings"`)

	reqs := h.mock.Requests()
	require.Len(t, reqs, 4)
	assert.Contains(t, string(reqs[1].Body), `alerts@example.net`)
	assert.Contains(t, string(reqs[2].Body), `failed login`)
	assert.Contains(t, string(reqs[3].Body), `"texts":["first text","second text"]`)
}

func TestPrefsCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "prefs", "set", "rag.top_k", "7")
	require.NoError(t, err)
	_, err = h.run(t, "", "prefs", "set", "rag.retrieval_mode", "fuzzy")
	assert.Error(t, err)

	out, err := h.run(t, "", "prefs", "get", "rag.top_k")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, err = h.run(t, "", "prefs", "list")
	require.NoError(t, err)
	assert.Equal(t, "rag.top_k=7\n", out)

	// Stored preferences seed request defaults.
	_, err = h.run(t, "", "query", "mfa")
	require.NoError(t, err)
	assert.Contains(t, string(h.mock.Requests()[0].Body), `"top_k":7`)
}

func TestSeedCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "seed", "--ingest")
	require.NoError(t, err)

	vault := filepath.Join(h.dataDir, "sanitized_docs")
	assert.Contains(t, out, "Wrote "+filepath.Join(vault, "CLIENT_001_policy.md"))
	assert.Contains(t, out, "Manifest saved to "+filepath.Join(vault, "demo_manifest.json"))
	assert.Equal(t, 3, strings.Count(out, "Ingested demo-0001 with 3 chunks"))
	assert.Len(t, h.mock.Requests(), 3)
}

func TestBriefCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "brief", "--audience", "rural_operations", "--topic", "devices",
		"--impact", "low", "--likelihood", "unlikely", "--compliance", "nist-csf", "--no-fact", "pump", "controllers")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Audience: Rural Operations\nPrompt: pump controllers\n\nFocus area (devices): "))
	assert.Contains(t, out, "Risk rating: Low (score 1)\n")
	assert.Contains(t, out, "- Context: pump controllers\n")
	assert.Contains(t, out, "\nCompliance (NIST Cybersecurity Framework):\n- Identify critical assets and data owners.\n")
	assert.NotContains(t, out, "Fun fact:")
	assert.Empty(t, h.mock.Requests(), "briefs are built offline")
}

func TestBriefCommand_FactAndJSON(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "brief", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Risk rating: Moderate (score 4)\n")
	assert.Contains(t, out, "\n\nFun fact:\n")

	out, err = h.run(t, "", "brief", "--json", "--no-fact", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"message\": \"Audience: Small Businesses"))
	assert.Contains(t, out, `"name": "risk_assessor"`)
	assert.NotContains(t, out, `"fact"`)
}

func TestBriefCommand_UnknownAudience(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "brief", "--audience", "enterprises", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `audience "enterprises"`)
}
