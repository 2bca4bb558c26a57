// Package cli wires configuration, logging, the HTTP client and the action table into the
// cybersandbox commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"cybersandbox/internal/backend"
	"cybersandbox/internal/codec"
	"cybersandbox/internal/config"
	"cybersandbox/internal/domain"
	"cybersandbox/internal/logger"
	"cybersandbox/internal/prefs"
	"cybersandbox/internal/render"
	"cybersandbox/internal/shim"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("request failed")

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool { return errors.Is(err, errReported) }

type globalFlags struct {
	configPath string
	baseURL    string
	logLevel   string
	dataDir    string
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	flags globalFlags

	cfg      *config.AppConfig
	cfgPath  string
	logger   *zap.Logger
	registry *prometheus.Registry
	client   *backend.Client
	prefs    *prefs.Store
	shim     *shim.Shim
	defaults shim.Defaults

	stopMetrics func(context.Context) error
}

// setup loads .env, the config file and flag overrides, then builds the shared components.
// logFile, when non-empty, is used if the config does not name a log file.
func (a *app) setup(cmd *cobra.Command, logFile string) error {
	_ = godotenv.Load()

	var err error
	if a.flags.configPath == "" {
		a.cfg, a.cfgPath, err = config.LoadDefault()
	} else {
		a.cfgPath = a.flags.configPath
		a.cfg, err = config.Load(a.flags.configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.flags.baseURL != "" {
		a.cfg.Backend.BaseURL = a.flags.baseURL
	}
	if a.flags.logLevel != "" {
		a.cfg.Logging.Level = a.flags.logLevel
	}
	if a.flags.dataDir != "" {
		a.cfg.Data.Dir = a.flags.dataDir
	}
	if err := config.Normalize(a.cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	file := a.cfg.Logging.File
	if file == "" {
		file = logFile
	}
	if a.logger, err = logger.New(a.cfg.Logging.Env, a.cfg.Logging.Level, file); err != nil {
		return err
	}
	a.logger.Debug("config loaded",
		zap.String("path", a.cfgPath),
		zap.String("base_url", a.cfg.Backend.BaseURL),
		zap.Bool("sonic", codec.IsUsingSonic()),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, a.logger))

	a.registry = prometheus.NewRegistry()
	a.client, err = backend.NewClient(backend.Config{
		BaseURL:    a.cfg.Backend.BaseURL,
		Timeout:    time.Duration(a.cfg.Backend.TimeoutSecs) * time.Second,
		Logger:     a.logger,
		Registerer: a.registry,
	})
	if err != nil {
		return err
	}

	if a.prefs, err = prefs.Open(a.cfg.PreferencesPath()); err != nil {
		return err
	}
	resolved, err := a.prefs.Resolve(context.Background(), prefs.Defaults{
		TopK:          a.cfg.RAG.TopK,
		RetrievalMode: a.cfg.RAG.RetrievalMode,
		ChunkMode:     a.cfg.RAG.ChunkMode,
		SystemPrompt:  a.cfg.Chat.SystemPrompt,
	})
	if err != nil {
		a.logger.Warn("preferences unreadable, using config defaults", zap.Error(err))
	}
	a.defaults = shim.Defaults{
		TopK:          resolved.TopK,
		RetrievalMode: domain.RetrievalMode(resolved.RetrievalMode),
		ChunkMode:     domain.ChunkMode(resolved.ChunkMode),
		SystemPrompt:  resolved.SystemPrompt,
	}
	a.shim = shim.New(a.client, shim.Options{Defaults: a.defaults, DiscardStale: a.cfg.UI.DiscardStale})

	if a.cfg.Metrics.Addr != "" {
		a.stopMetrics = serveMetrics(a.cfg.Metrics.Addr, a.registry, a.logger)
	}
	return nil
}

// close releases everything setup acquired. It is safe to call more than once.
func (a *app) close() {
	if a.stopMetrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.stopMetrics(ctx)
		cancel()
		a.stopMetrics = nil
	}
	if a.prefs != nil {
		_ = a.prefs.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// tuiLogFile keeps log output off the terminal while the UI owns it.
func (a *app) tuiLogFile() string {
	dir := a.flags.dataDir
	if dir == "" {
		dir = os.Getenv(config.EnvDataDir)
	}
	if dir == "" {
		dir = "data"
	}
	return filepath.Join(dir, "cybersandbox.log")
}

// decorator styles output only when w is a terminal.
func (a *app) decorator(w io.Writer) *render.Decorator {
	if !isTerminal(w) {
		return nil
	}
	wrap := 0
	if a.cfg.Chat.RenderMarkdown {
		wrap = 100
	}
	return render.NewDecorator(wrap, a.cfg.UI.HighlightJSON)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
