package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cybersandbox/internal/codec"
)

// Environment variables that override file values.
const (
	EnvBaseURL  = "CYBERSANDBOX_BASE_URL"
	EnvLogLevel = "CYBERSANDBOX_LOG_LEVEL"
	EnvEnv      = "CYBERSANDBOX_ENV"
	EnvDataDir  = "CYBERSANDBOX_DATA_DIR"

	EnvDiscardStale = "CYBERSANDBOX_DISCARD_STALE"
)

// BackendConfig points the client at the assistant API.
type BackendConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url" json:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs" json:"timeout_secs"`
}

// RAGConfig holds defaults for document upload and search.
type RAGConfig struct {
	TopK          int    `yaml:"top_k" toml:"top_k" json:"top_k"`
	RetrievalMode string `yaml:"retrieval_mode" toml:"retrieval_mode" json:"retrieval_mode"`
	ChunkMode     string `yaml:"chunk_mode" toml:"chunk_mode" json:"chunk_mode"`
}

// ChatConfig configures the chat panel.
type ChatConfig struct {
	SystemPrompt   string `yaml:"system_prompt" toml:"system_prompt" json:"system_prompt"`
	RenderMarkdown bool   `yaml:"render_markdown" toml:"render_markdown" json:"render_markdown"`
}

// PlotConfig sizes the vector plot surface.
type PlotConfig struct {
	Width        int     `yaml:"width" toml:"width" json:"width"`
	Height       int     `yaml:"height" toml:"height" json:"height"`
	MarkerRadius float64 `yaml:"marker_radius" toml:"marker_radius" json:"marker_radius"`
}

// UIConfig toggles terminal UI behavior.
type UIConfig struct {
	DiscardStale  bool `yaml:"discard_stale" toml:"discard_stale" json:"discard_stale"`
	HighlightJSON bool `yaml:"highlight_json" toml:"highlight_json" json:"highlight_json"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Env   string `yaml:"env" toml:"env" json:"env"` // dev or prod
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

// MetricsConfig exposes client metrics; an empty addr disables the endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr" json:"addr"`
}

// DataConfig locates local state.
type DataConfig struct {
	Dir             string `yaml:"dir" toml:"dir" json:"dir"`
	PreferencesFile string `yaml:"preferences_file" toml:"preferences_file" json:"preferences_file"`
}

// IngestConfig tunes bulk and watched uploads.
type IngestConfig struct {
	Workers        int     `yaml:"workers" toml:"workers" json:"workers"`
	WatchPerSecond float64 `yaml:"watch_per_second" toml:"watch_per_second" json:"watch_per_second"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend BackendConfig `yaml:"backend" toml:"backend" json:"backend"`
	RAG     RAGConfig     `yaml:"rag" toml:"rag" json:"rag"`
	Chat    ChatConfig    `yaml:"chat" toml:"chat" json:"chat"`
	Plot    PlotConfig    `yaml:"plot" toml:"plot" json:"plot"`
	UI      UIConfig      `yaml:"ui" toml:"ui" json:"ui"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics" json:"metrics"`
	Data    DataConfig    `yaml:"data" toml:"data" json:"data"`
	Ingest  IngestConfig  `yaml:"ingest" toml:"ingest" json:"ingest"`
}

// PreferencesPath is the sqlite file holding user preferences.
func (c *AppConfig) PreferencesPath() string {
	return filepath.Join(c.Data.Dir, c.Data.PreferencesFile)
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied last. The result is not validated: callers apply their
// own overrides and then call Normalize.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	if err := decodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return finish(cfg), nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/cybersandbox/config.yaml.
// If neither exists, it writes defaults to ~/.config/cybersandbox/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	return finish(defaultConfig()), userPath, nil
}

// ApplyOverrides layers extra config files (.yaml, .yml, .toml, .json) over cfg in order.
// Missing files are skipped. Like Load, it does not validate.
func ApplyOverrides(cfg *AppConfig, paths ...string) (*AppConfig, error) {
	for _, p := range paths {
		if err := decodeFile(p, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}
	return finish(cfg), nil
}

// Normalize fills zero values and validates without consulting the environment. It is the only
// validation step; callers run it after applying command-line flags, which take precedence over
// env.
func Normalize(cfg *AppConfig) error {
	applyConfigDefaults(cfg)
	return cfg.Validate()
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks enumerations and ranges.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.base_url is required")
	}
	if c.RAG.TopK < 1 || c.RAG.TopK > 20 {
		return fmt.Errorf("rag.top_k must be between 1 and 20, got %d", c.RAG.TopK)
	}
	switch c.RAG.RetrievalMode {
	case "vector", "hybrid", "intel":
	default:
		return fmt.Errorf("rag.retrieval_mode must be vector, hybrid or intel, got %q", c.RAG.RetrievalMode)
	}
	switch c.RAG.ChunkMode {
	case "fixed", "paragraph":
	default:
		return fmt.Errorf("rag.chunk_mode must be fixed or paragraph, got %q", c.RAG.ChunkMode)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q, choose from debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("logging.env must be dev or prod, got %q", c.Logging.Env)
	}
	return nil
}

func decodeFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := codec.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func finish(cfg *AppConfig) *AppConfig {
	applyEnv(cfg)
	applyConfigDefaults(cfg)
	return cfg
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnv)); v != "" {
		cfg.Logging.Env = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Data.Dir = v
	}
	if v, ok := os.LookupEnv(EnvDiscardStale); ok {
		cfg.UI.DiscardStale = ParseBool(v)
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cybersandbox", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{BaseURL: "http://127.0.0.1:8000", TimeoutSecs: 120},
		RAG:     RAGConfig{TopK: 5, RetrievalMode: "vector", ChunkMode: "fixed"},
		Chat: ChatConfig{
			SystemPrompt:   "You are Iron Dillo, a pragmatic cybersecurity copilot.",
			RenderMarkdown: true,
		},
		Plot:    PlotConfig{Width: 60, Height: 20, MarkerRadius: 0.5},
		UI:      UIConfig{HighlightJSON: true},
		Logging: LoggingConfig{Env: "dev", Level: "info"},
		Data:    DataConfig{Dir: "data", PreferencesFile: "preferences.db"},
		Ingest:  IngestConfig{Workers: 4, WatchPerSecond: 2},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.TimeoutSecs <= 0 {
		cfg.Backend.TimeoutSecs = 120
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	cfg.RAG.RetrievalMode = strings.ToLower(strings.TrimSpace(cfg.RAG.RetrievalMode))
	if cfg.RAG.RetrievalMode == "" {
		cfg.RAG.RetrievalMode = "vector"
	}
	cfg.RAG.ChunkMode = strings.ToLower(strings.TrimSpace(cfg.RAG.ChunkMode))
	if cfg.RAG.ChunkMode == "" {
		cfg.RAG.ChunkMode = "fixed"
	}
	if cfg.Plot.Width <= 0 {
		cfg.Plot.Width = 60
	}
	if cfg.Plot.Height <= 0 {
		cfg.Plot.Height = 20
	}
	if cfg.Plot.MarkerRadius <= 0 {
		cfg.Plot.MarkerRadius = 0.5
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Env = strings.ToLower(strings.TrimSpace(cfg.Logging.Env))
	if cfg.Logging.Env == "" {
		cfg.Logging.Env = "dev"
	}
	if strings.TrimSpace(cfg.Data.Dir) == "" {
		cfg.Data.Dir = "data"
	}
	if strings.TrimSpace(cfg.Data.PreferencesFile) == "" {
		cfg.Data.PreferencesFile = "preferences.db"
	}
	if cfg.Ingest.Workers <= 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.WatchPerSecond <= 0 {
		cfg.Ingest.WatchPerSecond = 2
	}
}

// ParseBool accepts the truthy spellings used in .env files.
func ParseBool(v string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true
	}
	return false
}
