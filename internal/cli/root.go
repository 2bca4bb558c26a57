package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cybersandbox/internal/tui"
)

// newRootCommand builds the cybersandbox command tree over a. Running it without a subcommand
// opens the terminal UI.
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cybersandbox",
		Short:         "Client for the Iron Dillo cybersecurity assistant sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logFile := ""
			if cmd.Annotations["ui"] == "true" {
				logFile = a.tuiLogFile()
			}
			return a.setup(cmd, logFile)
		},
		Annotations: map[string]string{"ui": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Path to config file (yaml, toml or json; defaults to ./config.yaml or ~/.config/cybersandbox/config.yaml)")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "Assistant API base URL")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "Directory for preferences, logs and seeded documents")

	root.AddCommand(
		newTUICommand(a),
		newChatCommand(a),
		newIngestCommand(a),
		newQueryCommand(a),
		newVectorsCommand(a),
		newIOCCommand(a),
		newHeadersCommand(a),
		newLogsCommand(a),
		newEmbedCommand(a),
		newSeedCommand(a),
		newWatchCommand(a),
		newPrefsCommand(a),
		newMockCommand(a),
		newBriefCommand(a),
	)
	return root
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := &app{}
	return execute(ctx, a, newRootCommand(a), os.Args[1:])
}

// execute runs root and releases a's resources afterwards. Cobra skips post-run hooks when a
// command fails, so cleanup cannot live there.
func execute(ctx context.Context, a *app, root *cobra.Command, args []string) error {
	defer a.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Open the terminal UI",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"ui": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	m := tui.New(a.shim, tui.Options{
		Context:        cmd.Context(),
		Decorator:      a.decorator(os.Stdout),
		BaseURL:        a.client.BaseURL(),
		RenderMarkdown: a.cfg.Chat.RenderMarkdown,
		PlotWidth:      a.cfg.Plot.Width,
		PlotHeight:     a.cfg.Plot.Height,
		MarkerRadius:   a.cfg.Plot.MarkerRadius,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
