package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cybersandbox/internal/shim"
)

// invoke runs one trigger and prints the rendered region text. Failures are printed the same
// way the UI shows them and reported as errReported.
func (a *app) invoke(cmd *cobra.Command, trigger string, in shim.Inputs) error {
	o := a.shim.Invoke(cmd.Context(), trigger, in)
	out := cmd.OutOrStdout()
	text := o.Text
	if o.Err == nil {
		if act, ok := a.shim.Action(trigger); ok {
			d := a.decorator(out)
			if act.Kind == shim.KindJSON {
				text = d.JSON(text)
			} else if a.cfg.Chat.RenderMarkdown {
				text = d.Markdown(text)
			}
		}
	}
	fmt.Fprintln(out, text)
	if o.Err != nil {
		return errReported
	}
	return nil
}

// readText returns the joined args, the contents of file, or stdin when file is "-" or no
// args were given.
func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case file != "":
		b, err := os.ReadFile(file)
		return string(b), err
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	return string(b), err
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		topK   int
		mode   string
		docIDs []string
		tags   []string
	)
	cmd := &cobra.Command{
		Use:   "query TEXT...",
		Short: "Search ingested documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := shim.Inputs{
				shim.FieldQuery:         strings.Join(args, " "),
				shim.FieldRetrievalMode: mode,
				shim.FieldDocIDs:        strings.Join(docIDs, ","),
				shim.FieldThreatTags:    strings.Join(tags, ","),
			}
			if cmd.Flags().Changed("top-k") {
				in[shim.FieldTopK] = strconv.Itoa(topK)
			}
			return a.invoke(cmd, shim.TriggerQuery, in)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of results (1-20; defaults to preference or config)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Retrieval mode: vector, hybrid or intel")
	cmd.Flags().StringSliceVar(&docIDs, "doc-id", nil, "Restrict to document IDs (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Required threat tags (repeatable or comma separated)")
	return cmd
}

func textCommand(a *app, use, short, trigger, field string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args, file)
			if err != nil {
				return err
			}
			return a.invoke(cmd, trigger, shim.Inputs{field: text})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read input from a file ("-" for stdin)`)
	return cmd
}

func newIOCCommand(a *app) *cobra.Command {
	return textCommand(a, "ioc [TEXT...]", "Extract indicators of compromise", shim.TriggerIOC, shim.FieldIOCText)
}

func newHeadersCommand(a *app) *cobra.Command {
	return textCommand(a, "headers [TEXT...]", "Parse raw email headers", shim.TriggerHeaders, shim.FieldHeaders)
}

func newLogsCommand(a *app) *cobra.Command {
	return textCommand(a, "logs [TEXT...]", "Summarize log lines", shim.TriggerLogs, shim.FieldLogText)
}

func newEmbedCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "embed [TEXT...]",
		Short: "Embed texts, one per argument or per input line",
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 && file == "" {
				text = strings.Join(args, "\n")
			} else {
				var err error
				if text, err = readText(cmd, nil, file); err != nil {
					return err
				}
			}
			return a.invoke(cmd, shim.TriggerEmbed, shim.Inputs{shim.FieldEmbedTexts: text})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read texts from a file ("-" for stdin)`)
	return cmd
}
