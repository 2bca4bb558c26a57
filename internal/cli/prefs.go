package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"cybersandbox/internal/prefs"
)

func newPrefsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage stored preferences (rag.top_k, rag.retrieval_mode, rag.chunk_mode, chat.system_prompt)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := a.prefs.Get(cmd.Context(), args[0], "")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Store a preference",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := prefs.Check(args[0], args[1]); err != nil {
					return err
				}
				return a.prefs.Set(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "unset KEY",
			Short: "Remove a preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.prefs.Delete(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List preferences",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				all, err := a.prefs.List(cmd.Context())
				if err != nil {
					return err
				}
				keys := make([]string, 0, len(all))
				for k := range all {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, all[k])
				}
				return nil
			},
		},
	)
	return cmd
}
