package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cybersandbox/internal/domain"
	"cybersandbox/internal/ingest"
	"cybersandbox/internal/logger"
	"cybersandbox/internal/render"
	"cybersandbox/internal/shim"
)

func (a *app) uploader(cmd *cobra.Command, chunkMode string) *ingest.Uploader {
	mode := domain.ChunkMode(chunkMode)
	if mode == "" {
		mode = a.defaults.ChunkMode
	}
	return ingest.NewUploader(a.client, a.cfg.Ingest.Workers, mode, logger.FromContext(cmd.Context()))
}

func newIngestCommand(a *app) *cobra.Command {
	var (
		chunkMode string
		raw       bool
	)
	cmd := &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Upload documents for retrieval",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if chunkMode != "" {
				// Reuse the form checks so the message matches the UI.
				st := a.shim.Begin(shim.TriggerIngest, shim.Inputs{
					shim.FieldIngestFile: args[0],
					shim.FieldChunkMode:  chunkMode,
				})
				if st.Run == nil {
					return st.Err
				}
			}
			results, err := a.uploader(cmd, chunkMode).All(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printResults(cmd, results, raw)
		},
	}
	cmd.Flags().StringVarP(&chunkMode, "chunk-mode", "c", "", "Chunking: fixed or paragraph")
	cmd.Flags().BoolVar(&raw, "json", false, "Print the full ingest response for each file")
	return cmd
}

func printResults(cmd *cobra.Command, results []ingest.Result, raw bool) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if raw && r.Err == nil {
			fmt.Fprintln(out, render.JSON(r.Raw))
			continue
		}
		fmt.Fprintln(out, r.Line())
	}
	if failed > 0 {
		return errReported
	}
	return nil
}

func newSeedCommand(a *app) *cobra.Command {
	var (
		dir    string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write sanitized demo documents and optionally ingest them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = filepath.Join(a.cfg.Data.Dir, "sanitized_docs")
			}
			paths, err := ingest.Seed(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, "Wrote", p)
			}
			fmt.Fprintln(out, "Manifest saved to", filepath.Join(dir, ingest.ManifestName))
			if !upload {
				return nil
			}
			results, err := a.uploader(cmd, "").All(cmd.Context(), paths)
			if err != nil {
				return err
			}
			return printResults(cmd, results, false)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (defaults to <data-dir>/sanitized_docs)")
	cmd.Flags().BoolVar(&upload, "ingest", false, "Upload the documents after writing them")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	var (
		chunkMode string
		quiet     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Upload files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := ingest.NewWatcher(a.uploader(cmd, chunkMode), a.cfg.Ingest.WatchPerSecond, quiet)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching", args[0], "(Ctrl+C to stop)")
			return w.Run(cmd.Context(), args[0], func(r ingest.Result) {
				fmt.Fprintln(out, r.Line())
			})
		},
	}
	cmd.Flags().StringVarP(&chunkMode, "chunk-mode", "c", "", "Chunking: fixed or paragraph")
	cmd.Flags().DurationVar(&quiet, "quiet", 2*time.Second, "Ignore repeat events for a file within this window")
	return cmd
}
