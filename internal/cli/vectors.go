package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cybersandbox/internal/plot"
	"cybersandbox/internal/shim"
)

func newVectorsCommand(a *app) *cobra.Command {
	var (
		pngPath string
		size    int
	)
	cmd := &cobra.Command{
		Use:   "vectors",
		Short: "Plot the 2-D projection of stored vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := a.shim.Invoke(cmd.Context(), shim.TriggerVectors, nil)
			out := cmd.OutOrStdout()
			if o.Err != nil {
				fmt.Fprintln(out, o.Text)
				return errReported
			}

			grid := plot.NewGrid(a.cfg.Plot.Width, a.cfg.Plot.Height)
			plot.Draw(grid, o.Points, a.cfg.Plot.MarkerRadius)
			fmt.Fprintln(out, grid.String())
			fmt.Fprintln(out, a.decorator(out).JSON(o.Text))

			if pngPath == "" {
				return nil
			}
			img := plot.NewImage(size, size)
			plot.Draw(img, o.Points, plot.DefaultRadius)
			f, err := os.Create(pngPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := img.WritePNG(f); err != nil {
				return err
			}
			fmt.Fprintln(out, "Plot saved to", pngPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write the plot as a PNG image")
	cmd.Flags().IntVar(&size, "size", 500, "PNG width and height in pixels")
	return cmd
}
