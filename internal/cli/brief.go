package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cybersandbox/internal/brief"
	"cybersandbox/internal/codec"
	"cybersandbox/internal/render"
)

func newBriefCommand(a *app) *cobra.Command {
	var (
		req    brief.Request
		noFact bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "brief PROMPT...",
		Short: "Print an offline security brief with tips, a risk rating and a compliance checklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Prompt = strings.Join(args, " ")
			req.IncludeFact = !noFact
			resp, err := brief.Build(cmd.Context(), req, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				raw, err := codec.Marshal(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, a.decorator(out).JSON(render.JSON(raw)))
				return nil
			}
			fmt.Fprintln(out, resp.Message)
			if resp.Fact != "" {
				fmt.Fprintf(out, "\nFun fact:\n%s\n", resp.Fact)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Audience, "audience", brief.DefaultAudience, "Audience: individuals, small_businesses, rural_operations")
	f.StringVar(&req.Topic, "topic", brief.DefaultTopic, "Focus area: identity, devices, cloud, supply_chain, incident_response")
	f.StringVar(&req.Compliance, "compliance", "", "Compliance checklist to append: nist-csf, hipaa, pci-dss")
	f.StringVar(&req.Impact, "impact", brief.DefaultImpact, "Estimated impact: low, medium, high")
	f.StringVar(&req.Likelihood, "likelihood", brief.DefaultLikelihood, "Estimated likelihood: unlikely, possible, likely")
	f.BoolVar(&noFact, "no-fact", false, "Leave out the armadillo fact")
	f.BoolVar(&asJSON, "json", false, "Print the brief and its tool calls as JSON")
	return cmd
}
