package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	var analysis bool

	cmd := &cobra.Command{
		Use:   "recognize <record>",
		Short: "Identify the EURING version of a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			raw, err := recordArg(cmd, args)
			if err != nil {
				return err
			}

			resp := svc.Recognize(cmd.Context(), raw, analysis)
			if ctx.jsonOutput {
				if err := writeJSON(cmd, resp); err != nil {
					return err
				}
			}
			if !resp.Success {
				return failure(resp.ErrorCode, resp.Error)
			}
			if ctx.jsonOutput {
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPairs([][2]string{
				{"Version", resp.Version},
				{"Confidence", formatScore(resp.Confidence)},
				{"Low confidence", strconv.FormatBool(resp.LowConfidence)},
				{"Length", strconv.Itoa(resp.Length)},
			}))

			if analysis {
				rows := make([][]string, 0, len(resp.Analysis))
				for _, a := range resp.Analysis {
					var parts []string
					for _, d := range a.Discriminants {
						parts = append(parts, fmt.Sprintf("%s=%s", d.Name, formatScore(d.Score)))
					}
					rows = append(rows, []string{a.Version, formatScore(a.Score), strings.Join(parts, " "), a.ParseError})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Version", "Score", "Discriminants", "Parse error"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&analysis, "analysis", false, "Show the per-version score breakdown")
	return cmd
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
