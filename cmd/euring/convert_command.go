package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/euring/internal/core"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var from, to string
	var legacy bool

	cmd := &cobra.Command{
		Use:   "convert --to <version> <record>",
		Short: "Convert a record into another EURING version",
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

			semantic := !legacy
			resp := svc.Convert(cmd.Context(), core.ConvertRequest{
				EuringString:  raw,
				SourceVersion: from,
				TargetVersion: to,
				UseSemantic:   &semantic,
			})
			if ctx.jsonOutput {
				if err := writeJSON(cmd, resp); err != nil {
					return err
				}
				if !resp.Success {
					return failure(resp.ErrorCode, resp.Error)
				}
				return nil
			}

			out := cmd.OutOrStdout()
			if resp.Success {
				fmt.Fprintln(out, resp.ConvertedString)
			}
			if len(resp.Notes) > 0 {
				rows := make([][]string, len(resp.Notes))
				for i, n := range resp.Notes {
					rows[i] = []string{string(n.Kind), n.Field, n.Message}
				}
				fmt.Fprintln(cmd.ErrOrStderr(), renderTable([]string{"Note", "Field", "Message"}, rows, nil))
			}
			if !resp.Success {
				return failure(resp.ErrorCode, resp.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Target version id (required)")
	cmd.Flags().StringVar(&from, "from", "", "Source version id; recognized when omitted")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Use positional legacy conversion instead of the semantic path")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
