package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List supported versions and the conversion matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			resp := svc.Versions()
			if ctx.jsonOutput {
				return writeJSON(cmd, resp)
			}

			rows := make([][]string, 0, len(resp.SupportedVersions))
			ids := make([]string, 0, len(resp.SupportedVersions))
			for _, v := range resp.SupportedVersions {
				layout := string(v.Layout)
				if v.Separator != "" {
					layout += " " + strconv.Quote(v.Separator)
				}
				rows = append(rows, []string{
					v.ID,
					strconv.Itoa(v.Year),
					v.Name,
					layout,
					fmt.Sprintf("%d-%d", v.MinLength, v.MaxLength),
					strconv.Itoa(v.FieldCount),
				})
				ids = append(ids, v.ID)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Year", "Name", "Layout", "Length", "Fields"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))

			matrix := make([][]string, 0, len(ids))
			for _, src := range ids {
				row := []string{src}
				for _, dst := range ids {
					cell, ok := resp.ConversionMatrix[src][dst]
					if !ok {
						row = append(row, "-")
						continue
					}
					row = append(row, string(cell.Compatibility))
				}
				matrix = append(matrix, row)
			}
			fmt.Fprintln(out, renderTable(append([]string{"from \\ to"}, ids...), matrix, nil))
			return nil
		},
	}
}

func newMappingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mappings <source> <target>",
		Short: "Show how each field travels between two versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			maps, err := svc.ConversionMappings(args[0], args[1])
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, maps)
			}

			rows := make([][]string, len(maps))
			for i, m := range maps {
				rows[i] = []string{
					string(m.Key),
					string(m.Domain),
					strings.Join(m.SourceFields, ","),
					strings.Join(m.TargetFields, ","),
					string(m.Transform),
					string(m.Lossiness),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Domain", "Source", "Target", "Transform", "Lossiness"},
				rows, nil,
			))
			return nil
		},
	}
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <version> <field>",
		Short: "Show the code table of a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			t, err := svc.LookupTable(args[1], args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, t)
			}

			rows := make([][]string, len(t.Entries))
			for i, e := range t.Entries {
				rows[i] = []string{e.Code, e.Meaning}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s / %s (%s)\n", t.Version, t.Field, t.Source)
			fmt.Fprintln(out, renderTable([]string{"Code", "Meaning"}, rows, nil))
			return nil
		},
	}
}
