package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/euring/internal/core"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a file of records, one per line",
	}
	cmd.AddCommand(newBatchRecognizeCommand(ctx))
	cmd.AddCommand(newBatchConvertCommand(ctx))
	return cmd
}

func newBatchRecognizeCommand(ctx *commandContext) *cobra.Command {
	var file string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "recognize --file <path>",
		Short: "Recognize every record in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			lines, err := readRecords(cmd, file)
			if err != nil {
				return err
			}

			resp, err := svc.RecognizeBatch(cmd.Context(), lines, false, concurrency)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, resp)
			}

			rows := make([][]string, len(resp.Results))
			for i, r := range resp.Results {
				rows[i] = []string{strconv.Itoa(i + 1), r.Version, formatScore(r.Confidence), strconv.FormatBool(r.LowConfidence), r.Error}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Version", "Confidence", "Low", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "batch %s: %d processed, %d succeeded, %d failed\n",
				resp.BatchID, resp.TotalProcessed, resp.Succeeded, resp.Failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File with one record per line, - for stdin (required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel workers, capped by the service limit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newBatchConvertCommand(ctx *commandContext) *cobra.Command {
	var file, from, to string
	var legacy bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "convert --file <path> --to <version>",
		Short: "Convert every record in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			lines, err := readRecords(cmd, file)
			if err != nil {
				return err
			}

			semantic := !legacy
			reqs := make([]core.ConvertRequest, len(lines))
			for i, l := range lines {
				reqs[i] = core.ConvertRequest{EuringString: l, SourceVersion: from, TargetVersion: to, UseSemantic: &semantic}
			}

			resp, err := svc.ConvertBatch(cmd.Context(), reqs, concurrency)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			for i, r := range resp.Results {
				if r.Success {
					fmt.Fprintln(out, r.ConvertedString)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %s\n", i+1, failure(r.ErrorCode, r.Error))
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "batch %s: %d processed, %d succeeded, %d failed\n",
				resp.BatchID, resp.TotalProcessed, resp.Succeeded, resp.Failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File with one record per line, - for stdin (required)")
	cmd.Flags().StringVar(&to, "to", "", "Target version id (required)")
	cmd.Flags().StringVar(&from, "from", "", "Source version id; recognized per line when omitted")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Use positional legacy conversion")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel workers, capped by the service limit")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// readRecords returns the non-blank lines of path, or of stdin for "-".
func readRecords(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return lines, nil
}
