package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/euring/internal/core"
	_ "github.com/JonMunkholm/euring/internal/core/layouts" // Register built-in versions
)

type commandContext struct {
	jsonOutput    bool
	minConfidence float64
	centuryPivot  int

	once    sync.Once
	service *core.Service
	err     error
}

// ensureService builds the in-memory catalog and service on first use.
func (c *commandContext) ensureService() (*core.Service, error) {
	c.once.Do(func() {
		cat, err := core.NewBuiltinCatalog()
		if err != nil {
			c.err = fmt.Errorf("load catalog: %w", err)
			return
		}
		cfg := core.DefaultConfig()
		cfg.MinConfidence = c.minConfidence
		cfg.CenturyPivot = c.centuryPivot
		c.service = core.NewService(cat, cfg, nil)
	})
	return c.service, c.err
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "euring",
		Short:         "Recognize and convert EURING bird-ringing records",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Write JSON instead of tables")
	flags.Float64Var(&ctx.minConfidence, "min-confidence", core.DefaultMinConfidence, "Recognition score below which a result is flagged")
	flags.IntVar(&ctx.centuryPivot, "century-pivot", core.DefaultCenturyPivot, "Two-digit years below the pivot are read as 20xx")

	rootCmd.AddCommand(newRecognizeCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newVersionsCommand(ctx))
	rootCmd.AddCommand(newMappingsCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))

	return rootCmd
}

// recordArg joins the positional arguments, so an unquoted space-delimited
// record still arrives whole. "-" reads the record from stdin.
func recordArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failure turns a response error into the command's error, with its code.
func failure(code, message string) error {
	if code == "" {
		return fmt.Errorf("%s", message)
	}
	return fmt.Errorf("%s (%s)", message, code)
}
