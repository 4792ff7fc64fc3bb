package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/sheetcalc/internal/app"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// IO bundles the streams the commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run builds the command tree and executes it with args. Usage problems are
// returned as an *ExitError with code 2.
func Run(ctx context.Context, args []string, streams IO) error {
	slog.Debug("CLI started.", "args", args)
	root := NewRootCmd(streams)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// cobra reports unknown commands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return err
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd(streams IO) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "sheetcalc",
		Short: "sheetcalc - spreadsheet formula evaluation engine",
		Long: `sheetcalc evaluates a spreadsheet snapshot: a mapping from cell coordinates
to raw cell text, where any cell starting with '=' is a formula that may
reference other cells. Every cell resolves to a value or an error; circular
references and failures in referenced cells are reported per cell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sheetcalc.yaml)")
	flags.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	flags.StringP("evaluator", "e", "", fmt.Sprintf("Formula language. Options: %s.", strings.Join(evaluator.Names(), ", ")))
	flags.StringP("output", "o", "", "Result format. Options: 'table' or 'json'.")
	flags.StringToString("var", nil, "Transient variable available to formulas, e.g. --var rate=0.2 (repeatable).")

	_ = root.RegisterFlagCompletionFunc("evaluator", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return evaluator.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{app.FormatTable, app.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	newApp := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := LoadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return nil, usageError(err)
		}
		a, err := app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		if err != nil {
			return nil, usageError(err)
		}
		return a, nil
	}

	root.AddCommand(newEvalCmd(newApp))
	root.AddCommand(newGraphCmd(newApp))
	root.AddCommand(newServeCmd(newApp))

	return root
}

// snapshotArg accepts exactly one snapshot path.
func snapshotArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError(fmt.Errorf("expected one snapshot path ('-' for stdin), got %d arguments", len(args)))
	}
	return nil
}

func newEvalCmd(newApp func(*cobra.Command) (*app.App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "eval SNAPSHOT",
		Short: "Evaluate every cell of a snapshot",
		Long: `Evaluate every cell of a snapshot file and print one result per cell.

SNAPSHOT is a .json, .yaml or .yml file mapping coordinates to raw cell
text, or '-' to read JSON or YAML from standard input.`,
		Example: `  # Evaluate a sheet
  sheetcalc eval sheet.yaml

  # Evaluate from stdin with a variable and JSON output
  echo '{"A1": "10", "B1": "=A1 * rate"}' | sheetcalc eval - --var rate=0.2 -o json`,
		Args: snapshotArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.RunEval(cmd.Context(), args[0], cmd.InOrStdin())
		},
	}
}

func newGraphCmd(newApp func(*cobra.Command) (*app.App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "graph SNAPSHOT",
		Short: "Show the references between cells",
		Long: `Evaluate a snapshot and show, for every cell, the names its formula
references, the cells that reference it, and whether it is part of a
circular reference.`,
		Example: `  sheetcalc graph sheet.yaml
  sheetcalc graph sheet.json -o json`,
		Args: snapshotArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.RunGraph(cmd.Context(), args[0], cmd.InOrStdin())
		},
	}
}

func newServeCmd(newApp func(*cobra.Command) (*app.App, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluations over HTTP",
		Long: `Start the evaluation service.

  POST /evaluate  body: {"A1": "1", "B1": "=A1+1"}  answers one record per cell
  GET  /health    liveness probe
  GET  /metrics   Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntP("listen-port", "p", 0, "Port of the HTTP server (default 8080).")
	cmd.Flags().Duration("eval-timeout", 0, "Wall-clock limit of one evaluation, 0 disables it (default 5s).")
	return cmd
}
