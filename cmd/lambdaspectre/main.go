package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lambdaspectre/lambdaspectre/internal/athena"
	"github.com/lambdaspectre/lambdaspectre/internal/inventory"
	"github.com/lambdaspectre/lambdaspectre/internal/logging"
	"github.com/lambdaspectre/lambdaspectre/internal/preflight"
)

var (
	version = "1.1.0"
	verbose bool
)

// Exit codes for structured error reporting.
const (
	ExitSuccess        = 0
	ExitInternal       = 1
	ExitInvalidArg     = 2
	ExitPrecondition   = 3
	ExitEmptyInventory = 4
	ExitQueryFailed    = 5
	ExitFindings       = 6
)

// FindingsError indicates the reconciliation completed but stale functions
// were detected and --fail-on-stale is set.
type FindingsError struct {
	Count int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d stale functions detected", e.Count)
}

func main() {
	logging.Init(false)

	root := &cobra.Command{
		Use:   "lambdaspectre",
		Short: "Lambda usage analyzer",
		Long: `LambdaSpectre cross-references the live Lambda function inventory
against CloudTrail invocation history queried through Athena to find
functions that have not been invoked in the last 30 days.

It creates the CloudTrail audit table, registers the year partition,
runs the usage query, and reports the stale-function set.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewAnalyzeCmd())
	root.AddCommand(NewVersionCmd())

	if err := root.Execute(); err != nil {
		exitCode := classifyError(err)
		var fe *FindingsError
		if errors.As(err, &fe) {
			slog.Info("stale functions detected", slog.Int("count", fe.Count))
		} else {
			slog.Error("command failed", slog.String("error", err.Error()))
		}
		os.Exit(exitCode)
	}
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var fe *FindingsError
	if errors.As(err, &fe) {
		return ExitFindings
	}

	var pe *preflight.PreconditionError
	if errors.As(err, &pe) {
		return ExitPrecondition
	}

	var ee *inventory.EmptyInventoryError
	if errors.As(err, &ee) {
		return ExitEmptyInventory
	}

	var qe *athena.QueryError
	if errors.As(err, &qe) {
		return ExitQueryFailed
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "does not support") {
		return ExitInvalidArg
	}

	return ExitInternal
}
