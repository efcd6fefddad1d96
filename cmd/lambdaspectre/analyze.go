package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lambdaspectre/lambdaspectre/internal/athena"
	"github.com/lambdaspectre/lambdaspectre/internal/baseline"
	"github.com/lambdaspectre/lambdaspectre/internal/differ"
	"github.com/lambdaspectre/lambdaspectre/internal/inventory"
	"github.com/lambdaspectre/lambdaspectre/internal/models"
	"github.com/lambdaspectre/lambdaspectre/internal/preflight"
	"github.com/lambdaspectre/lambdaspectre/internal/queries"
	"github.com/lambdaspectre/lambdaspectre/internal/reporter"
	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	cfg.Year = strconv.Itoa(time.Now().Year())

	// String variables for custom duration parsing
	var pollIntervalStr string
	var pollTimeoutStr string
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find Lambda functions not invoked in the last 30 days",
		Long: `Analyze CloudTrail invocation history through Athena and reconcile it
against the live Lambda inventory to list stale functions.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyFileConfig(cmd, cfg, configPath, &pollIntervalStr, &pollTimeoutStr); err != nil {
				return err
			}

			// Parse custom durations
			var err error

			if pollIntervalStr != "" {
				cfg.PollInterval, err = config.ParseDuration(pollIntervalStr)
				if err != nil {
					return fmt.Errorf("invalid --poll-interval duration: %w", err)
				}
			}

			if pollTimeoutStr != "" {
				cfg.PollTimeout, err = config.ParseDuration(pollTimeoutStr)
				if err != nil {
					return fmt.Errorf("invalid --poll-timeout duration: %w", err)
				}
			}

			if err := config.ValidateRegion(cfg.Region); err != nil {
				return err
			}

			if cfg.Format != "json" && cfg.Format != "text" {
				return fmt.Errorf("invalid --format value %q (expected json or text)", cfg.Format)
			}

			cfg.Normalize()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cfg)
		},
	}

	// AWS flags
	cmd.Flags().StringVar(&cfg.Region, "region", cfg.Region, "AWS region to evaluate (must support Athena)")
	cmd.Flags().StringVar(&cfg.Profile, "profile", cfg.Profile, "AWS shared config profile")
	cmd.Flags().StringVar(&cfg.AthenaBucket, "athena-bucket", "", "S3 staging bucket for Athena results, s3://bucket-name (required)")
	_ = cmd.MarkFlagRequired("athena-bucket") // Error only occurs if flag doesn't exist
	cmd.Flags().StringVar(&cfg.CloudTrailBucket, "cloudtrail-bucket", "", "S3 bucket holding CloudTrail logs, s3://bucket-name (required)")
	_ = cmd.MarkFlagRequired("cloudtrail-bucket")

	// Query flags
	cmd.Flags().StringVar(&cfg.TableName, "table-name", cfg.TableName, "Name of the Athena table to create")
	cmd.Flags().StringVar(&cfg.Year, "year", cfg.Year, "Partition year to query")
	cmd.Flags().StringVar(&pollIntervalStr, "poll-interval", "5s", "Interval between query status checks")
	cmd.Flags().StringVar(&pollTimeoutStr, "poll-timeout", "", "Overall deadline per query; empty polls until the query terminates")

	// Output flags
	cmd.Flags().StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory")
	cmd.Flags().StringVar(&cfg.Format, "format", cfg.Format, "Output format (json, text)")

	// Analysis flags
	cmd.Flags().StringSliceVar(&cfg.ExcludeFunctions, "exclude", nil, "Function name or ARN patterns to exclude from the stale list")
	cmd.Flags().StringVar(&cfg.BaselinePath, "baseline", "", "Baseline file of acknowledged stale functions to suppress")
	cmd.Flags().BoolVar(&cfg.UpdateBaseline, "update-baseline", false, "Record the current stale set into the baseline file")
	cmd.Flags().BoolVar(&cfg.FailOnStale, "fail-on-stale", false, "Exit non-zero when stale functions remain")

	// Operational flags
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a .lambdaspectre.yaml config file")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Verbose logging")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Dry run mode (don't write output)")

	return cmd
}

// applyFileConfig layers values from a config file under explicit CLI flags.
// Flags the user set always win.
func applyFileConfig(cmd *cobra.Command, cfg *config.Config, configPath string, pollIntervalStr, pollTimeoutStr *string) error {
	var fc *config.FileConfig
	var err error

	if configPath != "" {
		fc, err = config.LoadFile(configPath)
	} else {
		fc, _, err = config.AutoLoadFile()
	}
	if err != nil {
		return err
	}
	if fc == nil {
		return nil
	}

	flags := cmd.Flags()
	if !flags.Changed("region") && fc.Region != "" {
		cfg.Region = fc.Region
	}
	if !flags.Changed("profile") && fc.Profile != "" {
		cfg.Profile = fc.Profile
	}
	if !flags.Changed("athena-bucket") && fc.AthenaBucket != "" {
		cfg.AthenaBucket = fc.AthenaBucket
	}
	if !flags.Changed("cloudtrail-bucket") && fc.CloudTrailBucket != "" {
		cfg.CloudTrailBucket = fc.CloudTrailBucket
	}
	if !flags.Changed("table-name") && fc.TableName != "" {
		cfg.TableName = fc.TableName
	}
	if !flags.Changed("year") && fc.Year != "" {
		cfg.Year = fc.Year
	}
	if !flags.Changed("format") && fc.Format != "" {
		cfg.Format = fc.Format
	}
	if !flags.Changed("exclude") && len(fc.ExcludeFunctions) > 0 {
		cfg.ExcludeFunctions = fc.ExcludeFunctions
	}
	if !flags.Changed("baseline") && fc.Baseline != "" {
		cfg.BaselinePath = fc.Baseline
	}
	if !flags.Changed("poll-interval") && fc.PollInterval != "" {
		*pollIntervalStr = fc.PollInterval
	}
	if !flags.Changed("poll-timeout") && fc.PollTimeout != "" {
		*pollTimeoutStr = fc.PollTimeout
	}

	return nil
}

// runAnalyze executes the reconciliation workflow
func runAnalyze(cfg *config.Config) error {
	startTime := time.Now()
	ctx := context.Background()

	// 1. Environment preflight
	env, err := preflight.NewChecker().Check()
	if err != nil {
		return err
	}
	fmt.Printf("🖥  Platform: %s (%s), aws-cli %s\n", env.Platform, env.GoVersion, env.AWSCLIVersion)

	if cfg.Verbose {
		slog.Debug("starting analysis",
			slog.String("region", cfg.Region),
			slog.String("profile", cfg.Profile),
			slog.String("table", cfg.TableName),
			slog.String("year", cfg.Year),
			slog.Duration("poll_interval", cfg.PollInterval),
			slog.Duration("poll_timeout", cfg.PollTimeout),
		)
	}

	// 2. Fetch the live function inventory (fully paginated)
	fmt.Println("λ  Listing Lambda functions...")
	lambdaClient, err := inventory.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create Lambda client: %w", err)
	}
	arns, total, err := inventory.ListFunctionARNs(ctx, lambdaClient, cfg.Region)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Found %d functions in %s\n", total, cfg.Region)

	// 3. Build the three dependent statements
	stmts, err := queries.Build(queries.Params{
		TableName:        cfg.TableName,
		CloudTrailBucket: cfg.CloudTrailBucket,
		Region:           cfg.Region,
		Year:             cfg.Year,
		FunctionARNs:     arns,
	})
	if err != nil {
		return fmt.Errorf("failed to build queries: %w", err)
	}

	// 4. Run them sequentially against Athena
	fmt.Println("🔍 Running Athena queries (create table, add partition, usage)...")
	athenaClient, err := athena.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create Athena client: %w", err)
	}
	exec := athena.NewExecutor(athenaClient, cfg)
	rows, queryIDs, err := exec.RunAll(ctx, stmts.Ordered())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Usage query returned %d rows\n", len(rows))

	// 5. Reconcile inventory against usage
	rec := differ.Reconcile(arns, rows)
	if excluded := differ.ApplyExclusions(&rec, cfg.IsFunctionExcluded); excluded > 0 {
		fmt.Printf("✓ Excluded %d functions by pattern\n", excluded)
	}

	// 6. Baseline handling: record first, then suppress
	if cfg.UpdateBaseline {
		path := cfg.BaselinePath
		if path == "" {
			path = baseline.DefaultPath
		}
		known, err := baseline.Load(path)
		if err != nil {
			return err
		}
		for _, fingerprint := range baseline.CollectFingerprints(&rec) {
			known[fingerprint] = struct{}{}
		}
		if err := baseline.Save(path, known); err != nil {
			return err
		}
		fmt.Printf("✓ Baseline updated: %s\n", path)
	}
	baselineApplied := false
	if cfg.BaselinePath != "" && !cfg.UpdateBaseline {
		known, err := baseline.Load(cfg.BaselinePath)
		if err != nil {
			return err
		}
		suppressed, _ := baseline.SuppressKnown(&rec, known)
		baselineApplied = true
		if suppressed > 0 {
			fmt.Printf("✓ Suppressed %d known stale functions\n", suppressed)
		}
	}

	// 7. Build and write the report
	report := buildReport(cfg, rec, queryIDs, baselineApplied, startTime)
	if !cfg.DryRun {
		if err := reporter.New(cfg).Generate(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		fmt.Printf("✓ Report written to: %s\n", cfg.OutputDir)
	} else {
		fmt.Println("🏃 Dry run mode - skipping output")
	}

	fmt.Printf("\nOut of %d functions, %d have not been invoked in the past 30 days.\n",
		rec.TotalFunctions, rec.StaleCount)

	duration := time.Since(startTime)
	fmt.Printf("✅ Analysis complete in %s\n", duration.Round(time.Second))

	if cfg.FailOnStale && len(rec.StaleFunctions) > 0 {
		return &FindingsError{Count: len(rec.StaleFunctions)}
	}

	return nil
}

// buildReport constructs the final report
func buildReport(cfg *config.Config, rec models.Reconciliation, queryIDs []string, baselineApplied bool, startTime time.Time) *models.Report {
	generatedAt := time.Now()

	return &models.Report{
		Tool:      "lambdaspectre",
		Version:   version,
		Timestamp: generatedAt.UTC().Format(time.RFC3339),
		Metadata: models.Metadata{
			GeneratedAt:      generatedAt,
			Region:           cfg.Region,
			Year:             cfg.Year,
			TableName:        cfg.TableName,
			QueryIDs:         queryIDs,
			AnalysisDuration: time.Since(startTime).Round(time.Second).String(),
			Version:          version,
			BaselineApplied:  baselineApplied,
		},
		Reconciliation: rec,
	}
}
