package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lambdaspectre/lambdaspectre/internal/models"
	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

const (
	textANSIReset = "\x1b[0m"
	textANSIBold  = "\x1b[1m"
)

// WriteText writes a human-readable text report to report.txt and stdout.
func WriteText(report *models.Report, cfg *config.Config) error {
	return writeText(report, cfg, os.Stdout)
}

func writeText(report *models.Report, cfg *config.Config, out io.Writer) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if out == nil {
		return fmt.Errorf("writer is nil")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rendered := renderTextReport(report, supportsANSI(out))
	outputPath := filepath.Join(cfg.OutputDir, "report.txt")

	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report.txt: %w", err)
	}

	if _, err := io.WriteString(out, rendered); err != nil {
		return fmt.Errorf("failed to write text report to output: %w", err)
	}

	return nil
}

func renderTextReport(report *models.Report, useANSI bool) string {
	var b strings.Builder

	generatedAt := strings.TrimSpace(report.Timestamp)
	if generatedAt == "" {
		if !report.Metadata.GeneratedAt.IsZero() {
			generatedAt = report.Metadata.GeneratedAt.UTC().Format(time.RFC3339)
		} else {
			generatedAt = "unknown"
		}
	}

	region := strings.TrimSpace(report.Metadata.Region)
	if region == "" {
		region = "unknown"
	}

	rec := report.Reconciliation

	writeTextSectionHeader(&b, "Lambda Usage Reconciliation Report", useANSI)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt)
	fmt.Fprintf(&b, "Region: %s\n", region)
	fmt.Fprintf(&b, "Partition year: %s\n", report.Metadata.Year)
	fmt.Fprintf(&b, "Audit table: %s\n", report.Metadata.TableName)
	b.WriteString("\n")

	writeTextSectionHeader(&b, "Summary", useANSI)
	fmt.Fprintf(&b, "Functions in inventory: %d\n", rec.TotalFunctions)
	fmt.Fprintf(&b, "Invoked in last 30 days: %d\n", len(rec.UsedFunctions))
	fmt.Fprintf(&b, "Not invoked in last 30 days: %d\n", rec.StaleCount)
	if rec.SuppressedFunctions > 0 {
		fmt.Fprintf(&b, "Suppressed by baseline: %d\n", rec.SuppressedFunctions)
	}
	if rec.CountAnomaly {
		b.WriteString("Warning: the audit log references functions absent from the inventory;\n")
		fmt.Fprintf(&b, "the stale count (%d) and the stale list (%d entries) diverge.\n",
			rec.StaleCount, len(rec.StaleFunctions))
	}
	b.WriteString("\n")

	writeTextSectionHeader(&b, "Stale Functions", useANSI)
	if len(rec.StaleFunctions) == 0 {
		b.WriteString("Every function in the inventory was invoked within the window.\n")
	} else {
		for _, arn := range rec.StaleFunctions {
			fmt.Fprintf(&b, "  %s\n", arn)
		}
	}

	if len(report.Metadata.QueryIDs) > 0 {
		b.WriteString("\n")
		writeTextSectionHeader(&b, "Query Executions", useANSI)
		for _, id := range report.Metadata.QueryIDs {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}

	return b.String()
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		header = textANSIBold + title + textANSIReset
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
