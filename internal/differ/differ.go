// Package differ reconciles the live function inventory against the
// invoked-function rows returned by the usage query.
package differ

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lambdaspectre/lambdaspectre/internal/models"
)

// Reconcile computes the stale-function set. Row 0 of rows is the result-set
// header and is skipped; column 0 of each remaining row is the invoked
// function ARN.
//
// StaleCount is deliberately the arithmetic difference of counts,
// len(inventory) - len(used), matching the long-standing report semantics.
// When the audit log names a function that is no longer in the inventory
// (invoked, then deleted), that number diverges from len(StaleFunctions);
// the divergence is flagged via CountAnomaly and logged, never corrected.
func Reconcile(inventory []string, rows []models.ResultRow) models.Reconciliation {
	used := make(map[string]struct{})
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if len(row) == 0 {
			continue
		}
		arn := strings.TrimSpace(row[0])
		if arn == "" {
			continue
		}
		used[arn] = struct{}{}
	}

	inventorySet := make(map[string]struct{}, len(inventory))
	for _, arn := range inventory {
		inventorySet[arn] = struct{}{}
	}

	var stale []string
	for arn := range inventorySet {
		if _, ok := used[arn]; !ok {
			stale = append(stale, arn)
		}
	}
	sortCaseInsensitive(stale)

	anomaly := false
	for arn := range used {
		if _, ok := inventorySet[arn]; !ok {
			anomaly = true
			slog.Warn("audit log references a function absent from the inventory",
				slog.String("arn", arn),
			)
		}
	}

	staleCount := len(inventorySet) - len(used)
	if anomaly {
		slog.Warn("stale count diverges from stale list due to deleted-but-invoked functions",
			slog.Int("stale_count", staleCount),
			slog.Int("stale_list", len(stale)),
		)
	}

	usedList := make([]string, 0, len(used))
	for arn := range used {
		usedList = append(usedList, arn)
	}
	sortCaseInsensitive(usedList)

	return models.Reconciliation{
		TotalFunctions: len(inventorySet),
		UsedFunctions:  usedList,
		StaleFunctions: stale,
		StaleCount:     staleCount,
		CountAnomaly:   anomaly,
	}
}

// ApplyExclusions removes stale entries matching the exclude predicate and
// returns how many were removed. Counts and the anomaly flag are left
// untouched; exclusion is a reporting concern, not a reconciliation one.
func ApplyExclusions(rec *models.Reconciliation, excluded func(string) bool) int {
	if rec == nil || excluded == nil || len(rec.StaleFunctions) == 0 {
		return 0
	}

	kept := rec.StaleFunctions[:0]
	removed := 0
	for _, arn := range rec.StaleFunctions {
		if excluded(arn) {
			removed++
			continue
		}
		kept = append(kept, arn)
	}
	rec.StaleFunctions = kept
	return removed
}

func sortCaseInsensitive(values []string) {
	sort.Slice(values, func(i, j int) bool {
		li, lj := strings.ToLower(values[i]), strings.ToLower(values[j])
		if li == lj {
			return values[i] < values[j]
		}
		return li < lj
	})
}
