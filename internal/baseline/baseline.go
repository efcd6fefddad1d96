// Package baseline persists fingerprints of stale functions an operator has
// already acknowledged, so repeat runs only surface new ones. The baseline
// file is optional and never consulted by the reconciliation core itself.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lambdaspectre/lambdaspectre/internal/models"
)

const (
	// DefaultPath is used when --update-baseline is enabled without an explicit --baseline path.
	DefaultPath = ".lambdaspectre-baseline.json"
	fileVersion = 1
)

// Set stores baseline fingerprints.
type Set map[string]struct{}

// File is the persisted baseline JSON payload.
type File struct {
	Version      int      `json:"version"`
	Fingerprints []string `json:"fingerprints"`
}

// Load reads a baseline file. Missing files return an empty set.
func Load(path string) (Set, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("baseline path is empty")
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("read baseline file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse baseline file: %w", err)
	}
	if file.Version != 0 && file.Version != fileVersion {
		return nil, fmt.Errorf("unsupported baseline version: %d", file.Version)
	}

	set := Set{}
	for _, fingerprint := range file.Fingerprints {
		if fingerprint == "" {
			continue
		}
		set[fingerprint] = struct{}{}
	}

	return set, nil
}

// Save writes a baseline file with sorted, unique fingerprints.
func Save(path string, set Set) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return errors.New("baseline path is empty")
	}

	dir := filepath.Dir(trimmed)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create baseline directory: %w", err)
		}
	}

	payload := File{
		Version:      fileVersion,
		Fingerprints: Sorted(set),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline file: %w", err)
	}

	if err := os.WriteFile(trimmed, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write baseline file: %w", err)
	}

	return nil
}

// Sorted returns sorted fingerprints from a set.
func Sorted(set Set) []string {
	fingerprints := make([]string, 0, len(set))
	for fingerprint := range set {
		fingerprints = append(fingerprints, fingerprint)
	}
	sort.Strings(fingerprints)
	return fingerprints
}

// Fingerprint derives the stable identifier for a stale function ARN.
func Fingerprint(arn string) string {
	sum := sha256.Sum256([]byte("stale-function|" + strings.TrimSpace(arn)))
	return hex.EncodeToString(sum[:])
}

// CollectFingerprints extracts fingerprints for the current stale set.
func CollectFingerprints(rec *models.Reconciliation) []string {
	set := Set{}
	if rec == nil {
		return []string{}
	}

	for _, arn := range rec.StaleFunctions {
		set[Fingerprint(arn)] = struct{}{}
	}

	return Sorted(set)
}

// SuppressKnown removes stale functions already present in the baseline set
// and records how many were hidden. Totals and the arithmetic stale count
// are left untouched so the report still reflects the full reconciliation.
func SuppressKnown(rec *models.Reconciliation, known Set) (suppressed int, remaining int) {
	if rec == nil {
		return 0, 0
	}
	if len(known) == 0 {
		return 0, len(rec.StaleFunctions)
	}

	kept := rec.StaleFunctions[:0]
	for _, arn := range rec.StaleFunctions {
		if _, ok := known[Fingerprint(arn)]; ok {
			suppressed++
			continue
		}
		kept = append(kept, arn)
	}

	rec.StaleFunctions = kept
	rec.SuppressedFunctions = suppressed
	return suppressed, len(kept)
}
