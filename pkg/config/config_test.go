package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Region != "us-east-1" {
		t.Errorf("expected default region us-east-1, got %s", cfg.Region)
	}
	if cfg.TableName != "cloudtrail_lambda_logs" {
		t.Errorf("expected default table cloudtrail_lambda_logs, got %s", cfg.TableName)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected default poll interval 5s, got %s", cfg.PollInterval)
	}
	if cfg.PollTimeout != 0 {
		t.Errorf("expected no default poll timeout, got %s", cfg.PollTimeout)
	}
	if cfg.Format != "text" {
		t.Errorf("expected default format text, got %s", cfg.Format)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false}, // standard Go syntax fallback
		{"", 0, true},
		{"abc", 0, true},
		{"d", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDuration(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestIsAthenaRegion(t *testing.T) {
	tests := []struct {
		region string
		want   bool
	}{
		{"us-east-1", true},
		{"eu-west-2", true},
		{"ap-southeast-4", true},
		{" us-east-1 ", true},
		{"mars-north-1", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsAthenaRegion(tc.region); got != tc.want {
			t.Errorf("IsAthenaRegion(%q) = %v, want %v", tc.region, got, tc.want)
		}
	}
}

func TestValidateRegionNamesSupportedRegions(t *testing.T) {
	err := ValidateRegion("mars-north-1")
	if err == nil {
		t.Fatal("expected error for unsupported region")
	}
	if !strings.Contains(err.Error(), "does not support Athena") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if !strings.Contains(err.Error(), "us-east-1") {
		t.Fatalf("expected error to list supported regions, got: %v", err)
	}
}

func TestAthenaRegionsSorted(t *testing.T) {
	regions := AthenaRegions()
	if len(regions) == 0 {
		t.Fatal("expected non-empty region list")
	}
	for i := 1; i < len(regions); i++ {
		if regions[i-1] >= regions[i] {
			t.Fatalf("regions not sorted at index %d: %s >= %s", i, regions[i-1], regions[i])
		}
	}
}

func TestIsFunctionExcluded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExcludeFunctions = []string{
		"canary-*",
		"arn:aws:lambda:us-east-1:123456789012:function:legacy-import",
		"  Exact-Name  ",
	}
	cfg.Normalize()

	tests := []struct {
		name string
		arn  string
		want bool
	}{
		{
			name: "glob_on_function_name",
			arn:  "arn:aws:lambda:us-east-1:123456789012:function:canary-prod",
			want: true,
		},
		{
			name: "full_arn_match",
			arn:  "arn:aws:lambda:us-east-1:123456789012:function:legacy-import",
			want: true,
		},
		{
			name: "exact_name_case_insensitive",
			arn:  "arn:aws:lambda:us-east-1:123456789012:function:exact-name",
			want: true,
		},
		{
			name: "no_match",
			arn:  "arn:aws:lambda:us-east-1:123456789012:function:billing-api",
			want: false,
		},
		{
			name: "empty_arn",
			arn:  "",
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.IsFunctionExcluded(tc.arn); got != tc.want {
				t.Fatalf("IsFunctionExcluded(%q) = %v, want %v", tc.arn, got, tc.want)
			}
		})
	}
}

func TestIsFunctionExcludedNoPatterns(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsFunctionExcluded("arn:aws:lambda:us-east-1:123456789012:function:anything") {
		t.Fatal("expected no exclusion with empty pattern list")
	}
}

func TestNormalizeDropsEmptyPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExcludeFunctions = []string{" canary-* ", "", "   ", "Legacy"}
	cfg.Normalize()

	if len(cfg.ExcludeFunctions) != 2 {
		t.Fatalf("expected 2 patterns after normalize, got %v", cfg.ExcludeFunctions)
	}
	if cfg.ExcludeFunctions[0] != "canary-*" || cfg.ExcludeFunctions[1] != "legacy" {
		t.Fatalf("unexpected normalized patterns: %v", cfg.ExcludeFunctions)
	}
}

func TestFunctionNameFromARN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"arn:aws:lambda:us-east-1:123456789012:function:orders-api", "orders-api"},
		{"bare-name", "bare-name"},
		{"arn:aws:s3:::bucket", ""},
		{"arn:aws:lambda:us-east-1:123456789012:loggroup:x", ""},
	}

	for _, tc := range tests {
		if got := functionNameFromARN(tc.input); got != tc.want {
			t.Errorf("functionNameFromARN(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
