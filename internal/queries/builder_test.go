package queries

import (
	"strings"
	"testing"
)

func validParams() Params {
	return Params{
		TableName:        "cloudtrail_lambda_logs",
		CloudTrailBucket: "s3://acme-cloudtrail",
		Region:           "us-east-1",
		Year:             "2026",
		FunctionARNs: []string{
			"arn:aws:lambda:us-east-1:123456789012:function:alpha",
			"arn:aws:lambda:us-east-1:123456789012:function:beta",
		},
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(p *Params) {},
			wantErr: "",
		},
		{
			name:    "missing_table",
			mutate:  func(p *Params) { p.TableName = " " },
			wantErr: "table name is required",
		},
		{
			name:    "missing_bucket",
			mutate:  func(p *Params) { p.CloudTrailBucket = "" },
			wantErr: "cloudtrail bucket is required",
		},
		{
			name:    "missing_region",
			mutate:  func(p *Params) { p.Region = "" },
			wantErr: "region is required",
		},
		{
			name:    "missing_year",
			mutate:  func(p *Params) { p.Year = "" },
			wantErr: "year is required",
		},
		{
			name:    "empty_arn_list",
			mutate:  func(p *Params) { p.FunctionARNs = nil },
			wantErr: "function ARN list is empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)

			_, err := Build(p)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(validParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Build(validParams())
		if err != nil {
			t.Fatalf("build failed on iteration %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("expected byte-identical statements across calls, got divergence on iteration %d", i)
		}
	}
}

func TestBuildCreateTableStatement(t *testing.T) {
	stmts, err := Build(validParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for _, fragment := range []string{
		"CREATE EXTERNAL TABLE cloudtrail_lambda_logs",
		"PARTITIONED BY(year string)",
		"com.amazon.emr.hive.serde.CloudTrailSerde",
		"com.amazon.emr.cloudtrail.CloudTrailInputFormat",
		"org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat",
		"LOCATION 's3://acme-cloudtrail';",
	} {
		if !strings.Contains(stmts.CreateTable, fragment) {
			t.Fatalf("expected create-table statement to contain %q", fragment)
		}
	}
}

func TestBuildAddPartitionStatement(t *testing.T) {
	stmts, err := Build(validParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !strings.Contains(stmts.AddPartition, "ALTER TABLE cloudtrail_lambda_logs ADD PARTITION (year='2026')") {
		t.Fatalf("unexpected add-partition statement: %s", stmts.AddPartition)
	}
	if !strings.Contains(stmts.AddPartition, "LOCATION 's3://acme-cloudtrail/CloudTrail/us-east-1/2026/'") {
		t.Fatalf("expected partition location with bucket/CloudTrail/region/year, got: %s", stmts.AddPartition)
	}
}

func TestBuildUsageQueryStatement(t *testing.T) {
	stmts, err := Build(validParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for _, fragment := range []string{
		"eventname = 'Invoke'",
		"year = '2026'",
		"current_timestamp - interval '1' month",
		"'arn:aws:lambda:us-east-1:123456789012:function:alpha', 'arn:aws:lambda:us-east-1:123456789012:function:beta'",
		"GROUP BY json_extract_scalar(requestparameters, '$.functionName')",
	} {
		if !strings.Contains(stmts.UsageQuery, fragment) {
			t.Fatalf("expected usage query to contain %q, got: %s", fragment, stmts.UsageQuery)
		}
	}
}

func TestOrderedPreservesSubmissionOrder(t *testing.T) {
	stmts, err := Build(validParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	ordered := stmts.Ordered()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(ordered))
	}
	if ordered[0].Label != LabelCreateTable || ordered[1].Label != LabelAddPartition || ordered[2].Label != LabelUsageQuery {
		t.Fatalf("unexpected statement order: %s, %s, %s", ordered[0].Label, ordered[1].Label, ordered[2].Label)
	}
	if ordered[0].SQL != stmts.CreateTable || ordered[1].SQL != stmts.AddPartition || ordered[2].SQL != stmts.UsageQuery {
		t.Fatal("ordered statements do not match built statements")
	}
}

func TestRenderInList(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{
			name:   "single_value",
			values: []string{"arn:aws:lambda:us-east-1:1:function:a"},
			want:   "'arn:aws:lambda:us-east-1:1:function:a'",
		},
		{
			name:   "multiple_values",
			values: []string{"a", "b", "c"},
			want:   "'a', 'b', 'c'",
		},
		{
			name:   "embedded_quote_doubled",
			values: []string{"o'brien"},
			want:   "'o''brien'",
		},
		{
			name:   "empty_list",
			values: nil,
			want:   "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderInList(tc.values); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
