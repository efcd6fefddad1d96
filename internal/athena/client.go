// Package athena submits SQL statements to the Athena asynchronous query API
// and waits for their terminal status. Statements run strictly sequentially:
// the partition registration depends on the table existing and the usage
// query depends on the partition, so nothing is ever submitted concurrently.
package athena

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

// API is the slice of the Athena client the executor needs. It matches the
// aws-sdk-go-v2 method signatures so the real client satisfies it directly.
type API interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// NewClient builds an Athena client for the configured region and profile.
func NewClient(ctx context.Context, cfg *config.Config) (*athena.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if profile := strings.TrimSpace(cfg.Profile); profile != "" && profile != "default" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return athena.NewFromConfig(awsCfg), nil
}

// OutputLocation derives the staging location Athena writes query results to.
func OutputLocation(athenaBucket, region string) string {
	return fmt.Sprintf("%s-%s", athenaBucket, region)
}
