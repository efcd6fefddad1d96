// Package inventory lists the live Lambda function inventory for a region.
// The listing is fully paginated before the reconciliation core runs; a
// partial inventory would silently under-count stale functions.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

// EmptyInventoryError means the region holds no functions. The run exits
// before any query is built: an empty inventory renders an empty IN-list,
// which must never be submitted.
type EmptyInventoryError struct {
	Region string
}

func (e *EmptyInventoryError) Error() string {
	return fmt.Sprintf("no Lambda functions found in region %s", e.Region)
}

// API is the slice of the Lambda client the lister needs.
type API interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

// NewClient builds a Lambda client for the configured region and profile.
func NewClient(ctx context.Context, cfg *config.Config) (*lambda.Client, error) {
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

	return lambda.NewFromConfig(awsCfg), nil
}

// ListFunctionARNs returns every function ARN in the region along with the
// count. The count is derived from the returned slice, never tracked as
// side-channel state, and the listing walks all pages via the marker token.
func ListFunctionARNs(ctx context.Context, api API, region string) ([]string, int, error) {
	var arns []string
	var marker *string

	for {
		out, err := api.ListFunctions(ctx, &lambda.ListFunctionsInput{
			Marker: marker,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list functions in %s: %w", region, err)
		}

		for _, fn := range out.Functions {
			arns = append(arns, aws.ToString(fn.FunctionArn))
		}

		if out.NextMarker == nil || aws.ToString(out.NextMarker) == "" {
			break
		}
		marker = out.NextMarker
	}

	slog.Debug("function inventory fetched",
		slog.String("region", region),
		slog.Int("count", len(arns)),
	)

	if len(arns) == 0 {
		return nil, 0, &EmptyInventoryError{Region: region}
	}

	return arns, len(arns), nil
}
