package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type fakeLambdaAPI struct {
	pages []*lambda.ListFunctionsOutput
	err   error
	calls int
}

func (f *fakeLambdaAPI) ListFunctions(_ context.Context, params *lambda.ListFunctionsInput, _ ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.pages) {
		return &lambda.ListFunctionsOutput{}, nil
	}

	// Pages past the first must carry the marker of the prior page.
	if f.calls > 0 && aws.ToString(params.Marker) == "" {
		return nil, errors.New("missing pagination marker")
	}

	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func page(next string, arns ...string) *lambda.ListFunctionsOutput {
	functions := make([]types.FunctionConfiguration, 0, len(arns))
	for _, arn := range arns {
		functions = append(functions, types.FunctionConfiguration{FunctionArn: aws.String(arn)})
	}

	out := &lambda.ListFunctionsOutput{Functions: functions}
	if next != "" {
		out.NextMarker = aws.String(next)
	}
	return out
}

func TestListFunctionARNsAggregatesAllPages(t *testing.T) {
	api := &fakeLambdaAPI{
		pages: []*lambda.ListFunctionsOutput{
			page("marker-1", "arn:aws:lambda:us-east-1:1:function:a", "arn:aws:lambda:us-east-1:1:function:b"),
			page("marker-2", "arn:aws:lambda:us-east-1:1:function:c"),
			page("", "arn:aws:lambda:us-east-1:1:function:d"),
		},
	}

	arns, count, err := ListFunctionARNs(context.Background(), api, "us-east-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
	if count != len(arns) {
		t.Fatalf("count must equal len(arns): %d vs %d", count, len(arns))
	}
	if api.calls != 3 {
		t.Fatalf("expected 3 pages fetched, got %d", api.calls)
	}
	if arns[3] != "arn:aws:lambda:us-east-1:1:function:d" {
		t.Fatalf("unexpected last ARN: %q", arns[3])
	}
}

func TestListFunctionARNsEmptyInventory(t *testing.T) {
	api := &fakeLambdaAPI{pages: []*lambda.ListFunctionsOutput{page("")}}

	_, _, err := ListFunctionARNs(context.Background(), api, "eu-west-2")
	if err == nil {
		t.Fatal("expected empty inventory error")
	}

	var empty *EmptyInventoryError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyInventoryError, got %T: %v", err, err)
	}
	if empty.Region != "eu-west-2" {
		t.Fatalf("expected region in error, got %q", empty.Region)
	}
	if !strings.Contains(err.Error(), "no Lambda functions found") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestListFunctionARNsPropagatesAPIError(t *testing.T) {
	api := &fakeLambdaAPI{err: errors.New("AccessDeniedException")}

	_, _, err := ListFunctionARNs(context.Background(), api, "us-east-1")
	if err == nil || !strings.Contains(err.Error(), "failed to list functions in us-east-1") {
		t.Fatalf("expected wrapped listing error, got %v", err)
	}
}
