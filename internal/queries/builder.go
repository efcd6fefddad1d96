// Package queries builds the three Athena statements the reconciliation run
// submits: the CloudTrail external table definition, the year partition
// registration, and the 30-day invocation usage query. The statements are
// ordered; each depends on the side effects of the one before it.
package queries

import (
	"errors"
	"fmt"
	"strings"
)

// Params are the inputs to Build. All fields are required.
type Params struct {
	TableName        string
	CloudTrailBucket string
	Region           string
	Year             string
	FunctionARNs     []string
}

// Statements holds the three SQL statements in submission order.
type Statements struct {
	CreateTable  string
	AddPartition string
	UsageQuery   string
}

// Labels for operator-facing logs and report metadata.
const (
	LabelCreateTable  = "create-table"
	LabelAddPartition = "add-partition"
	LabelUsageQuery   = "usage-query"
)

// createTableTemplate defines the external table over the CloudTrail
// location. The schema is the fixed CloudTrail record layout; re-creating an
// existing table is an engine policy surfaced as a query failure, not masked
// here.
const createTableTemplate = `CREATE EXTERNAL TABLE %s (
    eventversion STRING,
    userIdentity STRUCT<
    type:STRING,
    principalid:STRING,
    arn:STRING,
    accountid:STRING,
    invokedby:STRING,
    accesskeyid:STRING,
    userName:STRING,
    sessioncontext:STRUCT<
        attributes:STRUCT<
        mfaauthenticated:STRING,
        creationdate:STRING>,
        sessionIssuer:STRUCT<
        type:STRING,
        principalId:STRING,
        arn:STRING,
        accountId:STRING,
        userName:STRING>>>,
    eventTime STRING,
    eventSource STRING,
    eventName STRING,
    awsRegion STRING,
    sourceIpAddress STRING,
    userAgent STRING,
    errorCode STRING,
    errorMessage STRING,
    requestParameters STRING,
    responseElements STRING,
    additionalEventData STRING,
    requestId STRING,
    eventId STRING,
    resources ARRAY<STRUCT<
    ARN:STRING,accountId:
    STRING,type:STRING>>,
    eventType STRING,
    apiVersion STRING,
    readOnly STRING,
    recipientAccountId STRING,
    serviceEventDetails STRING,
    sharedEventID STRING,
    vpcEndpointId STRING
    )
    PARTITIONED BY(year string)
    ROW FORMAT SERDE 'com.amazon.emr.hive.serde.CloudTrailSerde'
    STORED AS INPUTFORMAT 'com.amazon.emr.cloudtrail.CloudTrailInputFormat'
    OUTPUTFORMAT 'org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat'
    LOCATION '%s';`

const addPartitionTemplate = `ALTER TABLE %s ADD PARTITION (year='%s')
LOCATION '%s/CloudTrail/%s/%s/'`

// usageQueryTemplate selects the distinct invoked function names within the
// partition year and the trailing 30 days. The window is anchored to
// current_timestamp, so it is evaluated when the query runs, not when the
// statement is built.
const usageQueryTemplate = `SELECT json_extract_scalar(requestparameters, '$.functionName') AS function_name, max(eventtime) AS last_run
FROM %s
WHERE eventname = 'Invoke'
  AND year = '%s'
  AND from_iso8601_timestamp(eventtime) > current_timestamp - interval '1' month
  AND json_extract_scalar(requestparameters, '$.functionName') IN (%s)
GROUP BY json_extract_scalar(requestparameters, '$.functionName')`

// Build produces the three statements. It is deterministic: identical params
// yield byte-identical SQL. An empty ARN list is rejected here so an empty
// IN-list can never reach the engine.
func Build(p Params) (Statements, error) {
	if strings.TrimSpace(p.TableName) == "" {
		return Statements{}, errors.New("table name is required")
	}
	if strings.TrimSpace(p.CloudTrailBucket) == "" {
		return Statements{}, errors.New("cloudtrail bucket is required")
	}
	if strings.TrimSpace(p.Region) == "" {
		return Statements{}, errors.New("region is required")
	}
	if strings.TrimSpace(p.Year) == "" {
		return Statements{}, errors.New("year is required")
	}
	if len(p.FunctionARNs) == 0 {
		return Statements{}, errors.New("function ARN list is empty")
	}

	return Statements{
		CreateTable:  fmt.Sprintf(createTableTemplate, p.TableName, p.CloudTrailBucket),
		AddPartition: fmt.Sprintf(addPartitionTemplate, p.TableName, p.Year, p.CloudTrailBucket, p.Region, p.Year),
		UsageQuery:   fmt.Sprintf(usageQueryTemplate, p.TableName, p.Year, RenderInList(p.FunctionARNs)),
	}, nil
}

// Ordered returns the statements with their labels in required submission
// order: the partition depends on the table existing and the usage query
// depends on the partition being registered.
func (s Statements) Ordered() []Statement {
	return []Statement{
		{Label: LabelCreateTable, SQL: s.CreateTable},
		{Label: LabelAddPartition, SQL: s.AddPartition},
		{Label: LabelUsageQuery, SQL: s.UsageQuery},
	}
}

// Statement pairs a SQL string with its operator-facing label.
type Statement struct {
	Label string
	SQL   string
}

// RenderInList renders values as a comma-separated sequence of quoted SQL
// string literals. Embedded single quotes are doubled; Lambda ARNs never
// contain them, but the boundary has an explicit policy rather than trusting
// the input to be engine-safe.
func RenderInList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, "'"+strings.ReplaceAll(value, "'", "''")+"'")
	}
	return strings.Join(quoted, ", ")
}
