// Package infra provisions the user-events pipeline: a streams-enabled
// DynamoDB table, a shared pipes role and one EventBridge Pipe per mutation
// kind, all driven by pipetheory routing rules.
package infra

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awspipes"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/pipetheory"
	"github.com/theory-cloud/pipetheory/pkg/naming"
)

// UserEventsPipelineProps configure one pipeline construct. The zero value
// reproduces the original deployment: a new PK/SK table, events sourced as
// "myapp.users", keys prefixed "USER#".
type UserEventsPipelineProps struct {
	// EventSourceName tags published events; empty keeps the default.
	EventSourceName string

	// KeyPrefix scopes the shared stream to one entity type; empty keeps
	// the default.
	KeyPrefix string

	// AppName and Stage, when set, give the table and pipes deterministic
	// physical names. Left empty, CloudFormation generates names.
	AppName string
	Stage   string

	// Table injects an existing streams-enabled table instead of creating
	// one. The table must expose a stream ARN or the build aborts.
	Table awsdynamodb.ITable

	RemovalPolicy awscdk.RemovalPolicy
}

// UserEventsPipeline owns the provisioned resources. The role is a single
// shared value: all three pipes reference it.
type UserEventsPipeline struct {
	constructs.Construct

	Table awsdynamodb.ITable
	Role  awsiam.Role
	Pipes map[pipetheory.OperationType]awspipes.CfnPipe
}

// NewUserEventsPipeline builds the construct tree. Definition errors from the
// rule builder (missing stream, bad operation) panic: synthesis must abort
// whole, never provision a partial pipeline.
func NewUserEventsPipeline(scope constructs.Construct, id *string, props *UserEventsPipelineProps) *UserEventsPipeline {
	if props == nil {
		props = &UserEventsPipelineProps{}
	}

	construct := constructs.NewConstruct(scope, id)
	stack := awscdk.Stack_Of(construct)

	table := props.Table
	if table == nil {
		table = newSourceTable(construct, props)
	}

	tableRef := pipetheory.TableRef{
		TableName: strVal(table.TableName()),
		StreamARN: strVal(table.TableStreamArn()),
	}

	builder := pipetheory.NewBuilder(
		pipetheory.WithEventSource(props.EventSourceName),
		pipetheory.WithKeyPrefix(props.KeyPrefix),
	)
	rules, err := builder.Rules(tableRef)
	if err != nil {
		panic(err)
	}

	busARN := defaultBusARN(stack)
	role := newPipeRole(construct, tableRef.StreamARN, busARN)

	pipes := make(map[pipetheory.OperationType]awspipes.CfnPipe, len(rules))
	for _, rule := range rules {
		pipes[rule.Operation] = newPipe(construct, rule, table, role, busARN, props)
	}

	return &UserEventsPipeline{
		Construct: construct,
		Table:     table,
		Role:      role,
		Pipes:     pipes,
	}
}

func newSourceTable(scope constructs.Construct, props *UserEventsPipelineProps) awsdynamodb.Table {
	tableProps := &awsdynamodb.TableProps{
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String(pipetheory.DefaultPartitionKeyName),
			Type: awsdynamodb.AttributeType_STRING,
		},
		SortKey: &awsdynamodb.Attribute{
			Name: jsii.String(pipetheory.DefaultSortKeyName),
			Type: awsdynamodb.AttributeType_STRING,
		},
		Stream: awsdynamodb.StreamViewType_NEW_AND_OLD_IMAGES,
	}
	if props.AppName != "" {
		tableProps.TableName = jsii.String(naming.TableName(props.AppName, props.Stage))
	}
	if props.RemovalPolicy != "" {
		tableProps.RemovalPolicy = props.RemovalPolicy
	}
	return awsdynamodb.NewTable(scope, jsii.String("DDBTable"), tableProps)
}

func newPipeRole(scope constructs.Construct, streamARN, busARN string) awsiam.Role {
	source := pipetheory.SourcePolicy(streamARN)
	target := pipetheory.TargetPolicy(busARN)

	return awsiam.NewRole(scope, jsii.String("PipeIAMRole"), &awsiam.RoleProps{
		AssumedBy:   awsiam.NewServicePrincipal(jsii.String("pipes.amazonaws.com"), nil),
		Description: jsii.String("Role for EventBridge Pipes"),
		InlinePolicies: &map[string]awsiam.PolicyDocument{
			source.Name: policyDocument(source),
			target.Name: policyDocument(target),
		},
	})
}

func policyDocument(policy pipetheory.AccessPolicy) awsiam.PolicyDocument {
	statements := make([]awsiam.PolicyStatement, 0, len(policy.Statements))
	for _, statement := range policy.Statements {
		statements = append(statements, awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings(statement.Actions...),
			Effect:    awsiam.Effect_ALLOW,
			Resources: jsii.Strings(statement.Resources...),
		}))
	}
	return awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
		Statements: &statements,
	})
}

func newPipe(
	scope constructs.Construct,
	rule pipetheory.RoutingRule,
	table awsdynamodb.ITable,
	role awsiam.Role,
	busARN string,
	props *UserEventsPipelineProps,
) awspipes.CfnPipe {
	pipeProps := &awspipes.CfnPipeProps{
		RoleArn: role.RoleArn(),
		Source:  table.TableStreamArn(),
		SourceParameters: &awspipes.CfnPipe_PipeSourceParametersProperty{
			DynamoDbStreamParameters: &awspipes.CfnPipe_PipeSourceDynamoDBStreamParametersProperty{
				StartingPosition: jsii.String(rule.Source.StartingPosition),
				BatchSize:        jsii.Number(float64(rule.Source.BatchSize)),
			},
			FilterCriteria: &awspipes.CfnPipe_FilterCriteriaProperty{
				Filters: &[]*awspipes.CfnPipe_FilterProperty{
					{Pattern: jsii.String(rule.Filter.JSON())},
				},
			},
		},
		Target: jsii.String(busARN),
		TargetParameters: &awspipes.CfnPipe_PipeTargetParametersProperty{
			InputTemplate: jsii.String(rule.InputTemplate),
			EventBridgeEventBusParameters: &awspipes.CfnPipe_PipeTargetEventBridgeEventBusParametersProperty{
				DetailType: jsii.String(rule.DetailType),
				Source:     jsii.String(rule.EventSource),
			},
		},
	}
	if props.AppName != "" {
		pipeProps.Name = jsii.String(naming.PipeName(props.AppName, rule.DetailType, props.Stage))
	}
	return awspipes.NewCfnPipe(scope, jsii.String(rule.Name()), pipeProps)
}

func defaultBusARN(stack awscdk.Stack) string {
	return fmt.Sprintf("arn:%s:events:%s:%s:event-bus/default",
		strVal(stack.Partition()), strVal(stack.Region()), strVal(stack.Account()))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
