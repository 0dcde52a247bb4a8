// Package preflight verifies a deployed user-events pipeline against the
// routing rules it was synthesized from: stream settings on the table, state
// and parameters of each pipe, and reachability of the target bus.
package preflight

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/pipes"
	pipestypes "github.com/aws/aws-sdk-go-v2/service/pipes/types"
	"go.uber.org/zap"

	"github.com/theory-cloud/pipetheory"
)

type dynamoDBAPI interface {
	DescribeTable(
		ctx context.Context,
		params *dynamodb.DescribeTableInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)
}

type pipesAPI interface {
	DescribePipe(
		ctx context.Context,
		params *pipes.DescribePipeInput,
		optFns ...func(*pipes.Options),
	) (*pipes.DescribePipeOutput, error)
}

type eventBridgeAPI interface {
	DescribeEventBus(
		ctx context.Context,
		params *eventbridge.DescribeEventBusInput,
		optFns ...func(*eventbridge.Options),
	) (*eventbridge.DescribeEventBusOutput, error)
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options),
	) (*eventbridge.PutEventsOutput, error)
}

// Target names the deployed resources to verify.
type Target struct {
	TableName string

	// BusName defaults to "default".
	BusName string

	// PipeNames maps each operation to its deployed pipe name.
	PipeNames map[pipetheory.OperationType]string
}

// CheckResult is one verification outcome.
type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

// Report collects every result of a run.
type Report struct {
	Results []CheckResult
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return len(r.Results) > 0
}

type Checker struct {
	ddb  dynamoDBAPI
	pipe pipesAPI
	bus  eventBridgeAPI
	log  *zap.Logger
}

type checkerOptions struct {
	ddb  dynamoDBAPI
	pipe pipesAPI
	bus  eventBridgeAPI
	log  *zap.Logger
}

type Option func(*checkerOptions)

func WithLogger(log *zap.Logger) Option {
	return func(opts *checkerOptions) {
		opts.log = log
	}
}

func WithDynamoDBAPI(api dynamoDBAPI) Option {
	return func(opts *checkerOptions) {
		opts.ddb = api
	}
}

func WithPipesAPI(api pipesAPI) Option {
	return func(opts *checkerOptions) {
		opts.pipe = api
	}
}

func WithEventBridgeAPI(api eventBridgeAPI) Option {
	return func(opts *checkerOptions) {
		opts.bus = api
	}
}

// NewChecker builds a Checker from an AWS config; options replace individual
// service clients, mainly for tests.
func NewChecker(cfg aws.Config, options ...Option) *Checker {
	opts := &checkerOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(opts)
	}
	if opts.ddb == nil {
		opts.ddb = dynamodb.NewFromConfig(cfg)
	}
	if opts.pipe == nil {
		opts.pipe = pipes.NewFromConfig(cfg)
	}
	if opts.bus == nil {
		opts.bus = eventbridge.NewFromConfig(cfg)
	}
	if opts.log == nil {
		opts.log = zap.NewNop()
	}
	return &Checker{ddb: opts.ddb, pipe: opts.pipe, bus: opts.bus, log: opts.log}
}

// Run executes the full verification suite for the rules the stack was built
// from. API failures surface as failed checks, not as a run error: the report
// stays complete either way.
func (c *Checker) Run(ctx context.Context, rules []pipetheory.RoutingRule, target Target) Report {
	if ctx == nil {
		ctx = context.Background()
	}

	var report Report
	report.add(c.log, c.checkTable(ctx, target.TableName))
	for _, rule := range rules {
		name, ok := target.PipeNames[rule.Operation]
		if !ok {
			report.add(c.log, CheckResult{
				Name:   "pipe:" + string(rule.Operation),
				Detail: "no deployed pipe name for operation",
			})
			continue
		}
		report.add(c.log, c.checkPipe(ctx, name, rule))
	}
	report.add(c.log, c.checkBus(ctx, busName(target)))
	return report
}

func (r *Report) add(log *zap.Logger, res CheckResult) {
	r.Results = append(r.Results, res)
	if res.OK {
		log.Info("check passed", zap.String("check", res.Name))
		return
	}
	log.Warn("check failed", zap.String("check", res.Name), zap.String("detail", res.Detail))
}

// ResolveTable fetches the deployed table's change-stream handle. The
// returned ref carries an empty StreamARN when the table has no stream; rule
// building rejects that with a config error.
func (c *Checker) ResolveTable(ctx context.Context, tableName string) (pipetheory.TableRef, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := c.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return pipetheory.TableRef{}, fmt.Errorf("preflight: describe table %s: %w", tableName, err)
	}
	return pipetheory.TableRef{
		TableName: tableName,
		StreamARN: aws.ToString(out.Table.LatestStreamArn),
	}, nil
}

func (c *Checker) checkTable(ctx context.Context, tableName string) CheckResult {
	res := CheckResult{Name: "table:" + tableName}

	out, err := c.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		res.Detail = fmt.Sprintf("describe table: %v", err)
		return res
	}
	spec := out.Table.StreamSpecification
	switch {
	case spec == nil || !aws.ToBool(spec.StreamEnabled):
		res.Detail = "stream is not enabled"
	case spec.StreamViewType != ddbtypes.StreamViewTypeNewAndOldImages:
		res.Detail = fmt.Sprintf("stream view type is %s, want NEW_AND_OLD_IMAGES", spec.StreamViewType)
	case aws.ToString(out.Table.LatestStreamArn) == "":
		res.Detail = "table reports no stream ARN"
	default:
		res.OK = true
	}
	return res
}

func (c *Checker) checkPipe(ctx context.Context, name string, rule pipetheory.RoutingRule) CheckResult {
	res := CheckResult{Name: "pipe:" + name}

	out, err := c.pipe.DescribePipe(ctx, &pipes.DescribePipeInput{Name: aws.String(name)})
	if err != nil {
		res.Detail = fmt.Sprintf("describe pipe: %v", err)
		return res
	}
	if out.CurrentState != pipestypes.PipeStateRunning {
		res.Detail = fmt.Sprintf("pipe state is %s, want RUNNING", out.CurrentState)
		return res
	}
	if detail := comparePipeSource(out.SourceParameters, rule); detail != "" {
		res.Detail = detail
		return res
	}
	if detail := comparePipeTarget(out.TargetParameters, rule); detail != "" {
		res.Detail = detail
		return res
	}
	res.OK = true
	return res
}

func comparePipeSource(params *pipestypes.PipeSourceParameters, rule pipetheory.RoutingRule) string {
	if params == nil {
		return "pipe has no source parameters"
	}
	stream := params.DynamoDBStreamParameters
	if stream == nil {
		return "pipe has no DynamoDB stream parameters"
	}
	if got := int(aws.ToInt32(stream.BatchSize)); got != rule.Source.BatchSize {
		return fmt.Sprintf("batch size is %d, want %d", got, rule.Source.BatchSize)
	}
	if got := string(stream.StartingPosition); got != rule.Source.StartingPosition {
		return fmt.Sprintf("starting position is %s, want %s", got, rule.Source.StartingPosition)
	}
	criteria := params.FilterCriteria
	if criteria == nil || len(criteria.Filters) != 1 {
		return "pipe must carry exactly one filter"
	}
	if got, want := aws.ToString(criteria.Filters[0].Pattern), rule.Filter.JSON(); got != want {
		return fmt.Sprintf("filter pattern is %s, want %s", got, want)
	}
	return ""
}

func comparePipeTarget(params *pipestypes.PipeTargetParameters, rule pipetheory.RoutingRule) string {
	if params == nil {
		return "pipe has no target parameters"
	}
	if got := aws.ToString(params.InputTemplate); got != rule.InputTemplate {
		return fmt.Sprintf("input template is %s, want %s", got, rule.InputTemplate)
	}
	envelope := params.EventBridgeEventBusParameters
	if envelope == nil {
		return "pipe has no event bus target parameters"
	}
	if got := aws.ToString(envelope.DetailType); got != rule.DetailType {
		return fmt.Sprintf("detail type is %s, want %s", got, rule.DetailType)
	}
	if got := aws.ToString(envelope.Source); got != rule.EventSource {
		return fmt.Sprintf("event source is %s, want %s", got, rule.EventSource)
	}
	return ""
}

func (c *Checker) checkBus(ctx context.Context, name string) CheckResult {
	res := CheckResult{Name: "bus:" + name}

	_, err := c.bus.DescribeEventBus(ctx, &eventbridge.DescribeEventBusInput{
		Name: aws.String(name),
	})
	if err != nil {
		res.Detail = fmt.Sprintf("describe event bus: %v", err)
		return res
	}
	res.OK = true
	return res
}

func busName(target Target) string {
	if target.BusName == "" {
		return "default"
	}
	return target.BusName
}
