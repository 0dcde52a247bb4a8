package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/pipetheory/pkg/deployconfig"
)

// UserEventsStackProps wrap the pipeline props with standard stack settings.
type UserEventsStackProps struct {
	awscdk.StackProps

	Pipeline UserEventsPipelineProps
}

// NewUserEventsStack creates a stack holding a single UserEventsPipeline.
func NewUserEventsStack(scope constructs.Construct, id string, props *UserEventsStackProps) awscdk.Stack {
	if props == nil {
		props = &UserEventsStackProps{}
	}

	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	NewUserEventsPipeline(stack, jsii.String("UserEvents"), &props.Pipeline)
	return stack
}

// StackPropsFromConfig maps a deployment configuration onto stack props.
func StackPropsFromConfig(cfg deployconfig.Config) *UserEventsStackProps {
	props := &UserEventsStackProps{
		Pipeline: UserEventsPipelineProps{
			EventSourceName: cfg.EventSource,
			KeyPrefix:       cfg.KeyPrefix,
			AppName:         cfg.App,
			Stage:           cfg.Stage,
		},
	}
	if cfg.Account != "" || cfg.Region != "" {
		props.Env = &awscdk.Environment{}
		if cfg.Account != "" {
			props.Env.Account = jsii.String(cfg.Account)
		}
		if cfg.Region != "" {
			props.Env.Region = jsii.String(cfg.Region)
		}
	}
	return props
}
