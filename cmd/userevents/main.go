// Command userevents is the CDK entrypoint: it synthesizes the user-events
// pipeline stack from the deployment configuration.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"go.uber.org/zap"

	"github.com/theory-cloud/pipetheory/infra"
	"github.com/theory-cloud/pipetheory/pkg/deployconfig"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "userevents: FAIL: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	cfgPath := os.Getenv("PIPETHEORY_CONFIG")
	if cfgPath == "" {
		cfgPath = "userevents.yaml"
	}
	cfg, err := deployconfig.Load(cfgPath)
	if err != nil {
		logger.Error("load deployment config", zap.Error(err))
		return 2
	}

	logger.Info("synthesizing stack",
		zap.String("stack", cfg.StackName()),
		zap.String("stage", cfg.Stage),
		zap.String("event_source", cfg.EventSource),
		zap.String("key_prefix", cfg.KeyPrefix),
	)

	app := awscdk.NewApp(nil)
	infra.NewUserEventsStack(app, cfg.StackName(), infra.StackPropsFromConfig(cfg))
	app.Synth(nil)
	return 0
}
