// Command pipecheck verifies a deployed user-events pipeline: table stream
// settings, pipe state and parameters, and bus reachability. Optionally it
// publishes a probe event.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"

	"github.com/theory-cloud/pipetheory"
	"github.com/theory-cloud/pipetheory/pkg/naming"
	"github.com/theory-cloud/pipetheory/pkg/preflight"
)

func main() {
	os.Exit(run())
}

func run() int {
	var app, stage, table, bus, source, prefix string
	var probe bool

	flag.StringVar(&app, "app", "myapp", "application name used for resource naming")
	flag.StringVar(&stage, "stage", "dev", "deployment stage")
	flag.StringVar(&table, "table", "", "table name (default <app>-users-<stage>)")
	flag.StringVar(&bus, "bus", "default", "target event bus name")
	flag.StringVar(&source, "source", "myapp.users", "event source label the pipes publish with")
	flag.StringVar(&prefix, "prefix", "USER#", "partition key prefix the pipes filter on")
	flag.BoolVar(&probe, "probe", false, "publish a probe event after the checks pass")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipecheck: FAIL: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipecheck: FAIL: %v\n", err)
		return 2
	}

	if table == "" {
		table = naming.TableName(app, stage)
	}
	checker := preflight.NewChecker(awsCfg, preflight.WithLogger(logger))

	ref, err := checker.ResolveTable(ctx, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipecheck: FAIL: %v\n", err)
		return 2
	}

	builder := pipetheory.NewBuilder(
		pipetheory.WithEventSource(source),
		pipetheory.WithKeyPrefix(prefix),
	)
	rules, err := builder.Rules(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipecheck: FAIL: %v\n", err)
		return 2
	}

	pipeNames := make(map[pipetheory.OperationType]string, len(rules))
	for _, rule := range rules {
		pipeNames[rule.Operation] = naming.PipeName(app, rule.DetailType, stage)
	}

	report := checker.Run(ctx, rules, preflight.Target{
		TableName: table,
		BusName:   bus,
		PipeNames: pipeNames,
	})
	for _, res := range report.Results {
		if res.OK {
			fmt.Printf("pipecheck: PASS %s\n", res.Name)
			continue
		}
		fmt.Printf("pipecheck: FAIL %s: %s\n", res.Name, res.Detail)
	}
	if !report.OK() {
		return 1
	}

	if probe {
		probeID, err := checker.SendProbe(ctx, bus, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pipecheck: FAIL: %v\n", err)
			return 1
		}
		fmt.Printf("pipecheck: probe published (id %s)\n", probeID)
	}

	fmt.Println("pipecheck: all checks passed")
	return 0
}
