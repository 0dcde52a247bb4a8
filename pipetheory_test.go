package pipetheory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/pipetheory"
)

var streamTable = pipetheory.TableRef{
	TableName: "user-events-ddbtable-test",
	StreamARN: "arn:aws:dynamodb:us-east-1:111122223333:table/user-events-ddbtable-test/stream/2026-08-30T00:00:00.000",
}

func TestBuilderRule_Defaults(t *testing.T) {
	b := pipetheory.NewBuilder()

	rule, err := b.Rule(streamTable, pipetheory.OperationInsert)
	require.NoError(t, err)

	require.Equal(t, pipetheory.OperationInsert, rule.Operation)
	require.Equal(t, "UserCreated", rule.DetailType)
	require.Equal(t, "myapp.users", rule.EventSource)
	require.Equal(t, "USER#", rule.Filter.KeyPrefix)
	require.Equal(t, "PK", rule.Filter.PartitionKeyName)
	require.Equal(t, 1, rule.Source.BatchSize)
	require.Equal(t, "LATEST", rule.Source.StartingPosition)
	require.Equal(t, "UserCreatedPipe", rule.Name())
}

func TestBuilderRule_DetailTypes(t *testing.T) {
	b := pipetheory.NewBuilder()

	tests := []struct {
		op   pipetheory.OperationType
		want string
	}{
		{pipetheory.OperationInsert, "UserCreated"},
		{pipetheory.OperationModify, "UserModified"},
		{pipetheory.OperationRemove, "UserDeleted"},
	}
	for _, tc := range tests {
		t.Run(string(tc.op), func(t *testing.T) {
			rule, err := b.Rule(streamTable, tc.op)
			require.NoError(t, err)
			require.Equal(t, tc.want, rule.DetailType)
		})
	}
}

func TestBuilderRule_MissingStreamFailsWithConfigError(t *testing.T) {
	b := pipetheory.NewBuilder()

	_, err := b.Rule(pipetheory.TableRef{TableName: "no-stream"}, pipetheory.OperationInsert)
	require.Error(t, err)
	require.True(t, pipetheory.IsConfigError(err))
	require.False(t, pipetheory.IsInvalidOperationError(err))
	require.Contains(t, err.Error(), "no-stream")
}

func TestBuilderRule_RejectsUnknownOperation(t *testing.T) {
	b := pipetheory.NewBuilder()

	for _, raw := range []string{"UPDATE", "insert", "DELETE", ""} {
		t.Run("op="+raw, func(t *testing.T) {
			_, err := b.Rule(streamTable, pipetheory.OperationType(raw))
			require.Error(t, err)
			require.True(t, pipetheory.IsInvalidOperationError(err))
		})
	}
}

func TestBuilderRules_ThreeDistinctLabels(t *testing.T) {
	b := pipetheory.NewBuilder()

	rules, err := b.Rules(streamTable)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	seen := map[string]bool{}
	for _, rule := range rules {
		seen[rule.DetailType] = true
	}
	require.Equal(t, map[string]bool{
		"UserCreated":  true,
		"UserModified": true,
		"UserDeleted":  true,
	}, seen)
}

func TestBuilderRules_StopOnMissingStream(t *testing.T) {
	b := pipetheory.NewBuilder()

	rules, err := b.Rules(pipetheory.TableRef{TableName: "no-stream"})
	require.Nil(t, rules)
	require.True(t, pipetheory.IsConfigError(err))
}

func TestBuilderOptions(t *testing.T) {
	b := pipetheory.NewBuilder(
		pipetheory.WithEventSource("myapp.accounts"),
		pipetheory.WithKeyPrefix("ACCOUNT#"),
		pipetheory.WithPartitionKeyName("Id"),
		nil,
	)

	rule, err := b.Rule(streamTable, pipetheory.OperationRemove)
	require.NoError(t, err)
	require.Equal(t, "myapp.accounts", rule.EventSource)
	require.Equal(t, "ACCOUNT#", rule.Filter.KeyPrefix)
	require.Equal(t, "Id", rule.Filter.PartitionKeyName)
	require.Contains(t, rule.InputTemplate, "<$.dynamodb.Keys.Id.S>")
}

func TestBuilderOptions_EmptyValuesKeepDefaults(t *testing.T) {
	b := pipetheory.NewBuilder(
		pipetheory.WithEventSource(""),
		pipetheory.WithKeyPrefix(""),
		pipetheory.WithPartitionKeyName(""),
	)

	require.Equal(t, "myapp.users", b.EventSource())
	require.Equal(t, "USER#", b.KeyPrefix())
}

func TestParseOperationType(t *testing.T) {
	op, err := pipetheory.ParseOperationType("MODIFY")
	require.NoError(t, err)
	require.Equal(t, pipetheory.OperationModify, op)

	_, err = pipetheory.ParseOperationType("UPDATE")
	require.True(t, pipetheory.IsInvalidOperationError(err))
}

func TestAccessPolicies(t *testing.T) {
	source := pipetheory.SourcePolicy(streamTable.StreamARN)
	require.Equal(t, "SourcePolicy", source.Name)
	require.Len(t, source.Statements, 1)
	require.Equal(t, []string{
		"dynamodb:DescribeStream",
		"dynamodb:GetRecords",
		"dynamodb:GetShardIterator",
		"dynamodb:ListStreams",
	}, source.Statements[0].Actions)
	require.Equal(t, []string{streamTable.StreamARN}, source.Statements[0].Resources)

	busARN := "arn:aws:events:us-east-1:111122223333:event-bus/default"
	target := pipetheory.TargetPolicy(busARN)
	require.Equal(t, "TargetPolicy", target.Name)
	require.Len(t, target.Statements, 1)
	require.Equal(t, []string{"events:PutEvents"}, target.Statements[0].Actions)
	require.Equal(t, []string{busARN}, target.Statements[0].Resources)
}
