package pipetheory_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/pipetheory"
)

func userRecord(eventName, pk, sk string) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventID:   "e-1",
		EventName: eventName,
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"PK": events.NewStringAttribute(pk),
				"SK": events.NewStringAttribute(sk),
			},
		},
	}
}

func TestRoutingRuleMatches(t *testing.T) {
	b := pipetheory.NewBuilder()
	insertRule, err := b.Rule(streamTable, pipetheory.OperationInsert)
	require.NoError(t, err)

	tests := []struct {
		name   string
		record events.DynamoDBEventRecord
		want   bool
	}{
		{"matching insert", userRecord("INSERT", "USER#123", "PROFILE"), true},
		{"wrong operation", userRecord("REMOVE", "USER#123", "PROFILE"), false},
		{"wrong prefix", userRecord("INSERT", "ORDER#9", "PROFILE"), false},
		{"missing partition key", events.DynamoDBEventRecord{EventName: "INSERT"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, insertRule.Matches(tc.record))
		})
	}
}

func TestRoutingRuleMatches_NonStringKey(t *testing.T) {
	b := pipetheory.NewBuilder()
	rule, err := b.Rule(streamTable, pipetheory.OperationInsert)
	require.NoError(t, err)

	record := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"PK": events.NewNumberAttribute("42"),
			},
		},
	}
	require.False(t, rule.Matches(record))
}

func TestRoutingRulePreview_Insert(t *testing.T) {
	b := pipetheory.NewBuilder()
	rule, err := b.Rule(streamTable, pipetheory.OperationInsert)
	require.NoError(t, err)

	detail, err := rule.Preview(userRecord("INSERT", "USER#123", "PROFILE"))
	require.NoError(t, err)
	require.JSONEq(t, `{"userId":"USER#123"}`, string(detail))
}

func TestRoutingRulePreview_ModifyCarriesImages(t *testing.T) {
	b := pipetheory.NewBuilder()
	rule, err := b.Rule(streamTable, pipetheory.OperationModify)
	require.NoError(t, err)

	record := userRecord("MODIFY", "USER#123", "PROFILE")
	record.Change.OldImage = map[string]events.DynamoDBAttributeValue{
		"PK":    events.NewStringAttribute("USER#123"),
		"email": events.NewStringAttribute("old@example.com"),
	}
	record.Change.NewImage = map[string]events.DynamoDBAttributeValue{
		"PK":    events.NewStringAttribute("USER#123"),
		"email": events.NewStringAttribute("new@example.com"),
	}

	detail, err := rule.Preview(record)
	require.NoError(t, err)

	var decoded struct {
		UserID   string                     `json:"userId"`
		OldImage map[string]json.RawMessage `json:"oldImage"`
		NewImage map[string]json.RawMessage `json:"newImage"`
	}
	require.NoError(t, json.Unmarshal(detail, &decoded))
	require.Equal(t, "USER#123", decoded.UserID)
	require.JSONEq(t, `{"S":"old@example.com"}`, string(decoded.OldImage["email"]))
	require.JSONEq(t, `{"S":"new@example.com"}`, string(decoded.NewImage["email"]))
}

func TestRoutingRulePreview_RejectsNonMatchingRecord(t *testing.T) {
	b := pipetheory.NewBuilder()
	rule, err := b.Rule(streamTable, pipetheory.OperationInsert)
	require.NoError(t, err)

	_, err = rule.Preview(userRecord("MODIFY", "USER#123", "PROFILE"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match")
}
