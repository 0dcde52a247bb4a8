package pipetheory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Matches reports whether a stream record satisfies the rule's source filter:
// eventName equals the rule's operation and the partition key is a string
// starting with the configured prefix.
//
// The managed pipe service evaluates the deployed pattern itself; this
// predicate mirrors its semantics for diagnostics and tests.
func (r RoutingRule) Matches(record events.DynamoDBEventRecord) bool {
	if record.EventName != string(r.Operation) {
		return false
	}
	key, ok := record.Change.Keys[r.Filter.PartitionKeyName]
	if !ok || key.DataType() != events.DataTypeString {
		return false
	}
	return strings.HasPrefix(key.String(), r.Filter.KeyPrefix)
}

// Preview renders the event detail the rule's input template would produce
// for a matching record. Only the fixed placeholders this package emits are
// substituted; arbitrary template evaluation stays with the managed service.
func (r RoutingRule) Preview(record events.DynamoDBEventRecord) ([]byte, error) {
	if !r.Matches(record) {
		return nil, fmt.Errorf("pipetheory: record %s does not match the %s rule filter", record.EventID, r.Operation)
	}

	detail := map[string]any{
		"userId": record.Change.Keys[r.Filter.PartitionKeyName].String(),
	}
	if r.Operation == OperationModify {
		detail["oldImage"] = record.Change.OldImage
		detail["newImage"] = record.Change.NewImage
	}
	return json.Marshal(detail)
}
