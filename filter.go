package pipetheory

import "encoding/json"

// FilterPattern is the source-side predicate for one routing rule: the
// stream record's eventName must equal the operation and the partition key
// must start with the configured prefix.
type FilterPattern struct {
	Operation        OperationType
	PartitionKeyName string
	KeyPrefix        string
}

// Struct fields keep eventName first in the emitted pattern.
type filterPatternJSON struct {
	EventName []string          `json:"eventName"`
	DynamoDB  filterDynamoDBDoc `json:"dynamodb"`
}

type filterDynamoDBDoc struct {
	Keys map[string]filterStringKey `json:"Keys"`
}

type filterStringKey struct {
	S []filterPrefixCondition `json:"S"`
}

type filterPrefixCondition struct {
	Prefix string `json:"prefix"`
}

// JSON renders the exact pattern consumed by the pipe service:
//
//	{"eventName":["INSERT"],"dynamodb":{"Keys":{"PK":{"S":[{"prefix":"USER#"}]}}}}
func (p FilterPattern) JSON() string {
	doc := filterPatternJSON{
		EventName: []string{string(p.Operation)},
		DynamoDB: filterDynamoDBDoc{
			Keys: map[string]filterStringKey{
				p.PartitionKeyName: {
					S: []filterPrefixCondition{{Prefix: p.KeyPrefix}},
				},
			},
		},
	}

	// Marshal cannot fail on this shape: fixed struct fields, string values,
	// single-entry map.
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(raw)
}
