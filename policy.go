package pipetheory

// PolicyStatement is one IAM-equivalent allow statement. The infra layer
// renders these into real policy documents; preflight compares them against
// what is deployed.
type PolicyStatement struct {
	Actions   []string
	Resources []string
}

// AccessPolicy is a least-privilege permission set for one side of a pipe.
type AccessPolicy struct {
	Name       string
	Statements []PolicyStatement
}

// SourcePolicy grants read-only stream access scoped to exactly the table's
// stream.
func SourcePolicy(streamARN string) AccessPolicy {
	return AccessPolicy{
		Name: "SourcePolicy",
		Statements: []PolicyStatement{{
			Actions: []string{
				"dynamodb:DescribeStream",
				"dynamodb:GetRecords",
				"dynamodb:GetShardIterator",
				"dynamodb:ListStreams",
			},
			Resources: []string{streamARN},
		}},
	}
}

// TargetPolicy grants the single publish action scoped to exactly the
// destination bus.
func TargetPolicy(busARN string) AccessPolicy {
	return AccessPolicy{
		Name: "TargetPolicy",
		Statements: []PolicyStatement{{
			Actions:   []string{"events:PutEvents"},
			Resources: []string{busARN},
		}},
	}
}
