package pipetheory

// TableRef is the change-stream source handle a rule is built against. The
// zero value of StreamARN means the table has no stream enabled.
type TableRef struct {
	TableName string
	StreamARN string
}

// SourceParameters fix how the pipe polls the stream. Every rule reads one
// record at a time from the latest position.
type SourceParameters struct {
	BatchSize        int
	StartingPosition string
}

// RoutingRule is one fully specified pipe definition: source filter, input
// transformation and target envelope. Rules are immutable descriptors; the
// infrastructure layer turns them into provisioned pipes.
type RoutingRule struct {
	Operation     OperationType
	DetailType    string
	EventSource   string
	Filter        FilterPattern
	InputTemplate string
	Source        SourceParameters
}

// Name returns the rule's construct-friendly identifier, e.g. "UserCreatedPipe".
func (r RoutingRule) Name() string {
	return r.DetailType + "Pipe"
}
