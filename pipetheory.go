// Package pipetheory builds EventBridge Pipes routing rules for a DynamoDB
// change stream: one rule per mutation kind, each combining a source filter,
// an input transformation template and a target event envelope.
//
// The package is pure definition logic. It produces descriptors; provisioning
// them is the infra package's job, and evaluating them at runtime is the
// managed pipe service's job.
package pipetheory

// Builder constructs RoutingRules for one logical entity type sharing a
// keyed table's change stream.
type Builder struct {
	eventSource      string
	keyPrefix        string
	partitionKeyName string
}

// Option customizes a Builder.
type Option func(*Builder)

// WithEventSource overrides the source label stamped on published events.
func WithEventSource(source string) Option {
	return func(b *Builder) {
		if source != "" {
			b.eventSource = source
		}
	}
}

// WithKeyPrefix overrides the partition-key prefix the rules filter on.
func WithKeyPrefix(prefix string) Option {
	return func(b *Builder) {
		if prefix != "" {
			b.keyPrefix = prefix
		}
	}
}

// WithPartitionKeyName overrides the partition key attribute name used in
// filter patterns and template placeholders.
func WithPartitionKeyName(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.partitionKeyName = name
		}
	}
}

// NewBuilder returns a Builder with the default user-entity configuration:
// events sourced as "myapp.users", keys prefixed "USER#", partition key "PK".
func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		eventSource:      DefaultEventSource,
		keyPrefix:        DefaultKeyPrefix,
		partitionKeyName: DefaultPartitionKeyName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// EventSource returns the source label stamped on published events.
func (b *Builder) EventSource() string { return b.eventSource }

// KeyPrefix returns the partition-key prefix the rules filter on.
func (b *Builder) KeyPrefix() string { return b.keyPrefix }

// Rule builds the routing rule for one operation type.
//
// It fails with a config error when the table has no stream and with an
// invalid-operation error when op is outside INSERT/MODIFY/REMOVE. Both are
// fail-fast definition errors; callers abort the build on either.
func (b *Builder) Rule(table TableRef, op OperationType) (RoutingRule, error) {
	if err := b.validate(table, op); err != nil {
		return RoutingRule{}, err
	}

	template, err := InputTemplate(op, b.partitionKeyName)
	if err != nil {
		return RoutingRule{}, err
	}
	if err := validateTemplateShape(template); err != nil {
		return RoutingRule{}, err
	}

	return RoutingRule{
		Operation:   op,
		DetailType:  op.DetailType(),
		EventSource: b.eventSource,
		Filter: FilterPattern{
			Operation:        op,
			PartitionKeyName: b.partitionKeyName,
			KeyPrefix:        b.keyPrefix,
		},
		InputTemplate: template,
		Source: SourceParameters{
			BatchSize:        sourceBatchSize,
			StartingPosition: sourceStartingPosition,
		},
	}, nil
}

// Rules builds the full rule set for the table, in provisioning order:
// REMOVE, INSERT, MODIFY.
func (b *Builder) Rules(table TableRef) ([]RoutingRule, error) {
	rules := make([]RoutingRule, 0, len(OperationTypes()))
	for _, op := range OperationTypes() {
		rule, err := b.Rule(table, op)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (b *Builder) validate(table TableRef, op OperationType) error {
	if table.StreamARN == "" {
		return newConfigError("table %q must have streams enabled", table.TableName)
	}
	if !op.Valid() {
		return newInvalidOperationError(string(op))
	}
	return nil
}
