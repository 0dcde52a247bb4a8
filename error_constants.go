package pipetheory

const (
	errorCodeConfig           = "pipetheory.config_error"
	errorCodeInvalidOperation = "pipetheory.invalid_operation_type"
)

const (
	detailTypeUserCreated  = "UserCreated"
	detailTypeUserModified = "UserModified"
	detailTypeUserDeleted  = "UserDeleted"
)

const (
	// DefaultEventSource tags every published event's source envelope field.
	DefaultEventSource = "myapp.users"

	// DefaultKeyPrefix scopes the shared stream to one logical entity type.
	DefaultKeyPrefix = "USER#"

	// DefaultPartitionKeyName is the table's partition key attribute.
	DefaultPartitionKeyName = "PK"

	// DefaultSortKeyName is the table's sort key attribute.
	DefaultSortKeyName = "SK"
)

const (
	sourceBatchSize        = 1
	sourceStartingPosition = "LATEST"
)
