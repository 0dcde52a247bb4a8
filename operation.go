package pipetheory

// OperationType is a change-stream mutation kind as reported by DynamoDB
// Streams in the record's eventName field.
type OperationType string

const (
	OperationInsert OperationType = "INSERT"
	OperationModify OperationType = "MODIFY"
	OperationRemove OperationType = "REMOVE"
)

// OperationTypes lists every supported operation in the order the pipes are
// provisioned: REMOVE, INSERT, MODIFY.
func OperationTypes() []OperationType {
	return []OperationType{OperationRemove, OperationInsert, OperationModify}
}

// Valid reports whether op is one of INSERT, MODIFY, REMOVE.
func (op OperationType) Valid() bool {
	switch op {
	case OperationInsert, OperationModify, OperationRemove:
		return true
	default:
		return false
	}
}

// DetailType returns the event label published to the bus for this operation.
func (op OperationType) DetailType() string {
	switch op {
	case OperationInsert:
		return detailTypeUserCreated
	case OperationModify:
		return detailTypeUserModified
	case OperationRemove:
		return detailTypeUserDeleted
	default:
		return ""
	}
}

// ParseOperationType validates a raw eventName value.
func ParseOperationType(raw string) (OperationType, error) {
	op := OperationType(raw)
	if !op.Valid() {
		return "", newInvalidOperationError(raw)
	}
	return op, nil
}

func (op OperationType) String() string { return string(op) }
