package pipetheory

import (
	"fmt"
	"strings"
)

// Input templates are owned by the pipe service's template language. We only
// assemble and shape-check the literal strings here; evaluation happens
// entirely inside the managed service.
const (
	placeholderOldImage = "<$.dynamodb.OldImage>"
	placeholderNewImage = "<$.dynamodb.NewImage>"
)

func keyPlaceholder(partitionKeyName string) string {
	return fmt.Sprintf("<$.dynamodb.Keys.%s.S>", partitionKeyName)
}

// InputTemplate returns the literal projection template for one operation.
//
// REMOVE and INSERT project only the key; MODIFY additionally projects the
// old and new item images.
func InputTemplate(op OperationType, partitionKeyName string) (string, error) {
	if !op.Valid() {
		return "", newInvalidOperationError(string(op))
	}
	key := keyPlaceholder(partitionKeyName)

	switch op {
	case OperationModify:
		return fmt.Sprintf(`{"userId": %s, "oldImage": %s, "newImage": %s}`,
			key, placeholderOldImage, placeholderNewImage), nil
	default:
		return fmt.Sprintf(`{"userId": %s}`, key), nil
	}
}

// validateTemplateShape checks the literal placeholder syntax: every `<`
// opens a `<$.path>` placeholder and every placeholder is closed before the
// next one opens.
func validateTemplateShape(template string) error {
	rest := template
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			if strings.IndexByte(rest, '>') >= 0 {
				return newConfigError("input template has an unmatched '>': %q", template)
			}
			return nil
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return newConfigError("input template has an unclosed placeholder: %q", template)
		}
		body := rest[:end]
		if !strings.HasPrefix(body, "$.") || strings.Contains(body, "<") {
			return newConfigError("input template placeholder %q must use the <$.path> form", "<"+body+">")
		}
		rest = rest[end+1:]
	}
}
