package result

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAttachment is returned when a turn carries no image.
	ErrNoAttachment = errors.New("floorplan: no attachment")

	// ErrNotImage is returned when the attachment is not an image.
	ErrNotImage = errors.New("floorplan: attachment is not an image")

	// ErrModelInvocation is returned when the vision model call fails.
	ErrModelInvocation = errors.New("floorplan: vision model invocation failed")

	// ErrMalformedResponse is returned when the model reply is not JSON.
	ErrMalformedResponse = errors.New("floorplan: model reply is not valid JSON")

	// ErrSchemaViolation is returned when a flat reply is JSON but breaks the
	// row/rack contract.
	ErrSchemaViolation = errors.New("floorplan: layout schema violation")
)

// SchemaViolationError carries the individual violations of a flat reply.
type SchemaViolationError struct {
	Errors []Error
}

func (e *SchemaViolationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, v := range e.Errors {
		if v.NodeID != "" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", v.NodeID, v.Message))
		} else {
			msgs = append(msgs, v.Message)
		}
	}
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}

func (e *SchemaViolationError) Unwrap() error { return ErrSchemaViolation }
