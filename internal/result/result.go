package result

import (
	"fmt"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

// Error represents a schema violation found in a model reply.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a repair or a non-fatal finding.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Kind tells which variant a Result holds.
type Kind int

const (
	// KindStructured: the reply was JSON and Document holds the normalized tree.
	KindStructured Kind = iota
	// KindUnstructured: the reply was not JSON; Text is the reply verbatim.
	KindUnstructured
	// KindSchemaViolation: the reply was JSON but not a valid flat layout.
	KindSchemaViolation
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindUnstructured:
		return "unstructured"
	case KindSchemaViolation:
		return "schema_violation"
	default:
		return "unknown"
	}
}

// Result is the outcome of normalizing one model reply.
type Result struct {
	Kind     Kind            `json:"kind"`
	Shape    floorplan.Shape `json:"shape,omitempty"`
	Document *floorplan.Node `json:"document,omitempty"`
	Text     string          `json:"text,omitempty"`
	Entities int             `json:"entities,omitempty"` // ids assigned (nested shape)
	Errors   []Error         `json:"errors,omitempty"`
	Warnings []Warning       `json:"warnings,omitempty"`

	// Layout is the decoded flat layout (flat shape only).
	Layout *floorplan.Layout `json:"-"`

	cause error
}

// Structured returns a structured result.
func Structured(shape floorplan.Shape, doc *floorplan.Node) *Result {
	return &Result{Kind: KindStructured, Shape: shape, Document: doc}
}

// Unstructured returns the fallback result carrying the raw reply.
func Unstructured(raw string, cause error) *Result {
	return &Result{Kind: KindUnstructured, Text: raw, cause: cause}
}

// Invalid returns a schema-violation result for a flat layout.
func Invalid(raw string, errs []Error, warns []Warning) *Result {
	return &Result{
		Kind:     KindSchemaViolation,
		Shape:    floorplan.ShapeFlat,
		Text:     raw,
		Errors:   errs,
		Warnings: warns,
		cause:    &SchemaViolationError{Errors: errs},
	}
}

// Success reports whether the result holds a usable document.
func (r *Result) Success() bool { return r != nil && r.Kind == KindStructured }

// Err returns nil for structured results and the failure cause otherwise.
// The cause matches ErrMalformedResponse or ErrSchemaViolation with errors.Is.
func (r *Result) Err() error {
	if r == nil || r.Kind == KindStructured {
		return nil
	}
	return r.cause
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{KindStructured, KindUnstructured, KindSchemaViolation} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", b)
}
