package floorplan

import (
	"fmt"
)

// ValidationError represents a single validation failure (schema/structure level).
type ValidationError struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"` // error
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Validate checks the document-level structure of a flat layout and splits it
// into elements. Class-specific fields are checked by the element handlers.
func Validate(doc *Node) ([]Element, []ValidationError) {
	if doc == nil {
		return nil, []ValidationError{{Type: "schema_error", Severity: "error", Message: "document is nil"}}
	}
	if !doc.IsSequence() {
		return nil, []ValidationError{{
			Type: "schema_error", Severity: "error",
			Message:    fmt.Sprintf("flat layout must be an array, got %s", doc.Kind),
			Suggestion: "Return a single JSON array of row and rack objects",
		}}
	}

	var errs []ValidationError
	elements := make([]Element, 0, len(doc.Items))
	seenIDs := make(map[string]bool)
	for i, item := range doc.Items {
		if !item.IsMapping() {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error",
				Message: fmt.Sprintf("element at index %d is a %s, not an object", i, item.Kind),
			})
			continue
		}

		id, _ := GetStr(item, "id")
		if !item.Has("id") {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error",
				Message: fmt.Sprintf("element at index %d has no id", i), Suggestion: "Set id (e.g. r1 or r1-1)",
			})
		} else if id == "" {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error",
				Message: fmt.Sprintf("element at index %d must have a non-empty string id", i), Suggestion: "Set id (e.g. r1 or r1-1)",
			})
		} else if seenIDs[id] {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: "duplicate element id: " + id, Suggestion: "Use unique ids for each row and rack",
			})
		} else {
			seenIDs[id] = true
		}

		class, ok := GetStr(item, "class")
		hasParent := item.Has("parentNode")
		switch {
		case !item.Has("class"):
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: fmt.Sprintf("element at index %d has no class", i), Suggestion: "Set class to \"row\" or \"rack\"",
			})
			continue
		case !ok || (class != ClassRow && class != ClassRack):
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: fmt.Sprintf("element at index %d has unsupported class", i), Suggestion: "Set class to \"row\" or \"rack\"",
			})
			continue
		case class == ClassRow && hasParent:
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: "row must not have parentNode", Suggestion: "Remove parentNode or set class to \"rack\"",
			})
			continue
		case class == ClassRack && !hasParent:
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: "rack is missing parentNode", Suggestion: "Set parentNode to the id of the owning row",
			})
			continue
		}
		elements = append(elements, Element{Index: i, Class: class, Node: item})
	}
	return elements, errs
}

// GetStr gets a string member; ok is false if missing or not a string.
func GetStr(n *Node, key string) (string, bool) {
	return n.Get(key).Str()
}

// GetInt gets an integer member.
func GetInt(n *Node, key string) (int, bool) {
	return n.Get(key).Int()
}

// GetBool gets a boolean member.
func GetBool(n *Node, key string) (bool, bool) {
	return n.Get(key).Bool()
}

// GetPosition gets an {x, y} member with integer coordinates.
func GetPosition(n *Node, key string) (Position, bool) {
	p := n.Get(key)
	if !p.IsMapping() {
		return Position{}, false
	}
	x, okX := GetInt(p, "x")
	y, okY := GetInt(p, "y")
	if !okX || !okY {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}
