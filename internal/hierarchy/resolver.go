package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

// ErrUnresolved is matched by every error Resolve returns.
var ErrUnresolved = errors.New("unresolved parentNode reference")

// Group is a row together with the racks that point at it.
type Group struct {
	Row   *floorplan.Row
	Racks []*floorplan.Rack
}

// BrokenRef is a rack whose parentNode does not name a row.
type BrokenRef struct {
	RackID   string
	ParentID string
	Reason   string
}

// ResolveError lists every broken reference found.
type ResolveError struct {
	Refs []BrokenRef
}

func (e *ResolveError) Error() string {
	parts := make([]string, len(e.Refs))
	for i, r := range e.Refs {
		parts[i] = fmt.Sprintf("%s -> %s (%s)", r.RackID, r.ParentID, r.Reason)
	}
	return ErrUnresolved.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ResolveError) Unwrap() error { return ErrUnresolved }

// Resolve follows every rack's parentNode back-reference and returns:
// - groups: one per row, in row document order, racks in document order
// - err: a *ResolveError when a rack points at a missing id or at another rack
func Resolve(l *floorplan.Layout) (groups []Group, err error) {
	if l == nil || len(l.Rows) == 0 && len(l.Racks) == 0 {
		return nil, nil
	}

	byRow := make(map[string]int, len(l.Rows))
	groups = make([]Group, len(l.Rows))
	for i, r := range l.Rows {
		byRow[r.ID] = i
		groups[i] = Group{Row: r}
	}
	rackIDs := make(map[string]bool, len(l.Racks))
	for _, r := range l.Racks {
		rackIDs[r.ID] = true
	}

	var broken []BrokenRef
	for _, rack := range l.Racks {
		i, ok := byRow[rack.ParentNode]
		if !ok {
			reason := "no such row"
			if rackIDs[rack.ParentNode] {
				reason = "parent is a rack"
			}
			broken = append(broken, BrokenRef{RackID: rack.ID, ParentID: rack.ParentNode, Reason: reason})
			continue
		}
		groups[i].Racks = append(groups[i].Racks, rack)
	}

	if len(broken) > 0 {
		return nil, &ResolveError{Refs: broken}
	}
	return groups, nil
}
