// Package annotate stamps entity ids onto a nested floor-plan document.
package annotate

import "github.com/floorplan-layout/analyzer/internal/floorplan"

// Annotate assigns next, next+1, ... to every mapping carrying a "name" key,
// walking n depth-first in document order, and returns the next unused id.
// A named mapping gets its id before any of its descendants. Mappings without
// a name get no id, but their descendants are still visited. n is modified in
// place; an existing "id" member is overwritten where it stands.
func Annotate(n *floorplan.Node, next int) int {
	if n == nil {
		return next
	}
	switch n.Kind {
	case floorplan.KindMapping:
		if n.HasName() {
			n.Set("id", floorplan.Int(next))
			next++
		}
		for _, m := range n.Members {
			if m.Value.IsMapping() || m.Value.IsSequence() {
				next = Annotate(m.Value, next)
			}
		}
	case floorplan.KindSequence:
		for _, it := range n.Items {
			next = Annotate(it, next)
		}
	}
	return next
}

// Document annotates n starting from id 1 and returns how many ids it assigned.
func Document(n *floorplan.Node) int {
	return Annotate(n, 1) - 1
}
