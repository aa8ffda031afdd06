package normalize

import (
	"fmt"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/geometry"
	"github.com/floorplan-layout/analyzer/internal/hierarchy"
	"github.com/floorplan-layout/analyzer/internal/result"
)

func inferOrientation(g hierarchy.Group) floorplan.Orientation {
	return geometry.InferOrientation(g.Row, g.Racks)
}

// repairGeometry recomputes every row and rack through geometry.Layout and
// writes back whatever the model got wrong. Ids, labels and types are kept.
func repairGeometry(groups []hierarchy.Group) []result.Warning {
	var warns []result.Warning
	fix := func(id, field string, got, want any) {
		warns = append(warns, result.Warning{
			Type: "geometry_repaired", Severity: "warning", NodeID: id,
			Message: fmt.Sprintf("%s was %v, set to %v", field, got, want),
		})
	}

	rows := make([]*floorplan.Row, len(groups))
	for i, g := range groups {
		row := g.Row
		rows[i] = row
		row.Orientation = inferOrientation(g)

		number, ok := geometry.ParseRowNumber(row.ID)
		if !ok {
			number = i + 1
		}
		specs := make([]geometry.RackSpec, len(g.Racks))
		for j, r := range g.Racks {
			specs[j] = geometry.RackSpec{Label: r.Label, Type: r.Type}
		}
		want, wantRacks := geometry.Layout(number, row.Orientation, specs)

		if row.Width != want.Width {
			fix(row.ID, "width", row.Width, want.Width)
			row.Width = want.Width
			row.Source.Set("width", floorplan.Int(want.Width))
		}
		if row.Height != want.Height {
			fix(row.ID, "height", row.Height, want.Height)
			row.Height = want.Height
			row.Source.Set("height", floorplan.Int(want.Height))
		}

		for j, rack := range g.Racks {
			w := wantRacks[j]
			if rack.Position != w.Position {
				fix(rack.ID, "position", rack.Position, w.Position)
				rack.Position = w.Position
				setPosition(rack.Source, w.Position)
			}
			if rack.Width != w.Width {
				fix(rack.ID, "width", rack.Width, w.Width)
				rack.Width = w.Width
				rack.Source.Set("width", floorplan.Int(w.Width))
			}
			if rack.Height != w.Height {
				fix(rack.ID, "height", rack.Height, w.Height)
				rack.Height = w.Height
				rack.Source.Set("height", floorplan.Int(w.Height))
			}
		}
	}

	if geometry.Crowded(rows) {
		geometry.Stack(rows, geometry.StackAxis(rows), geometry.Origin(rows))
		for _, row := range rows {
			setPosition(row.Source, row.Position)
		}
		warns = append(warns, result.Warning{
			Type: "rows_restacked", Severity: "warning",
			Message: fmt.Sprintf("rows were closer than %dpx and have been re-positioned", geometry.RowSpacing),
		})
	}
	return warns
}

// setPosition updates x and y in place, keeping any other members.
func setPosition(n *floorplan.Node, p floorplan.Position) {
	pos := n.Get("position")
	if !pos.IsMapping() {
		pos = floorplan.Mapping()
		n.Set("position", pos)
	}
	pos.Set("x", floorplan.Int(p.X))
	pos.Set("y", floorplan.Int(p.Y))
}
