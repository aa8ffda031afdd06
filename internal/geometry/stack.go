package geometry

import "github.com/floorplan-layout/analyzer/internal/floorplan"

// Axis is the direction along which consecutive rows are placed.
type Axis int

const (
	AxisX Axis = iota // rows side by side, left to right
	AxisY             // rows stacked top to bottom
)

// StackAxis picks the placement axis for a set of rows: vertical rows sit
// side by side, anything else is stacked top to bottom.
func StackAxis(rows []*floorplan.Row) Axis {
	if len(rows) == 0 {
		return AxisY
	}
	for _, r := range rows {
		if r.Orientation != floorplan.Vertical {
			return AxisY
		}
	}
	return AxisX
}

// Stack positions rows one after another starting at origin, leaving
// RowSpacing pixels between neighbours along axis.
func Stack(rows []*floorplan.Row, axis Axis, origin floorplan.Position) {
	cur := origin
	for _, r := range rows {
		r.Position = cur
		if axis == AxisX {
			cur.X += r.Width + RowSpacing
		} else {
			cur.Y += r.Height + RowSpacing
		}
	}
}

// Gap returns the clearance between two rows: the larger of the horizontal
// and vertical distances between their rectangles. It is negative when they
// overlap.
func Gap(a, b *floorplan.Row) int {
	gx := max(b.Position.X-(a.Position.X+a.Width), a.Position.X-(b.Position.X+b.Width))
	gy := max(b.Position.Y-(a.Position.Y+a.Height), a.Position.Y-(b.Position.Y+b.Height))
	return max(gx, gy)
}

// Crowded reports whether any two rows are closer than RowSpacing.
func Crowded(rows []*floorplan.Row) bool {
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if Gap(rows[i], rows[j]) < RowSpacing {
				return true
			}
		}
	}
	return false
}

// Origin returns the top-left corner of the bounding box of rows.
func Origin(rows []*floorplan.Row) floorplan.Position {
	if len(rows) == 0 {
		return floorplan.Position{}
	}
	o := rows[0].Position
	for _, r := range rows[1:] {
		o.X = min(o.X, r.Position.X)
		o.Y = min(o.Y, r.Position.Y)
	}
	return o
}
