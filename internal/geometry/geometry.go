// Package geometry computes pixel geometry for rows and the racks inside them.
package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

const (
	RackWidthVertical    = 90
	RackHeightVertical   = 60
	RackWidthHorizontal  = 60
	RackHeightHorizontal = 90

	// RowPadding is applied on each side of a row.
	RowPadding = 10
	// RowHeader is the leading offset of the first rack along the row axis.
	RowHeader = 20
	// RackGap separates consecutive racks.
	RackGap = 1
	// RowSpacing is the minimum gap between two rows. Rows are placed by the
	// caller (see Stack); Layout never applies it.
	RowSpacing = 50
)

// RackSpec is what the model reports about one rack.
type RackSpec struct {
	Label string
	Type  floorplan.RackType
}

// Classify returns REF for cooling units (label contains AC or AHU, any case)
// and IT otherwise.
func Classify(label string) floorplan.RackType {
	l := strings.ToUpper(label)
	if strings.Contains(l, "AHU") || strings.Contains(l, "AC") {
		return floorplan.RackREF
	}
	return floorplan.RackIT
}

// TypeFor combines the reported type with the label rule: a rack is REF when
// either says so.
func TypeFor(spec RackSpec) floorplan.RackType {
	if spec.Type == floorplan.RackREF {
		return floorplan.RackREF
	}
	return Classify(spec.Label)
}

// RackSize returns the width and height of a rack in a row of orientation o.
func RackSize(o floorplan.Orientation) (width, height int) {
	if o == floorplan.Horizontal {
		return RackWidthHorizontal, RackHeightHorizontal
	}
	return RackWidthVertical, RackHeightVertical
}

// RackPosition returns the offset of rack i (0-based) from its row's top-left corner.
func RackPosition(o floorplan.Orientation, i int) floorplan.Position {
	if o == floorplan.Horizontal {
		return floorplan.Position{X: RowHeader + i*(RackWidthHorizontal+RackGap), Y: RowPadding}
	}
	return floorplan.Position{X: RowPadding, Y: RowHeader + i*(RackHeightVertical+RackGap)}
}

// RowSize returns the width and height of a row holding n racks. An empty
// row keeps only its header and trailing padding along the rack axis.
func RowSize(o floorplan.Orientation, n int) (width, height int) {
	if o == floorplan.Horizontal {
		return RowHeader + span(n, RackWidthHorizontal) + RowPadding, RackHeightHorizontal + 2*RowPadding
	}
	return RackWidthVertical + 2*RowPadding, RowHeader + span(n, RackHeightVertical) + RowPadding
}

// span is the extent of n racks of the given size laid end to end.
func span(n, size int) int {
	if n <= 0 {
		return 0
	}
	return n*(size+RackGap) - RackGap
}

// Layout computes row rowNumber and its racks. The row is left at position
// (0, 0); use Stack to place several rows.
func Layout(rowNumber int, o floorplan.Orientation, specs []RackSpec) (floorplan.Row, []floorplan.Rack) {
	if o != floorplan.Horizontal {
		o = floorplan.Vertical
	}
	rowID := RowID(rowNumber)
	w, h := RowSize(o, len(specs))
	row := floorplan.Row{
		ID:          rowID,
		Label:       fmt.Sprintf("Row %d", rowNumber),
		Width:       w,
		Height:      h,
		Class:       floorplan.ClassRow,
		Orientation: o,
	}

	rw, rh := RackSize(o)
	racks := make([]floorplan.Rack, len(specs))
	for i, spec := range specs {
		racks[i] = floorplan.Rack{
			ID:         RackID(rowNumber, i+1),
			Label:      spec.Label,
			Position:   RackPosition(o, i),
			Width:      rw,
			Height:     rh,
			ParentNode: rowID,
			Class:      floorplan.ClassRack,
			Type:       TypeFor(spec),
		}
	}
	return row, racks
}

// RowID formats a row id.
func RowID(rowNumber int) string { return fmt.Sprintf("r%d", rowNumber) }

// RackID formats a rack id.
func RackID(rowNumber, rackNumber int) string { return fmt.Sprintf("r%d-%d", rowNumber, rackNumber) }

// ParseRowNumber extracts n from a row id "r{n}".
func ParseRowNumber(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, "r")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 || id != RowID(n) {
		return 0, false
	}
	return n, true
}

// InferOrientation recovers a row's orientation from its racks' sizes. When
// the racks do not decide it, a row whose size is exactly what RowSize gives
// for one orientation takes that orientation. Otherwise an empty row is
// vertical and a row with racks follows its aspect ratio.
func InferOrientation(row *floorplan.Row, racks []*floorplan.Rack) floorplan.Orientation {
	var vertical, horizontal int
	for _, r := range racks {
		switch {
		case r.Width > r.Height:
			vertical++
		case r.Height > r.Width:
			horizontal++
		}
	}
	if vertical != horizontal {
		if vertical > horizontal {
			return floorplan.Vertical
		}
		return floorplan.Horizontal
	}
	if row == nil {
		return floorplan.Vertical
	}
	for _, o := range []floorplan.Orientation{floorplan.Vertical, floorplan.Horizontal} {
		if w, h := RowSize(o, len(racks)); row.Width == w && row.Height == h {
			return o
		}
	}
	if len(racks) > 0 && row.Width > row.Height {
		return floorplan.Horizontal
	}
	return floorplan.Vertical
}
