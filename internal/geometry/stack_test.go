package geometry

import (
	"testing"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

func TestStackAxis(t *testing.T) {
	v := &floorplan.Row{Orientation: floorplan.Vertical}
	h := &floorplan.Row{Orientation: floorplan.Horizontal}
	if got := StackAxis([]*floorplan.Row{v, v}); got != AxisX {
		t.Errorf("all vertical: got %v, want AxisX", got)
	}
	if got := StackAxis([]*floorplan.Row{v, h}); got != AxisY {
		t.Errorf("mixed: got %v, want AxisY", got)
	}
	if got := StackAxis(nil); got != AxisY {
		t.Errorf("empty: got %v, want AxisY", got)
	}
}

func TestStackLeavesRowSpacing(t *testing.T) {
	rows := []*floorplan.Row{
		{ID: "r1", Width: 110, Height: 151},
		{ID: "r2", Width: 110, Height: 90},
		{ID: "r3", Width: 110, Height: 30},
	}
	if !Crowded(rows) {
		t.Fatal("rows at the same origin are not crowded")
	}

	Stack(rows, AxisX, floorplan.Position{X: 5, Y: 7})
	wantX := []int{5, 165, 325}
	for i, r := range rows {
		if r.Position.X != wantX[i] || r.Position.Y != 7 {
			t.Errorf("%s at %+v, want (%d,7)", r.ID, r.Position, wantX[i])
		}
	}
	if Crowded(rows) {
		t.Error("stacked rows are still crowded")
	}
	if g := Gap(rows[0], rows[1]); g != RowSpacing {
		t.Errorf("Gap = %d, want %d", g, RowSpacing)
	}

	Stack(rows, AxisY, floorplan.Position{})
	if rows[1].Position.Y != 201 || rows[2].Position.Y != 341 {
		t.Errorf("AxisY positions = %d, %d; want 201, 341", rows[1].Position.Y, rows[2].Position.Y)
	}
}

func TestGapOverlap(t *testing.T) {
	a := &floorplan.Row{Position: floorplan.Position{X: 0, Y: 0}, Width: 100, Height: 100}
	b := &floorplan.Row{Position: floorplan.Position{X: 50, Y: 50}, Width: 100, Height: 100}
	if g := Gap(a, b); g >= 0 {
		t.Errorf("Gap of overlapping rows = %d, want negative", g)
	}
}

func TestOrigin(t *testing.T) {
	rows := []*floorplan.Row{
		{Position: floorplan.Position{X: 40, Y: 10}},
		{Position: floorplan.Position{X: 20, Y: 30}},
	}
	if got := Origin(rows); got != (floorplan.Position{X: 20, Y: 10}) {
		t.Errorf("Origin = %+v, want (20,10)", got)
	}
}
