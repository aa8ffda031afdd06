package handler

import (
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/geometry"
	"github.com/floorplan-layout/analyzer/internal/registry"
	"github.com/floorplan-layout/analyzer/internal/result"
)

type rowHandler struct{}

func init() {
	registry.Default.Register(floorplan.ClassRow, &rowHandler{})
}

func (rowHandler) Class() string { return floorplan.ClassRow }

func (rowHandler) Validate(el *floorplan.Element) ([]result.Error, []result.Warning) {
	c := newChecker(el)
	c.requireString("label")
	c.requirePosition()
	c.requireSize("width")
	c.requireSize("height")
	c.flag("connectable")
	c.flag("selectable")
	if c.id != "" {
		if _, ok := geometry.ParseRowNumber(c.id); !ok {
			c.warn("id_format", "row id "+c.id+" does not follow r{row_number}", "Use ids like r1, r2, ...")
		}
	}
	return c.result()
}

func (rowHandler) Decode(el *floorplan.Element, l *floorplan.Layout) {
	n := el.Node
	row := &floorplan.Row{Class: floorplan.ClassRow, Index: el.Index, Source: n}
	row.ID, _ = floorplan.GetStr(n, "id")
	row.Label, _ = floorplan.GetStr(n, "label")
	row.Position, _ = floorplan.GetPosition(n, "position")
	row.Width, _ = floorplan.GetInt(n, "width")
	row.Height, _ = floorplan.GetInt(n, "height")
	row.Connectable, _ = floorplan.GetBool(n, "connectable")
	row.Selectable, _ = floorplan.GetBool(n, "selectable")
	l.Rows = append(l.Rows, row)
}
