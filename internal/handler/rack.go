package handler

import (
	"strings"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/registry"
	"github.com/floorplan-layout/analyzer/internal/result"
)

type rackHandler struct{}

func init() {
	registry.Default.Register(floorplan.ClassRack, &rackHandler{})
}

func (rackHandler) Class() string { return floorplan.ClassRack }

func (rackHandler) Validate(el *floorplan.Element) ([]result.Error, []result.Warning) {
	c := newChecker(el)
	c.requireString("label")
	c.requireString("parentNode")
	c.requirePosition()
	c.requireSize("width")
	c.requireSize("height")
	c.flag("connectable")
	c.flag("selectable")

	switch t := el.Node.Get("type"); {
	case t == nil:
		c.fail("type is required", `Set type to "IT" or "REF"`)
	default:
		s, _ := t.Str()
		if floorplan.RackType(s) != floorplan.RackIT && floorplan.RackType(s) != floorplan.RackREF {
			c.fail("type must be \"IT\" or \"REF\"", `Use "REF" for AC/AHU cooling units and "IT" for everything else`)
		}
	}

	parent, _ := floorplan.GetStr(el.Node, "parentNode")
	if c.id != "" && parent != "" && !strings.HasPrefix(c.id, parent+"-") {
		c.warn("id_format", "rack id "+c.id+" does not follow {parentNode}-{rack_number}", "Use ids like "+parent+"-1")
	}
	return c.result()
}

func (rackHandler) Decode(el *floorplan.Element, l *floorplan.Layout) {
	n := el.Node
	rack := &floorplan.Rack{Class: floorplan.ClassRack, Index: el.Index, Source: n}
	rack.ID, _ = floorplan.GetStr(n, "id")
	rack.Label, _ = floorplan.GetStr(n, "label")
	rack.Position, _ = floorplan.GetPosition(n, "position")
	rack.Width, _ = floorplan.GetInt(n, "width")
	rack.Height, _ = floorplan.GetInt(n, "height")
	rack.ParentNode, _ = floorplan.GetStr(n, "parentNode")
	rack.Connectable, _ = floorplan.GetBool(n, "connectable")
	rack.Selectable, _ = floorplan.GetBool(n, "selectable")
	t, _ := floorplan.GetStr(n, "type")
	rack.Type = floorplan.RackType(t)
	l.Racks = append(l.Racks, rack)
}
