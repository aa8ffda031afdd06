package normalize

import (
	"regexp"
	"strconv"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/result"
)

// coolingLabel matches AC, CRAC or CRAH at the start of a word, or AHU, in
// any case. Unlike geometry.Classify it does not match "Rack".
var coolingLabel = regexp.MustCompile(`(?i)\b(CR)?AC|\bCRAH|AHU`)

func looksLikeCooling(label string) bool {
	return coolingLabel.MatchString(label)
}

func coolingWarning(id, label, got string, enforce bool) result.Warning {
	w := result.Warning{
		Type: "cooling_mismatch", Severity: "warning", NodeID: id,
		Message:    "label " + strconv.Quote(label) + " looks like a cooling unit but type is " + strconv.Quote(got),
		Suggestion: `Cooling units (AC, AHU) should have type "REF"`,
	}
	if enforce {
		w.Message += "; type overridden to \"REF\" by label rule, not by the model"
		w.Suggestion = ""
	}
	return w
}

func checkCoolingFlat(l *floorplan.Layout, enforce bool) []result.Warning {
	var warns []result.Warning
	for _, rack := range l.Racks {
		if rack.Type == floorplan.RackREF || !looksLikeCooling(rack.Label) {
			continue
		}
		warns = append(warns, coolingWarning(rack.ID, rack.Label, string(rack.Type), enforce))
		if enforce {
			rack.Type = floorplan.RackREF
			rack.Source.Set("type", floorplan.String(string(floorplan.RackREF)))
		}
	}
	return warns
}

// checkCoolingNested looks at named entities listed under a "racks" key.
func checkCoolingNested(doc *floorplan.Node, enforce bool) []result.Warning {
	var warns []result.Warning
	var walk func(n *floorplan.Node)
	walk = func(n *floorplan.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case floorplan.KindMapping:
			for _, m := range n.Members {
				if m.Key == "racks" && m.Value.IsSequence() {
					for _, rack := range m.Value.Items {
						warns = append(warns, checkNestedRack(rack, enforce)...)
					}
				}
				walk(m.Value)
			}
		case floorplan.KindSequence:
			for _, it := range n.Items {
				walk(it)
			}
		}
	}
	walk(doc)
	return warns
}

func checkNestedRack(rack *floorplan.Node, enforce bool) []result.Warning {
	name, ok := floorplan.GetStr(rack, "name")
	if !ok || !looksLikeCooling(name) {
		return nil
	}
	got, _ := floorplan.GetStr(rack, "type")
	if floorplan.RackType(got) == floorplan.RackREF {
		return nil
	}
	id := ""
	if n, ok := floorplan.GetInt(rack, "id"); ok {
		id = strconv.Itoa(n)
	}
	if enforce {
		rack.Set("type", floorplan.String(string(floorplan.RackREF)))
	}
	return []result.Warning{coolingWarning(id, name, got, enforce)}
}
