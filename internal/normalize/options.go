package normalize

import (
	"fmt"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

// CoolingCheck controls the label-based cooling-unit safety net.
type CoolingCheck string

const (
	// CoolingOff trusts the model's type field entirely.
	CoolingOff CoolingCheck = "off"
	// CoolingWarn reports AC/AHU labels the model did not type REF.
	CoolingWarn CoolingCheck = "warn"
	// CoolingEnforce also rewrites their type to REF. This moves the trust
	// boundary away from the model, so every rewrite is reported.
	CoolingEnforce CoolingCheck = "enforce"
)

// ParseCoolingCheck maps a config value onto a CoolingCheck.
func ParseCoolingCheck(s string) (CoolingCheck, error) {
	switch CoolingCheck(s) {
	case "":
		return CoolingWarn, nil
	case CoolingOff, CoolingWarn, CoolingEnforce:
		return CoolingCheck(s), nil
	default:
		return "", fmt.Errorf("unknown cooling check %q (want off, warn or enforce)", s)
	}
}

// Options configures the normalizer behavior.
type Options struct {
	// Shape is the expected reply shape; ShapeAuto detects it per reply.
	Shape floorplan.Shape
	// RepairGeometry recomputes flat-layout sizes and positions from the
	// row/rack rules and restacks crowded rows.
	RepairGeometry bool
	// CoolingCheck selects the cooling-unit safety net.
	CoolingCheck CoolingCheck
	// ExtractFenced unwraps a reply fenced in a Markdown code block before
	// parsing it.
	ExtractFenced bool
}

// DefaultOptions returns default normalizer options.
func DefaultOptions() Options {
	return Options{
		Shape:          floorplan.ShapeAuto,
		RepairGeometry: true,
		CoolingCheck:   CoolingWarn,
		ExtractFenced:  false,
	}
}
