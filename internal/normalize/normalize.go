package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/floorplan-layout/analyzer/internal/annotate"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/hierarchy"
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/registry"
	"github.com/floorplan-layout/analyzer/internal/result"
)

// Normalizer turns raw vision-model replies into layout documents.
type Normalizer struct {
	opts Options
	reg  *registry.Registry
	log  *slog.Logger
}

// New returns a new normalizer with the given options.
func New(opts Options) *Normalizer {
	if opts.Shape == "" {
		opts.Shape = floorplan.ShapeAuto
	}
	if opts.CoolingCheck == "" {
		opts.CoolingCheck = CoolingWarn
	}
	return &Normalizer{
		opts: opts,
		reg:  registry.Default,
		log:  logger.Default,
	}
}

// WithLogger returns a copy of the normalizer logging to l.
func (n *Normalizer) WithLogger(l *slog.Logger) *Normalizer {
	c := *n
	c.log = l
	return &c
}

// Options returns the options the normalizer was built with.
func (n *Normalizer) Options() Options { return n.opts }

// Normalize parses raw and returns one of three results:
//   - structured: raw is JSON; nested documents get entity ids from 1,
//     flat documents are validated and, if enabled, geometry-repaired
//   - unstructured: raw is not JSON and is returned unchanged
//   - schema violation: raw is JSON but not a valid flat layout
//
// Normalize holds no state between calls.
func (n *Normalizer) Normalize(raw string) *result.Result {
	text := raw
	if n.opts.ExtractFenced {
		text = unfence(raw)
	}

	doc, err := floorplan.Decode([]byte(text))
	if err != nil {
		n.log.Warn("model reply is not JSON", "error", err, "bytes", len(raw))
		return result.Unstructured(raw, fmt.Errorf("%w: %v", result.ErrMalformedResponse, err))
	}

	shape := n.opts.Shape
	if shape == floorplan.ShapeAuto {
		shape = floorplan.DetectShape(doc)
	}
	if shape == floorplan.ShapeFlat {
		return n.normalizeFlat(raw, doc)
	}
	return n.normalizeNested(doc)
}

func (n *Normalizer) normalizeNested(doc *floorplan.Node) *result.Result {
	count := annotate.Document(doc)
	out := result.Structured(floorplan.ShapeNested, doc)
	out.Entities = count
	if n.opts.CoolingCheck != CoolingOff {
		out.Warnings = checkCoolingNested(doc, n.opts.CoolingCheck == CoolingEnforce)
	}
	n.log.Info("normalized nested layout", "entities", count, "warnings", len(out.Warnings))
	return out
}

func (n *Normalizer) normalizeFlat(raw string, doc *floorplan.Node) *result.Result {
	var errs []result.Error
	var warns []result.Warning

	// 1. Document-level validation
	elements, docErrs := floorplan.Validate(doc)
	for _, e := range docErrs {
		errs = append(errs, result.Error{
			Type: e.Type, Severity: e.Severity, NodeID: e.NodeID,
			Message: e.Message, Suggestion: e.Suggestion,
		})
	}

	// 2. Class-level validation
	for i := range elements {
		el := &elements[i]
		h, ok := n.reg.Get(el.Class)
		if !ok {
			errs = append(errs, result.Error{
				Type: "schema_error", Severity: "error",
				Message:    fmt.Sprintf("unsupported element class %q at index %d", el.Class, el.Index),
				Suggestion: "Use one of: " + strings.Join(n.reg.ListSupportedClasses(), ", "),
			})
			continue
		}
		verrs, vwarns := h.Validate(el)
		errs = append(errs, verrs...)
		warns = append(warns, vwarns...)
	}
	if len(errs) > 0 {
		return n.invalid(raw, errs, warns)
	}

	// 3. Decode and resolve parentNode references
	layout := &floorplan.Layout{}
	for i := range elements {
		h, _ := n.reg.Get(elements[i].Class)
		h.Decode(&elements[i], layout)
	}
	groups, err := hierarchy.Resolve(layout)
	if err != nil {
		var re *hierarchy.ResolveError
		if errors.As(err, &re) {
			for _, ref := range re.Refs {
				errs = append(errs, result.Error{
					Type: "schema_error", Severity: "error", NodeID: ref.RackID,
					Message:    fmt.Sprintf("parentNode %q: %s", ref.ParentID, ref.Reason),
					Suggestion: "Set parentNode to the id of an existing row",
				})
			}
		} else {
			errs = append(errs, result.Error{Type: "schema_error", Severity: "error", Message: err.Error()})
		}
		return n.invalid(raw, errs, warns)
	}

	// 4. Geometry and cooling checks
	if n.opts.RepairGeometry {
		warns = append(warns, repairGeometry(groups)...)
	} else {
		for _, g := range groups {
			g.Row.Orientation = inferOrientation(g)
		}
	}
	if n.opts.CoolingCheck != CoolingOff {
		warns = append(warns, checkCoolingFlat(layout, n.opts.CoolingCheck == CoolingEnforce)...)
	}

	out := result.Structured(floorplan.ShapeFlat, doc)
	out.Warnings = warns
	out.Layout = layout
	n.log.Info("normalized flat layout", "rows", len(layout.Rows), "racks", len(layout.Racks), "warnings", len(warns))
	return out
}

func (n *Normalizer) invalid(raw string, errs []result.Error, warns []result.Warning) *result.Result {
	n.log.Warn("flat layout violates schema", "errors", len(errs))
	return result.Invalid(raw, errs, warns)
}

// unfence strips a surrounding Markdown code fence such as ```json ... ```.
func unfence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return raw
	}
	s = strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return raw
	}
	return s[nl+1:]
}
