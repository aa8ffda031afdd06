package export

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/result"
)

// Files renders a normalization result into output files: layout.json (and
// layout.hcl when withHCL is set) for structured results, reply.txt otherwise.
func Files(res *result.Result, withHCL bool) (map[string][]byte, error) {
	b := NewBuilder()
	if !res.Success() {
		b.SetRaw([]byte(res.Text))
		return b.Build(), nil
	}

	pretty, err := floorplan.Pretty(res.Document)
	if err != nil {
		return nil, fmt.Errorf("rendering layout.json: %w", err)
	}
	b.SetJSON([]byte(pretty + "\n"))

	if withHCL {
		var content []byte
		if res.Shape == floorplan.ShapeFlat && res.Layout != nil {
			content = FlatHCL(res.Layout)
		} else {
			content, err = NestedHCL(res.Document)
			if err != nil {
				return nil, fmt.Errorf("rendering layout.hcl: %w", err)
			}
		}
		b.SetHCL(content)
	}
	return b.Build(), nil
}

// FlatHCL renders rows as row "id" { ... } blocks with their racks nested
// inside as rack "id" { ... } blocks.
func FlatHCL(l *floorplan.Layout) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, row := range l.Rows {
		if i > 0 {
			body.AppendNewline()
		}
		rowBlock := body.AppendNewBlock(floorplan.ClassRow, []string{row.ID})
		rb := rowBlock.Body()
		SetAttributeStr(rb, "label", row.Label)
		SetPosition(rb, row.Position)
		SetAttributeInt(rb, "width", row.Width)
		SetAttributeInt(rb, "height", row.Height)
		SetAttributeStr(rb, "orientation", string(row.Orientation))
		SetAttributeBool(rb, "connectable", row.Connectable)
		SetAttributeBool(rb, "selectable", row.Selectable)

		for _, rack := range l.RacksOf(row.ID) {
			rb.AppendNewline()
			rackBlock := rb.AppendNewBlock(floorplan.ClassRack, []string{rack.ID})
			kb := rackBlock.Body()
			SetAttributeStr(kb, "label", rack.Label)
			SetPosition(kb, rack.Position)
			SetAttributeInt(kb, "width", rack.Width)
			SetAttributeInt(kb, "height", rack.Height)
			SetAttributeStr(kb, "type", string(rack.Type))
			SetAttributeBool(kb, "connectable", rack.Connectable)
			SetAttributeBool(kb, "selectable", rack.Selectable)
		}
	}
	return f.Bytes()
}

// NestedHCL renders a nested document: scalar and object members become
// attributes, and arrays of objects become one block per element named after
// the singular of their key (rooms -> room), labelled with the entity name.
func NestedHCL(doc *floorplan.Node) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	var err error
	switch {
	case doc.IsMapping():
		err = writeMembers(f.Body(), doc)
	case doc.IsSequence():
		err = writeBlocks(f.Body(), "item", doc)
	default:
		val, cerr := ToCty(doc)
		if cerr != nil {
			return nil, cerr
		}
		f.Body().SetAttributeValue("value", val)
	}
	if err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}

func writeMembers(body *hclwrite.Body, n *floorplan.Node) error {
	for _, m := range n.Members {
		if isBlockList(m.Value) {
			if err := writeBlocks(body, singular(m.Key), m.Value); err != nil {
				return err
			}
			continue
		}
		v, err := ToCty(m.Value)
		if err != nil {
			return err
		}
		body.SetAttributeValue(SanitizeName(m.Key), v)
	}
	return nil
}

func writeBlocks(body *hclwrite.Body, kind string, seq *floorplan.Node) error {
	for _, it := range seq.Items {
		var labels []string
		if name := it.Get("name"); name != nil {
			if s, ok := name.Str(); ok {
				labels = []string{s}
			} else if raw, err := name.MarshalJSON(); err == nil {
				labels = []string{string(raw)}
			}
		}
		block := body.AppendNewBlock(SanitizeName(kind), labels)
		if err := writeMembers(block.Body(), it); err != nil {
			return err
		}
	}
	return nil
}

// isBlockList reports whether n is a non-empty array holding only objects.
func isBlockList(n *floorplan.Node) bool {
	if !n.IsSequence() || len(n.Items) == 0 {
		return false
	}
	for _, it := range n.Items {
		if !it.IsMapping() {
			return false
		}
	}
	return true
}

func singular(key string) string {
	if len(key) > 1 && strings.HasSuffix(key, "s") {
		return strings.TrimSuffix(key, "s")
	}
	return key
}
