package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
)

// SanitizeName converts a JSON key into an HCL identifier (e.g. "rack name" -> rack_name).
func SanitizeName(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// SetAttributeStr sets a string attribute on a block body.
func SetAttributeStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// SetAttributeInt sets an int attribute.
func SetAttributeInt(body *hclwrite.Body, name string, value int) {
	body.SetAttributeValue(name, cty.NumberIntVal(int64(value)))
}

// SetAttributeBool sets a bool attribute.
func SetAttributeBool(body *hclwrite.Body, name string, value bool) {
	body.SetAttributeValue(name, cty.BoolVal(value))
}

// SetPosition sets an { x, y } object attribute.
func SetPosition(body *hclwrite.Body, p floorplan.Position) {
	body.SetAttributeValue("position", cty.ObjectVal(map[string]cty.Value{
		"x": cty.NumberIntVal(int64(p.X)),
		"y": cty.NumberIntVal(int64(p.Y)),
	}))
}

// ToCty converts a document node into a cty value.
func ToCty(n *floorplan.Node) (cty.Value, error) {
	if n == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch n.Kind {
	case floorplan.KindMapping:
		if len(n.Members) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Members))
		for _, m := range n.Members {
			v, err := ToCty(m.Value)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[m.Key] = v
		}
		return cty.ObjectVal(attrs), nil
	case floorplan.KindSequence:
		if len(n.Items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := ToCty(it)
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = v
		}
		return cty.TupleVal(items), nil
	}
	switch v := n.Scalar.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(v), nil
	case string:
		return cty.StringVal(v), nil
	case json.Number:
		return cty.ParseNumberVal(v.String())
	default:
		return cty.NilVal, fmt.Errorf("unsupported scalar %T", v)
	}
}
