package floorplan

import "fmt"

// Shape selects which document layout the vision model is asked for.
type Shape string

const (
	ShapeAuto   Shape = "auto"
	ShapeNested Shape = "nested" // rooms -> rows -> racks, entities carry "name"
	ShapeFlat   Shape = "flat"   // one array of row and rack elements with geometry
)

// ParseShape maps a config or flag value onto a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case "", ShapeAuto:
		return ShapeAuto, nil
	case ShapeNested, ShapeFlat:
		return Shape(s), nil
	default:
		return "", fmt.Errorf("unknown layout shape %q (want auto, nested or flat)", s)
	}
}

// DetectShape guesses the shape of a decoded reply. A sequence whose elements
// look like row/rack elements is flat; anything else is nested.
func DetectShape(n *Node) Shape {
	if !n.IsSequence() {
		return ShapeNested
	}
	if len(n.Items) == 0 {
		return ShapeFlat
	}
	for _, it := range n.Items {
		if it.Has("class") || it.Has("parentNode") || it.Has("position") {
			return ShapeFlat
		}
	}
	return ShapeNested
}

// Orientation is the direction racks run inside a row.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// RackType distinguishes IT racks from cooling units.
type RackType string

const (
	RackIT  RackType = "IT"
	RackREF RackType = "REF" // AC / AHU cooling unit
)

// Element classes.
const (
	ClassRow  = "row"
	ClassRack = "rack"
)

// Position is a pixel offset. Rack positions are relative to the parent row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Row is a row element of the flat layout.
type Row struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Position    Position    `json:"position"`
	Height      int         `json:"height"`
	Width       int         `json:"width"`
	Connectable bool        `json:"connectable"`
	Selectable  bool        `json:"selectable"`
	Class       string      `json:"class"`
	Orientation Orientation `json:"-"`

	// Index is the element position in the source array; Source is the node
	// the row was decoded from (nil for computed rows).
	Index  int   `json:"-"`
	Source *Node `json:"-"`
}

// Rack is a rack element of the flat layout.
type Rack struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Position    Position `json:"position"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	ParentNode  string   `json:"parentNode"`
	Connectable bool     `json:"connectable"`
	Selectable  bool     `json:"selectable"`
	Class       string   `json:"class"`
	Type        RackType `json:"type"`

	Index  int   `json:"-"`
	Source *Node `json:"-"`
}

// Layout is a decoded flat document, elements kept in source order per class.
type Layout struct {
	Rows  []*Row
	Racks []*Rack
}

// Element is one undecoded entry of a flat document.
type Element struct {
	Index int
	Class string
	Node  *Node
}

// RacksOf returns the racks whose parentNode is rowID, in document order.
func (l *Layout) RacksOf(rowID string) []*Rack {
	var out []*Rack
	for _, r := range l.Racks {
		if r.ParentNode == rowID {
			out = append(out, r)
		}
	}
	return out
}

// Node renders the row with the field order the diagramming tool expects.
func (r *Row) Node() *Node {
	return Mapping(
		Member{"id", String(r.ID)},
		Member{"label", String(r.Label)},
		Member{"position", positionNode(r.Position)},
		Member{"height", Int(r.Height)},
		Member{"width", Int(r.Width)},
		Member{"connectable", Bool(r.Connectable)},
		Member{"selectable", Bool(r.Selectable)},
		Member{"class", String(ClassRow)},
	)
}

// Node renders the rack with the field order the diagramming tool expects.
func (r *Rack) Node() *Node {
	return Mapping(
		Member{"id", String(r.ID)},
		Member{"label", String(r.Label)},
		Member{"position", positionNode(r.Position)},
		Member{"width", Int(r.Width)},
		Member{"height", Int(r.Height)},
		Member{"parentNode", String(r.ParentNode)},
		Member{"connectable", Bool(r.Connectable)},
		Member{"selectable", Bool(r.Selectable)},
		Member{"class", String(ClassRack)},
		Member{"type", String(string(r.Type))},
	)
}

// FlatDocument renders rows and racks as one flat array, each row followed
// by its racks.
func FlatDocument(rows []Row, racks [][]Rack) *Node {
	doc := Sequence()
	for i := range rows {
		doc.Items = append(doc.Items, rows[i].Node())
		if i < len(racks) {
			for j := range racks[i] {
				doc.Items = append(doc.Items, racks[i][j].Node())
			}
		}
	}
	return doc
}

func positionNode(p Position) *Node {
	return Mapping(Member{"x", Int(p.X)}, Member{"y", Int(p.Y)})
}
