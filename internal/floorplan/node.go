package floorplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "scalar"
	}
}

// Member is one key/value pair of a mapping.
type Member struct {
	Key   string
	Value *Node
}

// Node is a JSON value as returned by the vision model. Mappings keep their
// keys in document order, which id assignment depends on.
type Node struct {
	Kind Kind
	// Scalar is nil, bool, string or json.Number.
	Scalar  any
	Items   []*Node
	Members []Member
}

// String returns a string scalar node.
func String(s string) *Node { return &Node{Kind: KindScalar, Scalar: s} }

// Int returns an integer scalar node.
func Int(i int) *Node { return &Node{Kind: KindScalar, Scalar: json.Number(strconv.Itoa(i))} }

// Bool returns a boolean scalar node.
func Bool(b bool) *Node { return &Node{Kind: KindScalar, Scalar: b} }

// Null returns a null scalar node.
func Null() *Node { return &Node{Kind: KindScalar} }

// Sequence returns a sequence node holding items.
func Sequence(items ...*Node) *Node { return &Node{Kind: KindSequence, Items: items} }

// Mapping returns a mapping node holding members in the given order.
func Mapping(members ...Member) *Node { return &Node{Kind: KindMapping, Members: members} }

// IsMapping reports whether n is a mapping.
func (n *Node) IsMapping() bool { return n != nil && n.Kind == KindMapping }

// IsSequence reports whether n is a sequence.
func (n *Node) IsSequence() bool { return n != nil && n.Kind == KindSequence }

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	return n.index(key) >= 0
}

// HasName reports whether n is a mapping with a "name" key, i.e. an entity.
func (n *Node) HasName() bool { return n.Has("name") }

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if i := n.index(key); i >= 0 {
		return n.Members[i].Value
	}
	return nil
}

// Set replaces the value under key in place, or appends it when absent.
func (n *Node) Set(key string, v *Node) {
	if !n.IsMapping() {
		return
	}
	if i := n.index(key); i >= 0 {
		n.Members[i].Value = v
		return
	}
	n.Members = append(n.Members, Member{Key: key, Value: v})
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}
	keys := make([]string, len(n.Members))
	for i, m := range n.Members {
		keys[i] = m.Key
	}
	return keys
}

func (n *Node) index(key string) int {
	if !n.IsMapping() {
		return -1
	}
	for i, m := range n.Members {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// Str returns the string scalar held by n.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	s, ok := n.Scalar.(string)
	return s, ok
}

// Int returns the integer held by n. Integral floats such as 20.0 are accepted.
func (n *Node) Int() (int, bool) {
	if n == nil || n.Kind != KindScalar {
		return 0, false
	}
	num, ok := n.Scalar.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := num.Int64(); err == nil {
		return int(i), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean held by n.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != KindScalar {
		return false, false
	}
	b, ok := n.Scalar.(bool)
	return b, ok
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Scalar: n.Scalar}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.Clone()
		}
	}
	if n.Members != nil {
		c.Members = make([]Member, len(n.Members))
		for i, m := range n.Members {
			c.Members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return c
}

// Decode parses a single JSON value, keeping mapping keys in document order.
// A duplicated key keeps its first position and its last value.
func Decode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{Kind: KindMapping, Members: []Member{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindSequence, Items: []*Node{}}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return &Node{Kind: KindScalar, Scalar: t}, nil
	}
}

// MarshalJSON encodes n with mapping keys in document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into n, keeping key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	d, err := Decode(data)
	if err != nil {
		return err
	}
	*n = *d
	return nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindMapping:
		buf.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeScalar(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindSequence:
		buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return encodeScalar(buf, n.Scalar)
	}
	return nil
}

func encodeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Pretty renders n as JSON indented by two spaces.
func Pretty(n *Node) (string, error) {
	raw, err := n.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}
