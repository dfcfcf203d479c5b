package formtree

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the closed set of tree node shapes.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindUpload
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindUpload:
		return "upload"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of the parameter tree: a closed tagged variant over
// null, text, upload, array, and object. Object member order is insertion
// order and survives merging: the first write of a key fixes its position,
// later writes update the value in place.
type Value struct {
	kind   Kind
	text   string
	upload *Upload
	elems  []*Value
	keys   []string
	fields map[string]*Value
}

// NullValue returns a null leaf.
func NullValue() *Value { return &Value{kind: KindNull} }

// TextValue returns a text leaf holding the raw decoded string.
func TextValue(s string) *Value { return &Value{kind: KindText, text: s} }

// UploadValue returns an upload leaf owning u.
func UploadValue(u *Upload) *Value { return &Value{kind: KindUpload, upload: u} }

// NewArray returns an empty array node.
func NewArray() *Value { return &Value{kind: KindArray} }

// NewObject returns an empty object node.
func NewObject() *Value { return &Value{kind: KindObject, fields: map[string]*Value{}} }

func newContainer(k Kind) *Value {
	if k == KindArray {
		return NewArray()
	}
	return NewObject()
}

// Kind reports the node's shape.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsScalar reports whether the node is a leaf (null, text, or upload).
func (v *Value) IsScalar() bool {
	k := v.Kind()
	return k == KindNull || k == KindText || k == KindUpload
}

// Text returns the raw string of a text leaf, or "" for any other shape.
func (v *Value) Text() string {
	if v == nil || v.kind != KindText {
		return ""
	}
	return v.text
}

// Upload returns the upload handle of an upload leaf, or nil.
func (v *Value) Upload() *Upload {
	if v == nil || v.kind != KindUpload {
		return nil
	}
	return v.upload
}

// Len returns the element count of an array or the member count of an
// object; 0 for leaves.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.keys)
	default:
		return 0
	}
}

// At returns the i-th array element, or nil when out of range or not an
// array.
func (v *Value) At(i int) *Value {
	if v == nil || v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return nil
	}
	return v.elems[i]
}

// Keys returns the object's member names in insertion order. The slice is a
// copy.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindObject {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Get returns the object member named name, or nil when absent or not an
// object.
func (v *Value) Get(name string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.fields[name]
}

// setField writes a member, keeping the first-insertion position.
func (v *Value) setField(name string, child *Value) {
	if _, ok := v.fields[name]; !ok {
		v.keys = append(v.keys, name)
	}
	v.fields[name] = child
}

// extendTo pads the array with null leaves up to length n.
func (v *Value) extendTo(n int) {
	for len(v.elems) < n {
		v.elems = append(v.elems, NullValue())
	}
}

// Interface converts the subtree into plain Go values: objects become
// map[string]any (member order is lost), arrays []any, text string, null
// nil, and uploads pass through as *Upload. This is the shape consumed by
// the typed decoding bridge.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindText:
		return v.text
	case KindUpload:
		return v.upload
	case KindArray:
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the subtree with object members in insertion order.
// Uploads render as {"filename","content_type","size"} descriptors.
func (v *Value) MarshalJSON() ([]byte, error) {
	b := &bytes.Buffer{}
	if err := writeJSON(b, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeJSON(b *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case KindNull:
		b.WriteString("null")
	case KindText:
		return writeJSONString(b, v.text)
	case KindUpload:
		u := v.upload
		b.WriteString(`{"filename":`)
		if err := writeJSONString(b, u.Filename); err != nil {
			return err
		}
		b.WriteString(`,"content_type":`)
		if err := writeJSONString(b, u.ContentType); err != nil {
			return err
		}
		b.WriteString(`,"size":`)
		b.WriteString(strconv.FormatInt(u.Size, 10))
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSONString(b, k); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeJSON(b, v.fields[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}

func writeJSONString(b *bytes.Buffer, s string) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	b.Write(enc)
	return nil
}

// MarshalYAML renders the subtree as a yaml.Node so object member order
// survives encoding (plain maps would lose it).
func (v *Value) MarshalYAML() (any, error) {
	return yamlNode(v), nil
}

func yamlNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case KindText:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.text}
	case KindUpload:
		u := v.upload
		return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "filename"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: u.Filename},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "content_type"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: u.ContentType},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "size"},
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(u.Size, 10)},
		}}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range v.elems {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range v.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(v.fields[k]))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
