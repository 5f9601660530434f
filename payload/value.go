// Package payload turns an inbound JSON document into the artifact renditions
// (pretty JSON envelope, XML document, flattened CSV).
//
// Object keys keep their document order through every rendition, so the
// decoded form is a small tagged tree rather than map[string]any.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
)

var (
	ErrMalformedJSON = errors.New("payload: malformed JSON")
	ErrNotObject     = errors.New("payload: top-level value is not an object")
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string content, or the literal text of a number
	elems   []Value
	members []Member
}

func NullValue() Value { return Value{} }
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }
func StringValue(s string) Value { return Value{kind: String, text: s} }
func ArrayValue(v ...Value) Value { return Value{kind: Array, elems: v} }
func NumberValue(raw string) Value { return Value{kind: Number, text: raw} }

// ObjectValue builds an object; a repeated key keeps its first position and its last value.
func ObjectValue(members ...Member) Value {
	v := Value{kind: Object}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

func (v *Value) set(key string, val Value) {
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }
func (v Value) Members() []Member { return v.members }
func (v Value) Elements() []Value { return v.elems }
func (v Value) Bool() bool { return v.kind == Bool && v.boolean }

// Lookup returns the member named key of an object.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Get walks a path of object keys. It reports false as soon as a key is
// missing or an intermediate value is not an object.
func (v Value) Get(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Lookup(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Text is the scalar rendition used by CSV and XML: null is "", booleans are
// "true"/"false", numbers keep their literal text. Composite values render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.boolean)
	case Number, String:
		return v.text
	default:
		b, _ := v.MarshalJSON()
		return string(b)
	}
}

// Truthy follows the source system's loose boolean convention.
func (v Value) Truthy() bool {
	switch v.kind {
	case Bool:
		return v.boolean
	case Number:
		f, err := strconv.ParseFloat(v.text, 64)
		return err == nil && f != 0
	case String:
		return v.text != ""
	case Array, Object:
		return true
	default:
		return false
	}
}

// Parse decodes a JSON document of any shape.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrMalformedJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseObject decodes a document whose top level must be an object.
func ParseObject(data []byte) (Value, error) {
	v, err := Parse(data)
	if err != nil {
		return Value{}, err
	}
	if v.kind != Object {
		return Value{}, ErrNotObject
	}
	return v, nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return NumberValue(r.Raw)
	case gjson.String:
		return StringValue(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			v := Value{kind: Array, elems: []Value{}}
			r.ForEach(func(_, elem gjson.Result) bool {
				v.elems = append(v.elems, fromResult(elem))
				return true
			})
			return v
		}
		v := Value{kind: Object}
		r.ForEach(func(key, member gjson.Result) bool {
			v.set(key.Str, fromResult(member))
			return true
		})
		return v
	default:
		return NullValue()
	}
}

// MarshalJSON writes the value with object keys in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.text)
	case String:
		return writeJSONString(buf, v.text)
	case Array:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
