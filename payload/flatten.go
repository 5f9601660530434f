package payload

import "strconv"

// Record is an insertion-ordered string map produced by Flatten.
type Record struct {
	keys   []string
	values map[string]string
}

func NewRecord() *Record {
	return &Record{values: map[string]string{}}
}

// Set keeps the position of an existing key and replaces its value.
func (r *Record) Set(key string, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) Keys() []string {
	return r.keys
}

func (r *Record) Values() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Flatten turns nested objects and arrays into dotted keys:
// {"a":{"b":1},"tags":["x"]} becomes a.b=1, tags.0=x.
// Empty objects and arrays contribute nothing.
func Flatten(v Value, prefix string) *Record {
	rec := NewRecord()
	FlattenInto(rec, v, prefix)
	return rec
}

// FlattenInto appends the flattened form of v to rec.
func FlattenInto(rec *Record, v Value, prefix string) {
	switch v.Kind() {
	case Object:
		for _, m := range v.Members() {
			FlattenInto(rec, m.Value, joinKey(prefix, m.Key))
		}
	case Array:
		for i, e := range v.Elements() {
			FlattenInto(rec, e, joinKey(prefix, strconv.Itoa(i)))
		}
	default:
		rec.Set(prefix, v.Text())
	}
}

func joinKey(prefix string, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
