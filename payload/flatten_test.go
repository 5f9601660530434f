package payload

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, body string) Value {
	t.Helper()
	v, err := ParseObject([]byte(body))
	if err != nil {
		t.Fatalf("ParseObject(%s): %v", body, err)
	}
	return v
}

func TestFlatten(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string // key=value pairs joined by |
	}{
		{"nested", `{"a":{"b":1,"c":[2,3]},"d":null}`, "a.b=1|a.c.0=2|a.c.1=3|d="},
		{"array", `{"id":7,"tags":["x","y"]}`, "id=7|tags.0=x|tags.1=y"},
		{"empty containers", `{"a":{},"b":[],"c":"k"}`, "c=k"},
		{"booleans", `{"t":true,"f":false}`, "t=true|f=false"},
		{"objects in arrays", `{"lines":[{"id":1},{"id":2}]}`, "lines.0.id=1|lines.1.id=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Flatten(mustParse(t, tc.body), "")
			var pairs []string
			for i, k := range rec.Keys() {
				pairs = append(pairs, k+"="+rec.Values()[i])
			}
			if got := strings.Join(pairs, "|"); got != tc.want {
				t.Fatalf("Flatten = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFlattenWithPrefix(t *testing.T) {
	rec := Flatten(mustParse(t, `{"a":1}`), "root")
	if v, ok := rec.Get("root.a"); !ok || v != "1" {
		t.Fatalf("root.a = %q, %v", v, ok)
	}
}

func TestRecordSetKeepsPosition(t *testing.T) {
	rec := NewRecord()
	rec.Set("x", "1")
	rec.Set("y", "2")
	rec.Set("x", "3")
	if strings.Join(rec.Keys(), ",") != "x,y" || strings.Join(rec.Values(), ",") != "3,2" {
		t.Fatalf("record = %v / %v", rec.Keys(), rec.Values())
	}
}
