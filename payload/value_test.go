package payload

import (
	"errors"
	"strings"
	"testing"
)

func TestParseKeepsDocumentOrder(t *testing.T) {
	v, err := ParseObject([]byte(`{"zeta":1,"alpha":{"y":true,"b":null},"mid":"x"}`))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	if got := strings.Join(keys, ","); got != "zeta,alpha,mid" {
		t.Fatalf("key order = %s", got)
	}
	alpha, _ := v.Lookup("alpha")
	if alpha.Members()[0].Key != "y" || alpha.Members()[1].Key != "b" {
		t.Fatalf("nested order lost: %+v", alpha.Members())
	}
}

func TestParseDuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	v, err := ParseObject([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if len(v.Members()) != 2 {
		t.Fatalf("members = %d, want 2", len(v.Members()))
	}
	if v.Members()[0].Key != "a" || v.Members()[0].Value.Text() != "3" {
		t.Fatalf("first member = %+v", v.Members()[0])
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"malformed", `{"a":`, ErrMalformedJSON},
		{"trailing garbage", `{"a":1} x`, ErrMalformedJSON},
		{"array", `[1,2]`, ErrNotObject},
		{"string", `"hello"`, ErrNotObject},
		{"null", `null`, ErrNotObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseObject([]byte(tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	v, err := ParseObject([]byte(`{"requested-by":{"id":42,"login":"jdoe"},"status":"approved","currency":"IDR"}`))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if got, ok := v.Get("requested-by", "login"); !ok || got.Text() != "jdoe" {
		t.Fatalf("requested-by.login = %q, %v", got.Text(), ok)
	}
	if got, ok := v.Get("requested-by", "id"); !ok || got.Kind() != Number || got.Text() != "42" {
		t.Fatalf("requested-by.id = %+v, %v", got, ok)
	}
	if _, ok := v.Get("requested-by", "email"); ok {
		t.Fatalf("missing leaf should be absent")
	}
	// currency is a string, so currency.code cannot resolve.
	if _, ok := v.Get("currency", "code"); ok {
		t.Fatalf("path through a scalar should be absent")
	}
	if _, ok := v.Get("nope", "x"); ok {
		t.Fatalf("missing intermediate should be absent")
	}
}

func TestMarshalJSONPreservesOrderAndText(t *testing.T) {
	in := `{"b":1.50,"a":["<tag>",false,null],"c":{"é":"x & y"}}`
	v, err := ParseObject([]byte(in))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != in {
		t.Fatalf("MarshalJSON = %s, want %s", out, in)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NullValue(), false},
		{BoolValue(true), true},
		{BoolValue(false), false},
		{NumberValue("0"), false},
		{NumberValue("0.0"), false},
		{NumberValue("1"), true},
		{StringValue(""), false},
		{StringValue("false"), true},
		{ObjectValue(), true},
	}
	for i, tc := range cases {
		if got := tc.v.Truthy(); got != tc.want {
			t.Fatalf("case %d: Truthy(%+v) = %v, want %v", i, tc.v, got, tc.want)
		}
	}
}
