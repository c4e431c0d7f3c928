package jsonval

import (
	"testing"
)

func TestDecode_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"null", `null`, Null{}},
		{"bool", `true`, Bool(true)},
		{"int", `42`, Number(42)},
		{"float", `3.5`, Number(3.5)},
		{"string", `"hi"`, String("hi")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecode_Nested(t *testing.T) {
	got, err := Decode([]byte(`{"id":5,"tags":["a","b"],"meta":{"ok":true},"gone":null}`))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	obj, ok := got.(Object)
	if !ok {
		t.Fatalf("expected Object, got %T", got)
	}
	if obj["id"] != Number(5) {
		t.Errorf("id = %#v, want Number(5)", obj["id"])
	}
	arr, ok := obj["tags"].(Array)
	if !ok || len(arr) != 2 || arr[0] != String("a") {
		t.Errorf("tags = %#v", obj["tags"])
	}
	if obj["gone"] != (Null{}) {
		t.Errorf("gone = %#v, want Null", obj["gone"])
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a":}`, `5 6`} {
		if _, err := Decode([]byte(input)); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", input)
		}
	}
}

func TestDecodeObject_RejectsNonObject(t *testing.T) {
	if _, err := DecodeObject([]byte(`[1,2]`)); err == nil {
		t.Error("DecodeObject(array) succeeded, want error")
	}
}

func TestEncode_SortedKeys(t *testing.T) {
	obj := Object{"b": Number(2), "a": Number(1), "c": String("x")}

	got, err := EncodeString(obj)
	if err != nil {
		t.Fatalf("EncodeString() failed: %v", err)
	}
	want := `{"a":1,"b":2,"c":"x"}`
	if got != want {
		t.Errorf("EncodeString() = %s, want %s", got, want)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	src := `{"a":[1,2,{"x":null}],"b":"s","c":false}`

	v, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	out, err := EncodeString(v)
	if err != nil {
		t.Fatalf("EncodeString() failed: %v", err)
	}
	if out != src {
		t.Errorf("round trip = %s, want %s", out, src)
	}
}

func TestObject_Merge_ExistingKeysWin(t *testing.T) {
	dst := Object{"id": Number(5), "title": String("fresh")}
	dst.Merge(Object{"title": String("stale"), "extra": Bool(true)})

	if dst["title"] != String("fresh") {
		t.Errorf("title = %#v, existing key must win", dst["title"])
	}
	if dst["extra"] != Bool(true) {
		t.Errorf("extra = %#v, absent key must be merged", dst["extra"])
	}
	if dst["id"] != Number(5) {
		t.Errorf("id = %#v, untouched key must survive", dst["id"])
	}
}

func TestObject_Clone_Independent(t *testing.T) {
	src := Object{"a": Number(1)}
	dup := src.Clone()
	dup["b"] = Number(2)

	if _, ok := src["b"]; ok {
		t.Error("mutating clone leaked into source")
	}
}
