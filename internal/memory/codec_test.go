package memory

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := map[string]any{
		"name":      "A",
		"age":       json.Number("30"),
		"allergies": []any{"peanuts", "shellfish"},
		"vitals":    map[string]any{"bp": "120/80", "ok": true},
		"notes":     nil,
	}
	got := Decode(Encode(in))
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip = %#v, want %#v", got, in)
	}
}

func TestDecodePassesThroughMalformedText(t *testing.T) {
	for _, raw := range []string{"hello there", "{not json", ""} {
		got, ok := Decode(raw).(string)
		if !ok || got != raw {
			t.Fatalf("Decode(%q) = %#v, want raw text", raw, Decode(raw))
		}
	}
}

func TestEncodeFallsBackToStringForm(t *testing.T) {
	ch := make(chan int)
	if got := Encode(ch); got == "" {
		t.Fatalf("Encode(chan) returned empty string")
	}
	if got := Encode(complex(1, 2)); got != `"(1+2i)"` {
		t.Fatalf("Encode(complex) = %q, want %q", got, `"(1+2i)"`)
	}
}

func TestEncodeStringifiesOnlyBadLeaves(t *testing.T) {
	got := Encode(map[string]any{"name": "A", "scores": []float64{1, math.Inf(1)}})
	want := `{"name":"A","scores":[1,"+Inf"]}`
	if got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}
}

func TestDecodeKeepsLargeIntegers(t *testing.T) {
	in := `{"mrn":9007199254740993}`
	if got := Encode(Decode(in)); got != in {
		t.Fatalf("round trip = %s, want %s", got, in)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	raw := `{"a":1} trailing`
	if got, ok := Decode(raw).(string); !ok || got != raw {
		t.Fatalf("Decode(%q) = %#v, want raw text", raw, Decode(raw))
	}
}
