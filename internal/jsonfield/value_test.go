package jsonfield

import (
	"encoding/json"
	"testing"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "absent", raw: "", want: "fb"},
		{name: "null", raw: "null", want: "fb"},
		{name: "string", raw: `"Москва"`, want: "Москва"},
		{name: "empty string", raw: `""`, want: "fb"},
		{name: "number", raw: "12.5", want: "12.5"},
		{name: "bool", raw: "true", want: "true"},
		{name: "object", raw: `{ "a" : 1 }`, want: `{"a":1}`},
		{name: "array", raw: `[1, 2]`, want: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of([]byte(tt.raw)).String("fb"); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Int(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "absent", raw: "", want: -1},
		{name: "null", raw: "null", want: -1},
		{name: "integer", raw: "85", want: 85},
		{name: "negative", raw: "-3", want: -3},
		{name: "fractional truncates", raw: "1015.9", want: 1015},
		{name: "negative fractional truncates", raw: "-2.7", want: -2},
		{name: "exponent", raw: "1e3", want: 1000},
		{name: "numeric string", raw: `" 42 "`, want: 42},
		{name: "non numeric string", raw: `"abc"`, want: -1},
		{name: "float string", raw: `"4.5"`, want: -1},
		{name: "bool", raw: "false", want: -1},
		{name: "object", raw: `{"v":1}`, want: -1},
		{name: "array", raw: `[1]`, want: -1},
		{name: "overflow", raw: "1e300", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of([]byte(tt.raw)).Int(-1); got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValue_IntPtr(t *testing.T) {
	if p := Of([]byte("0")).IntPtr(); p == nil || *p != 0 {
		t.Fatalf("expected reported zero, got %v", p)
	}
	if p := Of([]byte("null")).IntPtr(); p != nil {
		t.Fatalf("expected nil for null, got %d", *p)
	}
	if p := (Value{}).IntPtr(); p != nil {
		t.Fatalf("expected nil for absent, got %d", *p)
	}
}

func TestValue_Float(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "absent", raw: "", want: 9.5},
		{name: "null", raw: "null", want: 9.5},
		{name: "number", raw: "-7.25", want: -7.25},
		{name: "integer", raw: "3", want: 3},
		{name: "numeric string", raw: `"14.4"`, want: 14.4},
		{name: "bad string", raw: `"windy"`, want: 9.5},
		{name: "nan string", raw: `"NaN"`, want: 9.5},
		{name: "bool", raw: "true", want: 9.5},
		{name: "array", raw: "[]", want: 9.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of([]byte(tt.raw)).Float(9.5); got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_FieldAndIndex(t *testing.T) {
	doc := Of([]byte(`{"forecast":{"forecastday":[{"day":{"daily_chance_of_rain":40}}]},"name":null}`))

	rain := doc.Field("forecast").Field("forecastday").Index(0).Field("day").Field("daily_chance_of_rain")
	if got := rain.Int(-1); got != 40 {
		t.Fatalf("nested rain chance = %d, want 40", got)
	}

	if v := doc.Field("missing").Field("deeper").Index(3).Field("x"); v.Kind() != KindAbsent {
		t.Fatalf("expected absent through missing parents, got kind %d", v.Kind())
	}
	if v := doc.Field("forecast").Field("forecastday").Index(1); v.IsPresent() {
		t.Fatal("expected out of range index to be absent")
	}
	if v := doc.Field("forecast").Field("forecastday").Index(-1); v.IsPresent() {
		t.Fatal("expected negative index to be absent")
	}
	if v := doc.Field("name"); v.Kind() != KindNull || v.IsPresent() {
		t.Fatalf("expected explicit null, got kind %d", v.Kind())
	}
	if v := Of([]byte(`"text"`)).Field("x"); v.IsPresent() {
		t.Fatal("field of a string must be absent")
	}
}

func TestValue_DecodesAnyShape(t *testing.T) {
	type section struct {
		Humidity Value `json:"humidity"`
		Wind     Value `json:"wind_kph"`
		Dir      Value `json:"wind_dir"`
	}

	payloads := []string{
		`{"humidity":"high","wind_kph":{"a":1},"wind_dir":17}`,
		`{"humidity":null,"wind_kph":[1,2],"wind_dir":null}`,
		`{}`,
		`{"humidity":55,"wind_kph":"12.5","wind_dir":"NW"}`,
	}

	for _, p := range payloads {
		var s section
		if err := json.Unmarshal([]byte(p), &s); err != nil {
			t.Fatalf("unmarshal %s: %v", p, err)
		}
		_ = s.Humidity.Int(0)
		_ = s.Wind.Float(0)
		_ = s.Dir.String("—")
	}

	var s section
	_ = json.Unmarshal([]byte(payloads[3]), &s)
	if s.Humidity.Int(0) != 55 || s.Wind.Float(0) != 12.5 || s.Dir.String("—") != "NW" {
		t.Fatalf("unexpected values: %+v", s)
	}
}

func TestValue_Decode(t *testing.T) {
	if err := (Value{}).Decode(&struct{}{}); err != ErrAbsent {
		t.Fatalf("expected ErrAbsent, got %v", err)
	}

	var out struct {
		Name Value `json:"name"`
	}
	if err := Of([]byte(`{"name":"Kazan"}`)).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name.String("") != "Kazan" {
		t.Fatalf("unexpected name %q", out.Name.String(""))
	}

	if err := Of([]byte(`"oops"`)).Decode(&out); err == nil {
		t.Fatal("expected error decoding a string into a struct")
	}
}
