package dataset

import (
	"encoding/json"
	"testing"
)

func TestParseValue_Sentinels(t *testing.T) {
	for _, field := range []string{"-999", "-999.0", "-999.00", "-9999", "-9999.00"} {
		if v := parseValue(field); !v.IsMissing() {
			t.Errorf("parseValue(%q) = %+v, want missing", field, v)
		}
	}
}

func TestParseValue_NAStrings(t *testing.T) {
	for _, field := range []string{"", "NA", "NaN", "nan", "null", "N/A"} {
		if v := parseValue(field); !v.IsMissing() {
			t.Errorf("parseValue(%q) = %+v, want missing", field, v)
		}
	}
}

func TestParseValue_Typed(t *testing.T) {
	v := parseValue("12.5")
	if !v.Numeric || v.Num != 12.5 {
		t.Errorf("parseValue(12.5) = %+v", v)
	}

	// Other negative numbers are not sentinels.
	v = parseValue("-998.99")
	if v.IsMissing() || v.Num != -998.99 {
		t.Errorf("parseValue(-998.99) = %+v", v)
	}

	v = parseValue("G.ruber")
	if v.Numeric || v.Str != "G.ruber" {
		t.Errorf("parseValue(G.ruber) = %+v", v)
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		v    Value
		blob string
	}{
		{Number(3.25), "3.25"},
		{Text("core A"), `"core A"`},
		{NoData(), "null"},
	}

	for _, tt := range tests {
		got, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatalf("Marshal(%+v) error = %v", tt.v, err)
		}
		if string(got) != tt.blob {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.v, got, tt.blob)
		}

		var back Value
		if err := json.Unmarshal(got, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", got, err)
		}
		if back != tt.v {
			t.Errorf("round-trip of %+v = %+v", tt.v, back)
		}
	}
}

func TestValue_String(t *testing.T) {
	if got := Number(1.5).String(); got != "1.5" {
		t.Errorf("Number(1.5).String() = %q", got)
	}
	if got := Text("x").String(); got != "x" {
		t.Errorf("Text(x).String() = %q", got)
	}
	if got := NoData().String(); got != "" {
		t.Errorf("NoData().String() = %q", got)
	}
}
