package chip

import "testing"

func TestLookupKnownTypes(t *testing.T) {
	tests := []struct {
		name        string
		t           Type
		pinCount    int
		capacityB   int
		addressBits int
		numControl  int
	}{
		{"2316", Type2316, 24, 2048, 11, 3},
		{"2332", Type2332, 24, 4096, 12, 2},
		{"2364", Type2364, 24, 8192, 13, 1},
		{"2732", Type2732, 24, 4096, 12, 1},
		{"6116", Type6116, 24, 2048, 11, 2},
		{"23256", Type23256, 28, 32768, 15, 2},
		{"27C080", Type27C080, 28, 1048576, 20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.t)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if d.PinCount != tt.pinCount {
				t.Errorf("PinCount = %d, want %d", d.PinCount, tt.pinCount)
			}
			if d.CapacityB != tt.capacityB {
				t.Errorf("CapacityB = %d, want %d", d.CapacityB, tt.capacityB)
			}
			if d.AddressBits != tt.addressBits {
				t.Errorf("AddressBits = %d, want %d", d.AddressBits, tt.addressBits)
			}
			if d.NumControl != tt.numControl {
				t.Errorf("NumControl = %d, want %d", d.NumControl, tt.numControl)
			}
		})
	}
}

func TestType27C400Unsupported(t *testing.T) {
	d, err := Lookup(Type27C400)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !d.Unsupported {
		t.Errorf("Type27C400.Unsupported = false, want true")
	}
	if d.DataBits != 16 {
		t.Errorf("DataBits = %d, want 16", d.DataBits)
	}
}

func TestLookupUnknownType(t *testing.T) {
	_, err := Lookup(typeCount)
	if err == nil {
		t.Fatal("Lookup() error = nil, want error for out-of-range type")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Type
		wantErr bool
	}{
		{"known", "2364", Type2364, false},
		{"known padded", "27c010", Type27C010, false},
		{"unknown", "2999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseType() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePolarity(t *testing.T) {
	tests := []struct {
		in      string
		want    Polarity
		wantErr bool
	}{
		{"active_low", ActiveLow, false},
		{"active_high", ActiveHigh, false},
		{"not_used", NotUsed, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolarity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParsePolarity() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolarity() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePolarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	for t1 := Type(0); t1 < typeCount; t1++ {
		name := t1.String()
		if name == "unknown" {
			t.Errorf("Type(%d).String() = unknown", t1)
			continue
		}
		got, err := ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%q) error = %v", name, err)
		}
		if got != t1 {
			t.Errorf("ParseType(%q) = %v, want %v", name, got, t1)
		}
	}
}
