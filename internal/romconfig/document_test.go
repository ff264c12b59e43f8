package romconfig

import "testing"

func TestParseValidDocument(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"description": "test set",
		"rom_sets": [
			{"type": "single", "roms": [{"file": "a.bin", "type": "2364"}]}
		]
	}`)
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.RomSets) != 1 {
		t.Fatalf("len(RomSets) = %d, want 1", len(doc.RomSets))
	}
}

func TestParseRejectsBadVersion(t *testing.T) {
	raw := []byte(`{"version": 2, "rom_sets": [{"type":"single","roms":[{"file":"a.bin","type":"2364"}]}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() error = nil, want error for unsupported version")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatal("Parse() error = nil, want error for malformed JSON")
	}
}

func TestParseRejectsUnknownSetType(t *testing.T) {
	raw := []byte(`{"version":1,"rom_sets":[{"type":"quad","roms":[{"file":"a.bin","type":"2364"}]}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() error = nil, want error for unknown set type")
	}
}

func TestParseRejectsEmptyRoms(t *testing.T) {
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[]}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() error = nil, want error for empty roms")
	}
}

func TestParseRejectsBadPolarityString(t *testing.T) {
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364","cs1":"sideways"}]}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() error = nil, want error for bad polarity string")
	}
}

func TestParseRejectsMalformedServeAlgParams(t *testing.T) {
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364"}],
		"serve_alg_params":{"params":[1,2,3,4,5,6,7,8]}}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() error = nil, want error for bad serve_alg_params framing")
	}
}

func TestParseAcceptsWellFramedServeAlgParams(t *testing.T) {
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364"}],
		"serve_alg_params":{"params":[254,1,2,3,4,5,254,255]}}]}`)
	if _, err := Parse(raw); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
}

func TestFreqFieldUnmarshalStock(t *testing.T) {
	var f FreqField
	if err := f.UnmarshalJSON([]byte(`"Stock"`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if !f.Stock {
		t.Error("Stock = false, want true")
	}
}

func TestFreqFieldUnmarshalInt(t *testing.T) {
	var f FreqField
	if err := f.UnmarshalJSON([]byte(`133`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if f.MHz != 133 {
		t.Errorf("MHz = %d, want 133", f.MHz)
	}
}

func TestFreqFieldUnmarshalRejectsOtherStrings(t *testing.T) {
	var f FreqField
	if err := f.UnmarshalJSON([]byte(`"Fast"`)); err == nil {
		t.Fatal("UnmarshalJSON() error = nil, want error for non-Stock string")
	}
}
