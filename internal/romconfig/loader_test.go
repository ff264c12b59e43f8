package romconfig

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

// memFetcher is an in-memory SourceFetcher for tests: no real network or
// filesystem access, matching the bootloader's injected-device style of
// test isolation.
type memFetcher struct {
	files map[string][]byte
}

func (f *memFetcher) OpenLocal(path string) ([]byte, error) {
	b, ok := f.files[path]
	if !ok {
		return nil, &notFoundErr{path}
	}
	return b, nil
}

func (f *memFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	b, ok := f.files[rawURL]
	if !ok {
		return nil, &notFoundErr{rawURL}
	}
	return b, nil
}

type notFoundErr struct{ ref string }

func (e *notFoundErr) Error() string { return "not found: " + e.ref }

func zipOf(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip.Create() error = %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("zip write error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestLoadSingleSetLocalFile(t *testing.T) {
	romBytes := make([]byte, 8192)
	for i := range romBytes {
		romBytes[i] = byte(i)
	}
	fetcher := &memFetcher{files: map[string][]byte{"a.bin": romBytes}}

	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364"}]}]}`)
	doc, err := Load(context.Background(), raw, fetcher)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.RomSets) != 1 || len(doc.RomSets[0].Roms) != 1 {
		t.Fatalf("unexpected shape: %+v", doc)
	}
	if len(doc.RomSets[0].Roms[0].Source) != 8192 {
		t.Errorf("len(Source) = %d, want 8192", len(doc.RomSets[0].Roms[0].Source))
	}
	if doc.RomSets[0].Roms[0].Filename != "a.bin" {
		t.Errorf("Filename = %q, want %q", doc.RomSets[0].Roms[0].Filename, "a.bin")
	}
}

func TestLoadRejectsSizeMismatch(t *testing.T) {
	fetcher := &memFetcher{files: map[string][]byte{"a.bin": make([]byte, 100)}}
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364"}]}]}`)
	if _, err := Load(context.Background(), raw, fetcher); err == nil {
		t.Fatal("Load() error = nil, want SizeMismatchError")
	}
}

func TestLoadFetchesZipMember(t *testing.T) {
	inner := make([]byte, 4096)
	archive := zipOf(t, "rom.bin", inner)
	fetcher := &memFetcher{files: map[string][]byte{"set.zip": archive}}

	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"set.zip","zip_member":"rom.bin","type":"2732"}]}]}`)
	doc, err := Load(context.Background(), raw, fetcher)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.RomSets[0].Roms[0].Source) != 4096 {
		t.Errorf("len(Source) = %d, want 4096", len(doc.RomSets[0].Roms[0].Source))
	}
}

func TestLoadRejectsPolarityConflictInMultiSet(t *testing.T) {
	fetcher := &memFetcher{files: map[string][]byte{
		"a.bin": make([]byte, 8192),
		"b.bin": make([]byte, 8192),
	}}
	raw := []byte(`{"version":1,"rom_sets":[{"type":"multi","roms":[
		{"file":"a.bin","type":"2364","cs1":"active_low"},
		{"file":"b.bin","type":"2364","cs1":"active_high"}
	]}]}`)
	if _, err := Load(context.Background(), raw, fetcher); err == nil {
		t.Fatal("Load() error = nil, want PolarityConflictError")
	}
}

func TestLoadAppliesTransformPipeline(t *testing.T) {
	src := make([]byte, 16384)
	fetcher := &memFetcher{files: map[string][]byte{"a.bin": src}}
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[
		{"file":"a.bin","type":"2364","truncate_to":8192}
	]}]}`)
	doc, err := Load(context.Background(), raw, fetcher)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.RomSets[0].Roms[0].Source) != 8192 {
		t.Errorf("len(Source) = %d, want 8192", len(doc.RomSets[0].Roms[0].Source))
	}
}

func TestLoadResolvesFirmwareOverrides(t *testing.T) {
	fetcher := &memFetcher{files: map[string][]byte{"a.bin": make([]byte, 8192)}}
	raw := []byte(`{"version":1,"rom_sets":[{"type":"single","roms":[{"file":"a.bin","type":"2364"}],
		"firmware_overrides":{"fire":{"vreg":"1.20V","overclock":true},"led":{"enabled":true}}}]}`)
	doc, err := Load(context.Background(), raw, fetcher)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	ov := doc.RomSets[0].Overrides
	if ov == nil {
		t.Fatal("Overrides = nil, want resolved overrides")
	}
	if ov.FireVreg != 0x0D {
		t.Errorf("FireVreg = 0x%02X, want 0x0D", ov.FireVreg)
	}
}
