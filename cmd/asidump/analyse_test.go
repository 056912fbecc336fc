package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleFixture = `{
	"alocs": [
		{"region": 1, "offset": 0, "size": 4},
		{"region": 1, "offset": 4, "size": 4}
	],
	"accesses": [
		{"id": "a0", "address": {"regions": {"1": {"stride": 4, "start": 0, "end": 1, "offset": 0}}}, "size": 4}
	]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyseCmdPrintsRefinedMap(t *testing.T) {
	path := writeFixture(t)

	cmd := newAnalyseCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "mem1_0") {
		t.Errorf("expected merged a-loc mem1_0 in output, got %q", out)
	}
	if !strings.Contains(out, "i32[2]") {
		t.Errorf("expected the two 4-byte a-locs to collapse into an array, got %q", out)
	}
}

func TestAnalyseCmdRejectsUnknownArch(t *testing.T) {
	path := writeFixture(t)

	cmd := newAnalyseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--arch", "sparc", path})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unsupported architecture")
	}
}

// TestAnalyseCmdArchFlagControlsHexDecoding pins that --arch actually
// changes how a fixture decodes: the same offset_hex buffer here is a
// valid 8-byte amd64 pointer but too long to be a 4-byte x86 one.
func TestAnalyseCmdArchFlagControlsHexDecoding(t *testing.T) {
	doc := `{
		"alocs": [{"region": 1, "offset": 0, "offset_hex": "0400000000000000", "size": 4}],
		"accesses": []
	}`
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newAnalyseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--arch", "amd64", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("8-byte offset_hex should decode cleanly on amd64: %v", err)
	}

	cmd = newAnalyseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--arch", "x86", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("an 8-byte offset_hex should be rejected on x86 (4-byte pointers)")
	}
}
