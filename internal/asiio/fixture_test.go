package asiio

import (
	"strings"
	"testing"

	"github.com/hanyuone/ba-toolchain/arch"
)

func TestDecodeFixture(t *testing.T) {
	doc := `{
		"alocs": [
			{"region": 1, "offset": 0, "size": 4},
			{"region": 1, "offset": 4, "size": 4}
		],
		"accesses": [
			{"id": "a0", "address": {"regions": {"1": {"stride": 4, "start": 0, "end": 1, "offset": 0}}}, "size": 4}
		]
	}`

	f, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	alocs, err := f.ToALocs(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if len(alocs) != 2 {
		t.Fatalf("expected 2 a-locs, got %d", len(alocs))
	}

	accesses, err := f.ToAccesses(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if len(accesses) != 1 || accesses[0].ID != "a0" {
		t.Fatalf("expected one access named a0, got %v", accesses)
	}
	if accesses[0].Address.IsTop() {
		t.Error("this access's address should not be top")
	}
}

func TestDecodeTopAddress(t *testing.T) {
	doc := `{"alocs": [], "accesses": [{"id": "a0", "address": {"top": true}, "size": 4}]}`

	f, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	accesses, err := f.ToAccesses(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if !accesses[0].Address.IsTop() {
		t.Error("expected a top address")
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	doc := `{"alocs": [], "accesses": [], "bogus": true}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestRICFixtureMissingBoundsAreInfinite(t *testing.T) {
	rf := RICFixture{Stride: 2, Offset: 0}
	r, err := rf.ToRIC(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Start.IsMinusInfinity() || !r.End.IsPlusInfinity() {
		t.Errorf("missing start/end should decode to -inf/+inf, got %v", r)
	}
}

// TestALocOffsetHexDecodesThroughArchitecture confirms offset_hex is
// decoded as a little-endian, pointer-sized buffer via the target
// Architecture, and takes precedence over the plain decimal Offset.
func TestALocOffsetHexDecodesThroughArchitecture(t *testing.T) {
	offsetHex := "2a00000000000000" // amd64 (little-endian, 8 bytes) for 0x2a == 42
	doc := `{"alocs": [{"region": 1, "offset": 999, "offset_hex": "` + offsetHex + `", "size": 4}], "accesses": []}`

	f, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	alocs, err := f.ToALocs(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if len(alocs) != 1 || alocs[0].Offset != 42 {
		t.Fatalf("expected offset_hex to decode to 42 and win over the decimal offset, got %+v", alocs)
	}
}

// TestALocOffsetHexWrongWidthErrors confirms a hex buffer of the wrong
// width for the chosen architecture's pointer size is rejected rather
// than silently truncated or zero-extended.
func TestALocOffsetHexWrongWidthErrors(t *testing.T) {
	doc := `{"alocs": [{"region": 1, "offset": 0, "offset_hex": "2a000000", "size": 4}], "accesses": []}`

	f, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.ToALocs(arch.AMD64); err == nil {
		t.Fatal("expected an error decoding a 4-byte offset_hex on amd64 (8-byte pointers)")
	}

	// The same buffer is a valid 4-byte x86 pointer width.
	alocs, err := f.ToALocs(arch.X86)
	if err != nil {
		t.Fatal(err)
	}
	if len(alocs) != 1 || alocs[0].Offset != 0x2a {
		t.Fatalf("expected offset_hex to decode to 0x2a on x86, got %+v", alocs)
	}
}

// TestRICFixtureHexFieldsDecodeThroughArchitecture confirms a RIC's
// offset_hex (pointer-sized) and stride_hex (int-sized) both decode
// through the target Architecture and take precedence over their plain
// decimal counterparts.
func TestRICFixtureHexFieldsDecodeThroughArchitecture(t *testing.T) {
	rf := RICFixture{
		Stride:    999,
		StrideHex: strPtr("0400000000000000"), // amd64 int: 4
		Offset:    999,
		OffsetHex: strPtr("0100000000000000"), // amd64 pointer: 1
	}
	r, err := rf.ToRIC(arch.AMD64)
	if err != nil {
		t.Fatal(err)
	}
	if r.Stride != 4 || r.Offset != 1 {
		t.Errorf("expected stride_hex/offset_hex to win (stride=4, offset=1), got %+v", r)
	}
}

func strPtr(s string) *string { return &s }
