// Package asiio decodes the JSON fixture format cmd/asidump reads: an
// a-loc set plus an ordered access list, the two inputs analyse needs.
package asiio

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hanyuone/ba-toolchain/abstractstore"
	"github.com/hanyuone/ba-toolchain/arch"
	"github.com/hanyuone/ba-toolchain/asi"
	"github.com/hanyuone/ba-toolchain/boundedint"
	"github.com/hanyuone/ba-toolchain/ric"
	"github.com/hanyuone/ba-toolchain/valueset"
)

// ALocFixture is the wire shape of one input a-loc. Offset is normally
// a plain decimal integer; OffsetHex, when present, instead carries it
// as a hex-encoded, pointer-sized, architecture-byte-ordered buffer (the
// shape a front end handing off raw bytes read out of an object file
// would produce) and takes precedence over Offset.
type ALocFixture struct {
	Region    uint64  `json:"region"`
	Offset    int64   `json:"offset"`
	OffsetHex *string `json:"offset_hex,omitempty"`
	Size      int64   `json:"size"`
}

// RICFixture is the wire shape of one region's RIC within a value-set.
// Start and End are pointers so that an absent or null field can denote
// an infinite bound; a plain int64 would decode an absent field as 0,
// indistinguishable from an explicit zero bound. Offset and Stride each
// have a *Hex counterpart, mirroring ALocFixture.OffsetHex: Offset is
// address-shaped (pointer-sized), Stride is int-shaped (the target's
// native int width).
type RICFixture struct {
	Stride    int64   `json:"stride"`
	StrideHex *string `json:"stride_hex,omitempty"`
	Start     *int64  `json:"start"`
	End       *int64  `json:"end"`
	Offset    int64   `json:"offset"`
	OffsetHex *string `json:"offset_hex,omitempty"`
}

// ValueSetFixture is the wire shape of a value-set: either top, or a
// region -> RIC mapping.
type ValueSetFixture struct {
	Top     bool                  `json:"top,omitempty"`
	Regions map[uint64]RICFixture `json:"regions,omitempty"`
}

// AccessFixture is the wire shape of one recorded memory access.
type AccessFixture struct {
	ID      string          `json:"id"`
	Address ValueSetFixture `json:"address"`
	Size    int64           `json:"size"`
}

// Fixture is the top-level decoded document: an a-loc set plus an
// ordered access list, exactly the two inputs Analyse needs.
type Fixture struct {
	ALocs    []ALocFixture   `json:"alocs"`
	Accesses []AccessFixture `json:"accesses"`
}

// Decode reads a Fixture from r. The JSON shape itself is
// architecture-independent (every field is a plain decimal integer or
// an optional hex string); decoding the *Hex fields into the decimal
// fields they override happens in ToALocs/ToAccesses below, which is
// where an Architecture is actually needed.
func Decode(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("asiio: decoding fixture: %w", err)
	}
	return f, nil
}

func boundedFromPtr(v *int64, ifNil boundedint.BoundedInt) boundedint.BoundedInt {
	if v == nil {
		return ifNil
	}
	return boundedint.Finite(*v)
}

// decodeHexBuf hex-decodes s and checks it's exactly wantLen bytes, the
// width an Architecture's Int/Uintptr methods require.
func decodeHexBuf(s string, wantLen int) ([]byte, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	if len(buf) != wantLen {
		return nil, fmt.Errorf("hex %q decodes to %d bytes, want %d", s, len(buf), wantLen)
	}
	return buf, nil
}

// decodeHexAddress decodes a pointer-sized, architecture-byte-ordered
// hex string into an address-shaped offset.
func decodeHexAddress(s string, a arch.Architecture) (int64, error) {
	buf, err := decodeHexBuf(s, a.PointerSize)
	if err != nil {
		return 0, err
	}
	return int64(a.Uintptr(buf)), nil
}

// decodeHexStride decodes an int-sized, architecture-byte-ordered hex
// string into a stride.
func decodeHexStride(s string, a arch.Architecture) (int64, error) {
	buf, err := decodeHexBuf(s, a.IntSize)
	if err != nil {
		return 0, err
	}
	return a.Int(buf), nil
}

// ToRIC converts a RICFixture to a ric.RIC, treating a missing Start as
// -infinity and a missing End as +infinity. OffsetHex/StrideHex, when
// present, are decoded through a and take precedence over the plain
// decimal Offset/Stride fields.
func (f RICFixture) ToRIC(a arch.Architecture) (ric.RIC, error) {
	offset := f.Offset
	if f.OffsetHex != nil {
		v, err := decodeHexAddress(*f.OffsetHex, a)
		if err != nil {
			return ric.RIC{}, fmt.Errorf("asiio: offset_hex: %w", err)
		}
		offset = v
	}

	stride := f.Stride
	if f.StrideHex != nil {
		v, err := decodeHexStride(*f.StrideHex, a)
		if err != nil {
			return ric.RIC{}, fmt.Errorf("asiio: stride_hex: %w", err)
		}
		stride = v
	}

	start := boundedFromPtr(f.Start, boundedint.MinusInfinity())
	end := boundedFromPtr(f.End, boundedint.PlusInfinity())
	return ric.New(stride, start, end, offset)
}

// ToValueSet converts a ValueSetFixture to a valueset.ValueSet.
func (f ValueSetFixture) ToValueSet(a arch.Architecture) (valueset.ValueSet, error) {
	if f.Top {
		return valueset.Top(), nil
	}
	vs := valueset.Empty()
	for region, rf := range f.Regions {
		rc, err := rf.ToRIC(a)
		if err != nil {
			return valueset.ValueSet{}, fmt.Errorf("asiio: region %d: %w", region, err)
		}
		vs = vs.JoinWith(valueset.Single(valueset.Region(region), rc))
	}
	return vs, nil
}

// ToALocs converts the fixture's a-loc list, resolving any OffsetHex
// fields through a.
func (f Fixture) ToALocs(a arch.Architecture) ([]abstractstore.ALoc, error) {
	out := make([]abstractstore.ALoc, len(f.ALocs))
	for i, x := range f.ALocs {
		offset := x.Offset
		if x.OffsetHex != nil {
			v, err := decodeHexAddress(*x.OffsetHex, a)
			if err != nil {
				return nil, fmt.Errorf("asiio: aloc %d: offset_hex: %w", i, err)
			}
			offset = v
		}
		out[i] = abstractstore.ALoc{Region: valueset.Region(x.Region), Offset: offset, Size: x.Size}
	}
	return out, nil
}

// ToAccesses converts the fixture's access list, resolving any hex
// address/stride fields through a.
func (f Fixture) ToAccesses(a arch.Architecture) ([]asi.Access, error) {
	out := make([]asi.Access, len(f.Accesses))
	for i, x := range f.Accesses {
		vs, err := x.Address.ToValueSet(a)
		if err != nil {
			return nil, fmt.Errorf("asiio: access %q: %w", x.ID, err)
		}
		out[i] = asi.Access{ID: x.ID, Address: vs, Size: x.Size}
	}
	return out, nil
}
