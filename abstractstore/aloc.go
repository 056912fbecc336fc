// Package abstractstore holds the two maps the surrounding value-set
// analysis threads through a program: a-loc contents and register
// contents, both region-of-value-sets.
package abstractstore

import (
	"fmt"

	"github.com/hanyuone/ba-toolchain/valueset"
)

// ALoc is a quasi-variable: a byte range within a region. A-locs within
// the same region never overlap.
type ALoc struct {
	Region valueset.Region
	Offset int64
	Size   int64
}

// Less orders a-locs lexicographically by (region, offset, size).
func (a ALoc) Less(b ALoc) bool {
	if a.Region != b.Region {
		return a.Region < b.Region
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Size < b.Size
}

func (a ALoc) String() string {
	return fmt.Sprintf("mem%d_%d", a.Region, a.Offset)
}

// End returns the offset one past the a-loc's last byte.
func (a ALoc) End() int64 {
	return a.Offset + a.Size
}

// Overlaps reports whether a and b, assumed to be in the same region,
// share any byte.
func (a ALoc) Overlaps(b ALoc) bool {
	return a.Offset < b.End() && b.Offset < a.End()
}

// RegisterID names a machine register as a map key; the engine treats
// it opaquely.
type RegisterID uint32
