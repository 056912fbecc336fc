// Package valueset implements value-sets: pointwise lifts of the RIC
// lattice over region ids, the representation an address or register
// content carries through the abstract store.
package valueset

import (
	"fmt"
	"sort"

	"github.com/hanyuone/ba-toolchain/boundedint"
	"github.com/hanyuone/ba-toolchain/ric"
)

// Region identifies a storage region (a stack frame, a heap object
// class, a global data segment, …). It's opaque to this package; no
// region id, including 0, has a special meaning.
type Region uint64

// ValueSet is a mapping region -> RIC, plus a top flag meaning "any
// value in any region". The absence of a region key is distinct from
// that region's RIC being ric.Bottom(): an absent key means the value
// holds no offset in that region, and the two are kept apart rather
// than simplified into each other.
type ValueSet struct {
	regions map[Region]ric.RIC
	top     bool
}

// Top is the value-set containing every address in every region.
func Top() ValueSet {
	return ValueSet{top: true}
}

// Empty is the value-set with no regions at all: a value that holds no
// offset in any region (an undefined address, distinct from a
// per-region bottom).
func Empty() ValueSet {
	return ValueSet{regions: map[Region]ric.RIC{}}
}

// Single builds a value-set holding exactly the one region/RIC pair.
func Single(r Region, rc ric.RIC) ValueSet {
	return ValueSet{regions: map[Region]ric.RIC{r: rc}}
}

// Constant builds a single-region value-set denoting exactly one offset.
func Constant(r Region, offset int64) ValueSet {
	c, err := ric.New(1, boundedint.Finite(offset), boundedint.Finite(offset), 0)
	if err != nil {
		panic(err)
	}
	return Single(r, c)
}

func (vs ValueSet) IsTop() bool { return vs.top }

// At returns the RIC bound to region r and whether r is present.
func (vs ValueSet) At(r Region) (ric.RIC, bool) {
	if vs.top {
		return ric.Top(), true
	}
	rc, ok := vs.regions[r]
	return rc, ok
}

// Regions returns the set of regions vs explicitly constrains, sorted
// for deterministic iteration. Meaningless (and empty) when vs is top.
func (vs ValueSet) Regions() []Region {
	rs := make([]Region, 0, len(vs.regions))
	for r := range vs.regions {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

// IsSingleRegionConstant reports whether vs denotes exactly one offset
// in exactly one region, returning that region and offset.
func (vs ValueSet) IsSingleRegionConstant() (Region, int64, bool) {
	if vs.top || len(vs.regions) != 1 {
		return 0, 0, false
	}
	for r, rc := range vs.regions {
		if rc.IsConstant() {
			return r, rc.GetConstant(), true
		}
	}
	return 0, 0, false
}

func (vs ValueSet) String() string {
	if vs.top {
		return "top"
	}
	rs := vs.Regions()
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%d -> %s", r, vs.regions[r])
	}
	return fmt.Sprintf("%v", parts)
}

// Equal is structural equality over the region map.
func (vs ValueSet) Equal(rhs ValueSet) bool {
	if vs.top != rhs.top {
		return false
	}
	if vs.top {
		return true
	}
	if len(vs.regions) != len(rhs.regions) {
		return false
	}
	for r, rc := range vs.regions {
		orc, ok := rhs.regions[r]
		if !ok || !rc.Equal(orc) {
			return false
		}
	}
	return true
}

// IsSubset reports whether every region key in vs is present in rhs
// with a subset RIC.
func (vs ValueSet) IsSubset(rhs ValueSet) bool {
	if rhs.top {
		return true
	}
	if vs.top {
		return false
	}
	for r, rc := range vs.regions {
		orc, ok := rhs.regions[r]
		if !ok || !rc.IsSubset(orc) {
			return false
		}
	}
	return true
}

// MeetWith intersects vs and rhs: a region absent from either side is
// dropped (absence means no offset in that region, so the intersection
// holds none there either).
func (vs ValueSet) MeetWith(rhs ValueSet) ValueSet {
	if rhs.top {
		return vs
	}
	if vs.top {
		return rhs
	}
	out := map[Region]ric.RIC{}
	for r, rc := range vs.regions {
		orc, ok := rhs.regions[r]
		if !ok {
			continue
		}
		out[r] = rc.MeetWith(orc)
	}
	return ValueSet{regions: out}
}

// JoinWith over-approximates vs and rhs: a region present in only one
// side passes through unchanged; regions in both are joined.
func (vs ValueSet) JoinWith(rhs ValueSet) ValueSet {
	if vs.top || rhs.top {
		return Top()
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		out[r] = rc
	}
	for r, orc := range rhs.regions {
		if rc, ok := out[r]; ok {
			out[r] = rc.JoinWith(orc)
		} else {
			out[r] = orc
		}
	}
	return ValueSet{regions: out}
}

// WidenWith widens region-by-region for regions present on both sides;
// a region missing from either side passes through from vs untouched.
func (vs ValueSet) WidenWith(rhs ValueSet) ValueSet {
	if vs.top || rhs.top {
		return Top()
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		if orc, ok := rhs.regions[r]; ok {
			out[r] = rc.WidenWith(orc)
		} else {
			out[r] = rc
		}
	}
	return ValueSet{regions: out}
}

// NarrowWith is WidenWith's dual, applied per-region.
func (vs ValueSet) NarrowWith(rhs ValueSet) ValueSet {
	if vs.top || rhs.top {
		return vs
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		if orc, ok := rhs.regions[r]; ok {
			out[r] = rc.NarrowWith(orc)
		} else {
			out[r] = rc
		}
	}
	return ValueSet{regions: out}
}

// Adjust shifts every region's RIC offset by c: pointer arithmetic by a
// known-finite constant.
func (vs ValueSet) Adjust(c int64) ValueSet {
	if vs.top {
		return vs
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		out[r] = ric.RIC{Stride: rc.Stride, Start: rc.Start, End: rc.End, Offset: rc.Offset + c}
	}
	return ValueSet{regions: out}
}

// Add implements value-set addition (pointer + integer): if one side is
// a single-region constant, the other is adjusted by it; if both sides are constants,
// the result is a constant; otherwise information is lost and the
// result is Top. Top absorbs unconditionally.
func (vs ValueSet) Add(rhs ValueSet) ValueSet {
	if vs.top || rhs.top {
		return Top()
	}

	if _, off, ok := rhs.IsSingleRegionConstant(); ok {
		return vs.Adjust(off)
	}
	if _, off, ok := vs.IsSingleRegionConstant(); ok {
		return rhs.Adjust(off)
	}
	return Top()
}

// RemoveLowerBounds sets every region's RIC start to -infinity.
func (vs ValueSet) RemoveLowerBounds() ValueSet {
	if vs.top {
		return vs
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		rc.Start = boundedint.MinusInfinity()
		out[r] = rc
	}
	return ValueSet{regions: out}
}

// RemoveUpperBounds sets every region's RIC end to +infinity.
func (vs ValueSet) RemoveUpperBounds() ValueSet {
	if vs.top {
		return vs
	}
	out := make(map[Region]ric.RIC, len(vs.regions))
	for r, rc := range vs.regions {
		rc.End = boundedint.PlusInfinity()
		out[r] = rc
	}
	return ValueSet{regions: out}
}
