// Package ric implements the Reduced Interval Congruence lattice: the
// set {stride*k + offset : start <= k <= end} over the extended
// integers, the abstract value language addresses are represented in.
package ric

import (
	"fmt"

	"github.com/hanyuone/ba-toolchain/asierr"
	"github.com/hanyuone/ba-toolchain/boundedint"
)

// RIC is one element of the lattice: stride*[start, end] + offset.
// Stride and Offset are always finite (a RIC's period and base point are
// concrete integers); Start and End may be ±∞.
type RIC struct {
	Stride int64
	Start  boundedint.BoundedInt
	End    boundedint.BoundedInt
	Offset int64
}

// New constructs a RIC, rejecting a non-positive stride.
func New(stride int64, start, end boundedint.BoundedInt, offset int64) (RIC, error) {
	if stride <= 0 {
		return RIC{}, asierr.New(asierr.RicStrideNonPositive, "RIC stride must be >= 1, got %d", stride)
	}
	return RIC{Stride: stride, Start: start, End: end, Offset: offset}, nil
}

// Bottom is the empty range, canonically encoded as inverted bounds
// rather than a dedicated sentinel field.
func Bottom() RIC {
	return RIC{Stride: 1, Start: boundedint.PlusInfinity(), End: boundedint.MinusInfinity(), Offset: 0}
}

// Top is every integer.
func Top() RIC {
	return RIC{Stride: 1, Start: boundedint.MinusInfinity(), End: boundedint.PlusInfinity(), Offset: 0}
}

func (r RIC) IsBottom() bool {
	return r.Start.IsPlusInfinity() && r.End.IsMinusInfinity()
}

func (r RIC) IsTop() bool {
	return r.Start.IsMinusInfinity() && r.End.IsPlusInfinity() && r.Stride == 1
}

// Lower returns offset + stride*start.
func (r RIC) Lower() boundedint.BoundedInt {
	return r.Start.Mul(r.Stride).AddFinite(r.Offset)
}

// Upper returns offset + stride*end.
func (r RIC) Upper() boundedint.BoundedInt {
	return r.End.Mul(r.Stride).AddFinite(r.Offset)
}

// IsConstant reports whether r denotes exactly one integer.
func (r RIC) IsConstant() bool {
	return r.Start.IsFinite() && r.End.IsFinite() && r.Start.Equal(r.End)
}

// GetConstant returns the single value r denotes. Callers must check
// IsConstant first.
func (r RIC) GetConstant() int64 {
	if !r.IsConstant() {
		panic("ric: GetConstant called on a non-constant RIC")
	}
	return r.Lower().Int()
}

func (r RIC) String() string {
	return fmt.Sprintf("(%d, %s, %s, %d)", r.Stride, r.Start, r.End, r.Offset)
}

// Equal reports structural equality of all four fields. Lattice code
// elsewhere only ever needs IsSubset in both directions; this is for
// callers (value-sets, tests) that want plain equality.
func (r RIC) Equal(o RIC) bool {
	return r.Stride == o.Stride && r.Start.Equal(o.Start) && r.End.Equal(o.End) && r.Offset == o.Offset
}

// quotientExact returns (v-offset)/stride and whether that division is
// exact, for finite v, offset, stride.
func quotientExact(v, offset, stride int64) (int64, bool) {
	d := v - offset
	if d%stride != 0 {
		return 0, false
	}
	return d / stride, true
}

// IsSubset reports whether r denotes a subset of rhs.
func (r RIC) IsSubset(rhs RIC) bool {
	if r.IsBottom() {
		return true
	}
	if rhs.IsBottom() {
		return false
	}
	if rhs.IsTop() {
		return true
	}
	if r.IsTop() {
		return false
	}

	if r.IsConstant() {
		v := r.GetConstant()
		k, exact := quotientExact(v, rhs.Offset, rhs.Stride)
		if !exact {
			return false
		}
		kb := boundedint.Finite(k)
		return kb.GreaterEqual(rhs.Start) && kb.LessEqual(rhs.End)
	}

	// General case: every element of r must land on rhs's grid, and
	// r's endpoints, projected through rhs, must fall inside rhs's
	// bounds.
	if r.Stride%rhs.Stride != 0 {
		return false
	}
	if (r.Offset-rhs.Offset)%rhs.Stride != 0 {
		return false
	}

	rawLower := r.Lower()
	rawUpper := r.Upper()

	rhsLowerIdx := rawLower.SubFinite(rhs.Offset).DivPos(rhs.Stride)
	rhsUpperIdx := rawUpper.SubFinite(rhs.Offset).DivPos(rhs.Stride)

	if rhsLowerIdx.Less(rhs.Start) || rhsUpperIdx.Greater(rhs.End) {
		return false
	}
	return true
}

// MeetWith returns the intersection of r and rhs.
func (r RIC) MeetWith(rhs RIC) RIC {
	if r.IsBottom() || rhs.IsTop() {
		return r
	}
	if rhs.IsBottom() {
		return Bottom()
	}
	if r.IsTop() {
		return rhs
	}

	lhsLower, rhsLower := r.Lower(), rhs.Lower()
	lhsUpper, rhsUpper := r.Upper(), rhs.Upper()

	if lhsUpper.Less(rhsLower) || rhsUpper.Less(lhsLower) {
		return Bottom()
	}

	lo := boundedint.Max([]boundedint.BoundedInt{lhsLower, rhsLower})
	hi := boundedint.Min([]boundedint.BoundedInt{lhsUpper, rhsUpper})

	newStride := lcm(r.Stride, rhs.Stride)

	var candidate int64
	switch {
	case lo.IsMinusInfinity() && hi.IsPlusInfinity():
		candidate = 0
	case lo.IsMinusInfinity():
		candidate = hi.Int() - newStride
	default:
		candidate = lo.Int()
	}

	for i := int64(0); i < newStride; i++ {
		check := candidate + i
		if !hi.IsPlusInfinity() && check > hi.Int() {
			break
		}
		if (check-r.Offset)%r.Stride != 0 {
			continue
		}
		if (check-rhs.Offset)%rhs.Stride != 0 {
			continue
		}

		result := RIC{Stride: newStride, Offset: check}
		if lo.IsMinusInfinity() {
			result.Start = boundedint.MinusInfinity()
		} else {
			result.Start = boundedint.Finite(0)
		}
		if hi.IsPlusInfinity() {
			result.End = boundedint.PlusInfinity()
		} else {
			result.End = boundedint.Finite((hi.Int() - check) / newStride)
		}
		return result
	}

	// No value in the candidate window satisfies both congruences.
	return Bottom()
}

// JoinWith over-approximates r and rhs into a single RIC.
func (r RIC) JoinWith(rhs RIC) RIC {
	if r.IsTop() || rhs.IsBottom() {
		return r
	}
	if r.IsBottom() {
		return rhs
	}
	if rhs.IsTop() {
		return Top()
	}

	lhsLower, rhsLower := r.Lower(), rhs.Lower()
	lhsUpper, rhsUpper := r.Upper(), rhs.Upper()

	lo := boundedint.Min([]boundedint.BoundedInt{lhsLower, rhsLower})
	hi := boundedint.Max([]boundedint.BoundedInt{lhsUpper, rhsUpper})

	stride := gcd(r.Stride, rhs.Stride)
	offsetDiff := absInt64(r.Offset-rhs.Offset) % stride
	if offsetDiff != 0 {
		stride = gcd(stride, offsetDiff)
	}

	result := RIC{Stride: stride}
	if lo.IsMinusInfinity() {
		result.Start = boundedint.MinusInfinity()
		result.Offset = offsetDiff
	} else {
		result.Start = boundedint.Finite(0)
		result.Offset = lo.Int()
	}
	if hi.IsPlusInfinity() {
		result.End = boundedint.PlusInfinity()
	} else {
		diff, err := hi.Sub(lo)
		if err != nil {
			// hi is finite here, so hi - lo can never be the
			// indeterminate ∞ - ∞ case.
			panic(err)
		}
		result.End = diff.DivPos(stride)
	}
	return result
}

// WidenWith accelerates fixpoint iteration: if r and rhs agree on
// stride and alignment, any direction in which rhs has grown past r is
// jumped to infinity. Otherwise it's a no-op.
func (r RIC) WidenWith(rhs RIC) RIC {
	if r.Stride != rhs.Stride {
		return r
	}
	adjust := rhs.Offset - r.Offset
	if adjust%r.Stride != 0 {
		return r
	}
	steps := adjust / r.Stride

	newStart := rhs.Start.SubFinite(steps)
	newEnd := rhs.End.SubFinite(steps)

	result := r
	if newStart.Less(r.Start) {
		result.Start = boundedint.MinusInfinity()
	}
	if newEnd.Greater(r.End) {
		result.End = boundedint.PlusInfinity()
	}
	return result
}

// NarrowWith is widen's dual: it tightens a bound that widening
// previously pushed to infinity back toward rhs's corresponding finite
// bound, when r and rhs agree on stride and alignment. A bound that is
// already finite is left alone; narrowing only undoes what widening
// did, it never further restricts an already-finite range.
func (r RIC) NarrowWith(rhs RIC) RIC {
	if r.Stride != rhs.Stride {
		return r
	}
	adjust := rhs.Offset - r.Offset
	if adjust%r.Stride != 0 {
		return r
	}
	steps := adjust / r.Stride

	newStart := rhs.Start.SubFinite(steps)
	newEnd := rhs.End.SubFinite(steps)

	result := r
	if r.Start.IsMinusInfinity() && !newStart.IsMinusInfinity() {
		result.Start = newStart
	}
	if r.End.IsPlusInfinity() && !newEnd.IsPlusInfinity() {
		result.End = newEnd
	}
	return result
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func gcd(a, b int64) int64 {
	a, b = absInt64(a), absInt64(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	g := gcd(a, b)
	if g == 0 {
		return 0
	}
	return absInt64(a/g*b)
}
