// Package boundedint implements integers extended with +∞ and −∞: the
// numeric primitive the RIC lattice (package ric) builds its interval
// endpoints out of.
package boundedint

import (
	"fmt"

	"github.com/hanyuone/ba-toolchain/asierr"
)

type sign int8

const (
	finite sign = iota
	plusInfinity
	minusInfinity
)

// BoundedInt is a value that is either a finite int64, +∞, or −∞.
type BoundedInt struct {
	s sign
	v int64
}

// Finite returns the bounded integer equal to v.
func Finite(v int64) BoundedInt { return BoundedInt{s: finite, v: v} }

// PlusInfinity returns +∞.
func PlusInfinity() BoundedInt { return BoundedInt{s: plusInfinity} }

// MinusInfinity returns −∞.
func MinusInfinity() BoundedInt { return BoundedInt{s: minusInfinity} }

func (b BoundedInt) IsPlusInfinity() bool  { return b.s == plusInfinity }
func (b BoundedInt) IsMinusInfinity() bool { return b.s == minusInfinity }
func (b BoundedInt) IsFinite() bool        { return b.s == finite }

// Int returns the receiver's finite value. It panics if the receiver
// isn't finite; callers must check IsFinite first.
func (b BoundedInt) Int() int64 {
	if b.s != finite {
		panic("boundedint: Int called on a non-finite value")
	}
	return b.v
}

func (b BoundedInt) String() string {
	switch b.s {
	case plusInfinity:
		return "+inf"
	case minusInfinity:
		return "-inf"
	default:
		return fmt.Sprintf("%d", b.v)
	}
}

// rank orders the three kinds of value without looking at v, so that
// any minusInfinity < any finite < any plusInfinity.
func (b BoundedInt) rank() int {
	switch b.s {
	case minusInfinity:
		return -1
	case plusInfinity:
		return 1
	default:
		return 0
	}
}

// Cmp returns a negative number if b < o, zero if b == o, and a positive
// number if b > o.
func (b BoundedInt) Cmp(o BoundedInt) int {
	rb, ro := b.rank(), o.rank()
	if rb != ro {
		return rb - ro
	}
	if rb != 0 {
		// Both the same infinity.
		return 0
	}
	switch {
	case b.v < o.v:
		return -1
	case b.v > o.v:
		return 1
	default:
		return 0
	}
}

func (b BoundedInt) Equal(o BoundedInt) bool        { return b.Cmp(o) == 0 }
func (b BoundedInt) Less(o BoundedInt) bool         { return b.Cmp(o) < 0 }
func (b BoundedInt) LessEqual(o BoundedInt) bool    { return b.Cmp(o) <= 0 }
func (b BoundedInt) Greater(o BoundedInt) bool      { return b.Cmp(o) > 0 }
func (b BoundedInt) GreaterEqual(o BoundedInt) bool { return b.Cmp(o) >= 0 }

// Neg returns -b. Negating an infinity flips its sign.
func (b BoundedInt) Neg() BoundedInt {
	switch b.s {
	case plusInfinity:
		return MinusInfinity()
	case minusInfinity:
		return PlusInfinity()
	default:
		return Finite(-b.v)
	}
}

// Add returns b + o. ∞ + (−∞) (in either order) is indeterminate and
// fails explicitly rather than silently returning zero.
func (b BoundedInt) Add(o BoundedInt) (BoundedInt, error) {
	if (b.s == plusInfinity && o.s == minusInfinity) || (b.s == minusInfinity && o.s == plusInfinity) {
		return BoundedInt{}, asierr.New(asierr.IndeterminateArithmetic, "indeterminate arithmetic: %s + %s", b, o)
	}
	if b.s != finite {
		return b, nil
	}
	if o.s != finite {
		return o, nil
	}
	return Finite(b.v + o.v), nil
}

// Sub returns b - o. Like Add, ∞ − ∞ is indeterminate.
func (b BoundedInt) Sub(o BoundedInt) (BoundedInt, error) {
	return b.Add(o.Neg())
}

// AddFinite adds a plain, known-finite int64 to b. Since v can never be
// an infinity, this can never hit the indeterminate ∞ − ∞ case, so unlike
// Add it needs no error return; it's the common case callers that add an
// offset (always finite) to a bound (possibly infinite) want.
func (b BoundedInt) AddFinite(v int64) BoundedInt {
	if b.s != finite {
		return b
	}
	return Finite(b.v + v)
}

// SubFinite subtracts a plain, known-finite int64 from b.
func (b BoundedInt) SubFinite(v int64) BoundedInt {
	return b.AddFinite(-v)
}

// Mul returns b * k for a finite multiplier k. Multiplying an infinity
// by zero is indeterminate; RIC never does this (stride/count are
// always >= 1), so this is an invariant-violation panic rather than an
// Error, matching the rest of the package's convention for "can't
// happen absent a caller bug".
func (b BoundedInt) Mul(k int64) BoundedInt {
	if b.s == finite {
		return Finite(b.v * k)
	}
	if k == 0 {
		panic("boundedint: multiplying an infinity by zero")
	}
	if k > 0 {
		return b
	}
	return b.Neg()
}

// DivPos divides b by a positive constant k, truncating toward zero.
// ±∞ / k = ±∞ for any k > 0.
func (b BoundedInt) DivPos(k int64) BoundedInt {
	if k <= 0 {
		panic("boundedint: DivPos requires a positive divisor")
	}
	if b.s != finite {
		return b
	}
	// Go's integer division already truncates toward zero.
	return Finite(b.v / k)
}

// Min returns the least element of xs. It panics on an empty slice.
func Min(xs []BoundedInt) BoundedInt {
	if len(xs) == 0 {
		panic("boundedint: Min of an empty slice")
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x.Less(m) {
			m = x
		}
	}
	return m
}

// Max returns the greatest element of xs. It panics on an empty slice.
func Max(xs []BoundedInt) BoundedInt {
	if len(xs) == 0 {
		panic("boundedint: Max of an empty slice")
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x.Greater(m) {
			m = x
		}
	}
	return m
}
