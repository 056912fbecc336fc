// Package asi implements Aggregate Structure Identification: recovering
// a tree-shaped type for every a-loc from how a program's memory
// accesses actually touch it.
package asi

import (
	"fmt"
	"sort"

	"github.com/hanyuone/ba-toolchain/abstractstore"
	"github.com/hanyuone/ba-toolchain/asierr"
	"github.com/hanyuone/ba-toolchain/asitype"
	"github.com/hanyuone/ba-toolchain/boundedint"
	"github.com/hanyuone/ba-toolchain/valueset"
)

// Access is one recorded memory access: an address (as a value-set)
// and the width, in bytes, touched at that address.
type Access struct {
	ID      string
	Address valueset.ValueSet
	Size    int64
}

// FindALocs returns, grouped by region, every a-loc in alocs that
// address's RIC (projected onto that a-loc's region) might touch.
func FindALocs(alocs []abstractstore.ALoc, address valueset.ValueSet) map[valueset.Region][]abstractstore.ALoc {
	referenced := map[valueset.Region][]abstractstore.ALoc{}

	for _, aloc := range alocs {
		rc, ok := address.At(aloc.Region)
		if !ok {
			continue
		}

		lower := rc.Lower()
		upper := rc.Upper()
		alocOffset := boundedint.Finite(aloc.Offset)
		alocEnd := boundedint.Finite(aloc.End())

		lowerInALoc := lower.GreaterEqual(alocOffset) && lower.Less(alocEnd)
		surroundsALoc := lower.Less(alocOffset) && upper.GreaterEqual(alocEnd)
		upperInALoc := upper.GreaterEqual(alocOffset) && upper.Less(alocEnd)

		if lowerInALoc || surroundsALoc || upperInALoc {
			referenced[aloc.Region] = append(referenced[aloc.Region], aloc)
		}
	}

	return referenced
}

// splitWithRemainders builds the up-to-three-child Struct(leftRemainder,
// access, rightRemainder), omitting any zero-size remainder, used both
// for a plain scalar sub-access and for an array's internal element
// layout.
func splitWithRemainders(offset, size, total int64) asitype.Type {
	left := offset
	right := total - (offset + size)

	children := make([]asitype.Type, 0, 3)
	if left > 0 {
		children = append(children, asitype.Int(left))
	}
	children = append(children, asitype.Int(size))
	if right > 0 {
		children = append(children, asitype.Int(right))
	}
	if len(children) == 1 {
		return children[0]
	}
	return asitype.Struct(children...)
}

// Infer interprets an access of size bytes whose RIC in at's region
// describes the offsets within that region, producing the type that
// access implies for at.
func Infer(address valueset.ValueSet, size int64, at abstractstore.ALoc) (asitype.Type, error) {
	rc, ok := address.At(at.Region)
	if !ok {
		panic("asi: Infer called with an address that does not cover at's region")
	}

	if rc.IsConstant() && size == at.Size {
		return asitype.Int(size), nil
	}

	if rc.IsConstant() {
		ricOffset := rc.GetConstant() - at.Offset
		return splitWithRemainders(ricOffset, size, at.Size), nil
	}

	// Array access: rc.Start and rc.End must be finite so the element
	// count is knowable.
	if !rc.Start.IsFinite() || !rc.End.IsFinite() {
		return asitype.Type{}, asierr.New(asierr.InfiniteArrayAccess,
			"array access at %s has a non-finite extent %s", at, rc)
	}

	overflow := false
	stride := rc.Stride
	if size > stride {
		overflow = true
		size = stride
	}

	var child asitype.Type
	if size == stride {
		child = asitype.Int(size)
	} else {
		childOffset := (rc.Offset - at.Offset) % stride
		if childOffset+size > stride {
			overflow = true
			child = asitype.Int(stride)
		} else {
			child = splitWithRemainders(childOffset, size, stride)
		}
	}

	possibleElements := at.Size / stride
	accessedElements := rc.End.Int() - rc.Start.Int() + 1

	var result asitype.Type
	if possibleElements == accessedElements {
		result = asitype.Array(child, possibleElements)
	} else {
		arrayType := asitype.Array(child, accessedElements)
		elementOffset := (rc.Offset - at.Offset) % stride
		arrayOffset := (rc.Offset - at.Offset) - elementOffset
		result = wrapArrayWithRemainders(arrayType, arrayOffset, stride, accessedElements, at.Size)
	}

	if overflow {
		result = result.SetBufferOverflow()
	}
	return result, nil
}

func wrapArrayWithRemainders(arr asitype.Type, arrayOffset, elementSize, elementCount, total int64) asitype.Type {
	consumed := elementCount * elementSize
	left := arrayOffset
	right := total - (arrayOffset + consumed)

	children := make([]asitype.Type, 0, 3)
	if left > 0 {
		children = append(children, asitype.Int(left))
	}
	children = append(children, arr)
	if right > 0 {
		children = append(children, asitype.Int(right))
	}
	if len(children) == 1 {
		return children[0]
	}
	return asitype.Struct(children...)
}

// Split cuts type into two pieces of n and type.Size()-n bytes. Only
// Int and Array are supported; asking to split a Struct panics rather
// than silently doing the wrong thing. UnifyStructs reaches that panic
// when a Struct child is larger than the child it is paired with.
func Split(t asitype.Type, n int64) (asitype.Type, asitype.Type, error) {
	switch t.Kind() {
	case asitype.KindInt:
		return asitype.Int(n), asitype.Int(t.Size() - n), nil
	case asitype.KindArray:
		elemSize := t.Child().Size()
		if elemSize == 0 || n%elemSize != 0 {
			return asitype.Type{}, asitype.Type{}, asierr.New(asierr.InvalidSplit,
				"split offset %d is not a multiple of element size %d", n, elemSize)
		}
		index := n / elemSize
		count := t.Count()
		switch {
		case index == 1:
			return t.Child(), asitype.Array(t.Child(), count-1), nil
		case index == count-1:
			return asitype.Array(t.Child(), count-1), t.Child(), nil
		default:
			return asitype.Array(t.Child(), index), asitype.Array(t.Child(), count-index), nil
		}
	default:
		panic(fmt.Sprintf("asi: Split called on unsupported kind %v", t.Kind()))
	}
}

func gcdInt(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcmInt(a, b int64) int64 {
	g := gcdInt(a, b)
	if g == 0 {
		return 0
	}
	return a / g * b
}

func repackage(child asitype.Type, copies int64) asitype.Type {
	if copies == 1 {
		return child
	}
	children := make([]asitype.Type, copies)
	for i := range children {
		children[i] = child
	}
	return asitype.Struct(children...)
}

// UnifyArrays unifies two arrays of equal total size by repackaging
// each side's element so both have m-byte elements, where m is the
// lcm of the two element sizes, then unifying the repackaged elements.
func UnifyArrays(lhs, rhs asitype.Type) (asitype.Type, error) {
	lhsChild := lhs.Child()
	rhsChild := rhs.Child()

	m := lcmInt(lhsChild.Size(), rhsChild.Size())

	newLhsChild := repackage(lhsChild, m/lhsChild.Size())
	newRhsChild := repackage(rhsChild, m/rhsChild.Size())

	unifiedChild, err := Unify(newLhsChild, newRhsChild)
	if err != nil {
		return asitype.Type{}, err
	}

	return asitype.Array(unifiedChild, lhs.Size()/m), nil
}

// UnifyStructs merges two structs of equal total size by repeatedly
// popping one child from each side, splitting whichever is larger down
// to the smaller's size, and unifying the equal-sized pieces.
func UnifyStructs(lhs, rhs asitype.Type) (asitype.Type, error) {
	lhsQueue := lhs.Children()
	rhsQueue := rhs.Children()

	var result []asitype.Type

	for len(lhsQueue) > 0 {
		if len(rhsQueue) == 0 {
			return asitype.Type{}, asierr.New(asierr.SizeMismatch, "unifyStructs: right side ran out of children before the left did")
		}

		left := lhsQueue[0]
		lhsQueue = lhsQueue[1:]
		right := rhsQueue[0]
		rhsQueue = rhsQueue[1:]

		switch {
		case left.Size() == right.Size():
			unified, err := Unify(left, right)
			if err != nil {
				return asitype.Type{}, err
			}
			result = append(result, unified)
		case left.Size() > right.Size():
			target, remainder, err := Split(left, right.Size())
			if err != nil {
				return asitype.Type{}, err
			}
			lhsQueue = append([]asitype.Type{remainder}, lhsQueue...)
			unified, err := Unify(target, right)
			if err != nil {
				return asitype.Type{}, err
			}
			result = append(result, unified)
		default:
			target, remainder, err := Split(right, left.Size())
			if err != nil {
				return asitype.Type{}, err
			}
			rhsQueue = append([]asitype.Type{remainder}, rhsQueue...)
			unified, err := Unify(left, target)
			if err != nil {
				return asitype.Type{}, err
			}
			result = append(result, unified)
		}
	}
	if len(rhsQueue) != 0 {
		return asitype.Type{}, asierr.New(asierr.SizeMismatch, "unifyStructs: left side ran out of children before the right did")
	}
	return canonicalizeMerge(result), nil
}

// canonicalizeMerge brings a freshly-merged child list to quiescent
// form: a single child is returned bare (a one-child Struct carries no
// more information than its child); a list whose children are all
// identical is recognized as a repeated pattern and returned as an
// Array instead of a Struct, since that's the more precise recovered
// shape. A list with any differing child stays a Struct.
func canonicalizeMerge(children []asitype.Type) asitype.Type {
	if len(children) == 1 {
		return children[0]
	}
	allEqual := true
	for _, c := range children[1:] {
		if !c.Equal(children[0]) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return asitype.Array(children[0], int64(len(children)))
	}
	return asitype.Struct(children...)
}

func wrapInStruct(t asitype.Type) asitype.Type {
	if t.Kind() == asitype.KindStruct {
		return t
	}
	return asitype.Struct(t)
}

// Unify merges existing (the type already bound to an a-loc) with
// inferred (what a new access implies), the engine's "join on types"
// operator.
func Unify(existing, inferred asitype.Type) (asitype.Type, error) {
	if existing.Kind() == asitype.KindImpossible || inferred.Kind() == asitype.KindImpossible {
		if existing.Size() != inferred.Size() {
			return asitype.Type{}, asierr.New(asierr.SizeMismatch,
				"unify: impossible type of size %d does not match other side's size %d", existing.Size(), inferred.Size())
		}
		return asitype.Impossible(existing.Size()), nil
	}
	if existing.Kind() == asitype.KindInt {
		return inferred, nil
	}
	if inferred.Kind() == asitype.KindInt {
		return existing, nil
	}
	if existing.Kind() == asitype.KindArray && inferred.Kind() == asitype.KindArray {
		return UnifyArrays(existing, inferred)
	}
	return UnifyStructs(wrapInStruct(existing), wrapInStruct(inferred))
}

// SimplifyTypes replaces every a-loc bound to a Struct with one binding
// per child, at consecutive offsets starting at the original a-loc's
// offset; a child that is itself a Struct is flattened the same way. It
// is idempotent: none of its output bindings are Structs.
func SimplifyTypes(bindings map[abstractstore.ALoc]asitype.Type) map[abstractstore.ALoc]asitype.Type {
	out := make(map[abstractstore.ALoc]asitype.Type, len(bindings))
	for aloc, t := range bindings {
		if t.Kind() != asitype.KindStruct {
			out[aloc] = t
			continue
		}
		offset := aloc.Offset
		var flatten func(t asitype.Type)
		flatten = func(t asitype.Type) {
			if t.Kind() == asitype.KindStruct {
				for _, child := range t.Children() {
					flatten(child)
				}
				return
			}
			out[abstractstore.ALoc{Region: aloc.Region, Offset: offset, Size: t.Size()}] = t
			offset += t.Size()
		}
		flatten(t)
	}
	return out
}

func checkNoOverlap(alocs []abstractstore.ALoc) error {
	byRegion := map[valueset.Region][]abstractstore.ALoc{}
	for _, a := range alocs {
		byRegion[a.Region] = append(byRegion[a.Region], a)
	}
	for _, group := range byRegion {
		sort.Slice(group, func(i, j int) bool { return group[i].Less(group[j]) })
		for i := 1; i < len(group); i++ {
			if group[i-1].Overlaps(group[i]) {
				return asierr.New(asierr.OverlappingALocs, "a-locs %s and %s overlap", group[i-1], group[i])
			}
		}
	}
	return nil
}

func alocKeys(bindings map[abstractstore.ALoc]asitype.Type) []abstractstore.ALoc {
	keys := make([]abstractstore.ALoc, 0, len(bindings))
	for a := range bindings {
		keys = append(keys, a)
	}
	return keys
}

// Analyse is the engine's driver and single entry point: given a set of
// a-locs and an ordered sequence of memory accesses, it recovers a type
// for every a-loc (after merging and splitting as accesses demand).
// Iteration order over accesses is by Access.ID, so the result is
// deterministic for identical inputs; the algorithm is deliberately
// order-dependent rather than a fixpoint, so callers that care about a
// particular merge order should encode it in the IDs.
func Analyse(alocs []abstractstore.ALoc, accesses []Access) (map[abstractstore.ALoc]asitype.Type, error) {
	if err := checkNoOverlap(alocs); err != nil {
		return nil, err
	}

	bindings := make(map[abstractstore.ALoc]asitype.Type, len(alocs))
	for _, a := range alocs {
		bindings[a] = asitype.Int(a.Size)
	}

	sorted := make([]Access, len(accesses))
	copy(sorted, accesses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, acc := range sorted {
		if len(acc.Address.Regions()) == 0 {
			continue
		}

		found := FindALocs(alocKeys(bindings), acc.Address)
		if len(found) == 0 {
			continue
		}

		regions := make([]valueset.Region, 0, len(found))
		for r := range found {
			regions = append(regions, r)
		}
		sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

		next := make(map[abstractstore.ALoc]asitype.Type, len(bindings))
		for k, v := range bindings {
			next[k] = v
		}

		for _, region := range regions {
			hits := found[region]
			sort.Slice(hits, func(i, j int) bool { return hits[i].Less(hits[j]) })

			for _, h := range hits {
				if got := bindings[h].Size(); got != h.Size {
					return nil, asierr.New(asierr.SizeMismatch,
						"a-loc %s of size %d is bound to %s of size %d", h, h.Size, bindings[h], got)
				}
			}

			var existingMemory asitype.Type
			if len(hits) == 1 {
				existingMemory = bindings[hits[0]]
			} else {
				children := make([]asitype.Type, len(hits))
				for i, h := range hits {
					children[i] = bindings[h]
				}
				existingMemory = asitype.Struct(children...)
			}

			for _, h := range hits {
				delete(next, h)
			}

			newALoc := abstractstore.ALoc{Region: hits[0].Region, Offset: hits[0].Offset, Size: existingMemory.Size()}

			inferred, err := Infer(acc.Address, acc.Size, newALoc)
			if err != nil {
				return nil, err
			}
			unified, err := Unify(existingMemory, inferred)
			if err != nil {
				return nil, err
			}
			next[newALoc] = unified
		}

		bindings = next
	}

	return SimplifyTypes(bindings), nil
}
