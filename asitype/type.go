// Package asitype defines the recovered type tree the ASI engine
// produces: scalars, arrays, structs, and an explicit "impossible"
// marker for irreconcilable conflicts.
package asitype

import (
	"fmt"
	"strings"
)

// Kind tags which shape a Type has, playing the role a class hierarchy
// with virtual dispatch would in a language with one: a single tagged
// struct instead of Int/Array/Struct/Impossible subclasses.
type Kind uint8

const (
	KindInt Kind = iota
	KindArray
	KindStruct
	KindImpossible
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindArray:
		return "Array"
	case KindStruct:
		return "Struct"
	case KindImpossible:
		return "Impossible"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is a node in the recovered type tree. It is value-immutable:
// every constructor and transform returns a new Type rather than
// mutating an existing one, so a Type can be freely shared as a
// subtree of more than one parent without aliasing hazards.
type Type struct {
	kind     Kind
	bytes    int64   // KindInt, KindImpossible
	child    *Type   // KindArray
	count    int64   // KindArray
	children []Type  // KindStruct
	overflow bool    // diagnostic flag, ignored by Equal
}

// Int returns a scalar of the given byte width.
func Int(bytes int64) Type {
	return Type{kind: KindInt, bytes: bytes}
}

// Impossible marks an irreconcilable conflict at the given byte width.
func Impossible(bytes int64) Type {
	return Type{kind: KindImpossible, bytes: bytes}
}

// Array returns an array of count elements of type child. An array of
// exactly one element carries no information an array doesn't already
// have in its child, so Array(child, 1) canonicalizes to child itself
// rather than staying wrapped: quiescent arrays always have count >= 2.
func Array(child Type, count int64) Type {
	if count == 1 {
		return child
	}
	return Type{kind: KindArray, child: &child, count: count}
}

// Struct returns a struct with the given children, in order.
func Struct(children ...Type) Type {
	cs := make([]Type, len(children))
	copy(cs, children)
	return Type{kind: KindStruct, children: cs}
}

func (t Type) Kind() Kind { return t.kind }

// Size returns the type's total byte width.
func (t Type) Size() int64 {
	switch t.kind {
	case KindInt, KindImpossible:
		return t.bytes
	case KindArray:
		return t.child.Size() * t.count
	case KindStruct:
		var total int64
		for _, c := range t.children {
			total += c.Size()
		}
		return total
	default:
		panic(fmt.Sprintf("asitype: Size: unhandled kind %v", t.kind))
	}
}

// Child returns the element type of an array. It panics if t is not an
// array.
func (t Type) Child() Type {
	if t.kind != KindArray {
		panic("asitype: Child called on a non-array type")
	}
	return *t.child
}

// Count returns an array's element count. It panics if t is not an
// array.
func (t Type) Count() int64 {
	if t.kind != KindArray {
		panic("asitype: Count called on a non-array type")
	}
	return t.count
}

// Children returns a struct's children in order. It panics if t is not
// a struct.
func (t Type) Children() []Type {
	if t.kind != KindStruct {
		panic("asitype: Children called on a non-struct type")
	}
	out := make([]Type, len(t.children))
	copy(out, t.children)
	return out
}

// AddChild returns a new struct with child appended. It panics if t is
// not a struct.
func (t Type) AddChild(child Type) Type {
	if t.kind != KindStruct {
		panic("asitype: AddChild called on a non-struct type")
	}
	cs := make([]Type, len(t.children)+1)
	copy(cs, t.children)
	cs[len(t.children)] = child
	return Type{kind: KindStruct, children: cs, overflow: t.overflow}
}

// BufferOverflow reports whether t itself carries the diagnostic flag
// inference sets for an access larger than the natural element/extent.
// The flags of t's children are not consulted.
func (t Type) BufferOverflow() bool { return t.overflow }

// SetBufferOverflow returns a copy of t with the diagnostic overflow
// flag set.
func (t Type) SetBufferOverflow() Type {
	t.overflow = true
	return t
}

// String renders t in the stable external format: scalars "i<bits>",
// arrays "<child>[<count>]", structs "{c1, c2, ...}", impossibles
// "imp<bytes>".
func (t Type) String() string {
	switch t.kind {
	case KindInt:
		return fmt.Sprintf("i%d", t.bytes*8)
	case KindImpossible:
		return fmt.Sprintf("imp%d", t.bytes)
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.child.String(), t.count)
	case KindStruct:
		parts := make([]string, len(t.children))
		for i, c := range t.children {
			parts[i] = c.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		panic(fmt.Sprintf("asitype: String: unhandled kind %v", t.kind))
	}
}

// Equal is structural equality, ignoring the diagnostic overflow flag.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindInt, KindImpossible:
		return t.bytes == o.bytes
	case KindArray:
		return t.count == o.count && t.child.Equal(*o.child)
	case KindStruct:
		if len(t.children) != len(o.children) {
			return false
		}
		for i := range t.children {
			if !t.children[i].Equal(o.children[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("asitype: Equal: unhandled kind %v", t.kind))
	}
}
