package asitype

import "testing"

func TestSizeInt(t *testing.T) {
	if got := Int(4).Size(); got != 4 {
		t.Errorf("Int(4).Size() = %d, want 4", got)
	}
}

func TestSizeArray(t *testing.T) {
	arr := Array(Int(4), 3)
	if got := arr.Size(); got != 12 {
		t.Errorf("Array(Int(4), 3).Size() = %d, want 12", got)
	}
}

func TestSizeStruct(t *testing.T) {
	st := Struct(Int(4), Int(2), Int(1))
	if got := st.Size(); got != 7 {
		t.Errorf("Struct(Int(4), Int(2), Int(1)).Size() = %d, want 7", got)
	}
}

func TestStringFormats(t *testing.T) {
	cases := []struct {
		ty   Type
		want string
	}{
		{Int(4), "i32"},
		{Impossible(3), "imp3"},
		{Array(Int(4), 4), "i32[4]"},
		{Struct(Int(4), Int(4)), "{i32, i32}"},
		{Struct(Int(1), Array(Int(2), 3), Int(1)), "{i8, i16[3], i8}"},
	}
	for _, c := range cases {
		if got := c.ty.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestEqualIgnoresOverflowFlag(t *testing.T) {
	a := Int(4)
	b := Int(4).SetBufferOverflow()

	if !a.Equal(b) {
		t.Error("Equal should ignore the overflow flag")
	}
	if !b.BufferOverflow() {
		t.Error("SetBufferOverflow should mark the flag")
	}
	if a.BufferOverflow() {
		t.Error("the original should be unaffected (value-immutable)")
	}
}

func TestEqualStructural(t *testing.T) {
	a := Struct(Int(4), Array(Int(1), 2))
	b := Struct(Int(4), Array(Int(1), 2))
	c := Struct(Int(4), Array(Int(1), 3))

	if !a.Equal(b) {
		t.Error("structurally identical types should be equal")
	}
	if a.Equal(c) {
		t.Error("structurally different types should not be equal")
	}
}

func TestAddChildAppendsInOrder(t *testing.T) {
	base := Struct(Int(4))
	extended := base.AddChild(Int(2))

	if got := len(base.Children()); got != 1 {
		t.Errorf("AddChild mutated the original struct, now has %d children", got)
	}
	children := extended.Children()
	if len(children) != 2 || !children[0].Equal(Int(4)) || !children[1].Equal(Int(2)) {
		t.Errorf("AddChild result = %v, want {i32, i16}", extended)
	}
}

func TestArrayAccessorsPanicOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Child to panic on a non-array type")
		}
	}()
	Int(4).Child()
}

func TestChildrenPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Children to panic on a non-struct type")
		}
	}()
	Int(4).Children()
}
