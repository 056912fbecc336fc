package ric

import (
	"testing"

	"github.com/hanyuone/ba-toolchain/boundedint"
)

func constant(v int64) RIC {
	return RIC{Stride: 1, Start: boundedint.Finite(v), End: boundedint.Finite(v), Offset: 0}
}

func ranged(stride, start, end, offset int64) RIC {
	return RIC{Stride: stride, Start: boundedint.Finite(start), End: boundedint.Finite(end), Offset: offset}
}

// S1: a constant RIC is a subset of Top, and Top is not a subset of a
// constant RIC.
func TestS1Subset(t *testing.T) {
	a := ranged(7, 5, 5, 1)
	b := Top()

	if !a.IsSubset(b) {
		t.Errorf("%v.IsSubset(Top) = false, want true", a)
	}
	if b.IsSubset(a) {
		t.Errorf("Top.IsSubset(%v) = true, want false", a)
	}
}

// S2: meeting two small ranges with coprime strides yields the single
// point common to both.
func TestS2Meet(t *testing.T) {
	a := ranged(2, 0, 4, 1) // {1, 3, 5, 7, 9}
	b := ranged(3, 0, 3, 1) // {1, 4, 7, 10}

	got := a.MeetWith(b)
	want := ranged(6, 0, 1, 1) // {1, 7}

	if got.Stride != want.Stride || !got.Start.Equal(want.Start) || !got.End.Equal(want.End) || got.Offset != want.Offset {
		t.Errorf("MeetWith = %v, want %v", got, want)
	}
}

func TestBottomAbsorbs(t *testing.T) {
	a := ranged(2, 0, 10, 0)
	bot := Bottom()

	if !bot.MeetWith(a).IsBottom() {
		t.Error("bottom meet a should be bottom")
	}
	if !a.MeetWith(bot).IsBottom() {
		t.Error("a meet bottom should be bottom")
	}
	if got := bot.JoinWith(a); got.Stride != a.Stride || !got.Start.Equal(a.Start) {
		t.Errorf("bottom join a = %v, want %v", got, a)
	}
	if got := a.JoinWith(bot); got.Stride != a.Stride || !got.Start.Equal(a.Start) {
		t.Errorf("a join bottom = %v, want %v", got, a)
	}
}

func TestTopAbsorbs(t *testing.T) {
	a := ranged(2, 0, 10, 0)
	top := Top()

	if got := top.MeetWith(a); !got.Equal(a) {
		t.Errorf("top meet a = %v, want %v", got, a)
	}
	if !a.JoinWith(top).IsTop() {
		t.Error("a join top should be top")
	}
	if !top.JoinWith(a).IsTop() {
		t.Error("top join a should be top")
	}
}

func TestSubsetReflexive(t *testing.T) {
	rs := []RIC{constant(5), ranged(2, 0, 10, 1), Top(), Bottom(), ranged(3, -5, 5, 2)}
	for _, r := range rs {
		if !r.IsSubset(r) {
			t.Errorf("%v.IsSubset(itself) = false, want true", r)
		}
	}
}

func TestMeetCommutative(t *testing.T) {
	a := ranged(4, 0, 5, 1)
	b := ranged(6, 0, 3, 2)

	ab := a.MeetWith(b)
	ba := b.MeetWith(a)

	if !ab.Equal(ba) {
		t.Errorf("meet not commutative: a meet b = %v, b meet a = %v", ab, ba)
	}
}

func TestMeetIsLowerBound(t *testing.T) {
	a := ranged(4, 0, 5, 1)
	b := ranged(6, 0, 3, 2)
	m := a.MeetWith(b)

	if !m.IsSubset(a) {
		t.Errorf("meet %v is not a subset of a %v", m, a)
	}
	if !m.IsSubset(b) {
		t.Errorf("meet %v is not a subset of b %v", m, b)
	}
}

func TestJoinIsUpperBound(t *testing.T) {
	a := ranged(4, 0, 5, 1)
	b := ranged(6, 0, 3, 2)
	j := a.JoinWith(b)

	if !a.IsSubset(j) {
		t.Errorf("a %v is not a subset of join %v", a, j)
	}
	if !b.IsSubset(j) {
		t.Errorf("b %v is not a subset of join %v", b, j)
	}
}

func TestWidenNoopOnStrideMismatch(t *testing.T) {
	a := ranged(2, 0, 5, 0)
	b := ranged(3, 0, 100, 0)

	got := a.WidenWith(b)
	if !got.Equal(a) {
		t.Errorf("widen with mismatched stride should be a no-op, got %v want %v", got, a)
	}
}

func TestWidenPushesToInfinity(t *testing.T) {
	a := ranged(2, 0, 5, 0)
	b := ranged(2, 0, 50, 0)

	got := a.WidenWith(b)
	if !got.End.IsPlusInfinity() {
		t.Errorf("widen should have pushed end to +inf, got %v", got)
	}
	if !got.Start.Equal(a.Start) {
		t.Errorf("widen should not have touched start, got %v", got)
	}
}

func TestNarrowUndoesWiden(t *testing.T) {
	a := ranged(2, 0, 5, 0)
	b := ranged(2, 0, 50, 0)

	widened := a.WidenWith(b)
	narrowed := widened.NarrowWith(b)

	if !narrowed.End.Equal(b.End) {
		t.Errorf("narrow should have recovered b's end, got %v want %v", narrowed.End, b.End)
	}
}

func TestConstant(t *testing.T) {
	c := constant(42)
	if !c.IsConstant() {
		t.Fatal("constant(42) should report IsConstant")
	}
	if c.GetConstant() != 42 {
		t.Errorf("GetConstant = %d, want 42", c.GetConstant())
	}

	r := ranged(2, 0, 5, 0)
	if r.IsConstant() {
		t.Error("a ranged RIC should not be constant")
	}
}

func TestRicStrideNonPositive(t *testing.T) {
	_, err := New(0, boundedint.Finite(0), boundedint.Finite(5), 0)
	if err == nil {
		t.Fatal("expected an error for stride 0")
	}
	_, err = New(-1, boundedint.Finite(0), boundedint.Finite(5), 0)
	if err == nil {
		t.Fatal("expected an error for stride -1")
	}
}
