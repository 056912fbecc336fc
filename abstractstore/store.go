package abstractstore

import "github.com/hanyuone/ba-toolchain/valueset"

// AbstractStore pairs the two mappings a points-to/value-set analysis
// produces at a program point: what each a-loc and each register may
// hold.
type AbstractStore struct {
	ALocs     map[ALoc]valueset.ValueSet
	Registers map[RegisterID]valueset.ValueSet
}

// New returns an empty store.
func New() AbstractStore {
	return AbstractStore{
		ALocs:     map[ALoc]valueset.ValueSet{},
		Registers: map[RegisterID]valueset.ValueSet{},
	}
}

// Equal is pointwise equality over both maps.
func (s AbstractStore) Equal(rhs AbstractStore) bool {
	if len(s.ALocs) != len(rhs.ALocs) || len(s.Registers) != len(rhs.Registers) {
		return false
	}
	for k, v := range s.ALocs {
		ov, ok := rhs.ALocs[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	for k, v := range s.Registers {
		ov, ok := rhs.Registers[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// JoinWith returns the pointwise join of s and rhs. Keys present on
// only one side are inserted from the other, for both maps.
func (s AbstractStore) JoinWith(rhs AbstractStore) AbstractStore {
	out := AbstractStore{
		ALocs:     make(map[ALoc]valueset.ValueSet, len(s.ALocs)),
		Registers: make(map[RegisterID]valueset.ValueSet, len(s.Registers)),
	}
	for k, v := range s.ALocs {
		out.ALocs[k] = v
	}
	for k, v := range rhs.ALocs {
		if cur, ok := out.ALocs[k]; ok {
			out.ALocs[k] = cur.JoinWith(v)
		} else {
			out.ALocs[k] = v
		}
	}
	for k, v := range s.Registers {
		out.Registers[k] = v
	}
	for k, v := range rhs.Registers {
		if cur, ok := out.Registers[k]; ok {
			out.Registers[k] = cur.JoinWith(v)
		} else {
			out.Registers[k] = v
		}
	}
	return out
}

// WidenWith widens keys present on both sides; a key present only on s
// passes through unchanged. A key present only on rhs is NOT inserted,
// matching the asymmetry the surviving reference implementation's
// register handling (but not its a-loc handling) exhibits: widen/narrow
// are meant to accelerate convergence of keys already being tracked,
// not to introduce new ones.
func (s AbstractStore) WidenWith(rhs AbstractStore) AbstractStore {
	out := AbstractStore{
		ALocs:     make(map[ALoc]valueset.ValueSet, len(s.ALocs)),
		Registers: make(map[RegisterID]valueset.ValueSet, len(s.Registers)),
	}
	for k, v := range s.ALocs {
		if ov, ok := rhs.ALocs[k]; ok {
			out.ALocs[k] = v.WidenWith(ov)
		} else {
			out.ALocs[k] = v
		}
	}
	for k, v := range s.Registers {
		if ov, ok := rhs.Registers[k]; ok {
			out.Registers[k] = v.WidenWith(ov)
		} else {
			out.Registers[k] = v
		}
	}
	return out
}

// NarrowWith is WidenWith's dual, applied key-by-key.
func (s AbstractStore) NarrowWith(rhs AbstractStore) AbstractStore {
	out := AbstractStore{
		ALocs:     make(map[ALoc]valueset.ValueSet, len(s.ALocs)),
		Registers: make(map[RegisterID]valueset.ValueSet, len(s.Registers)),
	}
	for k, v := range s.ALocs {
		if ov, ok := rhs.ALocs[k]; ok {
			out.ALocs[k] = v.NarrowWith(ov)
		} else {
			out.ALocs[k] = v
		}
	}
	for k, v := range s.Registers {
		if ov, ok := rhs.Registers[k]; ok {
			out.Registers[k] = v.NarrowWith(ov)
		} else {
			out.Registers[k] = v
		}
	}
	return out
}
