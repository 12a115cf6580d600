package ast

import (
	"math"
	"sort"

	"github.com/dekarrin/boolpred/internal/value"
)

// setRepresentation is the dense membership structure chosen for a
// LiteralSetNode per §4.3: a bitset when every member is a small integer
// within a compact range, a hash set keyed by string when every member is
// a string, and a sorted vector with binary search otherwise. This is
// adapted from the teacher's generic util.KeySet/StringSet (a bare
// map-backed set), specialized here for the bitset case the spec calls
// for, which a plain map cannot express as compactly.
type setRepresentation interface {
	Contains(v value.Value) bool
}

const maxBitsetRange = 4096

// bitsetRep backs a set of small integers within a compact range.
type bitsetRep struct {
	min  int
	bits []uint64
}

func (b bitsetRep) Contains(v value.Value) bool {
	if v.Type() != value.Number {
		return false
	}
	n := v.Number()
	if n != math.Trunc(n) {
		return false
	}
	idx := int(n) - b.min
	if idx < 0 || idx/64 >= len(b.bits) {
		return false
	}
	return b.bits[idx/64]&(1<<uint(idx%64)) != 0
}

// hashSetRep backs a set of strings.
type hashSetRep map[string]struct{}

func (h hashSetRep) Contains(v value.Value) bool {
	if v.Type() != value.String {
		return false
	}
	_, ok := h[v.Str()]
	return ok
}

// sortedRep is the fallback: a sorted slice searched with binary search,
// for sets of mixed or non-ground-optimizable member types.
type sortedRep struct {
	keys []string
}

func (s sortedRep) Contains(v value.Value) bool {
	key := value.SortKey(v)
	i := sort.SearchStrings(s.keys, key)
	return i < len(s.keys) && s.keys[i] == key
}

func buildSetRepresentation(members []value.Value) setRepresentation {
	if len(members) == 0 {
		return sortedRep{}
	}

	if allSmallInts(members) {
		min, max := intBounds(members)
		if max-min < maxBitsetRange {
			bits := make([]uint64, (max-min)/64+1)
			for _, m := range members {
				idx := int(m.Number()) - min
				bits[idx/64] |= 1 << uint(idx%64)
			}
			return bitsetRep{min: min, bits: bits}
		}
	}

	if allStrings(members) {
		h := make(hashSetRep, len(members))
		for _, m := range members {
			h[m.Str()] = struct{}{}
		}
		return h
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = value.SortKey(m)
	}
	sort.Strings(keys)
	return sortedRep{keys: keys}
}

func allSmallInts(vs []value.Value) bool {
	for _, v := range vs {
		if v.Type() != value.Number || v.Number() != math.Trunc(v.Number()) {
			return false
		}
	}
	return true
}

func allStrings(vs []value.Value) bool {
	for _, v := range vs {
		if v.Type() != value.String {
			return false
		}
	}
	return true
}

func intBounds(vs []value.Value) (min, max int) {
	min = int(vs[0].Number())
	max = min
	for _, v := range vs[1:] {
		n := int(v.Number())
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}
