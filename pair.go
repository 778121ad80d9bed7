package twosquares

import (
	"math/big"
	"sort"
	"strings"
)

// SquarePair is a canonical representation a^2 + b^2 with 0 <= a <= b.
// Two pairs are equal iff their canonical forms are equal.
type SquarePair struct {
	a, b *big.Int
}

// NewSquarePair canonicalizes (|x|, |y|) into ascending order
func NewSquarePair(x, y *big.Int) SquarePair {
	a := new(big.Int).Abs(orZero(x))
	b := new(big.Int).Abs(orZero(y))
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	return SquarePair{a: a, b: b}
}

// PairFromUint64 canonicalizes (x, y)
func PairFromUint64(x, y uint64) SquarePair {
	return NewSquarePair(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
}

// A returns a copy of the smaller component
func (p SquarePair) A() *big.Int {
	return new(big.Int).Set(orZero(p.a))
}

// B returns a copy of the larger component
func (p SquarePair) B() *big.Int {
	return new(big.Int).Set(orZero(p.b))
}

// Uint64s returns both components as uint64. ok is false if either does not fit.
func (p SquarePair) Uint64s() (a, b uint64, ok bool) {
	x, y := orZero(p.a), orZero(p.b)
	if !x.IsUint64() || !y.IsUint64() {
		return 0, 0, false
	}
	return x.Uint64(), y.Uint64(), true
}

// Sum returns a^2 + b^2
func (p SquarePair) Sum() *big.Int {
	x, y := orZero(p.a), orZero(p.b)
	s := new(big.Int).Mul(x, x)
	return s.Add(s, new(big.Int).Mul(y, y))
}

// Equal reports whether both pairs hold the same components
func (p SquarePair) Equal(q SquarePair) bool {
	return orZero(p.a).Cmp(orZero(q.a)) == 0 && orZero(p.b).Cmp(orZero(q.b)) == 0
}

// String formats the pair as "(a, b)"
func (p SquarePair) String() string {
	return "(" + orZero(p.a).String() + ", " + orZero(p.b).String() + ")"
}

// key returns the map key used for set membership
func (p SquarePair) key() string {
	return orZero(p.a).Text(16) + ":" + orZero(p.b).Text(16)
}

// PairSet is a set of canonical pairs. Insertion order is irrelevant and
// duplicates collapse. The zero value is an empty set ready to use.
type PairSet struct {
	m map[string]SquarePair
}

// NewPairSet returns a set holding pairs
func NewPairSet(pairs ...SquarePair) *PairSet {
	s := &PairSet{m: make(map[string]SquarePair, len(pairs))}
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

// Add inserts p, returning false if it was already present
func (s *PairSet) Add(p SquarePair) bool {
	if s.m == nil {
		s.m = make(map[string]SquarePair)
	}
	k := p.key()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = p
	return true
}

// merge adds every pair of o
func (s *PairSet) merge(o *PairSet) {
	if o == nil {
		return
	}
	if s.m == nil {
		s.m = make(map[string]SquarePair, len(o.m))
	}
	for k, p := range o.m {
		s.m[k] = p
	}
}

// Len returns the number of distinct pairs
func (s *PairSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Contains reports whether p is in the set
func (s *PairSet) Contains(p SquarePair) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[p.key()]
	return ok
}

// Pairs returns the members sorted by their smaller component
func (s *PairSet) Pairs() []SquarePair {
	if s == nil {
		return nil
	}
	out := make([]SquarePair, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := orZero(out[i].a).Cmp(orZero(out[j].a)); c != 0 {
			return c < 0
		}
		return orZero(out[i].b).Cmp(orZero(out[j].b)) < 0
	})
	return out
}

// Equal reports whether both sets hold the same pairs
func (s *PairSet) Equal(o *PairSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for k := range s.m {
		if _, ok := o.m[k]; !ok {
			return false
		}
	}
	return true
}

// String formats the set as "{(a, b), ...}" in sorted order
func (s *PairSet) String() string {
	pairs := s.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
