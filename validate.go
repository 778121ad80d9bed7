package twosquares

import (
	"fmt"
	"math/big"
)

// ValidationResult partitions a factorization by residue class mod 4.
type ValidationResult struct {
	// TwoExponent is the exponent of 2, or 0 if n is odd
	TwoExponent int
	// OneMod4 holds the primes congruent to 1 mod 4, ascending
	OneMod4 []PrimePower
	// ThreeMod4 holds the primes congruent to 3 mod 4, ascending
	ThreeMod4 []PrimePower
	// Representable is false when some prime congruent to 3 mod 4 has an
	// odd exponent, in which case n is not a sum of two squares.
	Representable bool
}

// Classify partitions f without checking primality or exponent parity.
// Representable is always true; this is the limited-checks path.
func Classify(f Factorization) ValidationResult {
	res := ValidationResult{Representable: true}
	var r big.Int
	for _, pp := range f.powers {
		if pp.Prime.Cmp(bigTwo) == 0 {
			res.TwoExponent = pp.Exp
			continue
		}
		switch r.Mod(pp.Prime, bigFour).Int64() {
		case 1:
			res.OneMod4 = append(res.OneMod4, pp)
		case 3:
			res.ThreeMod4 = append(res.ThreeMod4, pp)
		}
	}
	return res
}

// Validate partitions f and decides whether n has a two-square
// representation. Every key must be prime; ErrInvalidFactorization is
// returned otherwise. An odd exponent on any prime congruent to 3 mod 4
// makes the result non-representable, which is not an error.
func Validate(f Factorization) (ValidationResult, error) {
	for _, pp := range f.powers {
		if !pp.Prime.ProbablyPrime(millerRabinRounds) {
			return ValidationResult{}, fmt.Errorf("%w: %s is not prime", ErrInvalidFactorization, pp.Prime)
		}
	}

	res := Classify(f)
	for _, q := range res.ThreeMod4 {
		if q.Exp%2 == 1 {
			res.Representable = false
			break
		}
	}
	return res, nil
}

// RepresentationBound returns the product of (k + 1) over the exponents k
// of primes congruent to 1 mod 4. It bounds the number of canonical pairs
// from above.
func RepresentationBound(f Factorization) *big.Int {
	return representationBound(Classify(f).OneMod4)
}

func representationBound(oneMod4 []PrimePower) *big.Int {
	b := big.NewInt(1)
	var t big.Int
	for _, pp := range oneMod4 {
		b.Mul(b, t.SetInt64(int64(pp.Exp)+1))
	}
	return b
}

// CountRepresentations returns the exact number of canonical pairs for the
// value of f: ceil(B/2) where B is RepresentationBound, or 0 when n is not
// a sum of two squares.
func CountRepresentations(f Factorization) (*big.Int, error) {
	res, err := Validate(f)
	if err != nil {
		return nil, err
	}
	if !res.Representable {
		return big.NewInt(0), nil
	}
	b := representationBound(res.OneMod4)
	b.Add(b, bigOne)
	return b.Rsh(b, 1), nil
}
