package twosquares

import (
	"fmt"
	"math/big"
)

// millerRabinRounds is the number of Miller-Rabin rounds used when checking
// DecomposePrime inputs and factorization keys.
const millerRabinRounds = 20

// decomposeTwoOrOneMod4 maps p = 2 or p = 1 mod 4 to its two-square pair
// without testing primality. Composite p surfaces as ErrInvalidPrimeKind
// or ErrDecompositionNotFound.
func decomposeTwoOrOneMod4(p *big.Int) (SquarePair, error) {
	if p.Cmp(bigTwo) == 0 {
		return PairFromUint64(1, 1), nil
	}
	x, err := FindSqrtNegOne(p)
	if err != nil {
		return SquarePair{}, err
	}
	return Descend(p, x)
}

// checkDecomposable rejects anything that is not 2 or a prime = 1 mod 4
func checkDecomposable(p *big.Int) error {
	if p == nil || p.Cmp(bigTwo) < 0 {
		return fmt.Errorf("%w: %v", ErrNotDecomposable, p)
	}
	if p.Cmp(bigTwo) == 0 {
		return nil
	}
	var r big.Int
	if r.Mod(p, bigFour).Cmp(bigOne) != 0 {
		return fmt.Errorf("%w: %s is not 1 mod 4", ErrNotDecomposable, p)
	}
	if !p.ProbablyPrime(millerRabinRounds) {
		return fmt.Errorf("%w: %s is composite", ErrNotDecomposable, p)
	}
	return nil
}

// DecomposePrime returns the unique pair (a, b), a <= b, with a^2 + b^2 = p.
//
// p must be 2 or a prime congruent to 1 mod 4. Primes congruent to 3 mod 4,
// composites (detected with Miller-Rabin) and values below 2 fail with
// ErrNotDecomposable. The result is cached in the default decomposer.
func DecomposePrime(p *big.Int) (SquarePair, error) {
	return defaultDecomposer.DecomposePrime(p)
}

// DecomposePrimeUint64 is DecomposePrime for machine integers
func DecomposePrimeUint64(p uint64) (SquarePair, error) {
	return DecomposePrime(new(big.Int).SetUint64(p))
}
