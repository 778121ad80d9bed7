package twosquares

import "errors"

// Errors returned by the decomposition routines. Callers match them with
// errors.Is; most are wrapped with the offending value.
var (
	// ErrInvalidPrimeKind is returned by the modular square root step when
	// the modulus is neither 2 nor congruent to 1 mod 4.
	ErrInvalidPrimeKind = errors.New("prime is not 2 or 1 mod 4")

	// ErrDecompositionNotFound signals that the Euclidean descent did not
	// land on a pair summing to p. It is unreachable for genuine primes and
	// points at a bad factorization upstream.
	ErrDecompositionNotFound = errors.New("euclidean descent found no decomposition")

	// ErrNotDecomposable is returned by DecomposePrime for inputs that are
	// not 2 and not a prime congruent to 1 mod 4.
	ErrNotDecomposable = errors.New("could not decompose")

	// ErrCountMismatch is returned when fewer representations exist than
	// the caller asked for.
	ErrCountMismatch = errors.New("representation count below expectation")

	// ErrInvalidFactorization is returned for factorizations with
	// non-prime keys, duplicate primes or non-positive exponents.
	ErrInvalidFactorization = errors.New("invalid factorization")

	// ErrInvalidInput is returned for zero and negative integers.
	ErrInvalidInput = errors.New("input must be a positive integer")

	// ErrTooManySlots is returned when the combination space exceeds the
	// configured slot limit.
	ErrTooManySlots = errors.New("combination space exceeds slot limit")
)
