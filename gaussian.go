package twosquares

import (
	"math/big"
)

// GaussianInt represents the Gaussian integer re + im*i.
// Values are immutable: every operation returns a fresh GaussianInt and the
// components are never modified after construction. The zero value is 0.
type GaussianInt struct {
	re, im *big.Int
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigFour = big.NewInt(4)
)

// NewGaussianInt creates re + im*i. The arguments are copied.
func NewGaussianInt(re, im *big.Int) GaussianInt {
	return GaussianInt{re: new(big.Int).Set(orZero(re)), im: new(big.Int).Set(orZero(im))}
}

// GaussianFromInt64 creates re + im*i from machine integers
func GaussianFromInt64(re, im int64) GaussianInt {
	return GaussianInt{re: big.NewInt(re), im: big.NewInt(im)}
}

// orZero maps a nil component to zero
func orZero(x *big.Int) *big.Int {
	if x == nil {
		return bigZero
	}
	return x
}

// Real returns a copy of the real part
func (g GaussianInt) Real() *big.Int {
	return new(big.Int).Set(orZero(g.re))
}

// Imag returns a copy of the imaginary part
func (g GaussianInt) Imag() *big.Int {
	return new(big.Int).Set(orZero(g.im))
}

// Mul returns g*h = (ac - bd) + (ad + bc)i
func (g GaussianInt) Mul(h GaussianInt) GaussianInt {
	var acc gaussianAcc
	acc.set(g)
	acc.mul(orZero(h.re), orZero(h.im))
	return acc.value()
}

// Conj returns the conjugate re - im*i
func (g GaussianInt) Conj() GaussianInt {
	return GaussianInt{re: g.Real(), im: new(big.Int).Neg(orZero(g.im))}
}

// Pow returns g^k for k >= 0 using square-and-multiply. g^0 is 1.
func (g GaussianInt) Pow(k int) GaussianInt {
	if k < 0 {
		panic("negative exponent")
	}

	var result, base gaussianAcc
	result.re.SetInt64(1)
	base.set(g)
	for k > 0 {
		if k&1 == 1 {
			result.mul(&base.re, &base.im)
		}
		k >>= 1
		if k > 0 {
			base.square()
		}
	}
	return result.value()
}

// Norm returns re^2 + im^2
func (g GaussianInt) Norm() *big.Int {
	re, im := orZero(g.re), orZero(g.im)
	n := new(big.Int).Mul(re, re)
	return n.Add(n, new(big.Int).Mul(im, im))
}

// Equal reports whether g and h are the same Gaussian integer
func (g GaussianInt) Equal(h GaussianInt) bool {
	return orZero(g.re).Cmp(orZero(h.re)) == 0 && orZero(g.im).Cmp(orZero(h.im)) == 0
}

// Pair returns the canonical SquarePair (|re|, |im|) sorted ascending
func (g GaussianInt) Pair() SquarePair {
	return NewSquarePair(orZero(g.re), orZero(g.im))
}

// String formats g as "a+bi" or "a-bi"
func (g GaussianInt) String() string {
	re, im := orZero(g.re), orZero(g.im)
	if im.Sign() < 0 {
		return re.String() + "-" + new(big.Int).Neg(im).String() + "i"
	}
	return re.String() + "+" + im.String() + "i"
}

// gaussianAcc is a mutable accumulator used in the enumeration hot loop.
// It keeps scratch space so repeated multiplication does not allocate.
type gaussianAcc struct {
	re, im     big.Int
	t1, t2, t3 big.Int
}

// set loads g into the accumulator
func (a *gaussianAcc) set(g GaussianInt) {
	a.re.Set(orZero(g.re))
	a.im.Set(orZero(g.im))
}

// mul multiplies the accumulator by c + di in place
func (a *gaussianAcc) mul(c, d *big.Int) {
	a.t1.Mul(&a.re, c) // ac
	a.t2.Mul(&a.im, d) // bd
	a.t3.Mul(&a.re, d) // ad
	a.im.Mul(&a.im, c) // bc
	a.im.Add(&a.im, &a.t3)
	a.re.Sub(&a.t1, &a.t2)
}

// square squares the accumulator in place
func (a *gaussianAcc) square() {
	a.t1.Mul(&a.re, &a.re)
	a.t2.Mul(&a.im, &a.im)
	a.im.Mul(&a.re, &a.im)
	a.im.Lsh(&a.im, 1)
	a.re.Sub(&a.t1, &a.t2)
}

// value snapshots the accumulator into an immutable GaussianInt
func (a *gaussianAcc) value() GaussianInt {
	return GaussianInt{re: new(big.Int).Set(&a.re), im: new(big.Int).Set(&a.im)}
}
