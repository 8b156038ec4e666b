package scalar

import (
	"errors"
	"math/bits"
)

// MaxLimbs bounds the width of values handled here. Constant bit patterns never
// exceed 128 bits, so anything larger is a malformed input.
const MaxLimbs = 8

var (
	// ErrMaxLimbs indicates the numeric size limit was exceeded.
	ErrMaxLimbs = errors.New("scalar: value wider than supported")
	// ErrDivByZero indicates an attempt to divide by zero.
	ErrDivByZero = errors.New("scalar: division by zero")
	ErrUnderflow = errors.New("scalar: unsigned underflow")
)

// Uint is an unsigned integer of arbitrary (bounded) width.
type Uint struct {
	// Limbs are base-2^32 little-endian (Limbs[0] is least significant).
	//
	// Canonical zero is represented as nil/empty slice.
	Limbs []uint32
}

// UintFromUint64 creates a Uint from a uint64.
func UintFromUint64(v uint64) Uint {
	if v == 0 {
		return Uint{}
	}
	lo := uint32(v)       //nolint:gosec // G115: truncation is intentional (low limb).
	hi := uint32(v >> 32) //nolint:gosec // G115: truncation is intentional (high limb).
	if hi == 0 {
		return Uint{Limbs: []uint32{lo}}
	}
	return Uint{Limbs: []uint32{lo, hi}}
}

// IsZero reports whether the value is zero.
func (u Uint) IsZero() bool {
	return len(trimLimbs(u.Limbs)) == 0
}

// BitLen returns the number of significant bits.
func (u Uint) BitLen() int {
	return bitLenLimbs(u.Limbs)
}

// Bit reports whether bit i (0 = least significant) is set.
func (u Uint) Bit(i int) bool {
	if i < 0 {
		return false
	}
	limbs := trimLimbs(u.Limbs)
	w := i / 32
	if w >= len(limbs) {
		return false
	}
	return limbs[w]&(uint32(1)<<(i%32)) != 0
}

// Cmp compares two Uint values.
func (u Uint) Cmp(v Uint) int {
	return cmpLimbs(u.Limbs, v.Limbs)
}

// Uint64 converts to uint64 if the value fits.
func (u Uint) Uint64() (uint64, bool) {
	limbs := trimLimbs(u.Limbs)
	switch len(limbs) {
	case 0:
		return 0, true
	case 1:
		return uint64(limbs[0]), true
	case 2:
		return uint64(limbs[0]) | (uint64(limbs[1]) << 32), true
	default:
		return 0, false
	}
}

// Truncate keeps only the low n bits.
func (u Uint) Truncate(n int) Uint {
	limbs := trimLimbs(u.Limbs)
	if n <= 0 || len(limbs) == 0 {
		return Uint{}
	}
	words := (n + 31) / 32
	if words > len(limbs) {
		return Uint{Limbs: limbs}
	}
	out := make([]uint32, words)
	copy(out, limbs[:words])
	if rem := n % 32; rem != 0 {
		out[words-1] &= uint32(1)<<rem - 1
	}
	return Uint{Limbs: trimLimbs(out)}
}

// Pow2 returns 2^n.
func Pow2(n int) (Uint, error) {
	if n < 0 {
		return Uint{}, errors.New("scalar: negative exponent")
	}
	if n/32+1 > MaxLimbs {
		return Uint{}, ErrMaxLimbs
	}
	out := make([]uint32, n/32+1)
	out[n/32] = uint32(1) << (n % 32)
	return Uint{Limbs: out}, nil
}

// UintAddSmall adds a uint32 to a Uint.
func UintAddSmall(u Uint, v uint32) (Uint, error) {
	if v == 0 {
		return Uint{Limbs: trimLimbs(u.Limbs)}, nil
	}
	limbs := trimLimbs(u.Limbs)
	if len(limbs) == 0 {
		return Uint{Limbs: []uint32{v}}, nil
	}
	out := make([]uint32, len(limbs)+1)
	copy(out, limbs)

	var carry uint64
	sum := uint64(out[0]) + uint64(v)
	out[0] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
	carry = sum >> 32
	for i := 1; carry != 0 && i < len(out); i++ {
		sum = uint64(out[i]) + carry
		out[i] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = sum >> 32
	}
	out = trimLimbs(out)
	if len(out) > MaxLimbs {
		return Uint{}, ErrMaxLimbs
	}
	return Uint{Limbs: out}, nil
}

// UintSub subtracts b from a.
func UintSub(a, b Uint) (Uint, error) {
	if cmpLimbs(a.Limbs, b.Limbs) < 0 {
		return Uint{}, ErrUnderflow
	}
	al := trimLimbs(a.Limbs)
	bl := trimLimbs(b.Limbs)
	if len(bl) == 0 {
		return Uint{Limbs: al}, nil
	}
	out := make([]uint32, len(al))
	copy(out, al)
	subInPlace(out, bl)
	out = trimLimbs(out)
	return Uint{Limbs: out}, nil
}

// UintMulSmall multiplies a Uint by a uint32.
func UintMulSmall(u Uint, m uint32) (Uint, error) {
	if m == 0 || u.IsZero() {
		return Uint{}, nil
	}
	if m == 1 {
		return Uint{Limbs: trimLimbs(u.Limbs)}, nil
	}
	limbs := trimLimbs(u.Limbs)
	out := make([]uint32, len(limbs)+1)
	var carry uint64
	for i := range limbs {
		prod := uint64(limbs[i])*uint64(m) + carry
		out[i] = uint32(prod) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = prod >> 32
	}
	out[len(limbs)] = uint32(carry) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
	out = trimLimbs(out)
	if len(out) > MaxLimbs {
		return Uint{}, ErrMaxLimbs
	}
	return Uint{Limbs: out}, nil
}

// UintDivModSmall divides a Uint by a uint32 and returns quotient and remainder.
func UintDivModSmall(u Uint, d uint32) (q Uint, r uint32, err error) {
	if d == 0 {
		return Uint{}, 0, ErrDivByZero
	}
	limbs := trimLimbs(u.Limbs)
	if len(limbs) == 0 {
		return Uint{}, 0, nil
	}

	out := make([]uint32, len(limbs))
	var rem uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		cur := (rem << 32) | uint64(limbs[i])
		out[i] = uint32(cur / uint64(d)) //nolint:gosec // G115: quotient fits in uint32.
		rem = cur % uint64(d)
	}
	out = trimLimbs(out)
	return Uint{Limbs: out}, uint32(rem), nil //nolint:gosec // G115: remainder fits in uint32.
}

func trimLimbs(limbs []uint32) []uint32 {
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	if len(limbs) == 0 {
		return nil
	}
	return limbs
}

func bitLenLimbs(limbs []uint32) int {
	limbs = trimLimbs(limbs)
	if len(limbs) == 0 {
		return 0
	}
	ms := limbs[len(limbs)-1]
	return (len(limbs)-1)*32 + (32 - bits.LeadingZeros32(ms))
}

func cmpLimbs(a, b []uint32) int {
	a = trimLimbs(a)
	b = trimLimbs(b)
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func subInPlace(dst, sub []uint32) {
	var borrow uint64
	for i := 0; i < len(dst); i++ {
		av := uint64(dst[i])
		bv := uint64(0)
		if i < len(sub) {
			bv = uint64(sub[i])
		}
		tmp := av - bv - borrow
		dst[i] = uint32(tmp) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		if av < bv+borrow {
			borrow = 1
		} else {
			borrow = 0
		}
	}
}
