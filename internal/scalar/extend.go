package scalar

import "fmt"

// SignExtend interprets the low size*8 bits of raw as a two's complement value.
// Values whose sign bit (size*8-1) is clear come back unchanged and non-negative.
func SignExtend(raw Uint, size int) (Int, error) {
	if size <= 0 {
		return Int{}, nil
	}
	width := size * 8
	if raw.BitLen() > width {
		return Int{}, fmt.Errorf("scalar: %d-bit pattern does not fit in %d bytes", raw.BitLen(), size)
	}
	if !raw.Bit(width - 1) {
		return Int{Limbs: trimLimbs(raw.Limbs)}, nil
	}
	modulus, err := Pow2(width)
	if err != nil {
		return Int{}, err
	}
	mag, err := UintSub(modulus, raw)
	if err != nil {
		return Int{}, err
	}
	return Int{Neg: true, Limbs: mag.Limbs}, nil
}
