package scalar

import (
	"errors"
	"fmt"
	"strings"
)

var ErrParse = errors.New("scalar: invalid numeric format")

// ParseUintLiteral parses a decimal, 0x, 0o or 0b literal. Underscores are ignored.
func ParseUintLiteral(s string) (Uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Uint{}, ErrParse
	}

	if strings.IndexByte(s, '_') >= 0 {
		s = strings.ReplaceAll(s, "_", "")
	}

	base := uint32(10)
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
			s = s[2:]
		case 'b', 'B':
			base = 2
			s = s[2:]
		case 'o', 'O':
			base = 8
			s = s[2:]
		default:
		}
	}
	if s == "" {
		return Uint{}, ErrParse
	}

	var out Uint
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i], base)
		if !ok {
			return Uint{}, fmt.Errorf("%w: %q", ErrParse, s)
		}
		var err error
		out, err = UintMulSmall(out, base)
		if err != nil {
			return Uint{}, err
		}
		out, err = UintAddSmall(out, d)
		if err != nil {
			return Uint{}, err
		}
	}
	return out, nil
}

// ParseIntLiteral parses an optionally signed literal and returns its two's
// complement bit pattern truncated to size bytes.
func ParseIntLiteral(s string, size int) (Uint, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	mag, err := ParseUintLiteral(s)
	if err != nil {
		return Uint{}, err
	}
	if !neg || mag.IsZero() {
		if size > 0 && mag.BitLen() > size*8 {
			return Uint{}, fmt.Errorf("scalar: %s does not fit in %d bytes", FormatUint(mag), size)
		}
		return mag, nil
	}
	modulus, err := Pow2(size * 8)
	if err != nil {
		return Uint{}, err
	}
	if mag.Cmp(modulus) > 0 {
		return Uint{}, fmt.Errorf("scalar: -%s does not fit in %d bytes", FormatUint(mag), size)
	}
	out, err := UintSub(modulus, mag)
	if err != nil {
		return Uint{}, err
	}
	return out.Truncate(size * 8), nil
}

func digitValue(ch byte, base uint32) (uint32, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		d := uint32(ch - '0')
		return d, d < base
	case base == 16 && ch >= 'a' && ch <= 'f':
		return 10 + uint32(ch-'a'), true
	case base == 16 && ch >= 'A' && ch <= 'F':
		return 10 + uint32(ch-'A'), true
	default:
		return 0, false
	}
}
