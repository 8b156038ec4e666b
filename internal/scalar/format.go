package scalar

import (
	"fmt"
	"strings"
)

// FormatUint renders u in decimal.
func FormatUint(u Uint) string {
	limbs := trimLimbs(u.Limbs)
	if len(limbs) == 0 {
		return "0"
	}

	const base = uint32(1_000_000_000)

	cur := Uint{Limbs: limbs}
	var parts []uint32
	for !cur.IsZero() {
		q, r, err := UintDivModSmall(cur, base)
		if err != nil {
			return "<format-error>"
		}
		parts = append(parts, r)
		cur = q
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d", parts[len(parts)-1]))
	for i := len(parts) - 2; i >= 0; i-- {
		sb.WriteString(fmt.Sprintf("%09d", parts[i]))
	}
	return sb.String()
}

// FormatInt renders i in decimal with a leading '-' when negative.
func FormatInt(i Int) string {
	limbs := trimLimbs(i.Limbs)
	if len(limbs) == 0 {
		return "0"
	}
	s := FormatUint(Uint{Limbs: limbs})
	if i.Neg {
		return "-" + s
	}
	return s
}

// String implements fmt.Stringer.
func (u Uint) String() string { return FormatUint(u) }

// String implements fmt.Stringer.
func (i Int) String() string { return FormatInt(i) }
