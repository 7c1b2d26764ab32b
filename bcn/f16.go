package bcn

import "math"

// Half-float conversion helpers for the BC6H path. BC6H operates on the
// unsigned half bit pattern directly, so values are clamped into the
// representable UF16 range [0, 0x7BFF] on the way in.

const halfMaxUF16 = 0x7BFF // largest finite half, 65504.0

// halfFromFloatUF16 converts a float32 to an unsigned half bit pattern.
// Negative values, NaNs and anything above the finite half range clamp.
func halfFromFloatUF16(f float32) uint32 {
	if f != f || f <= 0 {
		return 0
	}
	bits := math.Float32bits(f)
	exp := int32((bits >> 23) & 0xFF)
	man := bits & 0x7FFFFF

	if exp == 0xFF {
		return halfMaxUF16 // +Inf
	}

	// Rebias from float32 to half.
	e := exp - 127 + 15
	if e >= 31 {
		return halfMaxUF16
	}
	if e <= 0 {
		// Subnormal half (or underflow to zero).
		if e < -10 {
			return 0
		}
		man |= 0x800000
		shift := uint(14 - e)
		half := man >> shift
		// Round to nearest even.
		round := uint32(1) << (shift - 1)
		if man&round != 0 && (man&(round-1) != 0 || half&1 != 0) {
			half++
		}
		return half
	}

	half := (uint32(e) << 10) | (man >> 13)
	// Round to nearest even on the 13 dropped mantissa bits.
	if man&0x1000 != 0 && (man&0xFFF != 0 || half&1 != 0) {
		half++
	}
	if half > halfMaxUF16 {
		return halfMaxUF16
	}
	return half
}

// halfToFloat32 converts a half bit pattern to float32.
func halfToFloat32(h uint32) float32 {
	sign := (h >> 15) & 1
	exp := (h >> 10) & 0x1F
	man := h & 0x3FF

	var bits uint32
	switch {
	case exp == 0 && man == 0:
		bits = sign << 31
	case exp == 0:
		// Subnormal half: normalize.
		e := uint32(127 - 15 + 1)
		for man&0x400 == 0 {
			man <<= 1
			e--
		}
		man &= 0x3FF
		bits = (sign << 31) | (e << 23) | (man << 13)
	case exp == 0x1F:
		bits = (sign << 31) | (0xFF << 23) | (man << 13)
	default:
		bits = (sign << 31) | ((exp + 127 - 15) << 23) | (man << 13)
	}
	return math.Float32frombits(bits)
}
