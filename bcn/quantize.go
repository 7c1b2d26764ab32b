package bcn

// Endpoint quantization and palette interpolation shared by every format.
//
// LDR channels live in [0,255]; quantization expands to 16 bits, rounds and
// truncates, and unquantization replicates high bits so that 0 and the field
// maximum map exactly to 0 and 255. The HDR (BC6H) variants scale the 16-bit
// half bit pattern linearly, again with exact mappings at the range ends.

// quantizeLDR maps an 8-bit channel value down to a bits-wide field.
func quantizeLDR(v int32, bits int) int32 {
	return int32((uint32(v)*257*((1<<uint(bits))-1) + 32768) >> 16)
}

// unquantizeLDR expands a bits-wide field back to 8 bits by bit replication.
func unquantizeLDR(q int32, bits int) int32 {
	u := uint32(q) << uint(8-bits)
	return int32(u | (u >> uint(bits)))
}

// startQuantizeHDR rescales an unsigned half bit pattern into the work
// domain [0, 0xFFFF] that finishUnquantizeHDR maps back after interpolation.
func startQuantizeHDR(h uint32) uint32 {
	return (h << 6) / 31
}

// quantizeHDR maps a work-domain value down to a bits-wide field.
func quantizeHDR(h uint32, bits int) uint32 {
	return (h << uint(bits)) >> 16
}

// unquantizeHDR is the shift-based near-inverse of quantizeHDR.
func unquantizeHDR(q uint32, bits int) uint32 {
	if bits >= 15 {
		return q
	}
	switch q {
	case 0:
		return 0
	case (1 << uint(bits)) - 1:
		return 0xFFFF
	}
	return ((q << 16) + 0x8000) >> uint(bits)
}

// finishUnquantizeHDR rescales an interpolated unquantized value into the
// unsigned half domain.
func finishUnquantizeHDR(v uint32) uint32 {
	return (v * 31) >> 6
}

// interpolate blends two endpoint channel values with a 0..64 weight.
func interpolate(lo, hi int32, w int32) int32 {
	return (lo*(64-w) + hi*w + 32) >> 6
}

// projectionFraction maps a texel's position along the endpoint axis to the
// 6-bit fixed-point fraction consumed by the index step tables. dotAxis is
// dot(texel-lo, hi-lo) and lenSq is dot(hi-lo, hi-lo), both in float32 so the
// reference tie-breaks survive.
func projectionFraction(dotAxis, lenSq float32) int {
	if lenSq <= 0 {
		return 0
	}
	f := int(dotAxis*63.49999/lenSq + 0.5)
	if f < 0 {
		return 0
	}
	if f > 63 {
		return 63
	}
	return f
}
