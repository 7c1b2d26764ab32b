package bcn

// Bit-granular field access into an 8 or 16 byte compressed block.
//
// Every BCn format scatters fields at fixed absolute bit offsets, so all
// packing in this package funnels through writeBits with a per-mode field
// description rather than bespoke shift chains.

// writeBits stores the low bitCount bits of value at an absolute bit offset,
// splitting across byte boundaries as needed. Fields up to 16 bits wide are
// supported, which covers every BCn field.
func writeBits(dst []byte, bitOffset, bitCount int, value uint32) {
	if bitCount <= 0 {
		return
	}
	mask := (uint32(1) << uint(bitCount)) - 1
	value &= mask

	byteOff := bitOffset >> 3
	shift := uint(bitOffset & 7)
	value <<= shift
	mask <<= shift

	for mask != 0 {
		if byteOff < len(dst) {
			dst[byteOff] = (dst[byteOff] &^ byte(mask)) | byte(value)
		}
		byteOff++
		mask >>= 8
		value >>= 8
	}
}

// readBits extracts a bitCount-wide field from an absolute bit offset.
func readBits(src []byte, bitOffset, bitCount int) uint32 {
	if bitCount <= 0 {
		return 0
	}
	mask := (uint32(1) << uint(bitCount)) - 1

	byteOff := bitOffset >> 3
	shift := uint(bitOffset & 7)

	var v uint32
	for i := 0; i < 4 && byteOff+i < len(src); i++ {
		v |= uint32(src[byteOff+i]) << (8 * uint(i))
	}
	return (v >> shift) & mask
}
