package bcn

// BC4: one channel, two 8-bit endpoints plus 3-bit indices into an 8-level
// palette. BC5 is two independent BC4 blocks over R and G.

// bc4Palette builds the 8-entry palette for endpoints stored ep0 > ep1,
// which selects the fully interpolated palette variant.
func bc4Palette(ep0, ep1 int32) [8]int32 {
	var pal [8]int32
	pal[0] = ep0
	pal[1] = ep1
	for k := int32(1); k <= 6; k++ {
		pal[k+1] = ((7-k)*ep0 + k*ep1 + 3) / 7
	}
	return pal
}

// encodeBlockBC4 writes an 8-byte BC4 block for channel ch of 16 texels.
func encodeBlockBC4(texels *[16][4]float32, ch int, dst []byte) {
	var px [16]int32
	lo, hi := int32(255), int32(0)
	for i := 0; i < 16; i++ {
		v := int32(texels[i][ch]*255 + 0.5)
		px[i] = v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// A flat block would make an 8-level palette of one value; nudge an
	// endpoint so the interpolated palette stays well formed.
	if lo == hi {
		if hi < 255 {
			hi++
		} else {
			lo--
		}
	}

	ep0, ep1 := hi, lo // ep0 > ep1 selects the 8-level variant
	dst[0] = byte(ep0)
	dst[1] = byte(ep1)

	pal := bc4Palette(ep0, ep1)
	var bits uint64
	for i := 0; i < 16; i++ {
		best := int32(1 << 30)
		bestIdx := uint64(0)
		for j := 0; j < 8; j++ {
			d := px[i] - pal[j]
			if d < 0 {
				d = -d
			}
			if d < best {
				best = d
				bestIdx = uint64(j)
			}
		}
		bits |= bestIdx << uint(3*i)
	}
	for b := 0; b < 6; b++ {
		dst[2+b] = byte(bits >> uint(8*b))
	}
}

// encodeBlockBC5 writes a 16-byte BC5 block: a BC4 red block followed by a
// BC4 green block.
func encodeBlockBC5(texels *[16][4]float32, dst []byte) {
	encodeBlockBC4(texels, 0, dst[0:8])
	encodeBlockBC4(texels, 1, dst[8:16])
}
