package bcn

// BC1: two RGB565 endpoints plus 2-bit indices into a 4-color palette.

// pack565 packs 5-6-5 quantized channels into a 16-bit endpoint.
func pack565(r, g, b int32) uint32 {
	return uint32(r)<<11 | uint32(g)<<5 | uint32(b)
}

// bc1Palette expands two packed 565 endpoints into the 4-entry 8-bit
// palette: c0, c1, (2c0+c1)/3, (c0+2c1)/3.
func bc1Palette(c0, c1 uint32) [4][3]int32 {
	var pal [4][3]int32
	pal[0] = expand565(c0)
	pal[1] = expand565(c1)
	for ch := 0; ch < 3; ch++ {
		pal[2][ch] = (2*pal[0][ch] + pal[1][ch]) / 3
		pal[3][ch] = (pal[0][ch] + 2*pal[1][ch]) / 3
	}
	return pal
}

func expand565(c uint32) [3]int32 {
	r5 := int32(c>>11) & 31
	g6 := int32(c>>5) & 63
	b5 := int32(c) & 31
	return [3]int32{
		r5<<3 | r5>>2,
		g6<<2 | g6>>4,
		b5<<3 | b5>>2,
	}
}

// encodeBlockBC1 writes an 8-byte BC1 block for 16 RGBA texels in [0,1].
// Alpha is ignored; the block always encodes in 4-color mode.
func encodeBlockBC1(texels *[16][4]float32, dst []byte) {
	var px [16][3]int32
	for i := 0; i < 16; i++ {
		for ch := 0; ch < 3; ch++ {
			px[i][ch] = int32(texels[i][ch]*255 + 0.5)
		}
	}

	// Bounding box, inset by 1/16 of the extent per channel.
	lo := px[0]
	hi := px[0]
	for i := 1; i < 16; i++ {
		for ch := 0; ch < 3; ch++ {
			if px[i][ch] < lo[ch] {
				lo[ch] = px[i][ch]
			}
			if px[i][ch] > hi[ch] {
				hi[ch] = px[i][ch]
			}
		}
	}
	for ch := 0; ch < 3; ch++ {
		inset := (hi[ch] - lo[ch]) >> 4
		lo[ch] += inset
		hi[ch] -= inset
	}

	c0 := pack565(quantizeLDR(hi[0], 5), quantizeLDR(hi[1], 6), quantizeLDR(hi[2], 5))
	c1 := pack565(quantizeLDR(lo[0], 5), quantizeLDR(lo[1], 6), quantizeLDR(lo[2], 5))
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	dst[0] = byte(c0)
	dst[1] = byte(c0 >> 8)
	dst[2] = byte(c1)
	dst[3] = byte(c1 >> 8)

	if c0 == c1 {
		// Degenerate block: every texel reconstructs to c0 via index 0.
		dst[4], dst[5], dst[6], dst[7] = 0, 0, 0, 0
		return
	}

	pal := bc1Palette(c0, c1)
	var indices uint32
	for i := 0; i < 16; i++ {
		best := int32(1 << 30)
		bestIdx := uint32(0)
		for j := 0; j < 4; j++ {
			var d int32
			for ch := 0; ch < 3; ch++ {
				dc := px[i][ch] - pal[j][ch]
				d += dc * dc
			}
			if d < best {
				best = d
				bestIdx = uint32(j)
			}
		}
		indices |= bestIdx << uint(2*i)
	}
	dst[4] = byte(indices)
	dst[5] = byte(indices >> 8)
	dst[6] = byte(indices >> 16)
	dst[7] = byte(indices >> 24)
}
