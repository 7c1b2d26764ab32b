package bcn

// Reference decoders used to verify the packing contract. These exist only
// for tests; the library itself never decodes blocks.

func decodeBlockBC1(blk []byte) [16][4]int32 {
	c0 := uint32(blk[0]) | uint32(blk[1])<<8
	c1 := uint32(blk[2]) | uint32(blk[3])<<8
	pal := bc1Palette(c0, c1)
	indices := uint32(blk[4]) | uint32(blk[5])<<8 | uint32(blk[6])<<16 | uint32(blk[7])<<24

	var out [16][4]int32
	for i := 0; i < 16; i++ {
		j := (indices >> uint(2*i)) & 3
		for ch := 0; ch < 3; ch++ {
			out[i][ch] = pal[j][ch]
		}
		out[i][3] = 255
	}
	return out
}

func decodeBlockBC4(blk []byte) [16]int32 {
	pal := bc4Palette(int32(blk[0]), int32(blk[1]))
	var bits uint64
	for b := 0; b < 6; b++ {
		bits |= uint64(blk[2+b]) << uint(8*b)
	}

	var out [16]int32
	for i := 0; i < 16; i++ {
		out[i] = pal[(bits>>uint(3*i))&7]
	}
	return out
}

func decodeBlockBC7(blk []byte) [16][4]int32 {
	mode := 0
	for readBits(blk, mode, 1) == 0 {
		mode++
	}
	mi := &bc7Modes[mode]
	off := mode + 1

	partition := int(readBits(blk, off, mi.partitionBits))
	off += mi.partitionBits
	rotation := int(readBits(blk, off, mi.rotationBits))
	off += mi.rotationBits
	indexMode := int(readBits(blk, off, mi.indexModeBits))
	off += mi.indexModeBits

	pbitCount := 0
	if mi.pMode != bc7PNone {
		pbitCount = 1
	}

	// Stored endpoint fields, channel-major.
	var stored [3][2][4]int32
	for ch := 0; ch < 4; ch++ {
		w := mi.colorBits
		if ch == 3 {
			w = mi.alphaBits
		}
		if w == 0 {
			continue
		}
		for s := 0; s < mi.subsets; s++ {
			for e := 0; e < 2; e++ {
				stored[s][e][ch] = int32(readBits(blk, off, w))
				off += w
			}
		}
	}

	var pbits [3][2]int32
	switch mi.pMode {
	case bc7PPerEndpoint:
		for s := 0; s < mi.subsets; s++ {
			for e := 0; e < 2; e++ {
				pbits[s][e] = int32(readBits(blk, off, 1))
				off++
			}
		}
	case bc7PShared:
		for s := 0; s < mi.subsets; s++ {
			pbits[s][0] = int32(readBits(blk, off, 1))
			pbits[s][1] = pbits[s][0]
			off++
		}
	}

	// Unquantize. The alpha endpoints of the dual-stream modes carry no
	// parity bit even when the mode has one (those modes have none anyway).
	var unq [3][2][4]int32
	for s := 0; s < mi.subsets; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 4; ch++ {
				w := mi.colorBits
				if ch == 3 {
					w = mi.alphaBits
				}
				if w == 0 {
					continue
				}
				total := w + pbitCount
				q := stored[s][e][ch]<<uint(pbitCount) | pbits[s][e]
				unq[s][e][ch] = unquantizeLDR(q, total)
			}
		}
	}

	colorIdxBits := mi.indexBits
	alphaIdxBits := mi.index2Bits
	if indexMode != 0 {
		colorIdxBits, alphaIdxBits = alphaIdxBits, colorIdxBits
	}

	readStream := func(width int, anchored func(i int) bool) [16]int32 {
		var idx [16]int32
		for i := 0; i < 16; i++ {
			w := width
			if anchored(i) {
				w--
			}
			idx[i] = int32(readBits(blk, off, w))
			off += w
		}
		return idx
	}
	colorAnchor := func(i int) bool {
		return i == anchorTexel(mi.subsets, partition, bc7SubsetOf(mi, partition, i))
	}
	zeroAnchor := func(i int) bool { return i == 0 }

	var cidx, aidx [16]int32
	if mi.index2Bits == 0 {
		cidx = readStream(colorIdxBits, colorAnchor)
	} else if indexMode == 0 {
		cidx = readStream(mi.indexBits, zeroAnchor)
		aidx = readStream(mi.index2Bits, zeroAnchor)
	} else {
		aidx = readStream(mi.indexBits, zeroAnchor)
		cidx = readStream(mi.index2Bits, zeroAnchor)
	}

	cw := weightsFor(colorIdxBits)
	var out [16][4]int32
	for i := 0; i < 16; i++ {
		s := bc7SubsetOf(mi, partition, i)
		w := cw[cidx[i]]
		for ch := 0; ch < 3; ch++ {
			out[i][ch] = interpolate(unq[s][0][ch], unq[s][1][ch], w)
		}
		switch {
		case mi.index2Bits > 0:
			aw := weightsFor(alphaIdxBits)
			out[i][3] = interpolate(unq[s][0][3], unq[s][1][3], aw[aidx[i]])
		case mi.alphaBits > 0:
			out[i][3] = interpolate(unq[s][0][3], unq[s][1][3], w)
		default:
			out[i][3] = 255
		}
	}

	if rotation != 0 {
		c := rotation - 1
		for i := range out {
			out[i][c], out[i][3] = out[i][3], out[i][c]
		}
	}
	return out
}

func bc6hModeOfBlock(blk []byte) *bc6hModeInfo {
	value := readBits(blk, 0, 2)
	if value >= 2 {
		value = readBits(blk, 0, 5)
	}
	for m := range bc6hModes {
		if uint32(bc6hModes[m].value) == value {
			return &bc6hModes[m]
		}
	}
	return nil
}

func decodeBlockBC6H(blk []byte) [16][3]float32 {
	mi := bc6hModeOfBlock(blk)
	epBits := int(mi.epBits)

	var fields [4][3]uint32
	var partition uint32
	off := 0
	for _, sg := range mi.layout {
		v := readBits(blk, off, int(sg.count))
		off += int(sg.count)
		switch sg.field {
		case bfM:
			// Mode value, already known.
		case bfD:
			partition |= v << sg.low
		default:
			ch, e := bc6hFieldTarget(sg.field)
			fields[e][ch] |= v << sg.low
		}
	}

	subsets := int(mi.subsets)
	if mi.transformed {
		for e := 1; e < 2*subsets; e++ {
			for ch := 0; ch < 3; ch++ {
				db := int(mi.deltaBits[ch])
				d := int32(fields[e][ch])
				if d&(1<<uint(db-1)) != 0 {
					d -= 1 << uint(db)
				}
				mask := uint32(1)<<uint(epBits) - 1
				fields[e][ch] = uint32(int32(fields[0][ch])+d) & mask
			}
		}
	}

	idxBits := 4
	if subsets == 2 {
		idxBits = 3
	}
	weightsT := weightsFor(idxBits)

	var idx [16]int32
	for i := 0; i < 16; i++ {
		w := idxBits
		if i == 0 || (subsets == 2 && i == int(anchors2[partition])) {
			w--
		}
		idx[i] = int32(readBits(blk, off, w))
		off += w
	}

	var out [16][3]float32
	for i := 0; i < 16; i++ {
		e := 0
		if subsets == 2 && subset2Of(int(partition), i) == 1 {
			e = 2
		}
		for ch := 0; ch < 3; ch++ {
			lo := int32(unquantizeHDR(fields[e][ch], epBits))
			hi := int32(unquantizeHDR(fields[e+1][ch], epBits))
			v := interpolate(lo, hi, weightsT[idx[i]])
			out[i][ch] = halfToFloat32(finishUnquantizeHDR(uint32(v)))
		}
	}
	return out
}
