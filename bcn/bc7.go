package bcn

// BC7: 8 modes over LDR RGBA. Every mode follows the same pipeline: derive
// per-subset bounding-box endpoints, quantize (brute-forcing any parity
// bits), assign indices along the endpoint axis, apply the anchor fixup and
// pack. The quality tier selects which (mode, partition, rotation, index
// mode) candidates are attempted; the best candidate by reconstruction error
// wins.

type bc7PBitMode uint8

const (
	bc7PNone bc7PBitMode = iota
	bc7PShared
	bc7PPerEndpoint
)

type bc7ModeInfo struct {
	partitionBits int
	subsets       int
	rotationBits  int
	indexModeBits int
	colorBits     int // stored bits per color channel endpoint
	alphaBits     int // stored bits per alpha endpoint, 0 for opaque modes
	pMode         bc7PBitMode
	indexBits     int // first index stream width
	index2Bits    int // second index stream width (modes 4 and 5 only)
}

var bc7Modes = [8]bc7ModeInfo{
	{partitionBits: 4, subsets: 3, colorBits: 4, pMode: bc7PPerEndpoint, indexBits: 3},
	{partitionBits: 6, subsets: 2, colorBits: 6, pMode: bc7PShared, indexBits: 3},
	{partitionBits: 6, subsets: 3, colorBits: 5, indexBits: 2},
	{partitionBits: 6, subsets: 2, colorBits: 7, pMode: bc7PPerEndpoint, indexBits: 2},
	{rotationBits: 2, indexModeBits: 1, subsets: 1, colorBits: 5, alphaBits: 6, indexBits: 2, index2Bits: 3},
	{rotationBits: 2, subsets: 1, colorBits: 7, alphaBits: 8, indexBits: 2, index2Bits: 2},
	{subsets: 1, colorBits: 7, alphaBits: 7, pMode: bc7PPerEndpoint, indexBits: 4},
	{partitionBits: 6, subsets: 2, colorBits: 5, alphaBits: 5, pMode: bc7PPerEndpoint, indexBits: 2},
}

// bc7Trial is one candidate in the quality-gated search.
type bc7Trial struct {
	mode      uint8
	partition uint8
	rotation  uint8
	indexMode uint8
}

var bc7ParityCombos = [3][][2]int32{
	bc7PNone:        {{0, 0}},
	bc7PShared:      {{0, 0}, {1, 1}},
	bc7PPerEndpoint: {{0, 0}, {0, 1}, {1, 0}, {1, 1}},
}

func bc7SubsetOf(mi *bc7ModeInfo, partition, texel int) int {
	switch mi.subsets {
	case 2:
		return subset2Of(partition, texel)
	case 3:
		return subset3Of(partition, texel)
	default:
		return 0
	}
}

// hasVectorAlpha reports whether alpha rides in the color palette (modes 6
// and 7) rather than in a separate scalar index stream (modes 4 and 5).
func (mi *bc7ModeInfo) hasVectorAlpha() bool {
	return mi.alphaBits > 0 && mi.index2Bits == 0
}

func encodeBlockBC7(texels *[16][4]float32, quality Quality, dst []byte) {
	blk, _ := bc7EncodeBest(texels, quality)
	copy(dst, blk[:])
}

// bc7EncodeBest folds the quality tier's candidate list down to the
// lowest-error packed block.
func bc7EncodeBest(texels *[16][4]float32, quality Quality) ([16]byte, uint32) {
	var src [16][4]int32
	for i := 0; i < 16; i++ {
		for ch := 0; ch < 4; ch++ {
			src[i][ch] = int32(texels[i][ch]*255 + 0.5)
		}
	}

	var best [16]byte
	bestErr := ^uint32(0)
	for _, tr := range bc7TrialsForQuality(quality) {
		blk, e := bc7EncodeTrial(tr, &src)
		if e < bestErr {
			best, bestErr = blk, e
		}
	}
	return best, bestErr
}

// bc7QuantizeParity quantizes an 8-bit value to totalBits with the low bit
// forced to p, picking whichever neighbor reconstructs closer.
func bc7QuantizeParity(v int32, totalBits int, p int32) int32 {
	q := quantizeLDR(v, totalBits)
	if q&1 == p {
		return q
	}
	maxQ := int32(1)<<uint(totalBits) - 1
	qlo, qhi := q-1, q+1
	if qlo < 0 {
		return qhi
	}
	if qhi > maxQ {
		return qlo
	}
	dlo := v - unquantizeLDR(qlo, totalBits)
	if dlo < 0 {
		dlo = -dlo
	}
	dhi := unquantizeLDR(qhi, totalBits) - v
	if dhi < 0 {
		dhi = -dhi
	}
	if dhi < dlo {
		return qhi
	}
	return qlo
}

// bc7EncodeTrial encodes one candidate and returns the packed block and its
// summed squared reconstruction error in 8-bit space.
func bc7EncodeTrial(tr bc7Trial, src *[16][4]int32) ([16]byte, uint32) {
	mi := &bc7Modes[tr.mode]

	px := *src
	if tr.rotation != 0 {
		c := int(tr.rotation) - 1
		for i := range px {
			px[i][c], px[i][3] = px[i][3], px[i][c]
		}
	}

	vecChannels := 3
	if mi.hasVectorAlpha() {
		vecChannels = 4
	}

	colorIdxBits := mi.indexBits
	alphaIdxBits := mi.index2Bits
	if tr.indexMode != 0 {
		colorIdxBits, alphaIdxBits = alphaIdxBits, colorIdxBits
	}

	pbitCount := 0
	if mi.pMode != bc7PNone {
		pbitCount = 1
	}

	var qep [3][2][4]int32 // quantized endpoints including any parity bit
	var pbits [3][2]int32
	var cidx [16]int32
	var totalErr uint32

	part := int(tr.partition)
	for s := 0; s < mi.subsets; s++ {
		var members [16]int
		n := 0
		for i := 0; i < 16; i++ {
			if bc7SubsetOf(mi, part, i) == s {
				members[n] = i
				n++
			}
		}

		// Bounding box with 1/16 inset.
		var lo, hi [4]int32
		for ch := 0; ch < vecChannels; ch++ {
			lo[ch], hi[ch] = 255, 0
		}
		for k := 0; k < n; k++ {
			p := &px[members[k]]
			for ch := 0; ch < vecChannels; ch++ {
				if p[ch] < lo[ch] {
					lo[ch] = p[ch]
				}
				if p[ch] > hi[ch] {
					hi[ch] = p[ch]
				}
			}
		}
		for ch := 0; ch < vecChannels; ch++ {
			inset := (hi[ch] - lo[ch]) >> 4
			lo[ch] += inset
			hi[ch] -= inset
		}

		weightsT := weightsFor(colorIdxBits)
		stepsT := stepsFor(colorIdxBits)
		palN := 1 << uint(colorIdxBits)

		subsetBest := ^uint32(0)
		for _, pc := range bc7ParityCombos[mi.pMode] {
			var q, unq [2][4]int32
			for e := 0; e < 2; e++ {
				ep := &lo
				if e == 1 {
					ep = &hi
				}
				for ch := 0; ch < vecChannels; ch++ {
					w := mi.colorBits
					if ch == 3 {
						w = mi.alphaBits
					}
					total := w + pbitCount
					if pbitCount != 0 {
						q[e][ch] = bc7QuantizeParity(ep[ch], total, pc[e])
					} else {
						q[e][ch] = quantizeLDR(ep[ch], total)
					}
					unq[e][ch] = unquantizeLDR(q[e][ch], total)
				}
			}

			var pal [16][4]int32
			for j := 0; j < palN; j++ {
				w := weightsT[j]
				for ch := 0; ch < vecChannels; ch++ {
					pal[j][ch] = interpolate(unq[0][ch], unq[1][ch], w)
				}
			}

			var dir [4]float32
			var lenSq float32
			for ch := 0; ch < vecChannels; ch++ {
				dir[ch] = float32(unq[1][ch] - unq[0][ch])
				lenSq += dir[ch] * dir[ch]
			}

			var idx [16]int32
			var e uint32
			for k := 0; k < n; k++ {
				p := &px[members[k]]
				var dot float32
				for ch := 0; ch < vecChannels; ch++ {
					dot += float32(p[ch]-unq[0][ch]) * dir[ch]
				}
				j := int32(stepsT[projectionFraction(dot, lenSq)])
				idx[members[k]] = j
				for ch := 0; ch < vecChannels; ch++ {
					d := p[ch] - pal[j][ch]
					e += uint32(d * d)
				}
			}

			if e < subsetBest {
				subsetBest = e
				qep[s][0] = q[0]
				qep[s][1] = q[1]
				pbits[s][0] = pc[0]
				pbits[s][1] = pc[1]
				for k := 0; k < n; k++ {
					cidx[members[k]] = idx[members[k]]
				}
			}
		}
		totalErr += subsetBest
	}

	// Scalar alpha stream for modes 4 and 5.
	var aq [2]int32
	var aidx [16]int32
	if mi.index2Bits > 0 {
		aLo, aHi := int32(255), int32(0)
		for i := 0; i < 16; i++ {
			if px[i][3] < aLo {
				aLo = px[i][3]
			}
			if px[i][3] > aHi {
				aHi = px[i][3]
			}
		}
		aq[0] = quantizeLDR(aLo, mi.alphaBits)
		aq[1] = quantizeLDR(aHi, mi.alphaBits)
		unq0 := unquantizeLDR(aq[0], mi.alphaBits)
		unq1 := unquantizeLDR(aq[1], mi.alphaBits)

		weightsT := weightsFor(alphaIdxBits)
		stepsT := stepsFor(alphaIdxBits)
		dir := float32(unq1 - unq0)
		lenSq := dir * dir
		for i := 0; i < 16; i++ {
			dot := float32(px[i][3]-unq0) * dir
			j := int32(stepsT[projectionFraction(dot, lenSq)])
			aidx[i] = j
			d := px[i][3] - interpolate(unq0, unq1, weightsT[j])
			totalErr += uint32(d * d)
		}
	} else if mi.alphaBits == 0 {
		// Opaque modes decode alpha as 255; charge the mismatch so
		// cross-mode comparison stays fair.
		for i := 0; i < 16; i++ {
			d := 255 - px[i][3]
			totalErr += uint32(d * d)
		}
	}

	// Anchor fixup: an anchor index with its top bit set flips the subset's
	// endpoint order and complements every index in the subset.
	maxIdx := int32(1)<<uint(colorIdxBits) - 1
	for s := 0; s < mi.subsets; s++ {
		a := anchorTexel(mi.subsets, part, s)
		if cidx[a]>>uint(colorIdxBits-1) != 0 {
			qep[s][0], qep[s][1] = qep[s][1], qep[s][0]
			pbits[s][0], pbits[s][1] = pbits[s][1], pbits[s][0]
			for i := 0; i < 16; i++ {
				if bc7SubsetOf(mi, part, i) == s {
					cidx[i] = maxIdx - cidx[i]
				}
			}
		}
	}
	if mi.index2Bits > 0 && aidx[0]>>uint(alphaIdxBits-1) != 0 {
		aq[0], aq[1] = aq[1], aq[0]
		maxA := int32(1)<<uint(alphaIdxBits) - 1
		for i := 0; i < 16; i++ {
			aidx[i] = maxA - aidx[i]
		}
	}

	blk := bc7Pack(mi, tr, &qep, &pbits, &aq, &cidx, &aidx, colorIdxBits, alphaIdxBits)
	return blk, totalErr
}

func bc7Pack(mi *bc7ModeInfo, tr bc7Trial, qep *[3][2][4]int32, pbits *[3][2]int32,
	aq *[2]int32, cidx, aidx *[16]int32, colorIdxBits, alphaIdxBits int) [16]byte {

	var blk [16]byte
	off := 0

	// Mode m is encoded as m zero bits followed by a one.
	writeBits(blk[:], off, int(tr.mode)+1, 1<<uint(tr.mode))
	off += int(tr.mode) + 1
	writeBits(blk[:], off, mi.partitionBits, uint32(tr.partition))
	off += mi.partitionBits
	writeBits(blk[:], off, mi.rotationBits, uint32(tr.rotation))
	off += mi.rotationBits
	writeBits(blk[:], off, mi.indexModeBits, uint32(tr.indexMode))
	off += mi.indexModeBits

	pbitCount := 0
	if mi.pMode != bc7PNone {
		pbitCount = 1
	}

	// Endpoints, channel-major: all R fields, then G, B, A.
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
				var v int32
				if ch == 3 && mi.index2Bits > 0 {
					v = aq[e]
				} else {
					v = qep[s][e][ch] >> uint(pbitCount)
				}
				writeBits(blk[:], off, w, uint32(v))
				off += w
			}
		}
	}

	switch mi.pMode {
	case bc7PPerEndpoint:
		for s := 0; s < mi.subsets; s++ {
			for e := 0; e < 2; e++ {
				writeBits(blk[:], off, 1, uint32(pbits[s][e]))
				off++
			}
		}
	case bc7PShared:
		for s := 0; s < mi.subsets; s++ {
			writeBits(blk[:], off, 1, uint32(pbits[s][0]))
			off++
		}
	}

	// Index streams. Stream 1 always has width indexBits; with indexMode set
	// the color and alpha indices trade places between the streams.
	part := int(tr.partition)
	writeStream := func(idx *[16]int32, width int, anchored func(i int) bool) {
		for i := 0; i < 16; i++ {
			w := width
			if anchored(i) {
				w--
			}
			writeBits(blk[:], off, w, uint32(idx[i]))
			off += w
		}
	}
	colorAnchor := func(i int) bool {
		return i == anchorTexel(mi.subsets, part, bc7SubsetOf(mi, part, i))
	}
	zeroAnchor := func(i int) bool { return i == 0 }

	if mi.index2Bits == 0 {
		writeStream(cidx, colorIdxBits, colorAnchor)
		return blk
	}
	if tr.indexMode == 0 {
		writeStream(cidx, mi.indexBits, zeroAnchor)
		writeStream(aidx, mi.index2Bits, zeroAnchor)
	} else {
		writeStream(aidx, mi.indexBits, zeroAnchor)
		writeStream(cidx, mi.index2Bits, zeroAnchor)
	}
	return blk
}
