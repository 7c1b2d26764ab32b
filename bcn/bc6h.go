package bcn

import "math"

// BC6H: HDR RGB over the unsigned half bit pattern, 14 modes. Each mode's
// scattered 128-bit field map is declared as an ordered segment list feeding
// the shared bit writer; segments consume output bits sequentially, so only
// (field, source bit, width) needs declaring.

const (
	bfM uint8 = iota
	bfD
	bfRW
	bfRX
	bfRY
	bfRZ
	bfGW
	bfGX
	bfGY
	bfGZ
	bfBW
	bfBX
	bfBY
	bfBZ
)

// bc6hSeg copies count bits of a field, starting at source bit low, into the
// next count output bits.
type bc6hSeg struct {
	field uint8
	low   uint8
	count uint8
}

// bc6hFieldTarget maps an endpoint field id to (channel, endpoint index),
// where endpoints order as w,x,y,z = subset0 low/high, subset1 low/high.
func bc6hFieldTarget(field uint8) (ch, e int) {
	f := int(field - bfRW)
	return f / 4, f % 4
}

type bc6hModeInfo struct {
	value       uint8 // on-wire mode value
	modeBits    uint8 // 2 or 5
	subsets     uint8
	epBits      uint8    // base endpoint precision
	deltaBits   [3]uint8 // per-channel delta widths for transformed modes
	transformed bool
	layout      []bc6hSeg
}

// bc6hTrial is one candidate in the quality-gated search.
type bc6hTrial struct {
	mode      uint8 // index into bc6hModes
	partition uint8
}

// bc6hInfeasibleErr marks candidates whose endpoint deltas overflow their
// field; they stay in the scan but can never beat the always-feasible
// baseline mode.
const bc6hInfeasibleErr = 1e30

var bc6hModes = [14]bc6hModeInfo{
	// Single subset. The 10-bit untransformed mode is the always-attempted
	// baseline.
	{value: 3, modeBits: 5, subsets: 1, epBits: 10, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 10}, {bfGX, 0, 10}, {bfBX, 0, 10},
	}},
	{value: 7, modeBits: 5, subsets: 1, epBits: 11, deltaBits: [3]uint8{9, 9, 9}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 9}, {bfRW, 10, 1}, {bfGX, 0, 9}, {bfGW, 10, 1},
		{bfBX, 0, 9}, {bfBW, 10, 1},
	}},
	{value: 11, modeBits: 5, subsets: 1, epBits: 12, deltaBits: [3]uint8{8, 8, 8}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 8}, {bfRW, 10, 1}, {bfRW, 11, 1},
		{bfGX, 0, 8}, {bfGW, 10, 1}, {bfGW, 11, 1},
		{bfBX, 0, 8}, {bfBW, 10, 1}, {bfBW, 11, 1},
	}},
	{value: 15, modeBits: 5, subsets: 1, epBits: 16, deltaBits: [3]uint8{4, 4, 4}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 4}, {bfRW, 15, 1}, {bfRW, 14, 1}, {bfRW, 13, 1}, {bfRW, 12, 1}, {bfRW, 11, 1}, {bfRW, 10, 1},
		{bfGX, 0, 4}, {bfGW, 15, 1}, {bfGW, 14, 1}, {bfGW, 13, 1}, {bfGW, 12, 1}, {bfGW, 11, 1}, {bfGW, 10, 1},
		{bfBX, 0, 4}, {bfBW, 15, 1}, {bfBW, 14, 1}, {bfBW, 13, 1}, {bfBW, 12, 1}, {bfBW, 11, 1}, {bfBW, 10, 1},
	}},

	// Two subsets.
	{value: 0, modeBits: 2, subsets: 2, epBits: 10, deltaBits: [3]uint8{5, 5, 5}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 2}, {bfGY, 4, 1}, {bfBY, 4, 1}, {bfBZ, 4, 1},
		{bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 5}, {bfGZ, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 5}, {bfBZ, 0, 1},
		{bfGZ, 0, 4}, {bfBX, 0, 5}, {bfBZ, 1, 1}, {bfBY, 0, 4},
		{bfRY, 0, 5}, {bfBZ, 2, 1}, {bfRZ, 0, 5}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 1, modeBits: 2, subsets: 2, epBits: 7, deltaBits: [3]uint8{6, 6, 6}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 2}, {bfGY, 5, 1}, {bfGZ, 4, 1}, {bfGZ, 5, 1},
		{bfRW, 0, 7}, {bfBZ, 0, 1}, {bfBZ, 1, 1}, {bfBY, 4, 1},
		{bfGW, 0, 7}, {bfBY, 5, 1}, {bfBZ, 2, 1}, {bfGY, 4, 1},
		{bfBW, 0, 7}, {bfBZ, 3, 1}, {bfBZ, 5, 1}, {bfBZ, 4, 1},
		{bfRX, 0, 6}, {bfGY, 0, 4}, {bfGX, 0, 6}, {bfGZ, 0, 4},
		{bfBX, 0, 6}, {bfBY, 0, 4}, {bfRY, 0, 6}, {bfRZ, 0, 6}, {bfD, 0, 5},
	}},
	{value: 2, modeBits: 5, subsets: 2, epBits: 11, deltaBits: [3]uint8{5, 4, 4}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 5}, {bfRW, 10, 1}, {bfGY, 0, 4}, {bfGX, 0, 4}, {bfGW, 10, 1},
		{bfBZ, 0, 1}, {bfGZ, 0, 4}, {bfBX, 0, 4}, {bfBW, 10, 1}, {bfBZ, 1, 1},
		{bfBY, 0, 4}, {bfRY, 0, 5}, {bfBZ, 2, 1}, {bfRZ, 0, 5}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 6, modeBits: 5, subsets: 2, epBits: 11, deltaBits: [3]uint8{4, 5, 4}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 4}, {bfRW, 10, 1}, {bfGZ, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 5}, {bfGW, 10, 1},
		{bfGZ, 0, 4}, {bfBX, 0, 4}, {bfBW, 10, 1}, {bfBZ, 1, 1}, {bfBY, 0, 4},
		{bfRY, 0, 4}, {bfBZ, 0, 1}, {bfBZ, 2, 1}, {bfRZ, 0, 4}, {bfGY, 4, 1}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 10, modeBits: 5, subsets: 2, epBits: 11, deltaBits: [3]uint8{4, 4, 5}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 10}, {bfGW, 0, 10}, {bfBW, 0, 10},
		{bfRX, 0, 4}, {bfRW, 10, 1}, {bfBY, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 4}, {bfGW, 10, 1},
		{bfBZ, 0, 1}, {bfGZ, 0, 4}, {bfBX, 0, 5}, {bfBW, 10, 1}, {bfBY, 0, 4},
		{bfRY, 0, 4}, {bfBZ, 1, 1}, {bfBZ, 2, 1}, {bfRZ, 0, 4}, {bfBZ, 4, 1}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 14, modeBits: 5, subsets: 2, epBits: 9, deltaBits: [3]uint8{5, 5, 5}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 9}, {bfBY, 4, 1}, {bfGW, 0, 9}, {bfGY, 4, 1}, {bfBW, 0, 9}, {bfBZ, 4, 1},
		{bfRX, 0, 5}, {bfGZ, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 5}, {bfBZ, 0, 1},
		{bfGZ, 0, 4}, {bfBX, 0, 5}, {bfBZ, 1, 1}, {bfBY, 0, 4},
		{bfRY, 0, 5}, {bfBZ, 2, 1}, {bfRZ, 0, 5}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 18, modeBits: 5, subsets: 2, epBits: 8, deltaBits: [3]uint8{6, 5, 5}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 8}, {bfGZ, 4, 1}, {bfBY, 4, 1}, {bfGW, 0, 8}, {bfBZ, 2, 1}, {bfGY, 4, 1},
		{bfBW, 0, 8}, {bfBZ, 3, 1}, {bfBZ, 4, 1},
		{bfRX, 0, 6}, {bfGY, 0, 4}, {bfGX, 0, 5}, {bfBZ, 0, 1},
		{bfGZ, 0, 4}, {bfBX, 0, 5}, {bfBZ, 1, 1}, {bfBY, 0, 4},
		{bfRY, 0, 6}, {bfRZ, 0, 6}, {bfD, 0, 5},
	}},
	{value: 22, modeBits: 5, subsets: 2, epBits: 8, deltaBits: [3]uint8{5, 6, 5}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 8}, {bfBZ, 0, 1}, {bfBY, 4, 1}, {bfGW, 0, 8}, {bfGY, 5, 1}, {bfGY, 4, 1},
		{bfBW, 0, 8}, {bfGZ, 5, 1}, {bfBZ, 4, 1},
		{bfRX, 0, 5}, {bfGZ, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 6},
		{bfGZ, 0, 4}, {bfBX, 0, 5}, {bfBZ, 1, 1}, {bfBY, 0, 4},
		{bfRY, 0, 5}, {bfBZ, 2, 1}, {bfRZ, 0, 5}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 26, modeBits: 5, subsets: 2, epBits: 8, deltaBits: [3]uint8{5, 5, 6}, transformed: true, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 8}, {bfBZ, 1, 1}, {bfBY, 4, 1}, {bfGW, 0, 8}, {bfBY, 5, 1}, {bfGY, 4, 1},
		{bfBW, 0, 8}, {bfBZ, 5, 1}, {bfBZ, 4, 1},
		{bfRX, 0, 5}, {bfGZ, 4, 1}, {bfGY, 0, 4}, {bfGX, 0, 5}, {bfBZ, 0, 1},
		{bfGZ, 0, 4}, {bfBX, 0, 6}, {bfBY, 0, 4},
		{bfRY, 0, 5}, {bfBZ, 2, 1}, {bfRZ, 0, 5}, {bfBZ, 3, 1}, {bfD, 0, 5},
	}},
	{value: 30, modeBits: 5, subsets: 2, epBits: 6, layout: []bc6hSeg{
		{bfM, 0, 5}, {bfRW, 0, 6}, {bfGZ, 4, 1}, {bfBZ, 0, 1}, {bfBZ, 1, 1}, {bfBY, 4, 1},
		{bfGW, 0, 6}, {bfGY, 5, 1}, {bfBY, 5, 1}, {bfBZ, 2, 1}, {bfGY, 4, 1},
		{bfBW, 0, 6}, {bfGZ, 5, 1}, {bfBZ, 3, 1}, {bfBZ, 5, 1}, {bfBZ, 4, 1},
		{bfRX, 0, 6}, {bfGY, 0, 4}, {bfGX, 0, 6}, {bfGZ, 0, 4},
		{bfBX, 0, 6}, {bfBY, 0, 4}, {bfRY, 0, 6}, {bfRZ, 0, 6}, {bfD, 0, 5},
	}},
}

func encodeBlockBC6H(texels *[16][4]float32, quality Quality, dst []byte) {
	blk, _ := bc6hEncodeBest(texels, quality)
	copy(dst, blk[:])
}

// bc6hEncodeBest folds the quality tier's candidate list down to the
// lowest-error packed block. The baseline mode heads every tier, so the fold
// always has a feasible result.
func bc6hEncodeBest(texels *[16][4]float32, quality Quality) ([16]byte, float64) {
	var srcF [16][3]float32
	var srcH [16][3]uint32
	for i := 0; i < 16; i++ {
		for ch := 0; ch < 3; ch++ {
			f := texels[i][ch]
			if !(f > 0) {
				f = 0
			}
			h := halfFromFloatUF16(f)
			srcH[i][ch] = h
			srcF[i][ch] = f
		}
	}

	var best [16]byte
	bestErr := math.Inf(1)
	for _, tr := range bc6hTrialsForQuality(quality) {
		blk, e := bc6hEncodeTrial(tr, &srcF, &srcH)
		if e < bestErr {
			best, bestErr = blk, e
		}
	}
	return best, bestErr
}

func bc6hSubsetOf(subsets, partition, texel int) int {
	if subsets == 1 {
		return 0
	}
	return subset2Of(partition, texel)
}

// bc6hEncodeTrial encodes one candidate and returns the packed block and its
// summed squared reconstruction error in linear float space.
func bc6hEncodeTrial(tr bc6hTrial, srcF *[16][3]float32, srcH *[16][3]uint32) ([16]byte, float64) {
	mi := &bc6hModes[tr.mode]
	subsets := int(mi.subsets)
	part := int(tr.partition)
	epBits := int(mi.epBits)

	idxBits := 4
	if subsets == 2 {
		idxBits = 3
	}
	weightsT := weightsFor(idxBits)
	stepsT := stepsFor(idxBits)
	palN := 1 << uint(idxBits)

	var qep [2][2][3]uint32
	var idx [16]int32
	var totalErr float64

	for s := 0; s < subsets; s++ {
		// Endpoints come from the luminance-extreme texels of the subset;
		// a bounding box is meaningless on an unbounded HDR range.
		loT, hiT := -1, -1
		var loL, hiL float32
		for i := 0; i < 16; i++ {
			if bc6hSubsetOf(subsets, part, i) != s {
				continue
			}
			l := 0.299*srcF[i][0] + 0.587*srcF[i][1] + 0.114*srcF[i][2]
			if loT < 0 || l < loL {
				loT, loL = i, l
			}
			if hiT < 0 || l > hiL {
				hiT, hiL = i, l
			}
		}

		for ch := 0; ch < 3; ch++ {
			qep[s][0][ch] = quantizeHDR(startQuantizeHDR(srcH[loT][ch]), epBits)
			qep[s][1][ch] = quantizeHDR(startQuantizeHDR(srcH[hiT][ch]), epBits)
		}

		var pal [16][3]float32
		for j := 0; j < palN; j++ {
			w := weightsT[j]
			for ch := 0; ch < 3; ch++ {
				lo := int32(unquantizeHDR(qep[s][0][ch], epBits))
				hi := int32(unquantizeHDR(qep[s][1][ch], epBits))
				v := interpolate(lo, hi, w)
				pal[j][ch] = halfToFloat32(finishUnquantizeHDR(uint32(v)))
			}
		}

		var dir [3]float32
		var lenSq float32
		for ch := 0; ch < 3; ch++ {
			dir[ch] = srcF[hiT][ch] - srcF[loT][ch]
			lenSq += dir[ch] * dir[ch]
		}

		for i := 0; i < 16; i++ {
			if bc6hSubsetOf(subsets, part, i) != s {
				continue
			}
			var dot float32
			for ch := 0; ch < 3; ch++ {
				dot += (srcF[i][ch] - srcF[loT][ch]) * dir[ch]
			}
			j := int32(stepsT[projectionFraction(dot, lenSq)])
			idx[i] = j
			for ch := 0; ch < 3; ch++ {
				d := float64(srcF[i][ch] - pal[j][ch])
				totalErr += d * d
			}
		}
	}

	// Anchor fixup before the delta transform so deltas see final endpoint
	// order.
	maxIdx := int32(1)<<uint(idxBits) - 1
	for s := 0; s < subsets; s++ {
		a := 0
		if s == 1 {
			a = int(anchors2[part])
		}
		if idx[a]>>uint(idxBits-1) != 0 {
			qep[s][0], qep[s][1] = qep[s][1], qep[s][0]
			for i := 0; i < 16; i++ {
				if bc6hSubsetOf(subsets, part, i) == s {
					idx[i] = maxIdx - idx[i]
				}
			}
		}
	}

	// Endpoint fields w,x,y,z; transformed modes re-express x,y,z as signed
	// deltas from w, clamped for packing with the candidate marked
	// infeasible on overflow.
	var fields [4][3]uint32
	fields[0] = qep[0][0]
	fields[1] = qep[0][1]
	if subsets == 2 {
		fields[2] = qep[1][0]
		fields[3] = qep[1][1]
	}
	feasible := true
	if mi.transformed {
		for e := 1; e < 2*subsets; e++ {
			for ch := 0; ch < 3; ch++ {
				db := int(mi.deltaBits[ch])
				d := int32(fields[e][ch]) - int32(fields[0][ch])
				minD := -(int32(1) << uint(db-1))
				maxD := int32(1)<<uint(db-1) - 1
				if d < minD {
					d, feasible = minD, false
				} else if d > maxD {
					d, feasible = maxD, false
				}
				fields[e][ch] = uint32(d) & (uint32(1)<<uint(db) - 1)
			}
		}
	}

	blk := bc6hPack(mi, tr, &fields, &idx, idxBits)
	if !feasible {
		return blk, bc6hInfeasibleErr
	}
	return blk, totalErr
}

func bc6hPack(mi *bc6hModeInfo, tr bc6hTrial, fields *[4][3]uint32, idx *[16]int32, idxBits int) [16]byte {
	var blk [16]byte
	off := 0
	for _, sg := range mi.layout {
		var v uint32
		switch sg.field {
		case bfM:
			v = uint32(mi.value) >> sg.low
		case bfD:
			v = uint32(tr.partition) >> sg.low
		default:
			ch, e := bc6hFieldTarget(sg.field)
			v = fields[e][ch] >> sg.low
		}
		writeBits(blk[:], off, int(sg.count), v)
		off += int(sg.count)
	}

	// Weights follow the header: texel 0 and the subset-1 anchor drop their
	// top (always zero) bit.
	part := int(tr.partition)
	for i := 0; i < 16; i++ {
		w := idxBits
		if i == 0 || (mi.subsets == 2 && i == int(anchors2[part])) {
			w--
		}
		writeBits(blk[:], off, w, uint32(idx[i]))
		off += w
	}
	return blk
}
