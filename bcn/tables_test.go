package bcn

import "testing"

func TestWeightTables(t *testing.T) {
	for _, bits := range []int{2, 3, 4} {
		w := weightsFor(bits)
		n := 1 << uint(bits)
		if len(w) != n {
			t.Fatalf("weights for %d bits: got %d entries, want %d", bits, len(w), n)
		}
		if w[0] != 0 || w[n-1] != 64 {
			t.Errorf("weights for %d bits: endpoints %d/%d, want 0/64", bits, w[0], w[n-1])
		}
		for i := 0; i < n; i++ {
			if w[i]+w[n-1-i] != 64 {
				t.Errorf("weights for %d bits: w[%d]+w[%d] = %d, want 64", bits, i, n-1-i, w[i]+w[n-1-i])
			}
			if i > 0 && w[i] <= w[i-1] {
				t.Errorf("weights for %d bits: not strictly increasing at %d", bits, i)
			}
		}
	}
}

// Step tables must assign each 6-bit projection fraction to the nearest
// palette index, with the upper index winning exact midpoints.
func TestStepTablesMatchMidpoints(t *testing.T) {
	for _, bits := range []int{2, 3, 4} {
		w := weightsFor(bits)
		steps := stepsFor(bits)
		n := 1 << uint(bits)
		for f := 0; f < 64; f++ {
			want := 0
			for i := 1; i < n; i++ {
				if int32(f) >= (w[i-1]+w[i]+1)>>1 {
					want = i
				}
			}
			if int(steps[f]) != want {
				t.Errorf("steps for %d bits: f=%d got %d, want %d", bits, f, steps[f], want)
			}
		}
	}
}

func TestPartition2Shapes(t *testing.T) {
	if partitions2[0] != 0xCCCC {
		t.Fatalf("partition 0 mask = %#04x, want 0xCCCC", partitions2[0])
	}
	for p := 0; p < 64; p++ {
		if subset2Of(p, 0) != 0 {
			t.Errorf("partition %d: texel 0 not in subset 0", p)
		}
		has1 := false
		for i := 0; i < 16; i++ {
			if subset2Of(p, i) == 1 {
				has1 = true
			}
		}
		if !has1 {
			t.Errorf("partition %d: subset 1 empty", p)
		}
	}
}

func TestPartition3Shapes(t *testing.T) {
	for p := 0; p < 64; p++ {
		var seen [3]bool
		for i := 0; i < 16; i++ {
			s := subset3Of(p, i)
			if s > 2 {
				t.Fatalf("partition %d texel %d: subset id %d out of range", p, i, s)
			}
			seen[s] = true
		}
		if subset3Of(p, 0) != 0 {
			t.Errorf("partition %d: texel 0 not in subset 0", p)
		}
		for s, ok := range seen {
			if !ok {
				t.Errorf("partition %d: subset %d empty", p, s)
			}
		}
	}
}

// Every anchor texel must be a member of the subset it anchors.
func TestAnchorMembership(t *testing.T) {
	for p := 0; p < 64; p++ {
		if a := int(anchors2[p]); subset2Of(p, a) != 1 {
			t.Errorf("two-subset partition %d: anchor %d not in subset 1", p, a)
		}
		if a := int(anchors3a[p]); subset3Of(p, a) != 1 {
			t.Errorf("three-subset partition %d: anchor %d not in subset 1", p, a)
		}
		if a := int(anchors3b[p]); subset3Of(p, a) != 2 {
			t.Errorf("three-subset partition %d: anchor %d not in subset 2", p, a)
		}
	}
}

// Each BC6H mode layout must cover the pre-weight header exactly: every
// output bit once, every field bit once, and the right field widths.
func TestBC6HModeLayouts(t *testing.T) {
	for m := range bc6hModes {
		mi := &bc6hModes[m]

		headerBits := 0
		fieldBits := map[uint8]map[uint8]bool{}
		for _, sg := range mi.layout {
			headerBits += int(sg.count)
			if fieldBits[sg.field] == nil {
				fieldBits[sg.field] = map[uint8]bool{}
			}
			for b := sg.low; b < sg.low+sg.count; b++ {
				if fieldBits[sg.field][b] {
					t.Errorf("mode %d: field %d bit %d covered twice", mi.value, sg.field, b)
				}
				fieldBits[sg.field][b] = true
			}
		}

		wantHeader := 65
		idxBits := 4
		anchors := 1
		if mi.subsets == 2 {
			wantHeader = 82
			idxBits = 3
			anchors = 2
		}
		if headerBits != wantHeader {
			t.Errorf("mode %d: header is %d bits, want %d", mi.value, headerBits, wantHeader)
		}
		if total := headerBits + 16*idxBits - anchors; total != 128 {
			t.Errorf("mode %d: block is %d bits, want 128", mi.value, total)
		}

		if got := len(fieldBits[bfM]); got != int(mi.modeBits) {
			t.Errorf("mode %d: %d mode bits, want %d", mi.value, got, mi.modeBits)
		}
		if mi.subsets == 2 {
			if got := len(fieldBits[bfD]); got != 5 {
				t.Errorf("mode %d: %d partition bits, want 5", mi.value, got)
			}
		}
		for f := bfRW; f <= bfBZ; f++ {
			ch, e := bc6hFieldTarget(f)
			want := 0
			switch {
			case e >= 2 && mi.subsets == 1:
				want = 0
			case e == 0 || !mi.transformed:
				want = int(mi.epBits)
			default:
				want = int(mi.deltaBits[ch])
			}
			if got := len(fieldBits[f]); got != want {
				t.Errorf("mode %d: field %d has %d bits, want %d", mi.value, f, got, want)
			}
		}
	}
}

// BC7 mode descriptors must fill exactly 128 bits.
func TestBC7ModeBitTotals(t *testing.T) {
	for m := range bc7Modes {
		mi := &bc7Modes[m]

		pbitsTotal := 0
		switch mi.pMode {
		case bc7PPerEndpoint:
			pbitsTotal = 2 * mi.subsets
		case bc7PShared:
			pbitsTotal = mi.subsets
		}

		idxTotal := 16*mi.indexBits - mi.subsets
		if mi.index2Bits > 0 {
			idxTotal = 16*mi.indexBits - 1 + 16*mi.index2Bits - 1
		}

		total := m + 1 + mi.partitionBits + mi.rotationBits + mi.indexModeBits +
			2*mi.subsets*3*mi.colorBits + 2*mi.subsets*mi.alphaBits +
			pbitsTotal + idxTotal
		if total != 128 {
			t.Errorf("mode %d: block is %d bits, want 128", m, total)
		}
	}
}
