package bcn

import (
	"math"
	"math/rand"
	"testing"
)

func randomHDRBlock(rng *rand.Rand, scale float32) [16][4]float32 {
	var texels [16][4]float32
	for i := range texels {
		for ch := 0; ch < 3; ch++ {
			texels[i][ch] = rng.Float32() * scale
		}
		texels[i][3] = 1
	}
	return texels
}

// bc6hSourceFloats mirrors the encoder's input conditioning: clamp, convert
// to the unsigned half range and back.
func bc6hSourceFloats(texels *[16][4]float32) [16][3]float32 {
	var src [16][3]float32
	for i := range texels {
		for ch := 0; ch < 3; ch++ {
			f := texels[i][ch]
			if !(f > 0) {
				f = 0
			}
			src[i][ch] = f
		}
	}
	return src
}

func bc6hDecodedSSE(src *[16][3]float32, blk []byte) float64 {
	dec := decodeBlockBC6H(blk)
	var sse float64
	for i := range src {
		for ch := 0; ch < 3; ch++ {
			d := float64(src[i][ch] - dec[i][ch])
			sse += d * d
		}
	}
	return sse
}

func TestBC6HFastUsesBaselineMode(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	texels := randomHDRBlock(rng, 100)
	blk, _ := bc6hEncodeBest(&texels, QualityFast)

	if v := readBits(blk[:], 0, 5); v != 3 {
		t.Fatalf("fast tier block has mode value %d, want 3", v)
	}
}

func TestBC6HClaimedErrorMatchesDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, quality := range []Quality{QualityFast, QualityNormal, QualityHigh} {
		for trial := 0; trial < 10; trial++ {
			texels := randomHDRBlock(rng, float32(math.Pow(10, float64(trial%5))))
			blk, claimed := bc6hEncodeBest(&texels, quality)

			src := bc6hSourceFloats(&texels)
			got := bc6hDecodedSSE(&src, blk[:])
			if diff := math.Abs(got - claimed); diff > 1e-9*(1+claimed) {
				t.Fatalf("quality %v trial %d: claimed error %v, decoded error %v", quality, trial, claimed, got)
			}
		}
	}
}

// Feasible candidates, winners or not, must pack what they scored.
func TestBC6HTrialErrorMatchesDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	texels := randomHDRBlock(rng, 50)
	src := bc6hSourceFloats(&texels)

	var srcH [16][3]uint32
	for i := range src {
		for ch := 0; ch < 3; ch++ {
			srcH[i][ch] = halfFromFloatUF16(src[i][ch])
		}
	}

	checked := 0
	for _, tr := range bc6hTrialsForQuality(QualityHigh) {
		blk, claimed := bc6hEncodeTrial(tr, &src, &srcH)
		if claimed == bc6hInfeasibleErr {
			continue
		}
		got := bc6hDecodedSSE(&src, blk[:])
		if diff := math.Abs(got - claimed); diff > 1e-9*(1+claimed) {
			t.Fatalf("mode index %d partition %d: claimed %v, decoded %v", tr.mode, tr.partition, claimed, got)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("every candidate was infeasible")
	}
}

func TestBC6HQualityMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 10; trial++ {
		texels := randomHDRBlock(rng, 10)
		_, e0 := bc6hEncodeBest(&texels, QualityFast)
		_, e1 := bc6hEncodeBest(&texels, QualityNormal)
		_, e2 := bc6hEncodeBest(&texels, QualityHigh)
		if e1 > e0 || e2 > e1 {
			t.Fatalf("trial %d: errors not monotonic: %v/%v/%v", trial, e0, e1, e2)
		}
	}
}

// A uniform block of 1.0 survives the full quantize, interpolate and finish
// pipeline without loss in the baseline mode.
func TestBC6HUniformOneExact(t *testing.T) {
	var texels [16][4]float32
	for i := range texels {
		texels[i] = [4]float32{1, 1, 1, 1}
	}
	blk, claimed := bc6hEncodeBest(&texels, QualityFast)
	if claimed != 0 {
		t.Fatalf("claimed error %v, want 0", claimed)
	}
	for i, px := range decodeBlockBC6H(blk[:]) {
		for ch := 0; ch < 3; ch++ {
			if px[ch] != 1 {
				t.Fatalf("texel %d channel %d decoded to %v, want 1", i, ch, px[ch])
			}
		}
	}
}

func TestBC6HUniformBlockNearExact(t *testing.T) {
	var texels [16][4]float32
	for i := range texels {
		texels[i] = [4]float32{1, 2.5, 0.25, 1}
	}
	blk, _ := bc6hEncodeBest(&texels, QualityFast)

	want := [3]float32{1, 2.5, 0.25}
	for i, px := range decodeBlockBC6H(blk[:]) {
		for ch := 0; ch < 3; ch++ {
			if rel := math.Abs(float64(px[ch]-want[ch])) / float64(want[ch]); rel > 0.01 {
				t.Fatalf("texel %d channel %d decoded to %v, want near %v", i, ch, px[ch], want[ch])
			}
		}
	}
}

func TestBC6HNegativeClampsToZero(t *testing.T) {
	var texels [16][4]float32
	for i := range texels {
		texels[i] = [4]float32{-5, -0.25, -1e20, 1}
	}
	blk, claimed := bc6hEncodeBest(&texels, QualityFast)
	if claimed != 0 {
		t.Fatalf("claimed error %v, want 0", claimed)
	}
	for i, px := range decodeBlockBC6H(blk[:]) {
		if px != [3]float32{0, 0, 0} {
			t.Fatalf("texel %d decoded to %v, want zero", i, px)
		}
	}
}

// An extreme-range block overflows every transformed mode's deltas, but the
// untransformed baseline keeps the search from ever surfacing the sentinel.
func TestBC6HSentinelNeverWins(t *testing.T) {
	var texels [16][4]float32
	for i := range texels {
		v := float32(0)
		if i%2 == 0 {
			v = 65504
		}
		texels[i] = [4]float32{v, v, v, 1}
	}
	_, err := bc6hEncodeBest(&texels, QualityHigh)
	if err >= bc6hInfeasibleErr {
		t.Fatalf("best error %v is the infeasibility sentinel", err)
	}
}
