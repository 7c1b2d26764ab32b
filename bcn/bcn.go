// Package bcn encodes 4x4 texel blocks into the BC1, BC3, BC4, BC5, BC6H and
// BC7 GPU texture formats.
//
// Each block is encoded independently from 16 RGBA float texels. LDR formats
// clamp samples to [0,1] and quantize through the 257-scaled fixed-point rule;
// BC6H interprets samples as unsigned half-float values and clamps only
// negatives to zero. BC6H and BC7 search a quality-gated candidate list and
// keep the candidate with the least squared reconstruction error.
package bcn

// Format selects the target block format.
type Format int

const (
	FormatBC1 Format = iota
	FormatBC3
	FormatBC4
	FormatBC5
	FormatBC6H
	FormatBC7
)

// BlockBytes returns the encoded size of one 4x4 block.
func (f Format) BlockBytes() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	default:
		return 16
	}
}

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	case FormatBC6H:
		return "BC6H"
	case FormatBC7:
		return "BC7"
	}
	return "unknown"
}

func (f Format) valid() bool {
	return f >= FormatBC1 && f <= FormatBC7
}

// Quality selects the search breadth for BC6H and BC7. The other formats
// have a single encoding path and ignore it.
type Quality int

const (
	QualityFast Quality = iota
	QualityNormal
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityNormal:
		return "normal"
	case QualityHigh:
		return "high"
	}
	return "unknown"
}

func (q Quality) valid() bool {
	return q >= QualityFast && q <= QualityHigh
}

// Image is an uncompressed RGBA float image in raster order.
// Pix holds DimX*DimY*4 interleaved samples.
type Image struct {
	DimX int
	DimY int
	Pix  []float32
}

// NumBlocks returns the 4x4 block grid size for the given image dimensions.
func NumBlocks(dimX, dimY int) (bx, by int) {
	return (dimX + 3) / 4, (dimY + 3) / 4
}

// CompressedSize returns the encoded payload size for an image of the given
// dimensions.
func CompressedSize(dimX, dimY int, format Format) int {
	bx, by := NumBlocks(dimX, dimY)
	return bx * by * format.BlockBytes()
}

// EncodeBlock encodes one 4x4 block of RGBA texels into dst, which must hold
// at least format.BlockBytes() bytes. The input texels are not modified.
func EncodeBlock(format Format, quality Quality, texels *[16][4]float32, dst []byte) error {
	if !format.valid() {
		return newError(ErrBadFormat, "unknown block format")
	}
	if !quality.valid() {
		return newError(ErrBadQuality, "unknown quality preset")
	}
	if texels == nil {
		return newError(ErrBadParam, "texels must not be nil")
	}
	if len(dst) < format.BlockBytes() {
		return newError(ErrBadParam, "destination shorter than one block")
	}

	clamped := *texels
	clampTexels(&clamped, format)
	encodeBlock(format, quality, &clamped, dst)
	return nil
}

// clampTexels applies the per-format input domain: [0,1] for the LDR
// formats, [0,+inf) for BC6H. NaN clamps to zero.
func clampTexels(texels *[16][4]float32, format Format) {
	hdr := format == FormatBC6H
	for i := range texels {
		for ch := 0; ch < 4; ch++ {
			v := texels[i][ch]
			if !(v > 0) {
				texels[i][ch] = 0
			} else if !hdr && v > 1 {
				texels[i][ch] = 1
			}
		}
	}
}

func encodeBlock(format Format, quality Quality, texels *[16][4]float32, dst []byte) {
	switch format {
	case FormatBC1:
		encodeBlockBC1(texels, dst)
	case FormatBC3:
		encodeBlockBC3(texels, dst)
	case FormatBC4:
		encodeBlockBC4(texels, 0, dst)
	case FormatBC5:
		encodeBlockBC5(texels, dst)
	case FormatBC6H:
		encodeBlockBC6H(texels, quality, dst)
	case FormatBC7:
		encodeBlockBC7(texels, quality, dst)
	}
}

// fetchBlock extracts the 4x4 block at block coordinates (bx, by), clamping
// reads to the image edge so partial blocks repeat their border texels.
func fetchBlock(img *Image, bx, by int, texels *[16][4]float32) {
	for ty := 0; ty < 4; ty++ {
		y := by*4 + ty
		if y >= img.DimY {
			y = img.DimY - 1
		}
		for tx := 0; tx < 4; tx++ {
			x := bx*4 + tx
			if x >= img.DimX {
				x = img.DimX - 1
			}
			off := (y*img.DimX + x) * 4
			copy(texels[ty*4+tx][:], img.Pix[off:off+4])
		}
	}
}

func validateImage(img *Image) error {
	if img == nil {
		return newError(ErrBadParam, "image must not be nil")
	}
	if img.DimX < 1 || img.DimY < 1 {
		return newError(ErrBadParam, "image dimensions must be at least 1x1")
	}
	if len(img.Pix) < img.DimX*img.DimY*4 {
		return newError(ErrBadParam, "pixel buffer shorter than DimX*DimY*4")
	}
	return nil
}

// CompressImage encodes img into out on the calling goroutine. Blocks are
// laid out row-major; the block at grid position (bx, by) lands at offset
// (by*blocksX+bx)*BlockBytes(). out must hold CompressedSize bytes.
func CompressImage(img *Image, format Format, quality Quality, out []byte) error {
	if err := validateImage(img); err != nil {
		return err
	}
	if !format.valid() {
		return newError(ErrBadFormat, "unknown block format")
	}
	if !quality.valid() {
		return newError(ErrBadQuality, "unknown quality preset")
	}
	if len(out) < CompressedSize(img.DimX, img.DimY, format) {
		return newError(ErrBadParam, "output buffer shorter than compressed size")
	}

	blocksX, blocksY := NumBlocks(img.DimX, img.DimY)
	blockBytes := format.BlockBytes()
	var texels [16][4]float32
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			fetchBlock(img, bx, by, &texels)
			clampTexels(&texels, format)
			off := (by*blocksX + bx) * blockBytes
			encodeBlock(format, quality, &texels, out[off:off+blockBytes])
		}
	}
	return nil
}

// EncodeImage is an allocating convenience wrapper around CompressImage.
func EncodeImage(img *Image, format Format, quality Quality) ([]byte, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	out := make([]byte, CompressedSize(img.DimX, img.DimY, format))
	if err := CompressImage(img, format, quality, out); err != nil {
		return nil, err
	}
	return out, nil
}
