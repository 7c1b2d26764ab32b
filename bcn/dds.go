package bcn

import (
	"encoding/binary"
	"fmt"
)

// Minimal DDS container support for the formats this package emits. BC1-BC5
// use classic FourCC headers; BC6H and BC7 require the DX10 extension header
// carrying a DXGI format code.

var ddsMagic = [4]byte{'D', 'D', 'S', ' '}

const (
	ddsHeaderSize     = 124
	ddsPfSize         = 32
	ddsDX10HeaderSize = 20

	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPixelFormat = 0x1000
	ddsdLinearSize  = 0x80000

	ddpfFourCC = 0x4

	ddsCapsTexture = 0x1000

	dx10Texture2D = 3

	dxgiBC6HUF16 = 95
	dxgiBC7UNorm = 98
)

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

var (
	fccDXT1 = fourCC("DXT1")
	fccDXT5 = fourCC("DXT5")
	fccATI1 = fourCC("ATI1")
	fccATI2 = fourCC("ATI2")
	fccDX10 = fourCC("DX10")
)

// DDSHeader describes a parsed single-surface DDS file.
type DDSHeader struct {
	DimX   int
	DimY   int
	Format Format
}

func (h DDSHeader) String() string {
	return fmt.Sprintf("DDS %s, %dx%d texels", h.Format, h.DimX, h.DimY)
}

// PayloadSize returns the expected compressed payload size.
func (h DDSHeader) PayloadSize() int {
	return CompressedSize(h.DimX, h.DimY, h.Format)
}

// checkedPayloadSize computes the compressed payload size for untrusted
// dimensions, reporting overflow of the block-count products instead of
// wrapping.
func checkedPayloadSize(dimX, dimY int, format Format) (int, bool) {
	bx, by := NumBlocks(dimX, dimY)
	if bx <= 0 || by <= 0 {
		return 0, false
	}
	total := bx * by
	if total/bx != by {
		return 0, false
	}
	blockBytes := format.BlockBytes()
	need := total * blockBytes
	if need/blockBytes != total || uint64(need) > 0xFFFFFFFF {
		return 0, false
	}
	return need, true
}

func (f Format) usesDX10() bool {
	return f == FormatBC6H || f == FormatBC7
}

func (f Format) ddsFourCC() uint32 {
	switch f {
	case FormatBC1:
		return fccDXT1
	case FormatBC3:
		return fccDXT5
	case FormatBC4:
		return fccATI1
	case FormatBC5:
		return fccATI2
	}
	return fccDX10
}

func (f Format) dxgiFormat() uint32 {
	if f == FormatBC6H {
		return dxgiBC6HUF16
	}
	return dxgiBC7UNorm
}

// MarshalDDS builds a complete DDS file for a compressed payload produced by
// CompressImage with the same dimensions and format.
func MarshalDDS(dimX, dimY int, format Format, payload []byte) ([]byte, error) {
	if dimX < 1 || dimY < 1 {
		return nil, newError(ErrBadParam, "image dimensions must be at least 1x1")
	}
	if !format.valid() {
		return nil, newError(ErrBadFormat, "unknown block format")
	}
	need, ok := checkedPayloadSize(dimX, dimY, format)
	if !ok {
		return nil, newError(ErrBadParam, "image dimensions overflow the DDS surface size")
	}
	if len(payload) != need {
		return nil, newError(ErrBadParam, "payload size does not match image dimensions")
	}

	size := 4 + ddsHeaderSize
	if format.usesDX10() {
		size += ddsDX10HeaderSize
	}
	out := make([]byte, size+len(payload))
	copy(out[0:4], ddsMagic[:])

	h := out[4 : 4+ddsHeaderSize]
	put := func(off int, v uint32) {
		binary.LittleEndian.PutUint32(h[off:], v)
	}
	put(0, ddsHeaderSize)
	put(4, ddsdCaps|ddsdHeight|ddsdWidth|ddsdPixelFormat|ddsdLinearSize)
	put(8, uint32(dimY))
	put(12, uint32(dimX))
	put(16, uint32(need)) // linear size of the top-level surface

	// Pixel format block at offset 76.
	put(76, ddsPfSize)
	put(80, ddpfFourCC)
	put(84, format.ddsFourCC())

	put(108, ddsCapsTexture)

	if format.usesDX10() {
		dx := out[4+ddsHeaderSize:]
		binary.LittleEndian.PutUint32(dx[0:], format.dxgiFormat())
		binary.LittleEndian.PutUint32(dx[4:], dx10Texture2D)
		binary.LittleEndian.PutUint32(dx[12:], 1) // array size
	}

	copy(out[size:], payload)
	return out, nil
}

// ParseDDS parses a DDS file produced by MarshalDDS or any compatible writer
// using the same subset. The returned payload aliases data.
func ParseDDS(data []byte) (DDSHeader, []byte, error) {
	if len(data) < 4+ddsHeaderSize {
		return DDSHeader{}, nil, newError(ErrBadHeader, "file shorter than a DDS header")
	}
	if data[0] != ddsMagic[0] || data[1] != ddsMagic[1] || data[2] != ddsMagic[2] || data[3] != ddsMagic[3] {
		return DDSHeader{}, nil, newError(ErrBadHeader, "bad DDS magic")
	}

	h := data[4 : 4+ddsHeaderSize]
	get := func(off int) uint32 {
		return binary.LittleEndian.Uint32(h[off:])
	}
	if get(0) != ddsHeaderSize || get(76) != ddsPfSize {
		return DDSHeader{}, nil, newError(ErrBadHeader, "bad DDS header size fields")
	}
	if get(80)&ddpfFourCC == 0 {
		return DDSHeader{}, nil, newError(ErrBadHeader, "uncompressed DDS not supported")
	}

	hdr := DDSHeader{
		DimX: int(get(12)),
		DimY: int(get(8)),
	}
	if hdr.DimX < 1 || hdr.DimY < 1 {
		return DDSHeader{}, nil, newError(ErrBadHeader, "bad DDS dimensions")
	}

	payloadOff := 4 + ddsHeaderSize
	switch get(84) {
	case fccDXT1:
		hdr.Format = FormatBC1
	case fccDXT5:
		hdr.Format = FormatBC3
	case fccATI1:
		hdr.Format = FormatBC4
	case fccATI2:
		hdr.Format = FormatBC5
	case fccDX10:
		if len(data) < payloadOff+ddsDX10HeaderSize {
			return DDSHeader{}, nil, newError(ErrBadHeader, "truncated DX10 header")
		}
		switch binary.LittleEndian.Uint32(data[payloadOff:]) {
		case dxgiBC6HUF16:
			hdr.Format = FormatBC6H
		case dxgiBC7UNorm:
			hdr.Format = FormatBC7
		default:
			return DDSHeader{}, nil, newError(ErrBadHeader, "unsupported DXGI format")
		}
		payloadOff += ddsDX10HeaderSize
	default:
		return DDSHeader{}, nil, newError(ErrBadHeader, "unsupported FourCC")
	}

	need, ok := checkedPayloadSize(hdr.DimX, hdr.DimY, hdr.Format)
	if !ok {
		return DDSHeader{}, nil, newError(ErrBadHeader, "DDS dimensions overflow the surface size")
	}
	if len(data)-payloadOff < need {
		return DDSHeader{}, nil, newError(ErrBadHeader, "truncated DDS payload")
	}
	return hdr, data[payloadOff : payloadOff+need], nil
}
