package bcn_test

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/gputex/bcn-encoder/bcn"
)

func TestDDSRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(40))
	for _, format := range allFormats {
		img := randomImage(rng, 12, 9)
		payload, err := bcn.EncodeImage(img, format, bcn.QualityFast)
		if err != nil {
			t.Fatal(err)
		}

		file, err := bcn.MarshalDDS(12, 9, format, payload)
		if err != nil {
			t.Fatalf("%v: marshal: %v", format, err)
		}

		hdr, got, err := bcn.ParseDDS(file)
		if err != nil {
			t.Fatalf("%v: parse: %v", format, err)
		}
		if hdr.DimX != 12 || hdr.DimY != 9 || hdr.Format != format {
			t.Fatalf("%v: header %+v", format, hdr)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("%v: payload does not round-trip", format)
		}
	}
}

func TestDDSMagic(t *testing.T) {
	file, err := bcn.MarshalDDS(4, 4, bcn.FormatBC1, make([]byte, 8))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(file[0:4], []byte("DDS ")) {
		t.Fatalf("magic %q", file[0:4])
	}

	file[0] = 'X'
	if _, _, err := bcn.ParseDDS(file); bcn.ErrorCodeOf(err) != bcn.ErrBadHeader {
		t.Errorf("bad magic: %v", err)
	}
}

func TestDDSParseErrors(t *testing.T) {
	if _, _, err := bcn.ParseDDS([]byte("DDS")); bcn.ErrorCodeOf(err) != bcn.ErrBadHeader {
		t.Errorf("truncated file: %v", err)
	}

	file, err := bcn.MarshalDDS(8, 8, bcn.FormatBC7, make([]byte, bcn.CompressedSize(8, 8, bcn.FormatBC7)))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := bcn.ParseDDS(file[:len(file)-1]); bcn.ErrorCodeOf(err) != bcn.ErrBadHeader {
		t.Errorf("truncated payload: %v", err)
	}
}

// Header dimensions are attacker controlled; block-count products that wrap
// must fail parsing rather than panic on the payload slice.
func TestDDSParseOverflowingDimensions(t *testing.T) {
	payload := make([]byte, bcn.CompressedSize(8, 8, bcn.FormatBC7))
	file, err := bcn.MarshalDDS(8, 8, bcn.FormatBC7, payload)
	if err != nil {
		t.Fatal(err)
	}

	for _, dims := range [][2]uint32{
		{0x80000000, 0xFFFFFFFF},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{0x10000, 0x10000},
	} {
		crafted := append([]byte(nil), file...)
		binary.LittleEndian.PutUint32(crafted[16:], dims[0]) // width
		binary.LittleEndian.PutUint32(crafted[12:], dims[1]) // height
		if _, _, err := bcn.ParseDDS(crafted); bcn.ErrorCodeOf(err) != bcn.ErrBadHeader {
			t.Errorf("dims %dx%d: %v", dims[0], dims[1], err)
		}
	}
}

func TestDDSMarshalValidation(t *testing.T) {
	if _, err := bcn.MarshalDDS(0, 4, bcn.FormatBC1, nil); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Errorf("zero width: %v", err)
	}
	if _, err := bcn.MarshalDDS(4, 4, bcn.FormatBC1, make([]byte, 4)); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Errorf("wrong payload size: %v", err)
	}
	if _, err := bcn.MarshalDDS(4, 4, bcn.Format(99), make([]byte, 8)); bcn.ErrorCodeOf(err) != bcn.ErrBadFormat {
		t.Errorf("bad format: %v", err)
	}
	if _, err := bcn.MarshalDDS(1<<30, 1<<30, bcn.FormatBC1, nil); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Errorf("overflowing dimensions: %v", err)
	}
}
