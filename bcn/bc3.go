package bcn

// BC3: a BC4-style alpha block followed by a BC1-style color block, encoded
// independently from the same source texels.
func encodeBlockBC3(texels *[16][4]float32, dst []byte) {
	encodeBlockBC4(texels, 3, dst[0:8])
	encodeBlockBC1(texels, dst[8:16])
}
