// Command bcnencgo compresses PNG/JPEG images into single-surface DDS files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"strings"
	"sync"

	"github.com/gputex/bcn-encoder/bcn"

	_ "image/jpeg"
	_ "image/png"
)

func main() {
	var (
		inPath   string
		outPath  string
		format   string
		quality  string
		threads  int
		dumpInfo bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output .dds file")
	flag.StringVar(&format, "format", "bc7", "block format: bc1|bc3|bc4|bc5|bc6h|bc7")
	flag.StringVar(&quality, "quality", "normal", "quality preset: fast|normal|high")
	flag.IntVar(&threads, "threads", 1, "worker goroutines")
	flag.BoolVar(&dumpInfo, "info", false, "print .dds header info and exit")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bcnencgo -in <input> -out <output.dds> [-format bc7] [-quality normal] [-threads N]")
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpInfo {
		hdr, _, err := bcn.ParseDDS(inData)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hdr.String())
		return
	}

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}
	formatVal, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	qualityVal, err := parseQuality(quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if threads <= 0 {
		fmt.Fprintln(os.Stderr, "threads must be > 0")
		os.Exit(2)
	}

	src, _, err := image.Decode(bytes.NewReader(inData))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	img := &bcn.Image{
		DimX: rgba.Rect.Dx(),
		DimY: rgba.Rect.Dy(),
		Pix:  make([]float32, rgba.Rect.Dx()*rgba.Rect.Dy()*4),
	}
	for y := 0; y < img.DimY; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+img.DimX*4]
		for i, b := range row {
			img.Pix[y*img.DimX*4+i] = float32(b) / 255
		}
	}

	out := make([]byte, bcn.CompressedSize(img.DimX, img.DimY, formatVal))
	if err := compress(img, formatVal, qualityVal, out, threads); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ddsData, err := bcn.MarshalDDS(img.DimX, img.DimY, formatVal, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, ddsData, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func compress(img *bcn.Image, format bcn.Format, quality bcn.Quality, out []byte, threads int) error {
	if threads == 1 {
		return bcn.CompressImage(img, format, quality, out)
	}

	ctx, err := bcn.NewContext(format, quality, threads)
	if err != nil {
		return err
	}
	errs := make([]error, threads)
	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			errs[t] = ctx.CompressImage(img, out, t)
		}(t)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1":
		return bcn.FormatBC1, nil
	case "bc3":
		return bcn.FormatBC3, nil
	case "bc4":
		return bcn.FormatBC4, nil
	case "bc5":
		return bcn.FormatBC5, nil
	case "bc6h":
		return bcn.FormatBC6H, nil
	case "bc7":
		return bcn.FormatBC7, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bc1|bc3|bc4|bc5|bc6h|bc7)", s)
	}
}

func parseQuality(s string) (bcn.Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return bcn.QualityFast, nil
	case "normal", "medium":
		return bcn.QualityNormal, nil
	case "high":
		return bcn.QualityHigh, nil
	default:
		return 0, fmt.Errorf("invalid -quality %q (want fast|normal|high)", s)
	}
}
