// Command bcnbench measures block compression throughput over synthetic
// images.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/gputex/bcn-encoder/bcn"
)

func main() {
	var (
		format     string
		quality    string
		width      int
		height     int
		pattern    string
		iters      int
		threads    int
		cpuprofile string
	)
	flag.StringVar(&format, "format", "bc7", "block format: bc1|bc3|bc4|bc5|bc6h|bc7")
	flag.StringVar(&quality, "quality", "normal", "quality preset: fast|normal|high")
	flag.IntVar(&width, "w", 256, "image width")
	flag.IntVar(&height, "h", 256, "image height")
	flag.StringVar(&pattern, "pattern", "gradient", "test image: gradient|noise")
	flag.IntVar(&iters, "iters", 10, "iterations")
	flag.IntVar(&threads, "threads", 1, "worker goroutines")
	flag.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	flag.Parse()

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
	if width <= 0 || height <= 0 || iters <= 0 || threads <= 0 {
		fmt.Fprintln(os.Stderr, "w, h, iters and threads must be > 0")
		os.Exit(2)
	}

	img := makeImage(width, height, pattern, formatVal == bcn.FormatBC6H)
	out := make([]byte, bcn.CompressedSize(width, height, formatVal))

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	ctx, err := bcn.NewContext(formatVal, qualityVal, threads)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	start := time.Now()
	for it := 0; it < iters; it++ {
		var wg sync.WaitGroup
		for t := 0; t < threads; t++ {
			wg.Add(1)
			go func(t int) {
				defer wg.Done()
				if err := ctx.CompressImage(img, out, t); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
			}(t)
		}
		wg.Wait()
		if threads > 1 {
			if err := ctx.CompressReset(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}
	elapsed := time.Since(start)

	mp := float64(width) * float64(height) * float64(iters) / 1e6
	fmt.Printf("%s %s %dx%d %s: %d iters in %v (%.2f MP/s, %d threads, GOMAXPROCS=%d)\n",
		formatVal, qualityVal, width, height, pattern,
		iters, elapsed.Round(time.Millisecond),
		mp/elapsed.Seconds(), threads, runtime.GOMAXPROCS(0))
}

// makeImage builds a deterministic synthetic test image. HDR images scale
// the gradient past 1.0 to exercise the half-float range.
func makeImage(w, h int, pattern string, hdr bool) *bcn.Image {
	img := &bcn.Image{
		DimX: w,
		DimY: h,
		Pix:  make([]float32, w*h*4),
	}
	scale := float32(1)
	if hdr {
		scale = 64
	}
	noise := strings.EqualFold(pattern, "noise")
	seed := uint32(0x9E3779B9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			if noise {
				for ch := 0; ch < 3; ch++ {
					seed = seed*1664525 + 1013904223
					img.Pix[off+ch] = float32(seed>>8) / float32(1<<24) * scale
				}
			} else {
				img.Pix[off+0] = float32(x) / float32(w) * scale
				img.Pix[off+1] = float32(y) / float32(h) * scale
				img.Pix[off+2] = float32(math.Abs(float64(x-y))) / float32(w) * scale
			}
			img.Pix[off+3] = 1
		}
	}
	return img
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
