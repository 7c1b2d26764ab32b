package bcn

import (
	"runtime"
	"sync/atomic"
)

type contextState uint32

const (
	ctxIdle contextState = iota
	ctxCompressActive
)

// Context is a reusable compression context for a fixed format and quality.
//
// It compresses one image at a time. For multi-threaded use, callers create
// threadCount goroutines and call CompressImage once per worker with distinct
// thread indices in [0, threadCount); the workers join one compression and
// pull blocks off a shared atomic counter. Block order in the output never
// depends on scheduling, so the compressed bytes are identical for any thread
// count. The compression stays open until every worker has passed through it,
// even if the block supply drains first.
type Context struct {
	format      Format
	quality     Quality
	threadCount int

	state atomic.Uint32

	needsReset atomic.Uint32

	// 0 idle, 1 initializing, 2 active
	initState atomic.Uint32
	workers   atomic.Int32
	joined    atomic.Uint32

	totalBlocks atomic.Uint32
	nextBlock   atomic.Uint32
	doneBlocks  atomic.Uint32
}

// NewContext allocates a context for threadCount cooperating workers.
func NewContext(format Format, quality Quality, threadCount int) (*Context, error) {
	if !format.valid() {
		return nil, newError(ErrBadFormat, "unknown block format")
	}
	if !quality.valid() {
		return nil, newError(ErrBadQuality, "unknown quality preset")
	}
	if threadCount <= 0 {
		return nil, newError(ErrBadParam, "thread count must be positive")
	}

	ctx := &Context{
		format:      format,
		quality:     quality,
		threadCount: threadCount,
	}
	ctx.state.Store(uint32(ctxIdle))
	return ctx, nil
}

// CompressImage encodes img into out, cooperating with the other workers of
// this context. All threadCount workers must call it once per image with the
// same img and out; each worker returns once no blocks remain for it.
func (c *Context) CompressImage(img *Image, out []byte, threadIndex int) error {
	if c == nil {
		return newError(ErrBadContext, "nil context")
	}
	if threadIndex < 0 || threadIndex >= c.threadCount {
		return newError(ErrBadParam, "invalid thread index")
	}
	if err := validateImage(img); err != nil {
		return err
	}

	// Single-threaded contexts implicitly reset between images.
	if c.threadCount == 1 {
		_ = c.CompressReset()
	}

	blocksX, blocksY := NumBlocks(img.DimX, img.DimY)
	totalBlocks := blocksX * blocksY
	blockBytes := c.format.BlockBytes()
	if len(out) < totalBlocks*blockBytes {
		return newError(ErrOutOfMem, "output buffer too small")
	}

	if err := c.beginCompress(uint32(totalBlocks)); err != nil {
		return err
	}
	defer c.endCompress()

	var texels [16][4]float32
	total := int(c.totalBlocks.Load())
	for {
		i := int(c.nextBlock.Add(1) - 1)
		if i < 0 || i >= total {
			break
		}

		by := i / blocksX
		bx := i - by*blocksX
		fetchBlock(img, bx, by, &texels)
		clampTexels(&texels, c.format)
		encodeBlock(c.format, c.quality, &texels, out[i*blockBytes:(i+1)*blockBytes])

		c.doneBlocks.Add(1)
	}

	return nil
}

// CompressReset rearms a multi-threaded context for the next image. It must
// be called between images, after every worker has returned.
func (c *Context) CompressReset() error {
	if c == nil {
		return newError(ErrBadContext, "nil context")
	}
	if c.workers.Load() != 0 {
		return newError(ErrBadContext, "compress reset while compress active")
	}
	c.needsReset.Store(0)
	c.initState.Store(0)
	c.joined.Store(0)
	c.state.Store(uint32(ctxIdle))
	return nil
}

func (c *Context) beginCompress(totalBlocks uint32) error {
	if c.needsReset.Load() != 0 {
		return newError(ErrBadContext, "compress requires reset")
	}

	for {
		switch contextState(c.state.Load()) {
		case ctxIdle:
			if c.state.CompareAndSwap(uint32(ctxIdle), uint32(ctxCompressActive)) {
				// Acquired.
			} else {
				continue
			}
		case ctxCompressActive:
			// Join.
		default:
			return newError(ErrBadContext, "context busy")
		}
		break
	}

	// First worker in initializes the schedule; latecomers spin until done.
	for {
		st := c.initState.Load()
		if st == 2 {
			break
		}
		if st == 0 && c.initState.CompareAndSwap(0, 1) {
			c.totalBlocks.Store(totalBlocks)
			c.nextBlock.Store(0)
			c.doneBlocks.Store(0)
			c.initState.Store(2)
			break
		}
		runtime.Gosched()
	}

	// workers increments before joined; endCompress counts on that order.
	c.workers.Add(1)
	c.joined.Add(1)
	return nil
}

// endCompress retires the compression once the last of the threadCount
// workers leaves. A drained block supply alone does not retire it; workers
// that arrive after the blocks ran out still join and leave normally.
func (c *Context) endCompress() {
	if c.workers.Add(-1) != 0 {
		return
	}
	if c.joined.Load() != uint32(c.threadCount) {
		return
	}

	if c.threadCount > 1 {
		c.needsReset.Store(1)
	}

	c.joined.Store(0)
	c.initState.Store(0)
	c.state.Store(uint32(ctxIdle))
}
