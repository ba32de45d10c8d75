// Package film implements the memory-mapped progressive sample
// accumulator that render workers write through and that preview,
// resume and export read from.
package film

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/types"
)

const (
	filmMagic   = "LUMF"
	filmVersion = 1

	headerSize  = 64
	pixelStride = 16

	offVersion = 4
	offWidth   = 8
	offHeight  = 12
	offPasses  = 16
	offSamples = 20
)

// Film is a shared mapping over an accumulator file. Each pixel entry
// stores three float32 channel sums followed by a uint32 sample count;
// colors stay linear and are only gamma corrected when a snapshot is
// taken. The mapping is MAP_SHARED so a preview process opening the
// same file observes render progress live.
//
// Every pixel has a single writer (the renderer hands out
// non-overlapping tiles) but any number of concurrent readers, possibly
// in other processes.
type Film struct {
	path   string
	file   *os.File
	data   []byte
	width  int
	height int
	logger log.Logger
}

// Create allocates a zeroed film file at path. It fails if the file
// already exists; use Open or OpenOrCreate to continue an interrupted
// render.
func Create(path string, width, height int) (*Film, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("film: invalid dimensions %dx%d", width, height)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("film: create %q: %w", path, err)
	}

	size := int64(headerSize) + int64(pixelStride)*int64(width)*int64(height)
	if err = file.Truncate(size); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("film: create %q: %w", path, err)
	}

	f, err := mapFilm(path, file, size)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}

	copy(f.data[0:4], filmMagic)
	*f.u32(offVersion) = filmVersion
	*f.u32(offWidth) = uint32(width)
	*f.u32(offHeight) = uint32(height)
	f.width, f.height = width, height

	f.logger.Infof("created film %q (%d x %d)", path, width, height)
	return f, nil
}

// Open maps an existing film file and validates its header.
func Open(path string) (*Film, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("film: open %q: %w", path, err)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("film: open %q: %w", path, err)
	}
	if st.Size() < headerSize {
		file.Close()
		return nil, fmt.Errorf("film: %q is not a film file", path)
	}

	f, err := mapFilm(path, file, st.Size())
	if err != nil {
		file.Close()
		return nil, err
	}

	if string(f.data[0:4]) != filmMagic {
		f.Close()
		return nil, fmt.Errorf("film: %q is not a film file", path)
	}
	if v := *f.u32(offVersion); v != filmVersion {
		f.Close()
		return nil, fmt.Errorf("film: %q uses unsupported version %d", path, v)
	}

	f.width = int(*f.u32(offWidth))
	f.height = int(*f.u32(offHeight))
	expSize := int64(headerSize) + int64(pixelStride)*int64(f.width)*int64(f.height)
	if st.Size() != expSize {
		f.Close()
		return nil, fmt.Errorf("film: %q has %d bytes, expected %d for %d x %d", path, st.Size(), expSize, f.width, f.height)
	}

	f.logger.Infof("opened film %q (%d x %d, %d passes, %d samples per pixel)", path, f.width, f.height, f.Passes(), f.Samples())
	return f, nil
}

// OpenOrCreate resumes the film at path or creates a fresh one when it
// does not exist. A resumed film must match the requested dimensions.
func OpenOrCreate(path string, width, height int) (*Film, error) {
	f, err := Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Create(path, width, height)
	}
	if err != nil {
		return nil, err
	}

	if f.width != width || f.height != height {
		f.Close()
		return nil, fmt.Errorf("film: %q is %d x %d, expected %d x %d", path, f.width, f.height, width, height)
	}
	return f, nil
}

func mapFilm(path string, file *os.File, size int64) (*Film, error) {
	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("film: map %q: %w", path, err)
	}

	return &Film{
		path:   path,
		file:   file,
		data:   data,
		logger: log.New("film"),
	}, nil
}

func (f *Film) Path() string {
	return f.path
}

func (f *Film) Width() int {
	return f.width
}

func (f *Film) Height() int {
	return f.height
}

// Passes returns the number of completed full passes over the frame.
func (f *Film) Passes() uint32 {
	return atomic.LoadUint32(f.u32(offPasses))
}

// Samples returns the per-pixel sample count scheduled by completed
// passes. Resume decisions use the per-pixel counts instead; the header
// counters exist for reporting.
func (f *Film) Samples() uint32 {
	return atomic.LoadUint32(f.u32(offSamples))
}

// AddPass records a completed pass of samplesPerPixel samples.
func (f *Film) AddPass(samplesPerPixel uint32) {
	atomic.AddUint32(f.u32(offPasses), 1)
	atomic.AddUint32(f.u32(offSamples), samplesPerPixel)
}

// AddSample accumulates a linear color sample into pixel (x, y). The
// channel sums are stored before the count is bumped so a concurrent
// reader never averages a sample it has not seen.
func (f *Film) AddSample(x, y int, color types.Vec3) {
	off := f.pixelOffset(x, y)
	for c := 0; c < 3; c++ {
		ptr := f.u32(off + 4*c)
		sum := math.Float32frombits(atomic.LoadUint32(ptr)) + color[c]
		atomic.StoreUint32(ptr, math.Float32bits(sum))
	}
	atomic.AddUint32(f.u32(off+12), 1)
}

// SampleCount returns the number of samples accumulated into (x, y).
func (f *Film) SampleCount(x, y int) uint32 {
	return atomic.LoadUint32(f.u32(f.pixelOffset(x, y) + 12))
}

// At returns the mean color of pixel (x, y). The count is read on both
// sides of the sums and the read retried on a change, so a torn average
// is never returned even while a writer is accumulating.
func (f *Film) At(x, y int) types.Vec3 {
	off := f.pixelOffset(x, y)
	countPtr := f.u32(off + 12)
	for {
		count := atomic.LoadUint32(countPtr)
		r := math.Float32frombits(atomic.LoadUint32(f.u32(off)))
		g := math.Float32frombits(atomic.LoadUint32(f.u32(off + 4)))
		b := math.Float32frombits(atomic.LoadUint32(f.u32(off + 8)))
		if atomic.LoadUint32(countPtr) != count {
			continue
		}

		if count == 0 {
			return types.Vec3{}
		}
		inv := 1 / float32(count)
		return types.XYZ(r*inv, g*inv, b*inv)
	}
}

// Snapshot converts the current accumulator contents into a gamma
// corrected 8-bit image. It is safe to call while a render is writing
// to the film.
func (f *Film) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+f.width*4]
		for x := 0; x < f.width; x++ {
			color := f.At(x, y)
			row[x*4] = gammaByte(color[0])
			row[x*4+1] = gammaByte(color[1])
			row[x*4+2] = gammaByte(color[2])
			row[x*4+3] = 255
		}
	}
	return img
}

// Sync flushes the mapping to the backing file.
func (f *Film) Sync() error {
	if err := unix.Msync(f.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("film: sync %q: %w", f.path, err)
	}
	return nil
}

// Close unmaps the film and closes the backing file.
func (f *Film) Close() error {
	var err error
	if f.data != nil {
		err = unix.Munmap(f.data)
		f.data = nil
	}
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("film: close %q: %w", f.path, err)
	}
	return nil
}

func (f *Film) pixelOffset(x, y int) int {
	return headerSize + pixelStride*(y*f.width+x)
}

func (f *Film) u32(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&f.data[off]))
}

// Accumulated colors are linear; displayed bytes use gamma 2.
func gammaByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	v = float32(math.Sqrt(float64(v)))
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
