package film

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Export snapshots the film and writes it to path, picking the encoder
// from the file extension. PPM, PNG and WebP are supported.
func Export(f *Film, path string) error {
	var encode func(io.Writer, *image.RGBA) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		encode = EncodePPM
	case ".png":
		encode = func(w io.Writer, img *image.RGBA) error { return png.Encode(w, img) }
	case ".webp":
		encode = func(w io.Writer, img *image.RGBA) error { return nativewebp.Encode(w, img, nil) }
	default:
		return fmt.Errorf("film: unsupported export format %q", filepath.Ext(path))
	}

	f.logger.Infof("exporting film to %q", path)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("film: export %q: %w", path, err)
	}
	if err = encode(out, f.Snapshot()); err != nil {
		out.Close()
		return fmt.Errorf("film: export %q: %w", path, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("film: export %q: %w", path, err)
	}
	return nil
}

// EncodePPM writes img as a binary (P6) PPM file with a 255 color
// depth.
func EncodePPM(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if _, err := fmt.Fprintf(w, "P6\n%d %d 255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}

	row := make([]byte, bounds.Dx()*3)
	for y := 0; y < bounds.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			row[x*3] = src[x*4]
			row[x*3+1] = src[x*4+1]
			row[x*3+2] = src[x*4+2]
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
