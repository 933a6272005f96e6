package imageloader

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"wavefinder/wavelet"

	// Pure-Go decoders for the fallback path. BMP and extended TIFF
	// support come from golang.org/x/image; gocv does not claim BMP/GIF
	// at all and fails on some TIFF variants.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// StdImageLoader decodes images with the Go image packages. It is the
// primary loader for BMP and GIF and the fallback when the OpenCV decode
// fails.
type StdImageLoader struct{}

func (l *StdImageLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp", ".gif", ".jpg", ".jpeg", ".png", ".tiff", ".tif":
		return fileExists(path)
	}
	return false
}

func (l *StdImageLoader) Load(path string) (wavelet.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return wavelet.Matrix{}, fmt.Errorf("cannot open %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return wavelet.Matrix{}, fmt.Errorf("cannot decode %s: %v", path, err)
	}
	return matrixFromImage(img), nil
}

// matrixFromImage converts any image to 8-bit grayscale intensities using
// the standard luma weights.
func matrixFromImage(img image.Image) wavelet.Matrix {
	bounds := img.Bounds()
	m := wavelet.NewMatrix(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// 16-bit channels scaled down to the 0..255 range.
			luma := (19595*float64(r) + 38470*float64(g) + 7471*float64(b)) / 65536 / 257
			m.Set(x-bounds.Min.X, y-bounds.Min.Y, luma)
		}
	}
	return m
}
