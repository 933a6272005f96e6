package imageloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"wavefinder/wavelet"

	"gocv.io/x/gocv"
)

// GocvLoader handles the common formats OpenCV decodes directly.
type GocvLoader struct{}

func (l *GocvLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tiff", ".tif", ".webp":
		return fileExists(path)
	}
	return false
}

func (l *GocvLoader) Load(path string) (wavelet.Matrix, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		return wavelet.Matrix{}, fmt.Errorf("failed to decode image: %s", path)
	}
	defer img.Close()
	return matrixFromMat(img), nil
}

// matrixFromMat copies a single-channel 8-bit Mat into an intensity matrix.
func matrixFromMat(img gocv.Mat) wavelet.Matrix {
	m := wavelet.NewMatrix(img.Cols(), img.Rows())
	for y := 0; y < img.Rows(); y++ {
		for x := 0; x < img.Cols(); x++ {
			m.Set(x, y, float64(img.GetUCharAt(y, x)))
		}
	}
	return m
}
