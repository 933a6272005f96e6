/*
Package wavelet implements a multi-level 2D Haar wavelet decomposition of
grayscale images and the subband addressing that goes with it.

A decomposed image keeps the dimensions of its input but changes meaning:
the top-left nx/2^levels x ny/2^levels region holds the coarsest
approximation (band 0), and the remaining area is partitioned into nested
quadrant rings, each ring holding the three detail subbands of one
decomposition level.
*/
package wavelet

// Matrix is a grayscale image: a flat row-major buffer of real-valued
// intensities. The value at (x, y) lives at index y*Width + x.
type Matrix struct {
	Pix    []float64
	Width  int
	Height int
}

// NewMatrix allocates a zeroed matrix of the given dimensions.
func NewMatrix(width, height int) Matrix {
	return Matrix{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the intensity at (x, y).
func (m Matrix) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

// Set stores an intensity at (x, y).
func (m Matrix) Set(x, y int, v float64) {
	m.Pix[y*m.Width+x] = v
}

// Clone returns a deep copy sharing no storage with the receiver.
func (m Matrix) Clone() Matrix {
	out := Matrix{
		Pix:    make([]float64, len(m.Pix)),
		Width:  m.Width,
		Height: m.Height,
	}
	copy(out.Pix, m.Pix)
	return out
}
