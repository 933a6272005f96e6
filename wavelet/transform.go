package wavelet

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions reports an image whose width or height is not
// divisible by 2^levels for the requested decomposition depth.
var ErrInvalidDimensions = errors.New("image dimensions not divisible by 2^levels")

// Options controls decomposition behavior.
type Options struct {
	// Truncate reproduces the legacy behavior for images whose dimensions
	// are not divisible by 2^levels: fractional rows and columns are
	// silently dropped by integer division at each level. When false,
	// Transform rejects such images with ErrInvalidDimensions.
	Truncate bool
}

// CheckDimensions reports whether width x height supports a clean
// decomposition of the given depth.
func CheckDimensions(width, height, levels int) error {
	if levels < 0 {
		return fmt.Errorf("levels must be non-negative, got %d", levels)
	}
	div := 1 << uint(levels)
	if width%div != 0 || height%div != 0 {
		return fmt.Errorf("%w: %dx%d at %d levels", ErrInvalidDimensions, width, height, levels)
	}
	return nil
}

// Transform computes the multi-level Haar decomposition of img. The input
// is never mutated; the returned matrix has the same dimensions with the
// nested quadrant band layout. Dimensions must be divisible by 2^levels.
func Transform(img Matrix, levels int) (Matrix, error) {
	return TransformWith(img, levels, Options{})
}

// TransformWith is Transform with explicit Options.
//
// Each level splits the active region in two sweeps. The vertical sweep
// pairs columns (x, x+1) of every row, storing low = (a+b)/2*sqrt2 at x/2
// and high = (a-b)/2*sqrt2 at x/2 + halfWidth. The horizontal sweep applies
// the same pairing to rows, stacking low/high vertically, which yields the
// LL/HL/LH/HH arrangement for that level. Pixels outside the active region
// are finalized detail bands from coarser iterations and carry forward
// unchanged. The active region then shrinks to the LL quadrant.
//
// The sqrt2 factor makes the transform orthonormal: total energy is
// preserved up to floating-point rounding.
func TransformWith(img Matrix, levels int, opts Options) (Matrix, error) {
	if levels < 0 {
		return Matrix{}, fmt.Errorf("levels must be non-negative, got %d", levels)
	}
	if !opts.Truncate {
		if err := CheckDimensions(img.Width, img.Height, levels); err != nil {
			return Matrix{}, err
		}
	}

	// Two preallocated buffers: each level reads cur into scratch
	// (vertical sweep) and scratch back into cur (horizontal sweep), so
	// the result always lands in cur and untouched pixels carry forward.
	cur := img.Clone()
	scratch := NewMatrix(img.Width, img.Height)

	ax, ay := img.Width, img.Height
	for level := 0; level < levels; level++ {
		halfX, halfY := ax/2, ay/2

		for y := 0; y < ay; y++ {
			for x := 0; x+1 < ax; x += 2 {
				a := cur.At(x, y)
				b := cur.At(x+1, y)
				scratch.Set(x/2, y, (a+b)/2*math.Sqrt2)
				scratch.Set(x/2+halfX, y, (a-b)/2*math.Sqrt2)
			}
		}

		// Only the 2*halfX columns produced by the vertical sweep are
		// paired; a trailing odd column is dropped (truncation mode).
		for x := 0; x < 2*halfX; x++ {
			for y := 0; y+1 < ay; y += 2 {
				a := scratch.At(x, y)
				b := scratch.At(x, y+1)
				cur.Set(x, y/2, (a+b)/2*math.Sqrt2)
				cur.Set(x, y/2+halfY, (a-b)/2*math.Sqrt2)
			}
		}

		ax, ay = halfX, halfY
	}

	return cur, nil
}
