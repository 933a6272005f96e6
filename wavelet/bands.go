package wavelet

// BandOf maps a pixel coordinate in a decomposed image to its subband
// index in [0, 3*levels].
//
// The walk starts at the full image and repeatedly halves it. A pixel
// falling in a detail quadrant at iteration `level` belongs to band
// (levels-level-1)*3 + q with q = 1 (top-right), 2 (bottom-left) or
// 3 (bottom-right). A pixel that stays in the top-left quadrant through
// every iteration is the coarsest approximation, band 0. Band indices are
// therefore ordered coarse to fine, the reverse of decomposition order;
// feature vectors depend on exactly this ordering.
func BandOf(x, y, nx, ny, levels int) int {
	for level := 0; level < levels; level++ {
		divX, divY := nx/2, ny/2
		right := x >= divX
		bottom := y >= divY
		switch {
		case right && bottom:
			return (levels-level-1)*3 + 3
		case right:
			return (levels-level-1)*3 + 1
		case bottom:
			return (levels-level-1)*3 + 2
		}
		nx, ny = divX, divY
	}
	return 0
}

// BandTable is a precomputed band index for every pixel of one
// (width, height, levels) geometry. Extraction loops hit every pixel, so
// the quadrant walk is done once per geometry instead of once per pixel.
type BandTable struct {
	idx    []int
	width  int
	levels int
}

// NewBandTable builds the lookup table for the given geometry.
func NewBandTable(width, height, levels int) *BandTable {
	t := &BandTable{
		idx:    make([]int, width*height),
		width:  width,
		levels: levels,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t.idx[y*width+x] = BandOf(x, y, width, height, levels)
		}
	}
	return t
}

// Band returns the subband index for pixel (x, y).
func (t *BandTable) Band(x, y int) int {
	return t.idx[y*t.width+x]
}

// NumBands returns the number of subbands, 3*levels + 1.
func (t *BandTable) NumBands() int {
	return 3*t.levels + 1
}
