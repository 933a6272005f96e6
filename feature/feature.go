/*
Package feature turns a Haar-decomposed image into a compact per-subband
statistical descriptor used for similarity search.
*/
package feature

import (
	"math"

	"wavefinder/wavelet"
)

// Vector holds interleaved (energy, entropy) pairs, one pair per subband,
// ordered coarse to fine: [e0, h0, e1, h1, ...]. Its length is
// 2*(3*levels+1). Never mutated after extraction.
type Vector []float64

// Bands returns the number of subbands summarized by the vector.
func (v Vector) Bands() int { return len(v) / 2 }

// Energy returns the accumulated squared intensity of one band.
func (v Vector) Energy(band int) float64 { return v[2*band] }

// Entropy returns the accumulated surprisal of one band.
func (v Vector) Entropy(band int) float64 { return v[2*band+1] }

// Descriptor pairs an image identifier (a path, typically) with its
// feature vector. The identifier is opaque to the core; uniqueness is the
// caller's concern.
type Descriptor struct {
	Identifier string
	Vector     Vector
}

// Options controls descriptor computation.
type Options struct {
	// LegacyOffset replaces the min-max stretch with the historical
	// constant +128 shift. Signed detail coefficients below -128 then
	// contribute zero entropy; kept only for compatibility with
	// descriptors built by older indexes.
	LegacyOffset bool

	// Truncate is passed through to the wavelet transform.
	Truncate bool
}

// Normalize min-max stretches all intensities of img to [0, 255] and
// returns the result as a new matrix. A flat image (max == min) maps to a
// uniform 127.5 rather than dividing by zero. Run on a decomposed image
// before extraction so that the transform's signed output cannot silently
// zero out entropy terms.
func Normalize(img wavelet.Matrix) wavelet.Matrix {
	out := img.Clone()
	if len(out.Pix) == 0 {
		return out
	}

	min, max := out.Pix[0], out.Pix[0]
	for _, p := range out.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	if max == min {
		for i := range out.Pix {
			out.Pix[i] = 127.5
		}
		return out
	}

	scale := 255 / (max - min)
	for i := range out.Pix {
		out.Pix[i] = (out.Pix[i] - min) * scale
	}
	return out
}

// offset applies the legacy constant shift in place of normalization.
func offset(img wavelet.Matrix, by float64) wavelet.Matrix {
	out := img.Clone()
	for i := range out.Pix {
		out.Pix[i] += by
	}
	return out
}

// Extract computes the feature vector of a decomposed image: for every
// pixel P in band b it accumulates energy[b] += P*P and, for P > 0,
// entropy[b] += -P*ln(P). The entropy term is an energy-weighted
// surprisal sum over raw intensities, not a normalized Shannon entropy.
// The result is independent of traversal order.
func Extract(img wavelet.Matrix, levels int) Vector {
	bands := wavelet.NewBandTable(img.Width, img.Height, levels)
	energy := make([]float64, bands.NumBands())
	entropy := make([]float64, bands.NumBands())

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.At(x, y)
			b := bands.Band(x, y)
			energy[b] += p * p
			if p > 0 {
				entropy[b] += -p * math.Log(p)
			}
		}
	}

	v := make(Vector, 0, 2*bands.NumBands())
	for b := 0; b < bands.NumBands(); b++ {
		v = append(v, energy[b], entropy[b])
	}
	return v
}

// Describe runs the full descriptor pipeline for one image: Haar
// decomposition, intensity normalization, then per-band extraction. The
// input matrix is not mutated.
func Describe(identifier string, img wavelet.Matrix, levels int, opts Options) (Descriptor, error) {
	dec, err := wavelet.TransformWith(img, levels, wavelet.Options{Truncate: opts.Truncate})
	if err != nil {
		return Descriptor{}, err
	}

	if opts.LegacyOffset {
		dec = offset(dec, 128)
	} else {
		dec = Normalize(dec)
	}

	return Descriptor{
		Identifier: identifier,
		Vector:     Extract(dec, levels),
	}, nil
}
