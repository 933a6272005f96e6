package feature

import (
	"math"
	"testing"

	"wavefinder/wavelet"
)

const epsilon = 1e-9

func gradientImage(width, height int) wavelet.Matrix {
	m := wavelet.NewMatrix(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, float64((x*13+y*7)%251))
		}
	}
	return m
}

func TestNormalizeStretchesRange(t *testing.T) {
	m := wavelet.NewMatrix(2, 2)
	m.Set(0, 0, -50)
	m.Set(1, 0, 0)
	m.Set(0, 1, 25)
	m.Set(1, 1, 50)

	out := Normalize(m)
	if got := out.At(0, 0); math.Abs(got) > epsilon {
		t.Errorf("min pixel: got %v, want 0", got)
	}
	if got := out.At(1, 1); math.Abs(got-255) > epsilon {
		t.Errorf("max pixel: got %v, want 255", got)
	}
	if got := out.At(0, 1); math.Abs(got-191.25) > epsilon {
		t.Errorf("mid pixel: got %v, want 191.25", got)
	}
	if m.At(0, 0) != -50 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeFlatImage(t *testing.T) {
	m := wavelet.NewMatrix(4, 4)
	for i := range m.Pix {
		m.Pix[i] = 42
	}
	out := Normalize(m)
	for i, p := range out.Pix {
		if p != 127.5 {
			t.Fatalf("pixel %d: got %v, want midpoint 127.5", i, p)
		}
	}
}

func TestExtractVectorLength(t *testing.T) {
	for _, levels := range []int{0, 1, 2, 3} {
		v := Extract(gradientImage(16, 16), levels)
		if want := 2 * (3*levels + 1); len(v) != want {
			t.Errorf("levels=%d: vector length %d, want %d", levels, len(v), want)
		}
		if v.Bands() != 3*levels+1 {
			t.Errorf("levels=%d: %d bands, want %d", levels, v.Bands(), 3*levels+1)
		}
	}
}

func TestExtractKnownValues(t *testing.T) {
	// Single band (levels=0), two pixels: 2 and e.
	m := wavelet.NewMatrix(2, 1)
	m.Set(0, 0, 2)
	m.Set(1, 0, math.E)

	v := Extract(m, 0)
	wantEnergy := 4 + math.E*math.E
	wantEntropy := -2*math.Log(2) - math.E // -e*ln(e) = -e
	if math.Abs(v.Energy(0)-wantEnergy) > epsilon {
		t.Errorf("energy: got %v, want %v", v.Energy(0), wantEnergy)
	}
	if math.Abs(v.Entropy(0)-wantEntropy) > epsilon {
		t.Errorf("entropy: got %v, want %v", v.Entropy(0), wantEntropy)
	}
}

func TestExtractNonPositiveEntropyGuard(t *testing.T) {
	m := wavelet.NewMatrix(2, 1)
	m.Set(0, 0, -5)
	m.Set(1, 0, 0)

	v := Extract(m, 0)
	if v.Entropy(0) != 0 {
		t.Errorf("entropy of non-positive pixels: got %v, want 0", v.Entropy(0))
	}
	if v.Energy(0) != 25 {
		t.Errorf("energy: got %v, want 25", v.Energy(0))
	}
}

func TestDescribeIdempotent(t *testing.T) {
	img := gradientImage(16, 16)
	a, err := Describe("img", img, 2, Options{})
	if err != nil {
		t.Fatalf("first Describe: %v", err)
	}
	b, err := Describe("img", img, 2, Options{})
	if err != nil {
		t.Fatalf("second Describe: %v", err)
	}
	if len(a.Vector) != len(b.Vector) {
		t.Fatalf("vector lengths differ: %d vs %d", len(a.Vector), len(b.Vector))
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatalf("element %d differs between runs: %v vs %v", i, a.Vector[i], b.Vector[i])
		}
	}
}

func TestDescribeConstantImage(t *testing.T) {
	m := wavelet.NewMatrix(4, 4)
	for i := range m.Pix {
		m.Pix[i] = 100
	}
	d, err := Describe("const", m, 1, Options{})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	// Detail coefficients are all zero and stay zero through the min-max
	// stretch (min of the decomposed image is 0, LL is 200 -> 255).
	for band := 1; band <= 3; band++ {
		if d.Vector.Energy(band) != 0 {
			t.Errorf("band %d energy: got %v, want 0", band, d.Vector.Energy(band))
		}
	}
	if d.Vector.Energy(0) == 0 {
		t.Error("approximation band should carry the energy")
	}
}

func TestDescribeLegacyOffset(t *testing.T) {
	img := gradientImage(8, 8)
	a, err := Describe("img", img, 1, Options{})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	b, err := Describe("img", img, 1, Options{LegacyOffset: true})
	if err != nil {
		t.Fatalf("Describe legacy: %v", err)
	}
	same := true
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("legacy offset mode produced the same vector as min-max stretch")
	}
}

func TestDescribeRejectsBadDimensions(t *testing.T) {
	if _, err := Describe("img", gradientImage(6, 6), 2, Options{}); err == nil {
		t.Fatal("expected dimension error")
	}
	if _, err := Describe("img", gradientImage(6, 6), 2, Options{Truncate: true}); err != nil {
		t.Fatalf("truncation mode: %v", err)
	}
}

func TestVectorRoundtrip(t *testing.T) {
	v := Vector{1.5, -2.25, 0, math.Pi, 1e-300, 255}
	blob, err := v.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalVector(blob)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(v) {
		t.Fatalf("length: got %d, want %d", len(got), len(v))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], v[i])
		}
	}

	if _, err := UnmarshalVector(blob[:len(blob)-3]); err == nil {
		t.Error("expected error for truncated blob")
	}
}
