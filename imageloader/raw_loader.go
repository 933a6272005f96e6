package imageloader

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"wavefinder/logging"
	"wavefinder/wavelet"

	"gocv.io/x/gocv"
)

var rawExtensions = []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf"}

// IsRawFormat reports whether the path has a RAW camera extension.
func IsRawFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, raw := range rawExtensions {
		if ext == raw {
			return true
		}
	}
	return false
}

// RawLoader handles RAW camera formats by extracting the embedded preview
// (exiftool) or converting the sensor data (dcraw) into a temporary file
// first.
type RawLoader struct {
	TempDir string
}

// NewRawLoader creates a RawLoader using the system temp directory.
func NewRawLoader() *RawLoader {
	return &RawLoader{TempDir: os.TempDir()}
}

func (l *RawLoader) CanLoad(path string) bool {
	return IsRawFormat(path) && fileExists(path)
}

func (l *RawLoader) Load(path string) (wavelet.Matrix, error) {
	tempFilename := filepath.Join(l.TempDir, fmt.Sprintf("raw_conv_%d.tiff", time.Now().UnixNano()))
	defer os.Remove(tempFilename)

	// Embedded previews usually match what the camera would have
	// produced as JPEG, so try those before a full dcraw conversion.
	methods := []func(string, string) error{
		extractPreviewWithExiftool,
		convertWithDcraw,
	}
	for _, method := range methods {
		if err := method(path, tempFilename); err != nil {
			continue
		}
		if info, err := os.Stat(tempFilename); err != nil || info.Size() == 0 {
			continue
		}
		img := gocv.IMRead(tempFilename, gocv.IMReadGrayScale)
		if !img.Empty() {
			defer img.Close()
			return matrixFromMat(img), nil
		}
	}

	// Last resort: some DNG variants decode directly.
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		return wavelet.Matrix{}, fmt.Errorf("failed to load RAW image: %s (all conversion methods failed)", path)
	}
	defer img.Close()
	return matrixFromMat(img), nil
}

// extractPreviewWithExiftool pulls the embedded preview JPEG out of the
// RAW container.
func extractPreviewWithExiftool(path, outputPath string) error {
	cmd := exec.Command("exiftool", "-b", "-PreviewImage", path)

	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logging.LogWarning("exiftool preview extraction failed for %s: %v, stderr: %s", path, err, stderr.String())
		return err
	}
	return nil
}

// convertWithDcraw converts the sensor data to TIFF.
// -T TIFF output, -c to stdout, -w camera white balance, -q 3 high quality.
func convertWithDcraw(path, outputPath string) error {
	cmd := exec.Command("dcraw", "-T", "-c", "-w", "-q", "3", path)

	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logging.LogWarning("dcraw conversion failed for %s: %v, stderr: %s", path, err, stderr.String())
		return err
	}
	return nil
}
