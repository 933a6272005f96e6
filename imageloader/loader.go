// Package imageloader loads image files of various formats into grayscale
// intensity matrices for the wavelet pipeline.
package imageloader

import (
	"fmt"
	"os"

	"wavefinder/wavelet"
)

// Loader loads one family of image formats.
type Loader interface {
	CanLoad(path string) bool
	Load(path string) (wavelet.Matrix, error)
}

// Registry manages the available loaders.
type Registry struct {
	loaders []Loader
}

// NewRegistry creates a registry with the default loaders: gocv for the
// common formats, the pure-Go decoder as fallback, and the RAW
// preview-extraction loader.
func NewRegistry() *Registry {
	return &Registry{
		loaders: []Loader{
			&GocvLoader{},
			&StdImageLoader{},
			NewRawLoader(),
		},
	}
}

// RegisterLoader adds a custom loader to the registry.
func (r *Registry) RegisterLoader(loader Loader) {
	r.loaders = append(r.loaders, loader)
}

// CanLoadFile checks whether any registered loader claims the file.
func (r *Registry) CanLoadFile(path string) bool {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return true
		}
	}
	return false
}

// Load loads an image with the first loader that claims it. If that
// loader fails, the remaining claimants are tried in order.
func (r *Registry) Load(path string) (wavelet.Matrix, error) {
	var lastErr error
	tried := false
	for _, loader := range r.loaders {
		if !loader.CanLoad(path) {
			continue
		}
		tried = true
		img, err := loader.Load(path)
		if err == nil {
			return img, nil
		}
		lastErr = err
	}
	if !tried {
		return wavelet.Matrix{}, fmt.Errorf("no suitable loader found for image: %s", path)
	}
	return wavelet.Matrix{}, fmt.Errorf("failed to load image %s: %v", path, lastErr)
}

// Load loads a single image in grayscale using the default registry.
func Load(path string) (wavelet.Matrix, error) {
	return NewRegistry().Load(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
