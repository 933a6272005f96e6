package scanner

import (
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
)

// FileMetadata is the subset of exif metadata the index records.
type FileMetadata struct {
	FileType string
	Width    int
	Height   int
}

// MetadataReader reads image metadata through a shared long-running
// exiftool process. The underlying process is not goroutine safe, so
// reads are serialized.
type MetadataReader struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewMetadataReader starts the exiftool process. If exiftool is not
// installed, the reader still works and every Read reports the startup
// error.
func NewMetadataReader() *MetadataReader {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return &MetadataReader{}
	}
	return &MetadataReader{et: et}
}

// Read extracts the file type and sensor dimensions for one file.
func (r *MetadataReader) Read(path string) (FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.et == nil {
		return FileMetadata{}, fmt.Errorf("exiftool unavailable")
	}

	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return FileMetadata{}, fmt.Errorf("no metadata for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return FileMetadata{}, fmt.Errorf("cannot read metadata for %s: %v", path, meta.Err)
	}

	var fm FileMetadata
	if ft, err := meta.GetString("FileType"); err == nil {
		fm.FileType = ft
	}
	if w, err := meta.GetInt("ImageWidth"); err == nil {
		fm.Width = int(w)
	}
	if h, err := meta.GetInt("ImageHeight"); err == nil {
		fm.Height = int(h)
	}
	return fm, nil
}

// Close shuts the exiftool process down.
func (r *MetadataReader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.et != nil {
		r.et.Close()
		r.et = nil
	}
}
