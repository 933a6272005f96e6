package types

import "wavefinder/feature"

// ImageInfo holds the metadata and descriptor stored for one indexed image
type ImageInfo struct {
	ID           int64          `json:"id"`
	Path         string         `json:"path"`
	SourcePrefix string         `json:"source_prefix"`
	Format       string         `json:"format"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	ModifiedAt   string         `json:"modified_at"`
	Size         int64          `json:"size"`
	Levels       int            `json:"levels"`
	Features     feature.Vector `json:"-"`
}

// Match holds one ranked search result
type Match struct {
	Path         string
	SourcePrefix string
	Distance     float64
}
