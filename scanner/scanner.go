// Package scanner walks a folder of images and indexes a wavelet
// descriptor for each one.
package scanner

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"wavefinder/database"
	"wavefinder/feature"
	"wavefinder/imageloader"
	"wavefinder/logging"
	"wavefinder/types"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath   string
	SourcePrefix string
	Levels       int
	LegacyOffset bool
	Truncate     bool
	ForceRewrite bool
	DebugMode    bool
	MaxWorkers   int
}

// ProcessImageResult holds the result of processing one image
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
}

// ScanAndStoreFolder scans a folder and stores a descriptor for every
// image it can load. Unreadable files are counted and skipped; they never
// abort the scan.
func ScanAndStoreFolder(db *sql.DB, options ScanOptions) error {
	var wg sync.WaitGroup
	resultsChan := make(chan ProcessImageResult, 100)
	workers := options.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)

	fileStats := countFilesToProcess(options)
	printStartupInfo(fileStats, options)

	progressTracker := setupProgressTracker(fileStats, resultsChan)

	metadataReader := NewMetadataReader()
	defer metadataReader.Close()

	startTime := time.Now()
	registry := imageloader.NewRegistry()

	err := filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			if err != nil && options.DebugMode {
				logging.LogError("Error accessing path %s: %v", path, err)
			}
			return nil
		}

		if registry.CanLoadFile(path) {
			wg.Add(1)
			semaphore <- struct{}{}

			go func(p string) {
				defer wg.Done()
				defer func() { <-semaphore }()
				resultsChan <- processAndStoreImage(db, registry, metadataReader, p, options)
			}(path)
		}
		return nil
	})

	wg.Wait()
	close(resultsChan)
	progressTracker.stop()

	printCompletionStats(db, progressTracker, startTime, options)
	return err
}

// FileStats tracks information about the files to be processed
type FileStats struct {
	totalFiles int
	rawFiles   int
}

func countFilesToProcess(options ScanOptions) FileStats {
	stats := FileStats{}
	registry := imageloader.NewRegistry()

	if options.DebugMode {
		logging.DebugLog("Starting image scan on folder: %s", options.FolderPath)
		logging.DebugLog("Levels: %d, Force rewrite: %v, Source prefix: %s",
			options.Levels, options.ForceRewrite, options.SourcePrefix)
	}

	filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if registry.CanLoadFile(path) {
			stats.totalFiles++
			if imageloader.IsRawFormat(path) {
				stats.rawFiles++
			}
		}
		return nil
	})

	return stats
}

func printStartupInfo(stats FileStats, options ScanOptions) {
	fmt.Printf("Starting descriptor indexing...\nTotal image files to process: %d (including %d RAW files)\n",
		stats.totalFiles, stats.rawFiles)
	fmt.Printf("Decomposition levels: %d\n", options.Levels)
	fmt.Printf("Force rewrite mode: %v\n", options.ForceRewrite)
	if options.SourcePrefix != "" {
		fmt.Printf("Source prefix: %s\n", options.SourcePrefix)
	}
	if options.DebugMode {
		fmt.Printf("Debug mode: enabled\n")
		logging.DebugLog("Found %d image files to process (%d RAW files)", stats.totalFiles, stats.rawFiles)
	}
}

func printCompletionStats(db *sql.DB, tracker *ProgressTracker, startTime time.Time, options ScanOptions) {
	elapsed := time.Since(startTime)

	if options.DebugMode {
		logging.DebugLog("Scan completed in %v. Processed: %d, Errors: %d, RAW files: %d",
			elapsed, tracker.processed, tracker.errors, tracker.rawProcessed)
	}

	fmt.Println("\nIndexing complete.")
	fmt.Printf("Processed %d images in %v.\n", tracker.processed, elapsed.Round(time.Second))
	if tracker.errors > 0 {
		fmt.Printf("Encountered %d errors during indexing.\n", tracker.errors)
		fmt.Println("Check the log file for details.")
	}

	if stats, err := database.GetScanStats(db, options.SourcePrefix); err == nil {
		fmt.Printf("Images in index: %d\n", stats.TotalImages)
		for levels, count := range stats.ByLevels {
			fmt.Printf("- %d at %d decomposition levels\n", count, levels)
		}
	}
}

// processAndStoreImage computes and stores the descriptor for one image
func processAndStoreImage(db *sql.DB, registry *imageloader.Registry, meta *MetadataReader, path string, options ScanOptions) ProcessImageResult {
	result := ProcessImageResult{Path: path}

	if !options.ForceRewrite {
		if skipResult := checkAndSkipIfUnchanged(db, path, options); skipResult != nil {
			return *skipResult
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Errorf("cannot stat file %s: %v", path, err)
		return result
	}

	img, err := registry.Load(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to load image %s: %v", path, err)
		return result
	}

	desc, err := feature.Describe(path, img, options.Levels, feature.Options{
		LegacyOffset: options.LegacyOffset,
		Truncate:     options.Truncate,
	})
	if err != nil {
		result.Error = fmt.Errorf("cannot compute descriptor for %s: %v", path, err)
		return result
	}

	imageInfo := types.ImageInfo{
		Path:         path,
		SourcePrefix: options.SourcePrefix,
		Format:       strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Width:        img.Width,
		Height:       img.Height,
		ModifiedAt:   fileInfo.ModTime().Format(time.RFC3339),
		Size:         fileInfo.Size(),
		Levels:       options.Levels,
		Features:     desc.Vector,
	}

	// For RAW files the loaded pixels come from an embedded preview, so
	// the matrix dimensions are not the sensor dimensions. Record the
	// real ones when exiftool can supply them.
	if imageloader.IsRawFormat(path) {
		if fm, err := meta.Read(path); err == nil {
			if fm.Width > 0 && fm.Height > 0 {
				imageInfo.Width, imageInfo.Height = fm.Width, fm.Height
			}
			if fm.FileType != "" {
				imageInfo.Format = strings.ToLower(fm.FileType)
			}
		} else if options.DebugMode {
			logging.LogWarning("Metadata read failed for %s: %v", path, err)
		}
	}

	if err := database.StoreImageInfo(db, imageInfo, options.ForceRewrite); err != nil {
		result.Error = fmt.Errorf("cannot store data for %s: %v", path, err)
		return result
	}

	result.Success = true
	return result
}

// checkAndSkipIfUnchanged skips images whose stored descriptor is still
// current based on the file modification time
func checkAndSkipIfUnchanged(db *sql.DB, path string, options ScanOptions) *ProcessImageResult {
	exists, storedModTime, err := database.CheckImageExists(db, path, options.SourcePrefix)
	if err != nil {
		return &ProcessImageResult{Path: path, Error: fmt.Errorf("database error for %s: %v", path, err)}
	}
	if !exists {
		return nil
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return &ProcessImageResult{Path: path, Error: fmt.Errorf("cannot stat file %s: %v", path, err)}
	}
	storedTime, err := time.Parse(time.RFC3339, storedModTime)
	if err != nil {
		return &ProcessImageResult{Path: path, Error: fmt.Errorf("cannot parse stored time for %s: %v", path, err)}
	}

	if !fileInfo.ModTime().After(storedTime) {
		if options.DebugMode {
			logging.DebugLog("Skipping unchanged image: %s", path)
		}
		return &ProcessImageResult{Path: path, Success: true}
	}
	return nil
}
