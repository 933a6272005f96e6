package scanner

import (
	"fmt"
	"sync"
	"time"

	"wavefinder/imageloader"
	"wavefinder/logging"
)

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed    int
	errors       int
	rawProcessed int
	ticker       *time.Ticker
	done         chan bool
	drained      chan bool
	mu           sync.Mutex
	totalFiles   int
	rawFiles     int
}

func setupProgressTracker(stats FileStats, resultsChan chan ProcessImageResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		drained:    make(chan bool),
		totalFiles: stats.totalFiles,
		rawFiles:   stats.rawFiles,
	}

	go tracker.displayProgress()
	go tracker.processResults(resultsChan)

	return tracker
}

func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Printf("\rProgress: %d/%d (Errors: %d, RAW: %d/%d)",
					p.processed, p.totalFiles, p.errors, p.rawProcessed, p.rawFiles)
			} else {
				fmt.Printf("\rProgress: %d/%d (RAW: %d/%d)",
					p.processed, p.totalFiles, p.rawProcessed, p.rawFiles)
			}
			p.mu.Unlock()
		}
	}
}

// processResults consumes the per-file results until the channel closes
func (p *ProgressTracker) processResults(resultsChan chan ProcessImageResult) {
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		if imageloader.IsRawFormat(result.Path) {
			p.rawProcessed++
		}
		if result.Success {
			logging.LogImageProcessed(result.Path, true, "")
		} else {
			p.errors++
			if result.Error != nil {
				logging.LogImageProcessed(result.Path, false, result.Error.Error())
			}
		}
		p.mu.Unlock()
	}
	p.drained <- true
}

// stop ends progress display after all pending results are counted.
// Call after the results channel has been closed.
func (p *ProgressTracker) stop() {
	<-p.drained
	p.ticker.Stop()
	p.done <- true
}
