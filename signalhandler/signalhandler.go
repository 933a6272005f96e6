package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler configures signal handling for safer interaction with the
// C libraries behind the image decoder
func SetupHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			os.Exit(0)
		}
	}()
}

// GetOptimalProcs returns the number of worker goroutines to use. Image
// decoding goes through CGo, where oversubscription causes problems, so
// this stays below the CPU count.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}
	return maxProcs
}
