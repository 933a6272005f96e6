package logging

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger  zerolog.Logger
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
)

// SetupLogger initializes the debug logger writing to the specified file
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}

	logger = zerolog.New(logFile).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logger.Info().Msg("wavefinder debug log started")

	isSetup = true
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Info().Msg("wavefinder debug log closed")
		logFile.Close()
		logFile = nil
		isSetup = false
	}
}

// DebugLog logs a message if the logger has been set up
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		logger.Debug().Msgf(format, args...)
	}
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		logger.Info().Msgf(format, args...)
	}
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		logger.Warn().Msgf(format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		logger.Error().Msgf(format, args...)
	}
}

// LogImageProcessed logs the outcome of processing one image
func LogImageProcessed(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()

	if !isSetup {
		return
	}
	if success {
		logger.Debug().Str("path", path).Msg("processed")
	} else {
		logger.Error().Str("path", path).Str("error", errMsg).Msg("failed")
	}
}
