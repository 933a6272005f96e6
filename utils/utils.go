package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var commands = []string{"scan", "search"}

// ParseArguments converts command-line arguments into a map of flags and
// values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		for _, cmd := range commands {
			if os.Args[i] == cmd {
				args["command"] = cmd
				commandIndex = i
				break
			}
		}
		if commandIndex >= 0 {
			break
		}
	}

	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}
		arg := os.Args[i]

		// --key=value
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// --key value, or a bare boolean --key
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				args[flagName] = os.Args[i+1]
				i++
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the descriptor index
func GetDefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "wavefinder.db"
	}
	return filepath.Join(filepath.Dir(exePath), "wavefinder.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s scan --folder=PATH [--database=PATH] [--prefix=NAME] [--levels=N] [--force] [--legacy-offset] [--truncate] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s search --image=PATH [--database=PATH] [--prefix=NAME] [--levels=N] [--metric=NAME] [--top=K] [--features-out=PATH] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder        : Path to folder containing images to index\n")
	fmt.Printf("  --image         : Path to query image for search\n")
	fmt.Printf("  --database      : Path to descriptor index file (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --prefix        : Source prefix for indexing/filtering results\n")
	fmt.Printf("  --levels        : Haar decomposition depth (default: 3)\n")
	fmt.Printf("  --metric        : Distance metric: l1, l2 or linf (default: l2)\n")
	fmt.Printf("  --top           : Number of nearest images to report (default: 5)\n")
	fmt.Printf("  --features-out  : Write the raw feature matrix of the search corpus to a CSV file\n")
	fmt.Printf("  --force         : Force rewrite existing entries during scan\n")
	fmt.Printf("  --legacy-offset : Use the legacy +128 intensity shift instead of min-max normalization\n")
	fmt.Printf("  --truncate      : Accept images with dimensions not divisible by 2^levels (legacy truncation)\n")
	fmt.Printf("  --debug         : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile       : Specify custom log file path (default: wavefinder.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s scan --folder=/path/to/images --levels=3 --prefix=Archive1\n", os.Args[0])
	fmt.Printf("  %s search --image=/path/to/query.jpg --metric=l1 --top=10\n", os.Args[0])
}

// ParsePositiveInt parses a strictly positive integer parameter
func ParsePositiveInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value %q, expected a positive integer", name, value)
	}
	return n, nil
}
