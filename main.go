package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"wavefinder/database"
	"wavefinder/feature"
	"wavefinder/imageloader"
	"wavefinder/logging"
	"wavefinder/metric"
	"wavefinder/ranker"
	"wavefinder/scanner"
	"wavefinder/signalhandler"
	"wavefinder/utils"
)

const (
	defaultLevels = 3
	defaultTopK   = 5
	defaultMetric = "l2"
)

func main() {
	signalhandler.SetupHandler()
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	args := utils.ParseArguments()
	command, hasCommand := args["command"]

	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	} else if customDB, ok := args["db"]; ok && customDB != "" {
		// Allow --db as an alias for --database
		dbPath = customDB
	}

	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "wavefinder.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	showUsage := !hasCommand
	if hasCommand && command == "scan" && args["folder"] == "" {
		showUsage = true
	}
	if hasCommand && command == "search" && args["image"] == "" {
		showUsage = true
	}
	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "scan":
		handleScanCommand(args, dbPath, debugMode)
	case "search":
		handleSearchCommand(args, dbPath, debugMode)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

func parseLevels(args map[string]string) int {
	levels := defaultLevels
	if levelsStr, ok := args["levels"]; ok {
		parsed, err := utils.ParsePositiveInt("levels", levelsStr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		levels = parsed
	}
	return levels
}

func handleScanCommand(args map[string]string, dbPath string, debugMode bool) {
	folderPath := args["folder"]

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", folderPath)
		}
		log.Fatalf("Cannot access folder path: %s (%v)", folderPath, err)
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folderPath)
	}

	levels := parseLevels(args)
	_, forceRewrite := args["force"]
	_, legacyOffset := args["legacy-offset"]
	_, truncate := args["truncate"]

	startTime := time.Now()

	// SQLite occasionally reports the database as locked right after
	// another process released it, so retry initialization briefly.
	var db *sql.DB
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		} else {
			log.Fatalf("Error initializing database after %d attempts: %v", maxRetries, err)
		}
	}
	defer db.Close()

	scanOptions := scanner.ScanOptions{
		FolderPath:   folderPath,
		SourcePrefix: args["prefix"],
		Levels:       levels,
		LegacyOffset: legacyOffset,
		Truncate:     truncate,
		ForceRewrite: forceRewrite,
		DebugMode:    debugMode,
		MaxWorkers:   signalhandler.GetOptimalProcs(),
	}

	if err := scanner.ScanAndStoreFolder(db, scanOptions); err != nil {
		log.Fatalf("Error scanning folder: %v", err)
	}

	fmt.Printf("\nScan completed successfully!\n")
	fmt.Printf("Total execution time: %v\n", time.Since(startTime))
	fmt.Printf("Database: %s\n", dbPath)
}

func handleSearchCommand(args map[string]string, dbPath string, debugMode bool) {
	queryPath := args["image"]

	if _, err := os.Stat(queryPath); os.IsNotExist(err) {
		log.Fatalf("Query image does not exist: %s", queryPath)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run scan command first.", dbPath)
	}

	levels := parseLevels(args)
	_, legacyOffset := args["legacy-offset"]
	_, truncate := args["truncate"]

	topK := defaultTopK
	if topStr, ok := args["top"]; ok {
		parsed, err := utils.ParsePositiveInt("top", topStr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		topK = parsed
	}

	metricName := defaultMetric
	if name, ok := args["metric"]; ok && name != "" {
		metricName = name
	}
	m, err := metric.Parse(metricName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	startTime := time.Now()

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	if debugMode {
		logging.DebugLog("Starting search for %s (levels=%d, metric=%s, top=%d)",
			queryPath, levels, m, topK)
	}

	queryImg, err := imageloader.Load(queryPath)
	if err != nil {
		log.Fatalf("Failed to load query image: %v", err)
	}
	queryDesc, err := feature.Describe(queryPath, queryImg, levels, feature.Options{
		LegacyOffset: legacyOffset,
		Truncate:     truncate,
	})
	if err != nil {
		log.Fatalf("Cannot compute query descriptor: %v", err)
	}

	corpus, err := database.LoadDescriptors(db, args["prefix"], levels)
	if err != nil {
		log.Fatalf("Error loading descriptors: %v", err)
	}

	fmt.Printf("Searching %d indexed images (metric: %s)...\n", len(corpus), m)
	if prefix := args["prefix"]; prefix != "" {
		fmt.Printf("Filtering by source prefix: %s\n", prefix)
	}

	results, err := ranker.RankWith(queryDesc, corpus, m, topK, ranker.Options{
		Workers: signalhandler.GetOptimalProcs(),
	})
	if err != nil {
		log.Fatalf("Error ranking images: %v", err)
	}

	if featuresOut, ok := args["features-out"]; ok && featuresOut != "" {
		if err := writeFeatureMatrix(featuresOut, queryDesc, corpus); err != nil {
			log.Fatalf("Error writing feature matrix: %v", err)
		}
		fmt.Printf("Feature matrix written to: %s\n", featuresOut)
	}

	fmt.Println("\nNearest images:")
	if len(results) == 0 {
		fmt.Println("No indexed images found.")
	} else {
		for i, r := range results {
			fmt.Printf("%d. Image: %s\n", i+1, r.Descriptor.Identifier)
			fmt.Printf("   Distance (%s): %.6f\n", m, r.Distance)
		}
	}

	fmt.Printf("\nTotal search time: %v\n", time.Since(startTime))
}

// writeFeatureMatrix archives the raw feature vectors of the query and
// the whole corpus as CSV, one row per image.
func writeFeatureMatrix(path string, query feature.Descriptor, corpus []feature.Descriptor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"identifier"}
	for band := 0; band < query.Vector.Bands(); band++ {
		header = append(header,
			fmt.Sprintf("energy_%d", band),
			fmt.Sprintf("entropy_%d", band))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	writeRow := func(d feature.Descriptor) error {
		row := make([]string, 0, len(d.Vector)+1)
		row = append(row, d.Identifier)
		for _, v := range d.Vector {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		return w.Write(row)
	}

	if err := writeRow(query); err != nil {
		return err
	}
	for _, d := range corpus {
		if err := writeRow(d); err != nil {
			return err
		}
	}
	return w.Error()
}
