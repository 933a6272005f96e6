package database

import (
	"database/sql"
	"fmt"
	"time"

	"wavefinder/feature"
	"wavefinder/logging"
	"wavefinder/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase opens the descriptor index, creating the schema if needed
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		source_prefix TEXT,
		format TEXT,
		width INTEGER,
		height INTEGER,
		created_at TEXT,
		modified_at TEXT,
		size INTEGER,
		levels INTEGER,
		features BLOB,
		UNIQUE(path, source_prefix)
	);
	CREATE INDEX IF NOT EXISTS idx_path ON images(path);
	CREATE INDEX IF NOT EXISTS idx_levels ON images(levels);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		return nil, err
	}

	// Older indexes predate the levels column; add it on the fly
	var hasLevelsColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('images') WHERE name='levels'").Scan(&hasLevelsColumn)
	if err != nil {
		return nil, fmt.Errorf("error checking for levels column: %v", err)
	}
	if !hasLevelsColumn {
		_, err = db.Exec("ALTER TABLE images ADD COLUMN levels INTEGER;")
		if err != nil {
			return nil, fmt.Errorf("error adding levels column: %v", err)
		}
		logging.DebugLog("Added 'levels' column to existing database schema")
	}

	return db, nil
}

// OpenDatabase opens an existing descriptor index
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// CheckImageExists reports whether an image is already indexed and, if so,
// the modification time stored for it
func CheckImageExists(db *sql.DB, path string, sourcePrefix string) (bool, string, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&count)
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %v", path, err)
	}
	if count == 0 {
		return false, "", nil
	}

	var storedModTime string
	err = db.QueryRow("SELECT modified_at FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&storedModTime)
	if err != nil {
		return true, "", fmt.Errorf("cannot get modified time for %s: %v", path, err)
	}
	return true, storedModTime, nil
}

// StoreImageInfo stores one image's metadata and feature vector
func StoreImageInfo(db *sql.DB, imageInfo types.ImageInfo, forceRewrite bool) error {
	now := time.Now().Format(time.RFC3339)

	blob, err := imageInfo.Features.MarshalBinary()
	if err != nil {
		return fmt.Errorf("cannot encode features for %s: %v", imageInfo.Path, err)
	}

	var stmt *sql.Stmt
	var insertErr error
	if forceRewrite {
		stmt, insertErr = db.Prepare(`
			INSERT OR REPLACE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size, levels, features
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	} else {
		stmt, insertErr = db.Prepare(`
			INSERT OR IGNORE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size, levels, features
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	}
	if insertErr != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", imageInfo.Path, insertErr)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		imageInfo.Path,
		imageInfo.SourcePrefix,
		imageInfo.Format,
		imageInfo.Width,
		imageInfo.Height,
		now,
		imageInfo.ModifiedAt,
		imageInfo.Size,
		imageInfo.Levels,
		blob,
	)
	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %v", imageInfo.Path, err)
	}
	return nil
}

// LoadDescriptors returns the descriptors of every indexed image built at
// the given decomposition depth, optionally filtered by source prefix.
// Filtering by depth keeps descriptors with incompatible vector lengths
// out of the comparison loop entirely.
func LoadDescriptors(db *sql.DB, sourcePrefix string, levels int) ([]feature.Descriptor, error) {
	query := `SELECT path, features FROM images WHERE levels = ? AND (source_prefix = ? OR ? = '') ORDER BY id`
	rows, err := db.Query(query, levels, sourcePrefix, sourcePrefix)
	if err != nil {
		return nil, fmt.Errorf("database query error: %v", err)
	}
	defer rows.Close()

	var corpus []feature.Descriptor
	for rows.Next() {
		var path string
		var blob []byte
		if err := rows.Scan(&path, &blob); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		vec, err := feature.UnmarshalVector(blob)
		if err != nil {
			logging.LogWarning("Skipping %s: %v", path, err)
			continue
		}
		corpus = append(corpus, feature.Descriptor{Identifier: path, Vector: vec})
	}
	return corpus, rows.Err()
}

// ScanStats contains statistics from a scan operation
type ScanStats struct {
	TotalImages int
	ByLevels    map[int]int
}

// GetScanStats retrieves statistics about indexed images
func GetScanStats(db *sql.DB, sourcePrefix string) (*ScanStats, error) {
	stats := ScanStats{ByLevels: make(map[int]int)}

	var totalQuery string
	var args []interface{}
	if sourcePrefix != "" {
		totalQuery = "SELECT COUNT(*) FROM images WHERE source_prefix = ?"
		args = append(args, sourcePrefix)
	} else {
		totalQuery = "SELECT COUNT(*) FROM images"
	}
	if err := db.QueryRow(totalQuery, args...).Scan(&stats.TotalImages); err != nil {
		return nil, fmt.Errorf("failed to get total images: %v", err)
	}

	var levelsQuery string
	if sourcePrefix != "" {
		levelsQuery = "SELECT levels, COUNT(*) FROM images WHERE source_prefix = ? GROUP BY levels"
	} else {
		levelsQuery = "SELECT levels, COUNT(*) FROM images GROUP BY levels"
	}
	rows, err := db.Query(levelsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-depth counts: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var levels, count int
		if err := rows.Scan(&levels, &count); err != nil {
			return nil, err
		}
		stats.ByLevels[levels] = count
	}

	return &stats, rows.Err()
}
