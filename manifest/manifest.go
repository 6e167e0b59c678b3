/*
	Package manifest records which volume files were written for which time
	steps of a run, so a batch pipeline producing hundreds of file pairs
	can be audited and resumed without scanning the output directory.
*/
package manifest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite manifest database.
type DB struct {
	*sql.DB
}

// Open opens or creates the manifest database at path and ensures its
// schema exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open manifest db %q: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			output_prefix TEXT,
			size_x INTEGER,
			size_y INTEGER,
			size_z INTEGER,
			started TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT,
			time DOUBLE,
			suffix TEXT,
			raw_file TEXT,
			raw_bytes BIGINT,
			sidecar_file TEXT,
			written TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create manifest schema: %w", err)
	}
	return &DB{db}, nil
}

// BeginRun registers a new run and returns its id.
func (db *DB) BeginRun(outputPrefix string, sizeX, sizeY, sizeZ int32) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO runs (run_id, output_prefix, size_x, size_y, size_z) VALUES (?, ?, ?, ?, ?)",
		runID, outputPrefix, sizeX, sizeY, sizeZ)
	if err != nil {
		return "", fmt.Errorf("unable to record run: %w", err)
	}
	return runID, nil
}

// RecordStep records one written time step: the raw dump, its size in
// bytes, and the sidecar (info or mhd) that accompanied it.
func (db *DB) RecordStep(runID string, stepTime float64, suffix, rawFile string, rawBytes int64, sidecarFile string) error {
	_, err := db.Exec(
		"INSERT INTO steps (run_id, time, suffix, raw_file, raw_bytes, sidecar_file) VALUES (?, ?, ?, ?, ?, ?)",
		runID, stepTime, suffix, rawFile, rawBytes, sidecarFile)
	if err != nil {
		return fmt.Errorf("unable to record step at time %g: %w", stepTime, err)
	}
	return nil
}

// Step is one recorded time step of a run.
type Step struct {
	Time        float64
	Suffix      string
	RawFile     string
	RawBytes    int64
	SidecarFile string
	Written     time.Time
}

// Steps returns the recorded steps of a run in time order.
func (db *DB) Steps(runID string) ([]Step, error) {
	rows, err := db.Query(
		"SELECT time, suffix, raw_file, raw_bytes, sidecar_file, written FROM steps WHERE run_id = ? ORDER BY time",
		runID)
	if err != nil {
		return nil, fmt.Errorf("unable to query steps for run %s: %w", runID, err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		if err := rows.Scan(&s.Time, &s.Suffix, &s.RawFile, &s.RawBytes, &s.SidecarFile, &s.Written); err != nil {
			return nil, fmt.Errorf("unable to scan step row: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
