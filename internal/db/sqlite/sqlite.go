/*
Package sqlite implements sqlite database operations.
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite embedded

	"github.com/vseclab/nvdimport/internal/db"
	"github.com/vseclab/nvdimport/internal/dbmodel"
)

var _ db.Manager = (*DB)(nil) // compile time proof

// DefaultFilename is the sqlite file used when no option is given.
const DefaultFilename = "nvd.sqlite3"

// DB holds sqlite related params.
type DB struct {
	DB       *sql.DB
	Filename string
}

// InitDB creates the cves table and indexes if absent. Safe to call on an
// already-initialized store.
func (d *DB) InitDB() error {
	query := `CREATE TABLE IF NOT EXISTS cves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		cve_id TEXT NOT NULL UNIQUE,
		description TEXT,
		severity TEXT,
		cvss_score REAL,
		cvss_vector TEXT,
		published TIMESTAMP,
		modified TIMESTAMP,
		refs JSON,
		configurations JSON,
		schema_version TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cves_severity ON cves (severity);
	CREATE INDEX IF NOT EXISTS idx_cves_published ON cves (published);`
	_, err := d.DB.Exec(query)

	return err
}

// Upsert inserts or replaces the row keyed by cve_id, last write wins.
func (d *DB) Upsert(model *dbmodel.CVE) (bool, error) {
	refsJSON, err := json.Marshal(model.References)
	if err != nil {
		return false, err
	}

	var exists bool
	err = d.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM cves WHERE cve_id = ?)", model.CVEID).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = d.DB.Exec(
		`INSERT INTO cves (cve_id, description, severity, cvss_score, cvss_vector, published, modified, refs, configurations, schema_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (cve_id) DO UPDATE SET
			description = excluded.description,
			severity = excluded.severity,
			cvss_score = excluded.cvss_score,
			cvss_vector = excluded.cvss_vector,
			published = excluded.published,
			modified = excluded.modified,
			refs = excluded.refs,
			configurations = excluded.configurations,
			schema_version = excluded.schema_version,
			updated_at = CURRENT_TIMESTAMP`,
		model.CVEID,
		model.Description,
		model.Severity,
		model.CVSSScore,
		model.CVSSVector,
		db.NullableTime(model.Published),
		db.NullableTime(model.Modified),
		string(refsJSON),
		db.NullableJSON(model.Configurations),
		model.SchemaVersion,
	)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// Ping reports whether the store is reachable.
func (d *DB) Ping() error {
	return d.DB.Ping()
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.DB.Close()
}

func (d *DB) setDefaults() {
	if d.Filename == "" {
		d.Filename = DefaultFilename
	}
}

// Option represents option function type.
type Option func(*DB) error

// WithFilename sets sqlite filename for creation.
func WithFilename(s string) Option {
	return func(d *DB) error {
		if s == "" {
			return fmt.Errorf("%w, target filename can not be empty string", db.ErrValueRequired)
		}

		d.Filename = s

		return nil
	}
}

// New instantiates new database instance.
func New(options ...Option) (*DB, error) {
	dbase := new(DB)
	for _, option := range options {
		if err := option(dbase); err != nil {
			return nil, err
		}
	}

	dbase.setDefaults()

	sqliteDB, err := sql.Open("sqlite3", dbase.Filename)
	if err != nil {
		return nil, err
	}
	dbase.DB = sqliteDB

	return dbase, nil
}
