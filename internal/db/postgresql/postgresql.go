/*
Package postgresql implements PostgreSQL database operations.
*/
package postgresql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/vseclab/nvdimport/internal/db"
	"github.com/vseclab/nvdimport/internal/dbmodel"
)

var _ db.Manager = (*DB)(nil) // compile time proof

// DB holds PostgreSQL related parameters.
type DB struct {
	*sql.DB
	DSN string
}

// InitDB creates the cves table and indexes if absent.
// You need to `createdb` manually!
func (d *DB) InitDB() error {
	query := `CREATE TABLE IF NOT EXISTS "cves" (
		"id" SERIAL PRIMARY KEY,
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updated_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"cve_id" VARCHAR(32) NOT NULL UNIQUE,
		"description" TEXT,
		"severity" VARCHAR(20),
		"cvss_score" REAL,
		"cvss_vector" VARCHAR(200),
		"published" TIMESTAMPTZ,
		"modified" TIMESTAMPTZ,
		"refs" JSONB NOT NULL DEFAULT '[]',
		"configurations" JSONB,
		"schema_version" VARCHAR(8)
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
	err = d.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM cves WHERE cve_id = $1)", model.CVEID).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = d.DB.Exec(
		`INSERT INTO cves (cve_id, description, severity, cvss_score, cvss_vector, published, modified, refs, configurations, schema_version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (cve_id) DO UPDATE SET
			description = EXCLUDED.description,
			severity = EXCLUDED.severity,
			cvss_score = EXCLUDED.cvss_score,
			cvss_vector = EXCLUDED.cvss_vector,
			published = EXCLUDED.published,
			modified = EXCLUDED.modified,
			refs = EXCLUDED.refs,
			configurations = EXCLUDED.configurations,
			schema_version = EXCLUDED.schema_version,
			updated_at = NOW()`,
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

// Option represents an option function type.
type Option func(*DB) error

// WithDSN sets the PostgreSQL DSN (Data Source Name).
func WithDSN(dsn string) Option {
	return func(d *DB) error {
		if dsn == "" {
			return fmt.Errorf("%w, dsn cannot be empty", db.ErrValueRequired)
		}

		d.DSN = dsn

		return nil
	}
}

// New initializes a new PostgreSQL database instance.
func New(options ...Option) (*DB, error) {
	dbase := new(DB)
	for _, option := range options {
		if err := option(dbase); err != nil {
			return nil, err
		}
	}

	if dbase.DSN == "" {
		dbase.DSN = os.Getenv("DATABASE_URL")
	}
	if dbase.DSN == "" {
		return nil, fmt.Errorf("%w, dsn cannot be empty", db.ErrValueRequired)
	}

	pgDB, err := sql.Open("postgres", dbase.DSN)
	if err != nil {
		return nil, err
	}
	dbase.DB = pgDB

	return dbase, nil
}
