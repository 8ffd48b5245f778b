/*
Package bolt implements an embedded bolthold document store.
*/
package bolt

import (
	"errors"
	"fmt"

	"github.com/timshannon/bolthold"
	bbolt "go.etcd.io/bbolt"

	"github.com/vseclab/nvdimport/internal/db"
	"github.com/vseclab/nvdimport/internal/dbmodel"
)

var _ db.Manager = (*DB)(nil) // compile time proof

// DefaultFilename is the bolt file used when no option is given.
const DefaultFilename = "nvd.boltdb"

// DB holds bolthold related params.
type DB struct {
	Store    *bolthold.Store
	Filename string
}

// InitDB verifies the store handle. Buckets are created lazily by bolthold
// on first write, so there is no schema to create up front.
func (d *DB) InitDB() error {
	return d.Ping()
}

// Upsert inserts or replaces the record keyed by its CVE id, last write wins.
func (d *DB) Upsert(model *dbmodel.CVE) (bool, error) {
	var existing dbmodel.CVE

	err := d.Store.Get(model.CVEID, &existing)
	if err != nil && !errors.Is(err, bolthold.ErrNotFound) {
		return false, err
	}
	inserted := errors.Is(err, bolthold.ErrNotFound)

	if err := d.Store.Upsert(model.CVEID, model); err != nil {
		return false, err
	}

	return inserted, nil
}

// Ping reports whether the store is reachable.
func (d *DB) Ping() error {
	return d.Store.Bolt().View(func(*bbolt.Tx) error {
		return nil
	})
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.Store.Close()
}

func (d *DB) setDefaults() {
	if d.Filename == "" {
		d.Filename = DefaultFilename
	}
}

// Option represents option function type.
type Option func(*DB) error

// WithFilename sets bolt filename for creation.
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

	store, err := bolthold.Open(dbase.Filename, 0o600, nil)
	if err != nil {
		return nil, err
	}
	dbase.Store = store

	return dbase, nil
}
