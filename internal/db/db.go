/*
Package db provides database abstraction.
*/
package db

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/vseclab/nvdimport/internal/dbmodel"
)

// Manager defines persistence behaviours. InitDB is idempotent; Upsert
// writes or replaces the record keyed by its CVE id and reports whether a
// new row was created.
type Manager interface {
	InitDB() error
	Upsert(model *dbmodel.CVE) (inserted bool, err error)
	Ping() error
	Close() error
}

// sentinel errors.
var (
	ErrValueRequired      = errors.New("value required")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// NullableTime maps the zero time to NULL so unset feed dates are stored
// the same way in every sql backend.
func NullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t
}

// NullableJSON maps empty raw JSON to NULL.
func NullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	return string(raw)
}
