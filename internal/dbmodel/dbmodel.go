/*
Package dbmodel defines db model structure.
*/
package dbmodel

import (
	"encoding/json"
	"regexp"
	"time"
)

// CVEIDPattern matches well-formed CVE identifiers, e.g. CVE-2024-12345.
var CVEIDPattern = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// CVE represents one stored vulnerability record, keyed by CVEID.
type CVE struct {
	CVEID          string
	Description    string
	Severity       string
	CVSSScore      *float64
	CVSSVector     string
	Published      time.Time
	Modified       time.Time
	References     []string
	Configurations json.RawMessage
	SchemaVersion  string
}

// HasValidID reports whether the record carries a usable CVE identifier.
func (c *CVE) HasValidID() bool {
	return CVEIDPattern.MatchString(c.CVEID)
}
