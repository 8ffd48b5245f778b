/*
Package cve parses NIST NVD CVE JSON feed files.

Two published feed schemas are supported: 1.1, where records live in a
top-level "CVE_Items" array, and 2.0, where they live in a top-level
"vulnerabilities" array. The schema is detected from the top-level keys
and records are streamed lazily, one feed file is never held in memory
as a whole.
*/
package cve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vseclab/nvdimport/internal/dbmodel"
)

// sentinel errors.
var (
	ErrMalformedFeed   = errors.New("malformed feed")
	ErrMalformedRecord = errors.New("malformed record")
)

// Schema identifies the NVD feed schema version of a file.
type Schema string

// known feed schemas.
const (
	SchemaV11 Schema = "1.1"
	SchemaV20 Schema = "2.0"
)

// Item is one element of the parsed record stream. Either Model or Err is
// set; an Err wrapping ErrMalformedRecord is per-record and non-fatal.
type Item struct {
	Model *dbmodel.CVE
	Err   error
}

// Parse detects the feed schema of r and returns a channel streaming its
// records. The channel is closed when the feed is exhausted; it is finite,
// single-pass and not restartable. A feed whose top-level structure matches
// neither schema fails immediately with ErrMalformedFeed.
func Parse(r io.Reader) (Schema, <-chan Item, error) {
	decoder := json.NewDecoder(r)

	schema, err := detect(decoder)
	if err != nil {
		return "", nil, err
	}

	// the decoder sits right after the records key; enter the array.
	tok, err := decoder.Token()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrMalformedFeed, err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return "", nil, fmt.Errorf("%w: records value is not an array", ErrMalformedFeed)
	}

	out := make(chan Item)

	go func() {
		defer close(out)

		for decoder.More() {
			item := decodeItem(decoder, schema)
			out <- item

			if errors.Is(item.Err, ErrMalformedFeed) {
				return
			}
		}
	}()

	return schema, out, nil
}

// decodeItem decodes the next array element into the schema's entry shape.
// Raw fields such as configurations keep the feed's exact bytes.
func decodeItem(decoder *json.Decoder, schema Schema) Item {
	var (
		model *dbmodel.CVE
		err   error
	)

	switch schema {
	case SchemaV20:
		var entry v20Item
		if err = decoder.Decode(&entry); err == nil {
			model, err = extractV20(entry)
		}
	default:
		var entry v11Item
		if err = decoder.Decode(&entry); err == nil {
			model, err = extractV11(entry)
		}
	}

	if err != nil {
		return Item{Err: classify(err)}
	}

	return Item{Model: model}
}

// classify maps a decode failure to the error taxonomy: on a mistyped
// value the decoder skips it and stays in sync, so only that record is
// lost; anything else means the document itself is broken.
func classify(err error) error {
	if errors.Is(err, ErrMalformedRecord) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s", ErrMalformedRecord, err)
	}

	return fmt.Errorf("%w: %s", ErrMalformedFeed, err)
}

// detect scans top-level keys until it finds the records array. Values of
// other keys are skipped without inspection; in published feeds those are
// all scalars, so the scan stops before the records array is decoded.
func detect(decoder *json.Decoder) (Schema, error) {
	tok, err := decoder.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedFeed, err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", fmt.Errorf("%w: top-level value is not an object", ErrMalformedFeed)
	}

	for decoder.More() {
		tok, err = decoder.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMalformedFeed, err)
		}

		switch tok {
		case "CVE_Items":
			return SchemaV11, nil
		case "vulnerabilities":
			return SchemaV20, nil
		}

		var skip json.RawMessage
		if err = decoder.Decode(&skip); err != nil {
			return "", fmt.Errorf("%w: %s", ErrMalformedFeed, err)
		}
	}

	return "", fmt.Errorf("%w: neither CVE_Items nor vulnerabilities present", ErrMalformedFeed)
}

// langValue is a language-tagged text entry, shared by both schemas.
type langValue struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

type reference struct {
	URL string `json:"url"`
}

type cvssData struct {
	BaseScore    float64 `json:"baseScore"`
	BaseSeverity string  `json:"baseSeverity"`
	VectorString string  `json:"vectorString"`
}

// 1.1 feeds omit seconds in timestamps, 2.0 feeds carry milliseconds and
// no zone designator.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// parseTime returns the zero time when s matches no known feed layout;
// an unparseable date leaves the field unset rather than failing the record.
func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
