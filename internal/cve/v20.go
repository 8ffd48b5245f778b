package cve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vseclab/nvdimport/internal/dbmodel"
)

// v20Item mirrors one vulnerabilities entry of a 2.0 feed.
type v20Item struct {
	CVE struct {
		ID           string      `json:"id"`
		Published    string      `json:"published"`
		LastModified string      `json:"lastModified"`
		Descriptions []langValue `json:"descriptions"`
		References   []reference `json:"references"`
		Metrics      struct {
			CVSSMetricV31 []v20Metric `json:"cvssMetricV31"`
			CVSSMetricV30 []v20Metric `json:"cvssMetricV30"`
		} `json:"metrics"`
		Configurations json.RawMessage `json:"configurations"`
	} `json:"cve"`
}

type v20Metric struct {
	CVSSData cvssData `json:"cvssData"`
}

func extractV20(item v20Item) (*dbmodel.CVE, error) {
	model := &dbmodel.CVE{
		CVEID:          item.CVE.ID,
		Published:      parseTime(item.CVE.Published),
		Modified:       parseTime(item.CVE.LastModified),
		Configurations: item.CVE.Configurations,
		SchemaVersion:  string(SchemaV20),
	}

	if !model.HasValidID() {
		return nil, fmt.Errorf("%w: missing or invalid CVE id %q", ErrMalformedRecord, item.CVE.ID)
	}

	model.Description = pickDescription(item.CVE.Descriptions)

	for _, ref := range item.CVE.References {
		if url := strings.TrimSpace(ref.URL); url != "" {
			model.References = append(model.References, url)
		}
	}

	metrics := item.CVE.Metrics.CVSSMetricV31
	if len(metrics) == 0 {
		metrics = item.CVE.Metrics.CVSSMetricV30
	}
	if len(metrics) > 0 {
		cvss := metrics[0].CVSSData
		model.Severity = cvss.BaseSeverity
		model.CVSSScore = &cvss.BaseScore
		model.CVSSVector = cvss.VectorString
	}

	return model, nil
}

// pickDescription prefers the english entry, 2.0 feeds carry one per language.
func pickDescription(descriptions []langValue) string {
	var fallback string

	for _, desc := range descriptions {
		value := strings.TrimSpace(desc.Value)
		if value == "" {
			continue
		}

		if desc.Lang == "en" {
			return value
		}

		if fallback == "" {
			fallback = value
		}
	}

	return fallback
}
