package cve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vseclab/nvdimport/internal/dbmodel"
)

// v11Item mirrors one CVE_Items entry of a 1.1 feed.
type v11Item struct {
	CVE struct {
		Meta struct {
			ID string `json:"ID"`
		} `json:"CVE_data_meta"`
		Description struct {
			Data []langValue `json:"description_data"`
		} `json:"description"`
		References struct {
			Data []reference `json:"reference_data"`
		} `json:"references"`
	} `json:"cve"`
	Impact struct {
		BaseMetricV3 *struct {
			CVSSV3 cvssData `json:"cvssV3"`
		} `json:"baseMetricV3"`
	} `json:"impact"`
	Configurations   json.RawMessage `json:"configurations"`
	PublishedDate    string          `json:"publishedDate"`
	LastModifiedDate string          `json:"lastModifiedDate"`
}

func extractV11(item v11Item) (*dbmodel.CVE, error) {
	model := &dbmodel.CVE{
		CVEID:          item.CVE.Meta.ID,
		Published:      parseTime(item.PublishedDate),
		Modified:       parseTime(item.LastModifiedDate),
		Configurations: item.Configurations,
		SchemaVersion:  string(SchemaV11),
	}

	if !model.HasValidID() {
		return nil, fmt.Errorf("%w: missing or invalid CVE id %q", ErrMalformedRecord, item.CVE.Meta.ID)
	}

	var parts []string
	for _, desc := range item.CVE.Description.Data {
		if value := strings.TrimSpace(desc.Value); value != "" {
			parts = append(parts, value)
		}
	}
	model.Description = strings.Join(parts, " ")

	for _, ref := range item.CVE.References.Data {
		if url := strings.TrimSpace(ref.URL); url != "" {
			model.References = append(model.References, url)
		}
	}

	if item.Impact.BaseMetricV3 != nil {
		cvss := item.Impact.BaseMetricV3.CVSSV3
		model.Severity = cvss.BaseSeverity
		model.CVSSScore = &cvss.BaseScore
		model.CVSSVector = cvss.VectorString
	}

	return model, nil
}
