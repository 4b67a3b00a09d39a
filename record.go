package drugwatch

import (
	"strconv"
	"time"
)

// NotSpecified is the value of any record field that could not be resolved.
const NotSpecified = "Not specified"

// AnalysisFailed is the drug name carried by fallback records.
const AnalysisFailed = "Analysis failed"

// TimestampFormat is the layout of ApprovalRecord.ExtractionTimestamp.
const TimestampFormat = time.RFC3339

// ApprovalRecord is the structured description of one approval announcement.
// Every field is always populated; unresolved values hold NotSpecified.
type ApprovalRecord struct {
	DrugName            string  `json:"drug_name"`
	SponsorCompany      string  `json:"sponsor_company"`
	ApprovalDate        string  `json:"approval_date"`
	Indication          string  `json:"indication"`
	DrugType            string  `json:"drug_type"`
	RegulatoryAction    string  `json:"regulatory_action"`
	ApprovalStatus      string  `json:"approval_status"`
	TherapeuticArea     string  `json:"therapeutic_area"`
	SourceAgency        string  `json:"source_agency"`
	SourceURL           string  `json:"source_url"`
	ConfidenceScore     float64 `json:"confidence_score"`
	ExtractionTimestamp string  `json:"extraction_timestamp"`

	// Provenance copied from the originating SearchHit.
	SearchTitle    string `json:"search_title"`
	SearchSnippet  string `json:"search_snippet"`
	SearchPosition int    `json:"search_position"`
}

// RecordColumns lists the persisted column keys in output order.
var RecordColumns = []string{
	"drug_name",
	"sponsor_company",
	"approval_date",
	"indication",
	"drug_type",
	"regulatory_action",
	"approval_status",
	"therapeutic_area",
	"source_agency",
	"source_url",
	"confidence_score",
	"extraction_timestamp",
	"search_title",
	"search_snippet",
	"search_position",
}

// FallbackRecord returns the record used when structured extraction fails.
func FallbackRecord(sourceURL string, ts time.Time) *ApprovalRecord {
	return &ApprovalRecord{
		DrugName:            AnalysisFailed,
		SponsorCompany:      NotSpecified,
		ApprovalDate:        NotSpecified,
		Indication:          NotSpecified,
		DrugType:            NotSpecified,
		RegulatoryAction:    NotSpecified,
		ApprovalStatus:      NotSpecified,
		TherapeuticArea:     NotSpecified,
		SourceAgency:        NotSpecified,
		SourceURL:           sourceURL,
		ConfidenceScore:     0.0,
		ExtractionTimestamp: ts.Format(TimestampFormat),
	}
}

// IsFallback reports whether the record is a fallback record.
func (r *ApprovalRecord) IsFallback() bool {
	return r.DrugName == AnalysisFailed && r.ConfidenceScore == 0
}

// SetProvenance copies the search provenance fields from hit.
func (r *ApprovalRecord) SetProvenance(hit *SearchHit) {
	r.SearchTitle = hit.Title
	r.SearchSnippet = hit.Snippet
	r.SearchPosition = hit.Position
}

// Row returns the record as strings in RecordColumns order.
func (r *ApprovalRecord) Row() []string {
	return []string{
		r.DrugName,
		r.SponsorCompany,
		r.ApprovalDate,
		r.Indication,
		r.DrugType,
		r.RegulatoryAction,
		r.ApprovalStatus,
		r.TherapeuticArea,
		r.SourceAgency,
		r.SourceURL,
		strconv.FormatFloat(r.ConfidenceScore, 'f', -1, 64),
		r.ExtractionTimestamp,
		r.SearchTitle,
		r.SearchSnippet,
		strconv.Itoa(r.SearchPosition),
	}
}

// ParseRecordRow builds a record from a row whose columns are named by header.
// Column order is not significant. Unknown columns are ignored and missing
// ones are an error.
func ParseRecordRow(header, row []string) (*ApprovalRecord, error) {
	if len(header) != len(row) {
		return nil, Errorf(EINVALID, "row has %d fields, header has %d", len(row), len(header))
	}
	values := make(map[string]string, len(header))
	for i, key := range header {
		values[key] = row[i]
	}
	for _, key := range RecordColumns {
		if _, ok := values[key]; !ok {
			return nil, Errorf(EINVALID, "missing column %q", key)
		}
	}

	score, err := strconv.ParseFloat(values["confidence_score"], 64)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid confidence_score %q", values["confidence_score"])
	}
	position, err := strconv.Atoi(values["search_position"])
	if err != nil {
		return nil, Errorf(EINVALID, "invalid search_position %q", values["search_position"])
	}

	return &ApprovalRecord{
		DrugName:            values["drug_name"],
		SponsorCompany:      values["sponsor_company"],
		ApprovalDate:        values["approval_date"],
		Indication:          values["indication"],
		DrugType:            values["drug_type"],
		RegulatoryAction:    values["regulatory_action"],
		ApprovalStatus:      values["approval_status"],
		TherapeuticArea:     values["therapeutic_area"],
		SourceAgency:        values["source_agency"],
		SourceURL:           values["source_url"],
		ConfidenceScore:     score,
		ExtractionTimestamp: values["extraction_timestamp"],
		SearchTitle:         values["search_title"],
		SearchSnippet:       values["search_snippet"],
		SearchPosition:      position,
	}, nil
}
