package analyze

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fwojciec/drugwatch"
	"github.com/kaptinlin/jsonrepair"
)

// StripCodeFence removes a surrounding Markdown code fence, with or without
// a language tag, from a model response.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseRecord parses a model response into an ApprovalRecord.
//
// The response must contain one JSON object holding every extracted field.
// Slightly malformed JSON is repaired first. String fields must be strings
// or null; empty values become drugwatch.NotSpecified. confidence_score may
// be a number or a numeric string and is clamped to [0, 1]. source_url is
// optional since callers overwrite it. Any other deviation is an EINVALID
// error.
func ParseRecord(resp string) (*drugwatch.ApprovalRecord, error) {
	fields, err := decodeObject(StripCodeFence(resp))
	if err != nil {
		return nil, err
	}

	r := &drugwatch.ApprovalRecord{}
	targets := []struct {
		key string
		dst *string
	}{
		{"drug_name", &r.DrugName},
		{"sponsor_company", &r.SponsorCompany},
		{"approval_date", &r.ApprovalDate},
		{"indication", &r.Indication},
		{"drug_type", &r.DrugType},
		{"regulatory_action", &r.RegulatoryAction},
		{"approval_status", &r.ApprovalStatus},
		{"therapeutic_area", &r.TherapeuticArea},
		{"source_agency", &r.SourceAgency},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			return nil, drugwatch.Errorf(drugwatch.EINVALID, "response missing %q", t.key)
		}
		v, err := stringField(t.key, raw)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}

	if raw, ok := fields["source_url"]; ok {
		if v, err := stringField("source_url", raw); err == nil {
			r.SourceURL = v
		}
	}

	raw, ok := fields["confidence_score"]
	if !ok {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "response missing %q", "confidence_score")
	}
	if r.ConfidenceScore, err = confidenceField(raw); err != nil {
		return nil, err
	}

	return r, nil
}

// decodeObject decodes s as a JSON object, repairing it if needed.
func decodeObject(s string) (map[string]json.RawMessage, error) {
	if s == "" {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "empty response")
	}

	var fields map[string]json.RawMessage
	err := json.Unmarshal([]byte(s), &fields)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(objectSpan(s))
		if repairErr != nil {
			return nil, drugwatch.Errorf(drugwatch.EINVALID, "response is not JSON: %v", err)
		}
		fields = nil
		if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
			return nil, drugwatch.Errorf(drugwatch.EINVALID, "response is not a JSON object: %v", err)
		}
	}
	if fields == nil {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "response is not a JSON object")
	}
	return fields, nil
}

// objectSpan returns the text between the first '{' and the last '}',
// dropping prose a model may put around its answer.
func objectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func stringField(key string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return drugwatch.NotSpecified, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "field %q is not a string", key)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return drugwatch.NotSpecified, nil
	}
	return v, nil
}

func confidenceField(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, nil
	}

	var f float64
	percent := false
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, drugwatch.Errorf(drugwatch.EINVALID, "confidence_score is neither number nor string")
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, drugwatch.NotSpecified) {
			return 0, nil
		}
		percent = strings.HasSuffix(s, "%")
		f, err = strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, drugwatch.Errorf(drugwatch.EINVALID, "confidence_score %q is not numeric", s)
		}
	}

	if math.IsNaN(f) {
		return 0, drugwatch.Errorf(drugwatch.EINVALID, "confidence_score is NaN")
	}
	// Some models answer on a 0-100 scale. Only percentages and whole
	// numbers from 2 to 100 are read that way; anything else is clamped.
	if percent || (f >= 2 && f <= 100 && f == math.Trunc(f)) {
		f /= 100
	}
	return math.Max(0, math.Min(1, f)), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
