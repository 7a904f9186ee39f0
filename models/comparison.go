package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Jurisdiction tags a search with the legal system it should be analysed under
type Jurisdiction string

const (
	JurisdictionGeneral Jurisdiction = "general"
	JurisdictionZambian Jurisdiction = "zambian"
)

// ParseJurisdiction maps free-form input to a known jurisdiction, defaulting to general
func ParseJurisdiction(s string) Jurisdiction {
	if Jurisdiction(strings.ToLower(strings.TrimSpace(s))) == JurisdictionZambian {
		return JurisdictionZambian
	}
	return JurisdictionGeneral
}

// AnalysisQuery is the text sent to the analysis function
func (j Jurisdiction) AnalysisQuery(query string) string {
	if j == JurisdictionZambian {
		return "Zambian law: " + query
	}
	return query
}

// HistoryQuery is the text recorded in search history
func (j Jurisdiction) HistoryQuery(query string) string {
	if j == JurisdictionZambian {
		return "[Zambian] " + query
	}
	return query
}

// LawBranch is one column of the comparison
type LawBranch struct {
	Principles   []string `json:"principles"`
	CaseExamples []string `json:"caseExamples"`
	Statutes     []string `json:"statutes,omitempty"`
	Relevance    string   `json:"relevance"`
	Analysis     string   `json:"analysis"`
}

// RelevanceLabel returns the first word of the relevance text, used as a badge
func (b *LawBranch) RelevanceLabel() string {
	fields := strings.Fields(b.Relevance)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Comparison holds both branches of the analysis
type Comparison struct {
	CommonLaw   *LawBranch `json:"commonLaw"`
	ContractLaw *LawBranch `json:"contractLaw"`
}

// ComparisonResult is the payload returned by the analysis function.
// A decoded result keeps the exact bytes it was decoded from and encodes back
// to them, so fields this type does not declare survive a round trip.
type ComparisonResult struct {
	Query          string     `json:"query"`
	Comparison     Comparison `json:"comparison"`
	Recommendation string     `json:"recommendation"`

	// Only presence matters; the content is passed through untouched
	TechnicalDetails json.RawMessage `json:"technicalDetails,omitempty"`

	raw json.RawMessage
}

// comparisonFields has the fields of ComparisonResult without its methods
type comparisonFields ComparisonResult

// UnmarshalJSON decodes the typed view and keeps a copy of data
func (r *ComparisonResult) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields comparisonFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = ComparisonResult(fields)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the bytes the result was decoded from, if any
func (r ComparisonResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	fields := comparisonFields(r)
	return json.Marshal(&fields)
}

// Raw returns the original JSON of a decoded result, or nil for one built in code
func (r *ComparisonResult) Raw() json.RawMessage {
	return r.raw
}

// SetQuery sets the query in both the typed view and the original JSON
func (r *ComparisonResult) SetQuery(query string) error {
	r.Query = query
	if len(r.raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.raw, &obj); err != nil {
		return err
	}
	q, err := json.Marshal(query)
	if err != nil {
		return err
	}
	obj["query"] = q
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	r.raw = raw
	return nil
}

var (
	ErrMissingCommonLaw   = errors.New("comparison result missing commonLaw branch")
	ErrMissingContractLaw = errors.New("comparison result missing contractLaw branch")
)

// Validate checks the structure the results view dereferences
func (r *ComparisonResult) Validate() error {
	if r.Comparison.CommonLaw == nil {
		return ErrMissingCommonLaw
	}
	if r.Comparison.ContractLaw == nil {
		return ErrMissingContractLaw
	}
	return nil
}

// ResultsCount is the number of case examples across both branches
func (r *ComparisonResult) ResultsCount() int {
	count := 0
	if r.Comparison.CommonLaw != nil {
		count += len(r.Comparison.CommonLaw.CaseExamples)
	}
	if r.Comparison.ContractLaw != nil {
		count += len(r.Comparison.ContractLaw.CaseExamples)
	}
	return count
}

// HasTechnicalDetails reports whether the digital evidence branch applies.
// The key being present is enough, even with a null value.
func (r *ComparisonResult) HasTechnicalDetails() bool {
	return len(bytes.TrimSpace(r.TechnicalDetails)) > 0
}

// IsZambianContext reports whether the query mentions Zambia
func (r *ComparisonResult) IsZambianContext() bool {
	q := strings.ToLower(r.Query)
	return strings.Contains(q, "zambian") || strings.Contains(q, "zambia")
}
