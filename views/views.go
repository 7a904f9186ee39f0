package views

import (
	"embed"
	"encoding/json"
	"html/template"

	"legalassist-backend/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// BranchView is one rendered comparison column
type BranchView struct {
	Title          string
	RelevanceLabel string
	Relevance      string
	Principles     []string
	CaseExamples   []string
	Statutes       []string
	Analysis       string
}

// ResultsView is what the results card renders
type ResultsView struct {
	Query           string
	ZambianContext  bool
	DigitalEvidence bool
	Branches        []BranchView
	Recommendation  string
	// Payload is the result JSON posted back by the save and delete forms
	Payload string
}

// BuildResultsView derives the view model for result without modifying it.
// A nil result yields nil.
func BuildResultsView(result *models.ComparisonResult) *ResultsView {
	if result == nil {
		return nil
	}

	v := &ResultsView{
		Query:           result.Query,
		ZambianContext:  result.IsZambianContext(),
		DigitalEvidence: result.HasTechnicalDetails(),
		Recommendation:  result.Recommendation,
	}

	firstTitle, secondTitle := "Common Law", "Contract Law"
	if v.ZambianContext {
		firstTitle, secondTitle = "Zambian Law", "Related Law"
	}
	v.Branches = append(v.Branches,
		branchView(firstTitle, result.Comparison.CommonLaw),
		branchView(secondTitle, result.Comparison.ContractLaw),
	)
	if payload, err := json.Marshal(result); err == nil {
		v.Payload = string(payload)
	}
	return v
}

func branchView(title string, b *models.LawBranch) BranchView {
	if b == nil {
		return BranchView{Title: title}
	}
	return BranchView{
		Title:          title,
		RelevanceLabel: b.RelevanceLabel(),
		Relevance:      b.Relevance,
		Principles:     b.Principles,
		CaseExamples:   b.CaseExamples,
		Statutes:       b.Statutes,
		Analysis:       b.Analysis,
	}
}

// ResearchPage is the data for the research page template
type ResearchPage struct {
	UserName     string
	Query        string
	Jurisdiction string
	Toast        string
	ToastError   bool
	Results      *ResultsView
}

// LoginPage is the data for the sign-in page template
type LoginPage struct {
	UserName   string
	Email      string
	Toast      string
	ToastError bool
}

// LibraryCase is one row of the saved case library
type LibraryCase struct {
	ID        string
	Title     string
	CourtName string
	Saved     string
}

// LibraryPage is the data for the saved case library template
type LibraryPage struct {
	UserName   string
	Toast      string
	ToastError bool
	Cases      []LibraryCase
}

// BuildLibrary converts saved cases into library rows, keeping their order
func BuildLibrary(cases []*models.SavedCase) []LibraryCase {
	rows := make([]LibraryCase, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, LibraryCase{
			ID:        c.ID.String(),
			Title:     c.Title,
			CourtName: c.CourtName,
			Saved:     c.DecisionDate.Format("Jan 2, 2006"),
		})
	}
	return rows
}
