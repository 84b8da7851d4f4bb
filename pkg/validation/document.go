// Package validation checks a template before it is handed to persistence.
// Only a missing title or the absence of sections block a save; everything
// else is reported as a warning.
package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeMissingTitle = "missing_title"
	CodeNoSections   = "no_sections"
	CodeEmptySection = "empty_section"
	CodeEmptyLabel   = "empty_label"
)

// Issue is one finding with optional location metadata.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// Result captures the outcome of a validation run. Valid is false only when
// an error-level issue exists.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors returns the blocking issues.
func (r Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the non-blocking issues.
func (r Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Has reports whether an issue with code was recorded.
func (r Result) Has(code string) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func (r Result) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// ValidateDocument checks the save preconditions of a template. Inactive
// sections do not count since they are not serialized.
func ValidateDocument(title string, doc model.Document) Result {
	var issues []Issue
	issues = appendTitleIssue(issues, title)

	active := 0
	for si, section := range doc.Sections {
		if !section.Active {
			continue
		}
		active++
		path := fmt.Sprintf("secciones[%d]", si)
		activeFields := 0
		for fi, field := range section.Fields {
			if !field.Active {
				continue
			}
			activeFields++
			if strings.TrimSpace(field.Label) == "" && field.Type != model.FieldTypeTitle {
				issues = append(issues, Issue{
					Code:     CodeEmptyLabel,
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s.campos[%d]", path, fi),
					Field:    field.Name,
					Message:  "field has no label",
				})
			}
		}
		if activeFields == 0 {
			issues = append(issues, Issue{
				Code:     CodeEmptySection,
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("section %q has no active fields", section.Title),
			})
		}
	}
	issues = appendSectionsIssue(issues, active)
	return result(issues)
}

// ValidateSchema applies the same preconditions to an already serialized
// template.
func ValidateSchema(title string, s schema.PortableSchema) Result {
	var issues []Issue
	issues = appendTitleIssue(issues, title)
	for si, seccion := range s.Secciones {
		if len(seccion.Campos) == 0 {
			issues = append(issues, Issue{
				Code:     CodeEmptySection,
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("secciones[%d]", si),
				Message:  fmt.Sprintf("section %q has no active fields", seccion.Titulo),
			})
		}
	}
	issues = appendSectionsIssue(issues, len(s.Secciones))
	return result(issues)
}

func appendTitleIssue(issues []Issue, title string) []Issue {
	if strings.TrimSpace(title) != "" {
		return issues
	}
	return append(issues, Issue{
		Code:     CodeMissingTitle,
		Severity: SeverityError,
		Path:     "titulo",
		Message:  "template title is required",
	})
}

func appendSectionsIssue(issues []Issue, active int) []Issue {
	if active > 0 {
		return issues
	}
	return append(issues, Issue{
		Code:     CodeNoSections,
		Severity: SeverityError,
		Path:     "secciones",
		Message:  "template needs at least one section",
	})
}

func result(issues []Issue) Result {
	out := Result{Valid: true, Issues: issues}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			out.Valid = false
			break
		}
	}
	return out
}
