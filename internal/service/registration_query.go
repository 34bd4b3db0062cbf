package service

import (
	"strings"
	"time"

	"robolab-portal/internal/model"
)

// Search fields accepted by FilterRegistrations.
const (
	FieldAll   = "all"
	FieldName  = "name"
	FieldEmail = "email"
	FieldID    = "id"
)

// FilterRegistrations keeps the records whose field matches term
// (case-insensitive substring) and whose cohort matches programType.
// Empty term, field "all" and programType "all" or "" match everything.
func FilterRegistrations(records []model.Registration, term, field, programType string, cutoff time.Time) []model.Registration {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Registration, 0, len(records))
	for i := range records {
		r := &records[i]
		if programType != "" && programType != "all" && string(r.Cohort(cutoff)) != programType {
			continue
		}
		if term != "" && !matchesTerm(r, term, field) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// searchFields names the API fields each search field looks at.
var searchFields = map[string][]string{
	FieldName:  {"parentName", "childName"},
	FieldEmail: {"parentEmail"},
	FieldID:    {"id"},
}

var anySearchFields = []string{"parentName", "childName", "parentEmail", "id"}

func matchesTerm(r *model.Registration, term, field string) bool {
	fields, ok := searchFields[field]
	if !ok {
		fields = anySearchFields
	}
	values := r.ColumnValues()
	for _, col := range model.Columns(fields...) {
		if strings.Contains(strings.ToLower(values[col]), term) {
			return true
		}
	}
	return false
}

// PageResult is one page of a slice.
type PageResult struct {
	Start int
	End   int
	Page  int
	Pages int
}

// Paginate computes the bounds of page for total items. A page past the last
// one is moved down to the last non-empty page; the effective page is
// returned in Page.
func Paginate(total, page, pageSize int) PageResult {
	if pageSize <= 0 {
		pageSize = 20
	}
	pages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	if pages == 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return PageResult{Start: start, End: end, Page: page, Pages: pages}
}
