package models

import (
	"unicode/utf8"

	dErrors "crmdir/pkg/domain-errors"
)

// SortField names the record field used for ordering.
type SortField string

const (
	SortByName                SortField = "name"
	SortByDocumentID          SortField = "documentId"
	SortByLastInteractionDate SortField = "lastInteractionDate"
	SortByBirthDate           SortField = "birthDate"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByName, SortByDocumentID, SortByLastInteractionDate, SortByBirthDate:
		return true
	}
	return false
}

// SortOrder is the ordering direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

const (
	DefaultSortBy    = SortByLastInteractionDate
	DefaultSortOrder = SortDesc
	DefaultPageSize  = 20
	MaxPageSize      = 100
	MaxTagFilters    = 10
	MaxSourceLength  = 100
)

// Filters narrow the record set before free-text search. Zero values mean "not set".
type Filters struct {
	ClientType ClientType `json:"clientType,omitempty"`
	Status     Status     `json:"status,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// SearchParams describes one directory query.
type SearchParams struct {
	Query     string    `json:"query,omitempty"`
	Filters   Filters   `json:"filters"`
	SortBy    SortField `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`
	Page      int       `json:"page,omitempty"`
	PageSize  int       `json:"pageSize,omitempty"`
}

// WithDefaults fills absent sort, order, page and page size.
func (p SearchParams) WithDefaults() SearchParams {
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder == "" {
		p.SortOrder = DefaultSortOrder
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Validate checks params after defaults are applied. It fails on the first problem.
func (p SearchParams) Validate() error {
	f := p.Filters
	if f.ClientType != "" && !f.ClientType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid clientType filter: "+string(f.ClientType))
	}
	if f.Status != "" && !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid status filter: "+string(f.Status))
	}
	if len(f.Tags) > MaxTagFilters {
		return dErrors.New(dErrors.CodeValidation, "tags filter accepts at most 10 values")
	}
	if utf8.RuneCountInString(f.Source) > MaxSourceLength {
		return dErrors.New(dErrors.CodeValidation, "source filter must be at most 100 characters")
	}
	if !p.SortBy.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid sortBy: "+string(p.SortBy))
	}
	if !p.SortOrder.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "sortOrder must be asc or desc")
	}
	if p.Page < 1 {
		return dErrors.New(dErrors.CodeValidation, "page must be at least 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return dErrors.New(dErrors.CodeValidation, "pageSize must be between 1 and 100")
	}
	return nil
}

// SearchResult is one page of matches. Clients is never nil.
type SearchResult struct {
	Clients    []ClientRecord `json:"clients"`
	TotalCount int            `json:"total_count"`
	HasMore    bool           `json:"has_more"`
}
