// Package search filters, searches, sorts and paginates an in-memory client set.
//
// Everything here is pure: no I/O, no shared state, and the caller's slice is
// never reordered.
package search

import (
	"slices"
	"strings"

	"crmdir/internal/directory/models"
)

// Search runs the pipeline validate → filter → free-text search → sort → paginate.
// Invalid params return a validation error and no partial result.
func Search(records []models.ClientRecord, params models.SearchParams) (models.SearchResult, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return models.SearchResult{Clients: []models.ClientRecord{}}, err
	}

	matched := Filter(records, params.Filters)
	matched = Match(matched, params.Query)
	Sort(matched, params.SortBy, params.SortOrder)
	return Paginate(matched, params.Page, params.PageSize), nil
}

// Filter keeps records equal on every set filter field. Tags match when the
// record carries at least one of the requested tags. The result is a new slice.
func Filter(records []models.ClientRecord, f models.Filters) []models.ClientRecord {
	out := make([]models.ClientRecord, 0, len(records))
	for i := range records {
		if matchesFilters(&records[i], f) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchesFilters(r *models.ClientRecord, f models.Filters) bool {
	if f.ClientType != "" && r.ClientType != f.ClientType {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(r.Tags, func(tag string) bool {
		return slices.Contains(f.Tags, tag)
	}) {
		return false
	}
	return true
}

// Match keeps records whose name, document id, city or any tag contains the
// query, case-insensitively. A blank query keeps everything.
func Match(records []models.ClientRecord, query string) []models.ClientRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := records[:0:0]
	for i := range records {
		if matchesQuery(&records[i], q) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchesQuery(r *models.ClientRecord, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.DocumentID), q) ||
		strings.Contains(strings.ToLower(r.Address.City), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Sort orders records in place by field. Descending negates the comparison;
// equal keys fall back to ascending record id.
func Sort(records []models.ClientRecord, field models.SortField, order models.SortOrder) {
	c := newComparator()
	slices.SortStableFunc(records, func(a, b models.ClientRecord) int {
		res := c.compare(sortValue(&a, field), sortValue(&b, field))
		if order == models.SortDesc {
			res = -res
		}
		if res != 0 {
			return res
		}
		return compareIDs(&a, &b)
	})
}

// Paginate returns the 1-based page of size pageSize. TotalCount is the length
// of records, not of the page. A page past the end is empty with HasMore false,
// however large page is.
func Paginate(records []models.ClientRecord, page, pageSize int) models.SearchResult {
	total := len(records)
	start := total
	if page >= 1 && pageSize >= 1 && page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := start
	if pageSize >= 1 {
		end += min(pageSize, total-start)
	}

	clients := make([]models.ClientRecord, end-start)
	copy(clients, records[start:end])
	return models.SearchResult{
		Clients:    clients,
		TotalCount: total,
		HasMore:    end < total,
	}
}
