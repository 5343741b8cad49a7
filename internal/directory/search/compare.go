package search

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"crmdir/internal/directory/models"
)

// comparator orders two field values by their runtime type. A collator keeps
// internal buffers, so each comparator belongs to a single search.
type comparator struct {
	collator *collate.Collator
}

func newComparator() *comparator {
	return &comparator{collator: collate.New(language.Spanish, collate.IgnoreCase)}
}

// compare dispatches on the dynamic types of a and b:
// times by epoch millis, strings by case-insensitive collation, numbers
// numerically, anything else (including absent values) by string form.
func (c *comparator) compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return cmp.Compare(av.UnixMilli(), bv.UnixMilli())
		}
	case string:
		if bv, ok := b.(string); ok {
			return c.collator.CompareString(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// sortValue extracts the value of field from r. Absent optional dates are nil.
func sortValue(r *models.ClientRecord, field models.SortField) any {
	switch field {
	case models.SortByName:
		return r.Name
	case models.SortByDocumentID:
		return r.DocumentID
	case models.SortByLastInteractionDate:
		if r.LastInteractionDate != nil {
			return *r.LastInteractionDate
		}
	case models.SortByBirthDate:
		if r.BirthDate != nil {
			return *r.BirthDate
		}
	}
	return nil
}

// compareIDs is the tie-break: record ids ascending, independent of sort order.
func compareIDs(a, b *models.ClientRecord) int {
	return bytes.Compare(a.ID[:], b.ID[:])
}
