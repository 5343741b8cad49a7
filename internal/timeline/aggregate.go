package timeline

import (
	"slices"
	"time"
)

// DefaultStep is how many more items each "load more" reveals.
const DefaultStep = 10

// Sources holds the six record sets of one client. Any of them may be empty.
type Sources struct {
	Interactions []Interaction
	Transactions []Transaction
	Projects     []Project
	Quotes       []Quote
	Meetings     []Meeting
	Tasks        []Task
}

// Len is the number of records across all six sets.
func (s Sources) Len() int {
	return len(s.Interactions) + len(s.Transactions) + len(s.Projects) +
		len(s.Quotes) + len(s.Meetings) + len(s.Tasks)
}

// Aggregate merges the six sets and orders them by SortDate, most recent
// first. Items with equal dates keep their merge order: interactions,
// transactions, projects, quotes, meetings, tasks, each in input order.
func Aggregate(src Sources) []Item {
	type dated struct {
		item Item
		at   time.Time
	}
	merged := make([]dated, 0, src.Len())
	add := func(it Item) {
		merged = append(merged, dated{item: it, at: SortDate(it)})
	}
	for _, v := range src.Interactions {
		add(v)
	}
	for _, v := range src.Transactions {
		add(v)
	}
	for _, v := range src.Projects {
		add(v)
	}
	for _, v := range src.Quotes {
		add(v)
	}
	for _, v := range src.Meetings {
		add(v)
	}
	for _, v := range src.Tasks {
		add(v)
	}

	slices.SortStableFunc(merged, func(a, b dated) int {
		return b.at.Compare(a.at)
	})

	out := make([]Item, len(merged))
	for i, d := range merged {
		out[i] = d.item
	}
	return out
}

// Page is the visible prefix of a feed.
type Page struct {
	Items      []Item
	TotalCount int
	HasMore    bool
	// NextLimit is the limit that reveals the next step of items; zero when
	// nothing is hidden.
	NextLimit int
}

// Window returns the first limit items. A limit of zero or less shows
// everything. HasMore is set only when items are actually hidden.
func Window(items []Item, limit, step int) Page {
	if step <= 0 {
		step = DefaultStep
	}
	total := len(items)
	if limit <= 0 || limit >= total {
		return Page{Items: append(make([]Item, 0, total), items...), TotalCount: total}
	}
	return Page{
		Items:      append(make([]Item, 0, limit), items[:limit]...),
		TotalCount: total,
		HasMore:    true,
		NextLimit:  limit + step,
	}
}

// OfKind filters an aggregated feed down to one kind, keeping its order.
func OfKind(items []Item, kind Kind) []Item {
	out := make([]Item, 0)
	for _, it := range items {
		if it.Kind() == kind {
			out = append(out, it)
		}
	}
	return out
}

// CountByKind tallies an aggregated feed per kind. Every kind is present.
func CountByKind(items []Item) map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		counts[k] = 0
	}
	for _, it := range items {
		counts[it.Kind()]++
	}
	return counts
}
