package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	id "crmdir/pkg/domain"
)

func drawDate(rt *rapid.T, label string) *time.Time {
	if !rapid.Bool().Draw(rt, label+"_present") {
		return nil
	}
	t := time.Unix(int64(rapid.IntRange(0, 10_000).Draw(rt, label)), 0).UTC()
	return &t
}

func drawSources(rt *rapid.T) Sources {
	var src Sources
	n := rapid.IntRange(0, 8)
	for i := range n.Draw(rt, "interactions") {
		l := fmt.Sprintf("interaction_%d", i)
		src.Interactions = append(src.Interactions, Interaction{ID: id.RecordID(uuid.UUID{0: 1, 15: byte(i)}), CreatedAt: drawDate(rt, l+"_created"), Date: drawDate(rt, l+"_date")})
	}
	for i := range n.Draw(rt, "projects") {
		l := fmt.Sprintf("project_%d", i)
		src.Projects = append(src.Projects, Project{ID: id.RecordID(uuid.UUID{0: 3, 15: byte(i)}), StartDate: drawDate(rt, l+"_start"), DueDate: drawDate(rt, l+"_due")})
	}
	for i := range n.Draw(rt, "tasks") {
		l := fmt.Sprintf("task_%d", i)
		src.Tasks = append(src.Tasks, Task{ID: id.RecordID(uuid.UUID{0: 6, 15: byte(i)}), DueDate: drawDate(rt, l+"_due")})
	}
	return src
}

func TestAggregateOrderingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := drawSources(rt)
		items := Aggregate(src)

		if len(items) != src.Len() {
			rt.Fatalf("aggregate returned %d items from %d records", len(items), src.Len())
		}
		for i := 1; i < len(items); i++ {
			if SortDate(items[i]).After(SortDate(items[i-1])) {
				rt.Fatalf("item %d (%s) is newer than item %d (%s)", i, SortDate(items[i]), i-1, SortDate(items[i-1]))
			}
		}
	})
}

func TestWindowProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := Aggregate(drawSources(rt))
		limit := rapid.IntRange(1, 30).Draw(rt, "limit")

		page := Window(items, limit, DefaultStep)

		if len(page.Items) != min(limit, len(items)) {
			rt.Fatalf("window of %d over %d items has %d", limit, len(items), len(page.Items))
		}
		if page.HasMore != (len(items) > limit) {
			rt.Fatalf("has_more %v for %d items with limit %d", page.HasMore, len(items), limit)
		}
		for i, it := range page.Items {
			if it.RecordID() != items[i].RecordID() {
				rt.Fatalf("window is not a prefix at index %d", i)
			}
		}
	})
}

func TestOfKindProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := Aggregate(drawSources(rt))
		total := 0
		for _, k := range Kinds {
			view := OfKind(items, k)
			for _, it := range view {
				if it.Kind() != k {
					rt.Fatalf("view %s contains %s", k, it.Kind())
				}
			}
			total += len(view)
		}
		if total != len(items) {
			rt.Fatalf("views hold %d items, feed has %d", total, len(items))
		}
	})
}
