// Package timeline merges a client's interactions, transactions, projects,
// quotes, meetings and tasks into one feed ordered most recent first.
//
// Each record kind is its own type implementing Item. Only this package can add
// kinds, and every switch over Item covers all six.
package timeline

import (
	"time"

	id "crmdir/pkg/domain"
)

// Kind discriminates timeline items in responses and per-kind views.
type Kind string

const (
	KindInteraction Kind = "interaction"
	KindTransaction Kind = "transaction"
	KindProject     Kind = "project"
	KindQuote       Kind = "quote"
	KindMeeting     Kind = "meeting"
	KindTask        Kind = "task"
)

// Kinds lists every kind in merge order.
var Kinds = []Kind{KindInteraction, KindTransaction, KindProject, KindQuote, KindMeeting, KindTask}

func (k Kind) IsValid() bool {
	switch k {
	case KindInteraction, KindTransaction, KindProject, KindQuote, KindMeeting, KindTask:
		return true
	}
	return false
}

// Item is one entry of the feed.
type Item interface {
	Kind() Kind
	RecordID() id.RecordID
	item()
}

// Interaction is a logged contact with the client: a call, email, visit or message.
type Interaction struct {
	ID        id.RecordID `json:"id"`
	ClientID  id.ClientID `json:"client_id"`
	Channel   string      `json:"channel"`
	Summary   string      `json:"summary"`
	Notes     string      `json:"notes,omitempty"`
	Date      *time.Time  `json:"date,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

// Transaction is a payment or invoice movement. Amounts are in minor units.
type Transaction struct {
	ID          id.RecordID `json:"id"`
	ClientID    id.ClientID `json:"client_id"`
	Description string      `json:"description"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	Date        *time.Time  `json:"date,omitempty"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
}

type Project struct {
	ID        id.RecordID `json:"id"`
	ClientID  id.ClientID `json:"client_id"`
	Name      string      `json:"name"`
	Status    string      `json:"status"`
	StartDate *time.Time  `json:"start_date,omitempty"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

type Quote struct {
	ID         id.RecordID `json:"id"`
	ClientID   id.ClientID `json:"client_id"`
	Number     string      `json:"number"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	Date       *time.Time  `json:"date,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
}

type Meeting struct {
	ID        id.RecordID `json:"id"`
	ClientID  id.ClientID `json:"client_id"`
	Title     string      `json:"title"`
	Location  string      `json:"location,omitempty"`
	StartDate *time.Time  `json:"start_date,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

type Task struct {
	ID        id.RecordID `json:"id"`
	ClientID  id.ClientID `json:"client_id"`
	Title     string      `json:"title"`
	Done      bool        `json:"done"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

func (Interaction) Kind() Kind { return KindInteraction }
func (Transaction) Kind() Kind { return KindTransaction }
func (Project) Kind() Kind     { return KindProject }
func (Quote) Kind() Kind       { return KindQuote }
func (Meeting) Kind() Kind     { return KindMeeting }
func (Task) Kind() Kind        { return KindTask }

func (i Interaction) RecordID() id.RecordID { return i.ID }
func (t Transaction) RecordID() id.RecordID { return t.ID }
func (p Project) RecordID() id.RecordID     { return p.ID }
func (q Quote) RecordID() id.RecordID       { return q.ID }
func (m Meeting) RecordID() id.RecordID     { return m.ID }
func (t Task) RecordID() id.RecordID        { return t.ID }

func (Interaction) item() {}
func (Transaction) item() {}
func (Project) item()     {}
func (Quote) item()       {}
func (Meeting) item()     {}
func (Task) item()        {}

// SortDate is the first date present among CreatedAt, Date, StartDate and
// DueDate, in that order, or the Unix epoch when the item has none.
func SortDate(it Item) time.Time {
	var created, date, start, due *time.Time
	switch v := it.(type) {
	case Interaction:
		created, date = v.CreatedAt, v.Date
	case Transaction:
		created, date = v.CreatedAt, v.Date
	case Project:
		created, start, due = v.CreatedAt, v.StartDate, v.DueDate
	case Quote:
		created, date = v.CreatedAt, v.Date
	case Meeting:
		created, start = v.CreatedAt, v.StartDate
	case Task:
		created, due = v.CreatedAt, v.DueDate
	}
	for _, t := range []*time.Time{created, date, start, due} {
		if t != nil {
			return *t
		}
	}
	return time.Unix(0, 0).UTC()
}
