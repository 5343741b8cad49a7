package search

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"crmdir/internal/directory/models"
	locmodels "crmdir/internal/location/models"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func newRecord(name string, opts ...func(*models.ClientRecord)) models.ClientRecord {
	r := models.ClientRecord{
		ID:         id.ClientID(uuid.New()),
		Name:       name,
		DocumentID: "DOC-" + strings.ToUpper(name),
		ClientType: models.ClientTypeEmpresa,
		Status:     models.StatusActivo,
		Address:    locmodels.Address{Country: "sv", City: "San Salvador"},
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withStatus(s models.Status) func(*models.ClientRecord) {
	return func(r *models.ClientRecord) { r.Status = s }
}

func withTags(tags ...string) func(*models.ClientRecord) {
	return func(r *models.ClientRecord) { r.Tags = tags }
}

func withLastInteraction(t time.Time) func(*models.ClientRecord) {
	return func(r *models.ClientRecord) { r.LastInteractionDate = &t }
}

func names(records []models.ClientRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func (s *EngineSuite) TestFilters() {
	records := []models.ClientRecord{
		newRecord("Acme Corp", withStatus(models.StatusActivo), withTags("vip")),
		newRecord("Beta Inc", withStatus(models.StatusProspecto), withTags("retail")),
		newRecord("Gamma SA", withStatus(models.StatusInactivo)),
		newRecord("Delta", func(r *models.ClientRecord) {
			r.ClientType = models.ClientTypePersonaNatural
			r.Source = "referral"
		}),
	}

	s.Run("status filter keeps only matching records", func() {
		res, err := Search(records, models.SearchParams{Filters: models.Filters{Status: models.StatusActivo}})
		s.Require().NoError(err)
		s.Require().NotEmpty(res.Clients)
		for _, c := range res.Clients {
			s.Equal(models.StatusActivo, c.Status)
		}
	})

	s.Run("client type and source are exact matches", func() {
		res, err := Search(records, models.SearchParams{Filters: models.Filters{
			ClientType: models.ClientTypePersonaNatural,
			Source:     "referral",
		}})
		s.Require().NoError(err)
		s.Equal([]string{"Delta"}, names(res.Clients))
	})

	s.Run("tags match on any intersection", func() {
		res, err := Search(records, models.SearchParams{
			Filters: models.Filters{Tags: []string{"retail", "vip"}},
			SortBy:  models.SortByName, SortOrder: models.SortAsc,
		})
		s.Require().NoError(err)
		s.Equal([]string{"Acme Corp", "Beta Inc"}, names(res.Clients))
	})
}

func (s *EngineSuite) TestFreeTextSearch() {
	records := []models.ClientRecord{
		newRecord("Acme Corp"),
		newRecord("Beta Inc", func(r *models.ClientRecord) {
			r.DocumentID = "0614-010190-101-1"
			r.Address.City = "Santa Tecla"
		}),
		newRecord("Zeta", withTags("Distribuidor Mayorista")),
	}

	cases := []struct {
		query string
		want  []string
	}{
		{"acme", []string{"Acme Corp"}},
		{"  ACME ", []string{"Acme Corp"}},
		{"0614", []string{"Beta Inc"}},
		{"tecla", []string{"Beta Inc"}},
		{"mayor", []string{"Zeta"}},
		{"   ", []string{"Acme Corp", "Beta Inc", "Zeta"}},
		{"nothing-matches", []string{}},
	}
	for _, tc := range cases {
		s.Run(fmt.Sprintf("query %q", tc.query), func() {
			res, err := Search(records, models.SearchParams{Query: tc.query, SortBy: models.SortByName, SortOrder: models.SortAsc})
			s.Require().NoError(err)
			s.Equal(tc.want, names(res.Clients))
		})
	}
}

func (s *EngineSuite) TestSort() {
	s.Run("name ascending is case-insensitive", func() {
		res, err := Search([]models.ClientRecord{newRecord("beta"), newRecord("Alpha")},
			models.SearchParams{SortBy: models.SortByName, SortOrder: models.SortAsc})
		s.Require().NoError(err)
		s.Equal([]string{"Alpha", "beta"}, names(res.Clients))
	})

	s.Run("spanish collation places ñ after n", func() {
		res, err := Search([]models.ClientRecord{newRecord("Ñandú"), newRecord("Nube"), newRecord("Oro")},
			models.SearchParams{SortBy: models.SortByName, SortOrder: models.SortAsc})
		s.Require().NoError(err)
		s.Equal([]string{"Nube", "Ñandú", "Oro"}, names(res.Clients))
	})

	s.Run("defaults to last interaction descending", func() {
		early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		res, err := Search([]models.ClientRecord{
			newRecord("old", withLastInteraction(early)),
			newRecord("never"),
			newRecord("recent", withLastInteraction(late)),
		}, models.SearchParams{})
		s.Require().NoError(err)
		s.Equal([]string{"recent", "old", "never"}, names(res.Clients))
	})

	s.Run("equal keys break ties by id", func() {
		a := newRecord("Same")
		b := newRecord("same")
		a.ID = id.ClientID(uuid.MustParse("00000000-0000-0000-0000-000000000001"))
		b.ID = id.ClientID(uuid.MustParse("00000000-0000-0000-0000-000000000002"))
		for _, order := range []models.SortOrder{models.SortAsc, models.SortDesc} {
			res, err := Search([]models.ClientRecord{b, a}, models.SearchParams{SortBy: models.SortByName, SortOrder: order})
			s.Require().NoError(err)
			s.Equal(a.ID, res.Clients[0].ID, "order %s", order)
		}
	})

	s.Run("caller slice is not reordered", func() {
		input := []models.ClientRecord{newRecord("b"), newRecord("a")}
		_, err := Search(input, models.SearchParams{SortBy: models.SortByName, SortOrder: models.SortAsc})
		s.Require().NoError(err)
		s.Equal([]string{"b", "a"}, names(input))
	})
}

func (s *EngineSuite) TestPagination() {
	records := make([]models.ClientRecord, 25)
	for i := range records {
		records[i] = newRecord(fmt.Sprintf("client-%02d", i))
	}
	params := func(page int) models.SearchParams {
		return models.SearchParams{Page: page, PageSize: 10, SortBy: models.SortByName, SortOrder: models.SortAsc}
	}

	s.Run("first page is full and has more", func() {
		res, err := Search(records, params(1))
		s.Require().NoError(err)
		s.Len(res.Clients, 10)
		s.True(res.HasMore)
		s.Equal(25, res.TotalCount)
	})

	s.Run("last page is partial", func() {
		res, err := Search(records, params(3))
		s.Require().NoError(err)
		s.Len(res.Clients, 5)
		s.False(res.HasMore)
		s.Equal("client-20", res.Clients[0].Name)
	})

	s.Run("page past the end is empty", func() {
		res, err := Search(records, params(9))
		s.Require().NoError(err)
		s.NotNil(res.Clients)
		s.Empty(res.Clients)
		s.Equal(25, res.TotalCount)
	})

	s.Run("huge page is past the end", func() {
		for _, page := range []int{math.MaxInt/4 + 2, math.MaxInt} {
			res, err := Search(records, models.SearchParams{Page: page, PageSize: 4, SortBy: models.SortByName, SortOrder: models.SortAsc})
			s.Require().NoError(err)
			s.Empty(res.Clients, "page %d", page)
			s.False(res.HasMore, "page %d", page)
			s.Equal(25, res.TotalCount)
		}
	})

	s.Run("largest page size returns everything", func() {
		res := Paginate(records, 1, math.MaxInt)
		s.Len(res.Clients, 25)
		s.False(res.HasMore)
	})

	s.Run("empty input yields an empty, non-nil page", func() {
		res, err := Search(nil, models.SearchParams{})
		s.Require().NoError(err)
		s.NotNil(res.Clients)
		s.Zero(res.TotalCount)
		s.False(res.HasMore)
	})
}

func (s *EngineSuite) TestValidation() {
	records := []models.ClientRecord{newRecord("Acme")}
	cases := map[string]models.SearchParams{
		"unknown client type": {Filters: models.Filters{ClientType: "Cooperativa"}},
		"unknown status":      {Filters: models.Filters{Status: "Archivado"}},
		"too many tags":       {Filters: models.Filters{Tags: strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",")}},
		"source too long":     {Filters: models.Filters{Source: strings.Repeat("x", 101)}},
		"unknown sort field":  {SortBy: "createdAt"},
		"unknown sort order":  {SortOrder: "sideways"},
		"negative page":       {Page: -1},
		"page size too large": {PageSize: 101},
	}
	for name, params := range cases {
		s.Run(name, func() {
			res, err := Search(records, params)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Empty(res.Clients, "no partial result on validation failure")
		})
	}

	s.Run("boundary values are accepted", func() {
		_, err := Search(records, models.SearchParams{
			Filters:  models.Filters{Tags: strings.Split("a,b,c,d,e,f,g,h,i,j", ","), Source: strings.Repeat("x", 100)},
			PageSize: 100,
		})
		s.NoError(err)
	})
}

func TestCompareDispatch(t *testing.T) {
	c := newComparator()
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Millisecond)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"times by millis", t1, t2, -1},
		{"strings ignore case", "alpha", "ALPHA", 0},
		{"ints numerically", 10, 9, 1},
		{"floats numerically", 1.5, 2.5, -1},
		{"absent sorts before present", nil, t1, -1},
		{"mixed types compare as strings", 10, "9", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.compare(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Fatalf("compare(%v, %v) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
