package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmdir/internal/location/cache"
	"crmdir/internal/location/masterdata"
	"crmdir/internal/location/models"
	"crmdir/internal/location/resolver"
	"crmdir/internal/location/store"
	"crmdir/pkg/testutil"
)

func newLocationRouter(t *testing.T) http.Handler {
	t.Helper()
	ds, err := masterdata.Bundled()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	res := resolver.New(cache.New(), store.NewInMemory(), ds, resolver.WithLogger(logger))

	r := chi.NewRouter()
	New(res, logger).Register(r)
	return r
}

func TestResolveNameEndpoint(t *testing.T) {
	testutil.Given(t, "an empty remote store and the bundled dataset", func(t *testing.T) {
		router := newLocationRouter(t)

		testutil.When(t, "the id is in the master dataset", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/department/sv-ss/name?parent=sv"))
			testutil.AssertStatusOK(t, rr)
			body := testutil.UnmarshalResponse[nameResponse](t, rr)
			assert.Equal(t, "San Salvador", body.Name)
		})

		testutil.When(t, "the id is unknown", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/district/unknown-id/name"))
			testutil.AssertStatusOK(t, rr)
			testutil.AssertJSONContains(t, rr, "name", "unknown-id")
		})

		testutil.When(t, "the level is unknown", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/planet/x/name"))
			testutil.AssertValidationError(t, rr, "unknown location level")
		})
	})
}

func TestListChildrenEndpoint(t *testing.T) {
	router := newLocationRouter(t)

	testutil.When(t, "listing countries", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/country"))
		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[childrenResponse](t, rr)
		require.NotEmpty(t, body.Items)
		assert.Equal(t, "sv", body.Items[0].ID)
	})

	testutil.When(t, "listing departments of a country", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/department?parent=sv"))
		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[childrenResponse](t, rr)
		assert.Equal(t, models.LevelDepartment, body.Level)
		assert.Len(t, body.Items, 14)
		for _, e := range body.Items {
			assert.Equal(t, "sv", e.ParentID)
		}
	})

	testutil.When(t, "the parent has no children", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/district?parent=nowhere"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "items", []any{})
	})

	testutil.When(t, "the parent is missing below country level", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/locations/municipality"))
		testutil.AssertValidationError(t, rr, "parent is required")
	})
}

func TestFormatAddressEndpoint(t *testing.T) {
	router := newLocationRouter(t)

	testutil.When(t, "every part is set", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/locations/format-address", models.Address{
			Country:  "SLV",
			State:    "sv-li",
			City:     "sv-li-sur",
			District: "sv-li-sur-st",
			Street:   "Av. Las Palmas 7",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[formatAddressResponse](t, rr)
		assert.Equal(t, "Av. Las Palmas 7, Santa Tecla, La Libertad Sur, La Libertad, El Salvador", body.Formatted)
	})

	testutil.When(t, "only a street is set", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/locations/format-address", models.Address{Street: "Calle 5"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "formatted", "Calle 5")
	})

	testutil.Then(t, "an address with no fields is rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/locations/format-address", models.Address{Street: "   "})
		rr := testutil.DoRequest(router, req)
		testutil.AssertValidationError(t, rr, "address must have at least one field")
	})

	testutil.Then(t, "a malformed body is a bad request", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/locations/format-address", "not an object")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}
