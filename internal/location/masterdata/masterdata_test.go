package masterdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmdir/internal/location/models"
)

func TestBundled(t *testing.T) {
	ds, err := Bundled()
	require.NoError(t, err)

	t.Run("every level is populated", func(t *testing.T) {
		for _, l := range models.Levels {
			assert.Positive(t, ds.Len(l), "level %s", l)
		}
	})

	t.Run("every non-root entity has a resolvable parent", func(t *testing.T) {
		for _, l := range models.Levels {
			parent, ok := l.Parent()
			if !ok {
				continue
			}
			ids := map[string]bool{}
			for _, p := range ds.ChildrenOf(parent, "") {
				ids[p.ID] = true
			}
			for _, e := range ds.ChildrenOf(l, "") {
				assert.True(t, ids[e.ParentID], "%s %s has unknown parent %q", l, e.ID, e.ParentID)
			}
		}
	})

	t.Run("filters by parent", func(t *testing.T) {
		departments := ds.ChildrenOf(models.LevelDepartment, "sv")
		assert.Len(t, departments, 14)
		for _, d := range departments {
			assert.Equal(t, "sv", d.ParentID)
		}
	})

	t.Run("countries carry ISO codes", func(t *testing.T) {
		for _, c := range ds.ChildrenOf(models.LevelCountry, "") {
			assert.NotEmpty(t, c.ISOCode, c.ID)
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("reads the bundled layout", func(t *testing.T) {
		ds, err := Parse(strings.NewReader("countries:\n  - {id: mx, name: México, iso_code: MEX}\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len(models.LevelCountry))
		assert.Zero(t, ds.Len(models.LevelDistrict))
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Parse(strings.NewReader("countries: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("nil dataset is empty", func(t *testing.T) {
		var ds *Dataset
		assert.Nil(t, ds.ChildrenOf(models.LevelCountry, ""))
	})
}
