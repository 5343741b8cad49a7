package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crmdir/internal/directory/models"
)

func TestWriteXLSX(t *testing.T) {
	interaction := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	rows := []Row{
		{
			Record: models.ClientRecord{
				Name:                "Acme Corp",
				DocumentID:          "0614-010190-101-1",
				ClientType:          models.ClientTypeEmpresa,
				Status:              models.StatusActivo,
				Tags:                []string{"vip", "retail"},
				Source:              "referral",
				CreatedAt:           time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				LastInteractionDate: &interaction,
			},
			Address: "Calle Arce 1, San Salvador, El Salvador",
		},
		{
			Record: models.ClientRecord{
				Name:       "Beta",
				ClientType: models.ClientTypePersonaNatural,
				Status:     models.StatusProspecto,
				CreatedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Header, got[0])
	require.GreaterOrEqual(t, len(got[1]), 9)
	assert.Equal(t, []string{
		"Acme Corp", "0614-010190-101-1", "Empresa", "Activo", "vip, retail", "referral",
		"Calle Arce 1, San Salvador, El Salvador", "2024-01-10", "2024-05-02",
	}, got[1][:9])
	assert.Equal(t, "Beta", got[2][0])
	assert.Equal(t, "2024-02-01", got[2][7])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, got)
}
