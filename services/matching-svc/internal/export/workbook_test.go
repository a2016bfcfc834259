package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/engine"
)

func snapshot() engine.Snapshot {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	donor := &domain.Donor{ID: "d1", Name: "Ali Hussain", BloodType: domain.ONegative, LocationID: "gulberg"}
	return engine.Snapshot{
		Inventory: []domain.InventoryEntry{
			{BloodType: domain.APositive, Total: 10, Reserved: 2},
			{BloodType: domain.ONegative, Total: 5, Reserved: 3},
		},
		Requests: []*domain.BloodRequest{{
			ID:           "r1",
			BloodType:    domain.ONegative,
			Units:        2,
			LocationID:   "township",
			Priority:     domain.PriorityEmergency,
			Status:       domain.StatusMatched,
			Source:       domain.SourceDonorMatch,
			MatchedDonor: donor,
			Distance:     7,
			CreatedAt:    at,
			UpdatedAt:    at,
		}},
		Donors: []domain.Donor{*donor},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, snapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInventory, SheetRequests, SheetDonors}, f.GetSheetList())

	inv, err := f.GetRows(SheetInventory)
	require.NoError(t, err)
	require.Len(t, inv, 3)
	assert.Equal(t, []string{"Blood Type", "Total", "Reserved", "Available"}, inv[0])
	assert.Equal(t, []string{"O-", "5", "3", "2"}, inv[2])

	reqs, err := f.GetRows(SheetRequests)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "r1", reqs[1][0])
	assert.Equal(t, "Emergency", reqs[1][4])
	assert.Equal(t, "Matched", reqs[1][5])
	assert.Equal(t, "Ali Hussain", reqs[1][7])
	assert.Equal(t, "2026-03-01 09:30", reqs[1][10])

	donors, err := f.GetRows(SheetDonors)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "FALSE", donors[1][4])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, engine.Snapshot{}))

	// xlsx это zip
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 5, 0, time.FixedZone("PKT", 5*3600))
	assert.Equal(t, "bloodlink-20260301-043005.xlsx", Filename(at))
}
