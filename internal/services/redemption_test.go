package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oblako/internal/models"
)

func ledgerEntry(remaining int, purchasedAt time.Time) models.UserPackage {
	return models.UserPackage{
		BaseModel:      models.BaseModel{ID: uuid.New()},
		TotalCount:     remaining,
		RemainingCount: remaining,
		Status:         models.LedgerStatusActive,
		PurchasedAt:    purchasedAt,
	}
}

func TestPlanDeductionsFIFOSplit(t *testing.T) {
	// Two entries of 5 and 10 credits, purchased in that order; redeeming 7
	// must exhaust the older one and take 2 from the newer.
	older := ledgerEntry(5, at(10, 0))
	newer := ledgerEntry(10, at(11, 0))

	plan, err := planDeductions([]models.UserPackage{older, newer}, 7)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, older.ID, plan[0].UserPackageID)
	assert.Equal(t, 5, plan[0].Count)
	assert.Equal(t, 0, plan[0].Remaining)

	assert.Equal(t, newer.ID, plan[1].UserPackageID)
	assert.Equal(t, 2, plan[1].Count)
	assert.Equal(t, 8, plan[1].Remaining)
}

func TestPlanDeductionsSingleEntry(t *testing.T) {
	entry := ledgerEntry(1, at(10, 0))

	plan, err := planDeductions([]models.UserPackage{entry}, 1)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 1, plan[0].Count)
	assert.Equal(t, 0, plan[0].Remaining)
}

func TestPlanDeductionsStopsAtExactCover(t *testing.T) {
	first := ledgerEntry(3, at(10, 0))
	second := ledgerEntry(4, at(11, 0))
	third := ledgerEntry(9, at(12, 0))

	plan, err := planDeductions([]models.UserPackage{first, second, third}, 7)
	require.NoError(t, err)
	require.Len(t, plan, 2, "an entry after full coverage must stay untouched")

	total := 0
	for _, step := range plan {
		total += step.Count
	}
	assert.Equal(t, 7, total)
}

func TestPlanDeductionsInsufficient(t *testing.T) {
	entries := []models.UserPackage{
		ledgerEntry(2, at(10, 0)),
		ledgerEntry(3, at(11, 0)),
	}

	plan, err := planDeductions(entries, 6)
	assert.ErrorIs(t, err, ErrInsufficientCredit)
	assert.Nil(t, plan, "a shortfall must not produce a partial plan")
}

func TestShortfallErrorPrefersWaiting(t *testing.T) {
	nextAt := at(18, 0)
	blocked := []EligibilityResult{
		{Status: EligibilityNotStarted},
		{Status: EligibilityWaiting, NextAvailableAt: &nextAt},
	}

	err := shortfallError(ErrInsufficientCredit, blocked)
	assert.ErrorIs(t, err, ErrWaiting)

	var waiting *WaitingError
	require.ErrorAs(t, err, &waiting)
	assert.Equal(t, nextAt, waiting.NextAvailableAt)
}

func TestShortfallErrorEarliestWindowWins(t *testing.T) {
	early := at(14, 0)
	late := at(20, 0)
	blocked := []EligibilityResult{
		{Status: EligibilityWaiting, NextAvailableAt: &late},
		{Status: EligibilityWaiting, NextAvailableAt: &early},
	}

	var waiting *WaitingError
	require.ErrorAs(t, shortfallError(ErrInsufficientCredit, blocked), &waiting)
	assert.Equal(t, early, waiting.NextAvailableAt)
}

func TestShortfallErrorDateBlocked(t *testing.T) {
	assert.ErrorIs(t,
		shortfallError(ErrInsufficientCredit, []EligibilityResult{{Status: EligibilityNotStarted}}),
		ErrNotStarted)
	assert.ErrorIs(t,
		shortfallError(ErrInsufficientCredit, []EligibilityResult{{Status: EligibilityExpired}}),
		ErrExpired)
}

func TestShortfallErrorCarriesStartDate(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 2)
	later := time.Now().AddDate(0, 0, 7)
	blocked := []EligibilityResult{
		{Status: EligibilityNotStarted, NextAvailableAt: &later},
		{Status: EligibilityNotStarted, NextAvailableAt: &soon},
	}

	err := shortfallError(ErrInsufficientCredit, blocked)
	assert.ErrorIs(t, err, ErrNotStarted)

	var notStarted *NotStartedError
	require.ErrorAs(t, err, &notStarted)
	assert.Equal(t, soon, notStarted.NextAvailableAt, "earliest start date wins")
}

func TestShortfallErrorPlainInsufficient(t *testing.T) {
	assert.ErrorIs(t,
		shortfallError(ErrInsufficientCredit, nil),
		ErrInsufficientCredit)
}
