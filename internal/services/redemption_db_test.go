package services

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/oblako/internal/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL (or
// DATABASE_URL) and migrates the loyalty schema. Tests that need Postgres
// skip when neither is set.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	migrations := []interface{}{
		&models.User{},
		&models.Restaurant{},
		&models.Operator{},
		&models.Package{},
		&models.TimeWindow{},
		&models.UserPackage{},
		&models.ConsumptionEvent{},
		&models.Rating{},
	}
	for _, m := range migrations {
		require.NoError(t, db.AutoMigrate(m))
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		FirstName:   "Test",
		LastName:    "Customer",
		Phone:       fmt.Sprintf("+998%s", uuid.NewString()[:12]),
		DisplayName: "Test Customer",
		IsVerified:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestRestaurant(t *testing.T, db *gorm.DB) *models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{Name: "Test Lounge", IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)
	return &restaurant
}

func createLedger(t *testing.T, db *gorm.DB, userID uuid.UUID, count int, purchasedAt time.Time) *models.UserPackage {
	t.Helper()
	entry := models.UserPackage{
		UserID:         userID,
		TotalCount:     count,
		RemainingCount: count,
		Status:         models.LedgerStatusActive,
		PurchasedAt:    purchasedAt,
	}
	require.NoError(t, db.Create(&entry).Error)
	return &entry
}

func TestRedeemFIFOAcrossEntries(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	restaurant := createTestRestaurant(t, db)

	older := createLedger(t, db, user.ID, 5, time.Now().Add(-2*time.Hour))
	newer := createLedger(t, db, user.ID, 10, time.Now().Add(-1*time.Hour))

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	issued, err := otpSvc.IssueConsumptionCode(user.ID, restaurant.ID, 7)
	require.NoError(t, err)
	require.Len(t, issued.Code, 5)

	// Submit the code with its leading zeros stripped: comparison must be
	// width-invariant.
	submitted := strings.TrimLeft(issued.Code, "0")
	if submitted == "" {
		submitted = "0"
	}

	svc := NewRedemptionService(db, 5)
	result, err := svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         submitted,
		RestaurantID: restaurant.ID,
		Flavor:       "double apple",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Count)
	assert.True(t, result.RatingPending)
	require.Len(t, result.Deductions, 2)

	var reloadedOlder, reloadedNewer models.UserPackage
	require.NoError(t, db.First(&reloadedOlder, "id = ?", older.ID).Error)
	require.NoError(t, db.First(&reloadedNewer, "id = ?", newer.ID).Error)
	assert.Equal(t, 0, reloadedOlder.RemainingCount)
	assert.Equal(t, models.LedgerStatusExhausted, reloadedOlder.Status)
	assert.Equal(t, 8, reloadedNewer.RemainingCount)
	assert.Equal(t, models.LedgerStatusActive, reloadedNewer.Status)

	var events []models.ConsumptionEvent
	require.NoError(t, db.Where("redeem_log_id = ?", result.RedeemLogID).Find(&events).Error)
	require.Len(t, events, 2)
	total := 0
	for _, e := range events {
		total += e.Count
		assert.Equal(t, restaurant.ID, e.RestaurantID)
		assert.Equal(t, "double apple", e.Flavor)
	}
	assert.Equal(t, 7, total)

	// Replaying the code must fail: single use.
	_, err = svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: restaurant.ID,
	})
	assert.ErrorIs(t, err, ErrOtpAlreadyUsed)
}

func TestRedeemRestaurantScopeMismatch(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	boundTo := createTestRestaurant(t, db)
	other := createTestRestaurant(t, db)

	createLedger(t, db, user.ID, 3, time.Now().Add(-time.Hour))

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	issued, err := otpSvc.IssueConsumptionCode(user.ID, boundTo.ID, 2)
	require.NoError(t, err)

	svc := NewRedemptionService(db, 5)
	_, err = svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: other.ID,
	})
	assert.ErrorIs(t, err, ErrRestaurantScopeMismatch)

	// The failed attempt must not consume the code or touch the ledger.
	result, err := svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: boundTo.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func TestRedeemExpiredCode(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	restaurant := createTestRestaurant(t, db)

	createLedger(t, db, user.ID, 3, time.Now().Add(-time.Hour))

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	issued, err := otpSvc.IssueConsumptionCode(user.ID, restaurant.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("consumption_otp_expires_at", time.Now().Add(-time.Second)).Error)

	svc := NewRedemptionService(db, 5)
	_, err = svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: restaurant.ID,
	})
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestRedeemGiftEntry(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	restaurant := createTestRestaurant(t, db)

	svc := NewRedemptionService(db, 5)
	operatorID := uuid.New()
	gift, err := svc.Gift(user.Phone, restaurant.ID, operatorID)
	require.NoError(t, err)
	assert.True(t, gift.IsGift)
	assert.Equal(t, 1, gift.TotalCount)
	assert.Equal(t, 1, gift.RemainingCount)
	assert.Equal(t, models.LedgerStatusActive, gift.Status)

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	issued, err := otpSvc.IssueConsumptionCode(user.ID, restaurant.ID, 1)
	require.NoError(t, err)

	result, err := svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: restaurant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)

	var reloaded models.UserPackage
	require.NoError(t, db.First(&reloaded, "id = ?", gift.ID).Error)
	assert.Equal(t, 0, reloaded.RemainingCount)
	assert.Equal(t, models.LedgerStatusExhausted, reloaded.Status)
}

func TestIssueInsufficientCredit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	restaurant := createTestRestaurant(t, db)

	createLedger(t, db, user.ID, 2, time.Now().Add(-time.Hour))

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	_, err := otpSvc.IssueConsumptionCode(user.ID, restaurant.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientCredit)
}

func TestVerifyPathEnforcesWindows(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	restaurant := createTestRestaurant(t, db)

	// Window two hours ahead of now: the entry is waiting on the
	// self-service path.
	clock := func(offset time.Duration) string {
		return time.Now().Add(offset).Format("15:04")
	}
	entry := models.UserPackage{
		UserID:         user.ID,
		TotalCount:     3,
		RemainingCount: 3,
		Status:         models.LedgerStatusActive,
		PurchasedAt:    time.Now().Add(-time.Hour),
		TimeWindows: []models.TimeWindow{
			{Start: clock(2 * time.Hour), End: clock(3 * time.Hour)},
		},
	}
	require.NoError(t, db.Create(&entry).Error)

	otpSvc := NewOTPService(db, nil, 15*time.Minute, 5)
	issued, err := otpSvc.IssueConsumptionCode(user.ID, restaurant.ID, 1)
	require.NoError(t, err)

	svc := NewRedemptionService(db, 5)
	_, err = svc.Redeem(RedeemParams{
		Phone:          user.Phone,
		Code:           issued.Code,
		EnforceWindows: true,
	})
	require.ErrorIs(t, err, ErrWaiting)

	var waiting *WaitingError
	require.ErrorAs(t, err, &waiting)
	assert.True(t, waiting.NextAvailableAt.After(time.Now()))

	// The operator path redeems the same still-unconsumed code regardless of
	// the window.
	result, err := svc.Redeem(RedeemParams{
		Phone:        user.Phone,
		Code:         issued.Code,
		RestaurantID: restaurant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}
