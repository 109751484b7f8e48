package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestCustomerTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)

	info, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, info.UserID)
	assert.Equal(t, RoleCustomer, info.Role)
	assert.Equal(t, uuid.Nil, info.RestaurantID)
}

func TestOperatorTokenCarriesRestaurantScope(t *testing.T) {
	operatorID := uuid.New()
	restaurantID := uuid.New()

	token, err := GenerateOperatorToken(testSecret, operatorID, restaurantID, time.Hour)
	require.NoError(t, err)

	info, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, operatorID, info.UserID)
	assert.Equal(t, RoleOperator, info.Role)
	assert.Equal(t, restaurantID, info.RestaurantID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}
