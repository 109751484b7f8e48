package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token roles.
const (
	RoleCustomer = "customer"
	RoleOperator = "operator"
)

type jwtCustomClaims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is the decoded identity carried by a JWT.
type TokenInfo struct {
	UserID       uuid.UUID
	Role         string
	RestaurantID uuid.UUID
}

// GenerateToken creates a signed customer JWT for the provided user ID.
func GenerateToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	return generate(secret, userID, RoleCustomer, "", ttl)
}

// GenerateOperatorToken creates a signed operator JWT carrying the
// restaurant the operator is assigned to.
func GenerateOperatorToken(secret string, operatorID, restaurantID uuid.UUID, ttl time.Duration) (string, error) {
	return generate(secret, operatorID, RoleOperator, restaurantID.String(), ttl)
}

func generate(secret string, subject uuid.UUID, role, restaurantID string, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID:       subject.String(),
		Role:         role,
		RestaurantID: restaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded identity.
func ParseToken(secret, tokenString string) (*TokenInfo, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	info := &TokenInfo{UserID: userID, Role: claims.Role}
	if claims.Role == "" {
		info.Role = RoleCustomer
	}
	if claims.RestaurantID != "" {
		restaurantID, err := uuid.Parse(claims.RestaurantID)
		if err != nil {
			return nil, jwt.ErrTokenInvalidClaims
		}
		info.RestaurantID = restaurantID
	}

	return info, nil
}
