// Package utils holds small helpers shared by services and middleware.
package utils

import (
	"errors"
	"strconv"
	"time"

	"paylink/internal/config"
	"paylink/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	issuer          = "paylink-api"
)

// GenerateTokens signs an access token and a refresh token for the claims.
func GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return "", "", errors.New("JWT_SECRET not configured")
	}

	now := time.Now()
	base := jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   issuer,
		Subject:  strconv.FormatUint(uint64(claims.UserID), 10),
	}

	accessClaims := models.UserClaims{
		RegisteredClaims: base,
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
	}
	accessClaims.ExpiresAt = jwt.NewNumericDate(now.Add(accessTokenTTL))
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := accessClaims
	refreshClaims.ExpiresAt = jwt.NewNumericDate(now.Add(refreshTokenTTL))
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*models.UserClaims, error) {
	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
