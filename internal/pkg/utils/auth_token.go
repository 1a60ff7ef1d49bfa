package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/spf13/viper"
)

const tokenTTL = 24 * time.Hour

// AuthTokenWrapper is the payload carried inside a signed auth token.
type AuthTokenWrapper struct {
	UserID     string
	FacilityID string
}

func GenerateAuthToken(w *AuthTokenWrapper) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     w.UserID,
		"facility_id": w.FacilityID,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(viper.GetString(constants.ViperSecretKey)))
	if err != nil {
		return "", fmt.Errorf("failed to sign auth token: %w", err)
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString(constants.ViperSecretKey)), nil
	})
	if err != nil {
		return nil, constants.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	userID, _ := claims["user_id"].(string)
	facilityID, _ := claims["facility_id"].(string)
	if userID == "" || facilityID == "" {
		return nil, constants.ErrUnauthorized
	}

	return &AuthTokenWrapper{UserID: userID, FacilityID: facilityID}, nil
}
