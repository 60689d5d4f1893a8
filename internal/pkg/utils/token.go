package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/spf13/viper"
)

// AuthTokenWrapper is the payload of the session cookie.
type AuthTokenWrapper struct {
	SessionID string `json:"sid"`
	jwt.StandardClaims
}

func secretKey() []byte {
	return []byte(viper.GetString(constants.ViperSecretKey))
}

// GenerateAuthToken signs the wrapper with HS256. ExpiresAt defaults to now + the
// configured token TTL.
func GenerateAuthToken(wrapper *AuthTokenWrapper) (string, error) {
	now := time.Now()
	if wrapper.IssuedAt == 0 {
		wrapper.IssuedAt = now.Unix()
	}
	if wrapper.ExpiresAt == 0 {
		ttl := viper.GetDuration(constants.ViperTokenTTL)
		if ttl <= 0 {
			ttl = 12 * time.Hour
		}
		wrapper.ExpiresAt = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wrapper)
	signed, err := token.SignedString(secretKey())
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}
	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	wrapper := new(AuthTokenWrapper)
	token, err := jwt.ParseWithClaims(raw, wrapper, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, constants.ErrUnauthorized
	}
	if wrapper.SessionID == "" {
		return nil, constants.ErrUnauthorized
	}
	return wrapper, nil
}
