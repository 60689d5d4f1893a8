package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/spf13/viper"
)

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"London":                   "london",
		"Yorkshire and The Humber": "yorkshire_and_the_humber",
		" East of England ":        "east_of_england",
	} {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q): want=%s got=%s", in, want, got)
		}
	}
}

func TestAuthTokenRoundTrip(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "test-secret")
	defer viper.Reset()

	raw, err := GenerateAuthToken(&AuthTokenWrapper{SessionID: "abc"})
	if err != nil {
		t.Fatalf("GenerateAuthToken: %v", err)
	}
	got, err := ParseAuthToken(raw)
	if err != nil {
		t.Fatalf("ParseAuthToken: %v", err)
	}
	if got.SessionID != "abc" {
		t.Fatalf("session id: want=abc got=%s", got.SessionID)
	}

	viper.Set(constants.ViperSecretKey, "rotated")
	if _, err := ParseAuthToken(raw); !errors.Is(err, constants.ErrUnauthorized) {
		t.Fatalf("foreign secret: want ErrUnauthorized got=%v", err)
	}
}

func TestParseAuthTokenExpired(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "test-secret")
	defer viper.Reset()

	raw, err := GenerateAuthToken(&AuthTokenWrapper{
		SessionID:      "abc",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})
	if err != nil {
		t.Fatalf("GenerateAuthToken: %v", err)
	}
	if _, err := ParseAuthToken(raw); !errors.Is(err, constants.ErrUnauthorized) {
		t.Fatalf("expired token: want ErrUnauthorized got=%v", err)
	}
}
