package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const deviceTokenAudience = "growt-ingest"

// ErrInvalidDeviceToken is returned when a device bearer token is missing,
// malformed, expired or signed with another key.
var ErrInvalidDeviceToken = errors.New("invalid device token")

// DeviceTokens issues and verifies the HS256 bearer tokens devices present
// to the ingestion endpoint.
type DeviceTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewDeviceTokens creates a token signer. A zero ttl issues tokens that
// never expire.
func NewDeviceTokens(secret string, ttl time.Duration) *DeviceTokens {
	return &DeviceTokens{secret: []byte(secret), ttl: ttl}
}

type deviceClaims struct {
	jwt.RegisteredClaims
	Serial string `json:"serial"`
}

// Issue signs a token for the given device.
func (t *DeviceTokens) Issue(deviceID, serial string) (string, error) {
	now := time.Now()
	claims := deviceClaims{
		Serial: serial,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  deviceID,
			Audience: jwt.ClaimStrings{deviceTokenAudience},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign device token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns the device id it was issued for.
func (t *DeviceTokens) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidDeviceToken
	}
	parsed, err := jwt.ParseWithClaims(token, &deviceClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(deviceTokenAudience),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDeviceToken, err)
	}
	claims, ok := parsed.Claims.(*deviceClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidDeviceToken
	}
	return claims.Subject, nil
}
