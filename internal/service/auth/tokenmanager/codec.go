package tokenmanager

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
)

const defaultSigningMethod = "HS256"

func init() {
	// exp and iat are encoded with millisecond precision
	jwt.TimePrecision = time.Millisecond
}

// Kind is the tokenType claim
// Anything but a JSON string decodes as empty kind, so only kind checks fail on it
type Kind models.TokenKind

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*k = ""
		return nil
	}
	*k = Kind(s)
	return nil
}

// Claims carried by both access and refresh tokens
// Refresh tokens leave Role empty and always carry an ID (jti)
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role,omitempty"`
	TokenKind Kind   `json:"tokenType,omitempty"`
}

// Codec signs and verifies compact JWS tokens with a single symmetric key
type Codec struct {
	key []byte
	alg jwt.SigningMethod
	now func() time.Time
}

// NewCodec accepts base64 encoded secret, raw string is used as is if it is not base64
func NewCodec(secret string, alg string, now func() time.Time) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if alg == "" {
		alg = defaultSigningMethod
	}
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing method %q is not a supported HMAC method", alg)
	}

	if now == nil {
		now = time.Now
	}

	return &Codec{
		key: decodeSecret(secret),
		alg: method,
		now: now,
	}, nil
}

func decodeSecret(secret string) []byte {
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) > 0 {
		return key
	}
	return []byte(secret)
}

// Encode sets issued at to now and expiration to now + ttl, then signs the claims
func (c *Codec) Encode(claims Claims, ttl time.Duration) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Millisecond)
	expiresAt := now.Add(ttl).Truncate(time.Millisecond)

	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	value, err := jwt.NewWithClaims(c.alg, claims).SignedString(c.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Decode verifies signature and expiration, token is still valid at its expiration instant
// Errors are apperrors.ErrTokenSignatureInvalid, apperrors.ErrTokenExpired or apperrors.ErrTokenMalformed
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return c.key, nil
		},
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, apperrors.ErrTokenSignatureInvalid.Wrap(err)
	default:
		return nil, apperrors.ErrTokenMalformed.Wrap(err)
	}

	if claims.ExpiresAt == nil {
		return nil, apperrors.ErrTokenMalformed.Wrap(jwt.ErrTokenRequiredClaimMissing)
	}

	// Numeric dates are decoded through float64 and may miss a fraction of a millisecond
	claims.ExpiresAt = jwt.NewNumericDate(claims.ExpiresAt.Round(time.Millisecond))
	if claims.IssuedAt != nil {
		claims.IssuedAt = jwt.NewNumericDate(claims.IssuedAt.Round(time.Millisecond))
	}

	if c.now().After(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrTokenExpired.Wrap(jwt.ErrTokenExpired)
	}

	return claims, nil
}
