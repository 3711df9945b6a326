package tokenmanager

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

const (
	defaultAccessTokenTTL  = 5 * time.Minute
	defaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens, base64 or raw
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

// TokenManager issues and validates access and refresh tokens
// It never touches the revocation store
type TokenManager struct {
	codec *Codec

	accessTTL  time.Duration
	refreshTTL time.Duration

	logger logger.Logger
}

func New(cfg Config, l logger.Logger) (*TokenManager, error) {
	codec, err := NewCodec(cfg.SecretKey, cfg.Alg, cfg.Now)
	if err != nil {
		return nil, err
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("access token TTL must be shorter than refresh token TTL")
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &TokenManager{
		codec:      codec,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     l,
	}, nil
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *TokenManager) IssueAccess(identity models.Identity) (models.IssuedToken, error) {
	return m.codec.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(identity.SubjectID, 10),
		},
		Role:      identity.Role.String(),
		TokenKind: Kind(models.TokenAccess),
	}, m.accessTTL)
}

// IssueRefresh adds random jti so two refresh tokens for one subject never collide
func (m *TokenManager) IssueRefresh(subjectID int64) (models.IssuedToken, error) {
	return m.codec.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(subjectID, 10),
			ID:      uuid.NewString(),
		},
		TokenKind: Kind(models.TokenRefresh),
	}, m.refreshTTL)
}

func (m *TokenManager) IssuePair(identity models.Identity) (models.TokenPair, error) {
	access, err := m.IssueAccess(identity)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefresh(identity.SubjectID)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Validate checks signature and expiration whatever the token kind is
func (m *TokenManager) Validate(token string) error {
	_, err := m.decode(token)
	return err
}

// ValidateAccess also requires the token to be an access one
func (m *TokenManager) ValidateAccess(token string) error {
	claims, err := m.decode(token)
	if err != nil {
		return err
	}

	if models.TokenKind(claims.TokenKind) != models.TokenAccess {
		return apperrors.ErrTokenNotAccessKind
	}

	return nil
}

// ParseIdentity projects subject and role claims
// Expected to be called for already authenticated tokens
func (m *TokenManager) ParseIdentity(token string) (models.Identity, error) {
	claims, err := m.decode(token)
	if err != nil {
		return models.Identity{}, err
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.Identity{}, apperrors.ErrTokenMalformed.Wrap(err)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Identity{}, apperrors.ErrTokenMalformed.Wrap(err)
	}

	return models.Identity{SubjectID: subjectID, Role: role}, nil
}

func (m *TokenManager) decode(token string) (*Claims, error) {
	claims, err := m.codec.Decode(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, apperrors.ErrTokenExpired):
		m.logger.Warn("token expired", "error", err)
	default:
		m.logger.Error("token invalid", "error", err)
	}
	return nil, err
}
