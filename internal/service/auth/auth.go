package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/metrics"
	"github.com/junpakpark/productmanage/internal/models"
	"github.com/junpakpark/productmanage/internal/repository"
)

type tokenManager interface {
	IssuePair(identity models.Identity) (models.TokenPair, error)

	// Check signature and expiration only, token kind is not checked
	Validate(token string) error
}

type memberAuthenticator interface {
	// Has to return apperrors.ErrMemberNotFound or apperrors.ErrMemberPasswordMismatch on bad credentials
	Authenticate(ctx context.Context, email string, password string) (models.Identity, error)
}

type sessionRecorder interface {
	SessionDone(op string)
}

type noopRecorder struct{}

func (noopRecorder) SessionDone(string) {}

// Service implements session lifecycle: issue, reissue and revoke token pairs
// Refresh tokens are honored only while present in the revocation store
type Service struct {
	tokens  tokenManager
	store   repository.RevocationStore
	members memberAuthenticator
	metrics sessionRecorder
}

func NewService(tokens tokenManager, store repository.RevocationStore, members memberAuthenticator, m sessionRecorder) (*Service, error) {
	if tokens == nil || store == nil || members == nil {
		return nil, errors.New("token manager, revocation store and members must not be nil")
	}

	if m == nil {
		m = noopRecorder{}
	}

	return &Service{
		tokens:  tokens,
		store:   store,
		members: members,
		metrics: m,
	}, nil
}

// Login checks credentials and starts a new session
func (s *Service) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	identity, err := s.members.Authenticate(ctx, email, password)
	if err != nil {
		return models.TokenPair{}, err
	}

	return s.IssueTokens(ctx, identity)
}

func (s *Service) IssueTokens(ctx context.Context, identity models.Identity) (models.TokenPair, error) {
	pair, err := s.issue(ctx, identity)
	if err != nil {
		return pair, err
	}

	s.metrics.SessionDone(metrics.OpIssue)
	return pair, nil
}

// Reissue exchanges a known refresh token for a new pair
// The old refresh token stays in the store until it expires or is revoked
func (s *Service) Reissue(ctx context.Context, refresh string) (models.TokenPair, error) {
	if err := s.tokens.Validate(refresh); err != nil {
		return models.TokenPair{}, err
	}

	identity, ok, err := s.store.FindByToken(ctx, refresh)
	switch {
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("error while looking up refresh token. Err: %w", err)
	case !ok:
		return models.TokenPair{}, apperrors.ErrRefreshTokenUnknown
	}

	pair, err := s.issue(ctx, identity)
	if err != nil {
		return pair, err
	}

	s.metrics.SessionDone(metrics.OpReissue)
	return pair, nil
}

// Revoke validates the token before removing it, so expired or forged tokens fail instead of being a no-op
func (s *Service) Revoke(ctx context.Context, refresh string) error {
	if err := s.tokens.Validate(refresh); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, refresh); err != nil {
		return fmt.Errorf("error while removing refresh token. Err: %w", err)
	}

	s.metrics.SessionDone(metrics.OpRevoke)
	return nil
}

func (s *Service) issue(ctx context.Context, identity models.Identity) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(identity)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	if err := s.store.Save(ctx, pair.Refresh.Value, identity); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}
