package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/handlers/render"
	"github.com/junpakpark/productmanage/internal/handlers/userctx"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

type tokenValidator interface {
	// Has to fail with apperrors.ErrTokenNotAccessKind for refresh tokens
	ValidateAccess(token string) error
	ParseIdentity(token string) (models.Identity, error)
}

type rejectionRecorder interface {
	GateRejected(code string)
}

type noopRecorder struct{}

func (noopRecorder) GateRejected(string) {}

// Gate inspects request and returns error to stop it
type Gate func(r *http.Request) error

// Pipeline builds request gates sharing one token validator
type Pipeline struct {
	tokens  tokenValidator
	logger  logger.Logger
	metrics rejectionRecorder
	exempt  []func(*http.Request) bool
}

func NewPipeline(tokens tokenValidator, l logger.Logger, m rejectionRecorder, exempt ...func(*http.Request) bool) *Pipeline {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	if m == nil {
		m = noopRecorder{}
	}

	return &Pipeline{
		tokens:  tokens,
		logger:  l,
		metrics: m,
		exempt:  exempt,
	}
}

// PublicProductReads matches anonymous product listing and details requests
func PublicProductReads(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return r.URL.Path == "/api/products" || strings.HasPrefix(r.URL.Path, "/api/products/")
}

func (p *Pipeline) isExempt(r *http.Request) bool {
	for _, exempt := range p.exempt {
		if exempt(r) {
			return true
		}
	}
	return false
}

// Authenticate requires valid access token unless request is exempt
func (p *Pipeline) Authenticate() Gate {
	return func(r *http.Request) error {
		if p.isExempt(r) {
			return nil
		}

		token, err := tokenFromRequest(r)
		if err != nil {
			return err
		}

		return p.tokens.ValidateAccess(token)
	}
}

// Authorize requires caller role to be at least the required one
// Admin is the top role, so admin routes accept admins only
func (p *Pipeline) Authorize(required models.Role) Gate {
	return func(r *http.Request) error {
		token, err := tokenFromRequest(r)
		if err != nil {
			return err
		}

		identity, err := p.tokens.ParseIdentity(token)
		if err != nil {
			return err
		}

		if !identity.Role.AtLeast(required) {
			return apperrors.ErrRoleForbidden
		}
		return nil
	}
}

// Protect runs gates in the given order and injects caller identity into request context
// Identity of exempt requests is injected only when a valid access token is present
func (p *Pipeline) Protect(gates ...Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, gate := range gates {
				if err := gate(r); err != nil {
					p.reject(w, r, err)
					return
				}
			}

			if p.isExempt(r) {
				if identity, ok := p.optionalIdentity(r); ok {
					r = r.WithContext(userctx.New(r.Context(), identity))
				}
				next.ServeHTTP(w, r)
				return
			}

			token, err := tokenFromRequest(r)
			if err != nil {
				p.reject(w, r, err)
				return
			}
			identity, err := p.tokens.ParseIdentity(token)
			if err != nil {
				p.reject(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), identity)))
		})
	}
}

func (p *Pipeline) optionalIdentity(r *http.Request) (models.Identity, bool) {
	token, err := tokenFromRequest(r)
	if err != nil {
		return models.Identity{}, false
	}
	if err := p.tokens.ValidateAccess(token); err != nil {
		return models.Identity{}, false
	}
	identity, err := p.tokens.ParseIdentity(token)
	return identity, err == nil
}

func (p *Pipeline) reject(w http.ResponseWriter, r *http.Request, err error) {
	code, args := rejection(r, err)
	p.metrics.GateRejected(code)

	switch {
	case LogSecurityEvent(p.logger, r, err):
	case apperrors.KindOf(err) == apperrors.KindUnknown:
		p.logger.Error("auth gate failed", args...)
	default:
		p.logger.Info("auth rejected", args...)
	}

	render.AppError(w, err)
}

// LogSecurityEvent logs security failures tagged with caller ip, path and method
// Reports false and logs nothing for other errors
func LogSecurityEvent(l logger.Logger, r *http.Request, err error) bool {
	if !apperrors.IsSecurity(err) {
		return false
	}
	_, args := rejection(r, err)
	l.Warn("security event", args...)
	return true
}

func rejection(r *http.Request, err error) (string, []any) {
	code := render.ServiceErrorType
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	return code, []any{
		"code", code,
		"reason", err.Error(),
		"ip", clientIP(r),
		"path", r.URL.Path,
		"method", r.Method,
	}
}
