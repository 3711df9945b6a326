package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/handlers/middleware"
	"github.com/junpakpark/productmanage/internal/handlers/render"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

const RefreshCookieName = "refresh-token"

type sessionService interface {
	// Has to return apperrors.ErrMemberNotFound or apperrors.ErrMemberPasswordMismatch on bad credentials
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// If token is not in the store has to return apperrors.ErrRefreshTokenUnknown
	Reissue(ctx context.Context, refresh string) (models.TokenPair, error)

	Revoke(ctx context.Context, refresh string) error
}

type AuthHandler struct {
	sessions   sessionService
	refreshTTL time.Duration
	logger     logger.Logger
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func NewAuth(sessions sessionService, refreshTTL time.Duration, l logger.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, refreshTTL: refreshTTL, logger: l}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.sessions.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh.Value, int(h.refreshTTL.Seconds()))
	render.JSON(w, AccessTokenResponse{AccessToken: pair.Access.Value})
}

func (h *AuthHandler) reissue(w http.ResponseWriter, r *http.Request) {
	refresh, err := refreshFromRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	pair, err := h.sessions.Reissue(r.Context(), refresh)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh.Value, int(h.refreshTTL.Seconds()))
	render.JSON(w, AccessTokenResponse{AccessToken: pair.Access.Value})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	refresh, err := refreshFromRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.sessions.Revoke(r.Context(), refresh); err != nil {
		h.fail(w, r, err)
		return
	}

	// Negative MaxAge is sent as Max-Age=0
	h.setRefreshCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	renderError(w, r, h.logger, err)
}

func refreshFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrRefreshTokenUnknown
	}
	return cookie.Value, nil
}

// Render error, log security failures and unexpected ones
func renderError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) {
	switch {
	case middleware.LogSecurityEvent(l, r, err):
	case apperrors.KindOf(err) == apperrors.KindUnknown:
		l.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	render.AppError(w, err)
}
