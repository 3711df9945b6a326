package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/junpakpark/productmanage/internal/apperrors"
)

const bearerScheme = "Bearer"

// ExtractToken returns token part of "<scheme> <token>" header value
// Scheme is matched case-insensitively, token is returned verbatim
func ExtractToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", apperrors.ErrHeaderMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) || parts[1] == "" || strings.Contains(parts[1], " ") {
		return "", apperrors.ErrHeaderInvalid
	}

	return parts[1], nil
}

func tokenFromRequest(r *http.Request) (string, error) {
	return ExtractToken(r.Header.Get("Authorization"))
}

// First X-Forwarded-For hop if present, remote address otherwise
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
