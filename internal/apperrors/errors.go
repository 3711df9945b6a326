package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies failures so callers can react without matching on messages
type Kind int

const (
	KindUnknown Kind = iota

	KindHeaderMissing
	KindHeaderInvalid
	KindTokenMalformed
	KindTokenSignatureInvalid
	KindTokenExpired
	KindTokenNotAccessKind
	KindRefreshTokenUnknown
	KindRoleForbidden

	KindMemberEmailConflict
	KindMemberPasswordMismatch
	KindMemberNotFound

	KindProductNotFound
	KindProductOwnerMismatch
	KindProductInvalid
)

// Error is the single application error type
// Code and Message are safe to show to the caller, Err is not
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so wrapped copies still match the sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Wrap returns a copy of the error with cause attached
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// WithMessage returns a copy of the error with a more specific message
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrHeaderMissing         = &Error{Kind: KindHeaderMissing, Code: "AUTH-001", Message: "Authorization header is missing", Status: http.StatusUnauthorized}
	ErrHeaderInvalid         = &Error{Kind: KindHeaderInvalid, Code: "AUTH-002", Message: "Authorization header is invalid", Status: http.StatusUnauthorized}
	ErrTokenMalformed        = &Error{Kind: KindTokenMalformed, Code: "AUTH-003", Message: "Token is malformed", Status: http.StatusUnauthorized}
	ErrTokenSignatureInvalid = &Error{Kind: KindTokenSignatureInvalid, Code: "AUTH-004", Message: "Token signature is invalid", Status: http.StatusUnauthorized}
	ErrTokenExpired          = &Error{Kind: KindTokenExpired, Code: "AUTH-005", Message: "Token is expired", Status: http.StatusUnauthorized}
	ErrTokenNotAccessKind    = &Error{Kind: KindTokenNotAccessKind, Code: "AUTH-006", Message: "Token is not an access token", Status: http.StatusUnauthorized}
	ErrRefreshTokenUnknown   = &Error{Kind: KindRefreshTokenUnknown, Code: "AUTH-007", Message: "Refresh token is unknown", Status: http.StatusUnauthorized}
	ErrRoleForbidden         = &Error{Kind: KindRoleForbidden, Code: "c-001", Message: "Role is not allowed", Status: http.StatusForbidden}

	ErrMemberEmailConflict    = &Error{Kind: KindMemberEmailConflict, Code: "MEMBER-001", Message: "Member with this email already exists", Status: http.StatusConflict}
	ErrMemberPasswordMismatch = &Error{Kind: KindMemberPasswordMismatch, Code: "MEMBER-002", Message: "Password does not match", Status: http.StatusUnauthorized}
	ErrMemberNotFound         = &Error{Kind: KindMemberNotFound, Code: "MEMBER-003", Message: "Member not found", Status: http.StatusNotFound}

	ErrProductNotFound      = &Error{Kind: KindProductNotFound, Code: "PRODUCT-001", Message: "Product not found", Status: http.StatusNotFound}
	ErrProductOwnerMismatch = &Error{Kind: KindProductOwnerMismatch, Code: "PRODUCT-002", Message: "Product belongs to another seller", Status: http.StatusForbidden}
	ErrProductInvalid       = &Error{Kind: KindProductInvalid, Code: "PRODUCT-003", Message: "Product is invalid", Status: http.StatusBadRequest}
)

// KindOf returns the kind of the first *Error in the chain or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsSecurity reports failures an operator watches for probing traffic
func IsSecurity(err error) bool {
	switch KindOf(err) {
	case KindHeaderInvalid, KindTokenMalformed, KindTokenSignatureInvalid, KindTokenNotAccessKind, KindRoleForbidden:
		return true
	default:
		return false
	}
}
