package models

import (
	"time"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "ACCESS"
	TokenRefresh TokenKind = "REFRESH"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on login or reissue
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
