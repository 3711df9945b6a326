// Package audit tells persistence who is changing the data
package audit

import (
	"context"

	"github.com/junpakpark/productmanage/internal/handlers/userctx"
)

// Auditor returns subject of the authenticated caller
// ok is false for anonymous requests and background jobs
func Auditor(ctx context.Context) (memberID int64, ok bool) {
	identity, ok := userctx.FromContext(ctx)
	if !ok {
		return 0, false
	}
	return identity.SubjectID, true
}

// AuditorPtr is Auditor shaped for nullable columns
func AuditorPtr(ctx context.Context) *int64 {
	id, ok := Auditor(ctx)
	if !ok {
		return nil
	}
	return &id
}
