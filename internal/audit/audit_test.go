package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/junpakpark/productmanage/internal/handlers/userctx"
	"github.com/junpakpark/productmanage/internal/models"
)

func TestAuditor(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		ctx := userctx.New(context.Background(), models.Identity{SubjectID: 7, Role: models.RoleSeller})

		id, ok := Auditor(ctx)
		require.True(t, ok)
		require.Equal(t, int64(7), id)

		ptr := AuditorPtr(ctx)
		require.NotNil(t, ptr)
		require.Equal(t, int64(7), *ptr)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, ok := Auditor(context.Background())
		require.False(t, ok)
		require.Nil(t, AuditorPtr(context.Background()))
	})
}
