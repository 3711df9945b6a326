package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
)

type MemberRepo struct {
	DB DBTX
}

const memberColumns = `id, created_at, name, email, password_hash, role, last_password_changed_at`

const createMember = `-- name: CreateMember
INSERT INTO members (name, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + memberColumns

func (r *MemberRepo) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	rows, _ := r.DB.Query(ctx, createMember, m.Name, m.Email, m.PasswordHash, m.Role)
	member, err := pgx.CollectOneRow(rows, rowToMember)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return member, apperrors.ErrMemberEmailConflict
		}

		return member, fmt.Errorf("db error: %w", err)
	}

	return member, nil
}

const getMemberByID = `-- name: GetMemberByID
SELECT ` + memberColumns + ` FROM members
WHERE id = $1
`

func (r *MemberRepo) GetMemberByID(ctx context.Context, id int64) (models.Member, error) {
	rows, _ := r.DB.Query(ctx, getMemberByID, id)
	return collectMember(rows)
}

const getMemberByEmail = `-- name: GetMemberByEmail
SELECT ` + memberColumns + ` FROM members
WHERE email = $1
`

func (r *MemberRepo) GetMemberByEmail(ctx context.Context, email string) (models.Member, error) {
	rows, _ := r.DB.Query(ctx, getMemberByEmail, email)
	return collectMember(rows)
}

const updatePassword = `-- name: UpdatePassword
UPDATE members
SET password_hash = $2, last_password_changed_at = now()
WHERE id = $1
`

func (r *MemberRepo) UpdatePassword(ctx context.Context, memberID int64, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, updatePassword, memberID, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

const listMembers = `-- name: ListMembers
SELECT ` + memberColumns + ` FROM members
ORDER BY id
LIMIT $1 OFFSET $2
`

func (r *MemberRepo) ListMembers(ctx context.Context, limit int, offset int) ([]models.Member, error) {
	rows, _ := r.DB.Query(ctx, listMembers, limit, offset)
	members, err := pgx.CollectRows(rows, rowToMember)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return members, nil
}

func collectMember(rows pgx.Rows) (models.Member, error) {
	member, err := pgx.CollectOneRow(rows, rowToMember)

	switch {
	case err == nil:
		return member, nil
	case errors.Is(err, pgx.ErrNoRows):
		return member, apperrors.ErrMemberNotFound
	default:
		return member, fmt.Errorf("db error: %w", err)
	}
}

func rowToMember(row pgx.CollectableRow) (models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.CreatedAt, &m.Name, &m.Email, &m.PasswordHash, &m.Role, &m.LastPasswordChangedAt)
	return m, err
}
