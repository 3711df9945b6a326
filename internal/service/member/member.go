package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
	"github.com/junpakpark/productmanage/internal/repository"
	"github.com/junpakpark/productmanage/internal/service/auth"
)

const defaultPageSize = 100

type MemberService struct {
	hasher     auth.PasswordHasher
	memberRepo repository.MemberRepo
}

func NewService(hasher auth.PasswordHasher, memberRepo repository.MemberRepo) *MemberService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &MemberService{
		hasher:     hasher,
		memberRepo: memberRepo,
	}
}

func (s *MemberService) Register(ctx context.Context, name string, email string, password string, role models.Role) (models.Member, error) {
	var member models.Member
	if password == "" {
		return member, errors.New("can't use empty password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return member, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	member, err = s.memberRepo.CreateMember(ctx, models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return member, fmt.Errorf("can't create member. Err: %w", err)
	}

	return member, nil
}

// Authenticate returns identity of the member if password matches
func (s *MemberService) Authenticate(ctx context.Context, email string, password string) (models.Identity, error) {
	member, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil {
		return models.Identity{}, err
	}

	if err := s.hasher.Compare(member.PasswordHash, password); err != nil {
		return models.Identity{}, apperrors.ErrMemberPasswordMismatch
	}

	return member.Identity(), nil
}

func (s *MemberService) ChangePassword(ctx context.Context, identity models.Identity, newPassword string) error {
	if newPassword == "" {
		return errors.New("can't use empty password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.memberRepo.UpdatePassword(ctx, identity.SubjectID, hash)
}

func (s *MemberService) GetMember(ctx context.Context, memberID int64) (models.Member, error) {
	return s.memberRepo.GetMemberByID(ctx, memberID)
}

// List members page ordered by id
// Non positive limit means default page size
func (s *MemberService) List(ctx context.Context, limit int, offset int) ([]models.Member, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.memberRepo.ListMembers(ctx, limit, offset)
}
