package repository

import (
	"context"

	"github.com/junpakpark/productmanage/internal/models"
)

// RevocationStore keeps refresh tokens that are still honored
// Entries expire on their own after the retention window
type RevocationStore interface {
	// Insert or overwrite the entry
	Save(ctx context.Context, refreshToken string, identity models.Identity) error

	// Delete the entry. Removing absent token is not an error
	Remove(ctx context.Context, refreshToken string) error

	// Absent token is reported with ok=false and nil error
	FindByToken(ctx context.Context, refreshToken string) (identity models.Identity, ok bool, err error)
}

// Member repository interface
type MemberRepo interface {
	// Create member
	// If member with the email exists already has to return apperrors.ErrMemberEmailConflict
	CreateMember(ctx context.Context, member models.Member) (models.Member, error)

	// If member not found must return apperrors.ErrMemberNotFound
	GetMemberByID(ctx context.Context, memberID int64) (models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (models.Member, error)

	// Set new password hash and bump password change time
	UpdatePassword(ctx context.Context, memberID int64, passwordHash string) error

	ListMembers(ctx context.Context, limit int, offset int) ([]models.Member, error)
}

// Product repository interface
// Missing products and options are reported with apperrors.ErrProductNotFound
type ProductRepo interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	GetProduct(ctx context.Context, productID int64) (models.Product, error)
	ListProducts(ctx context.Context, limit int, offset int) ([]models.Product, error)

	// Update name, description and prices only
	UpdateProduct(ctx context.Context, product models.Product) error

	// Delete product together with its options
	DeleteProduct(ctx context.Context, productID int64) error

	CreateOption(ctx context.Context, option models.Option) (models.Option, error)
	UpdateOption(ctx context.Context, option models.Option) error
	DeleteOption(ctx context.Context, productID int64, optionID int64) error
}

// Storage groups repositories sharing one connection or transaction
type Storage interface {
	Member() MemberRepo
	Product() ProductRepo

	// Run fn in transaction, commit if fn returns nil
	InTx(ctx context.Context, fn func(Storage) error) error
}
