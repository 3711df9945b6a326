package product

import (
	"context"
	"fmt"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
	"github.com/junpakpark/productmanage/internal/repository"
)

const defaultPageSize = 100

// ProductService manages products and their options
// Mutations are allowed to sellers and admins, and only on products they own
type ProductService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ProductService {
	return &ProductService{storage: storage}
}

func requireSeller(identity models.Identity) error {
	if !identity.Role.AtLeast(models.RoleSeller) {
		return apperrors.ErrRoleForbidden
	}
	return nil
}

func requireOwner(identity models.Identity, p models.Product) error {
	if p.MemberID != identity.SubjectID {
		return apperrors.ErrProductOwnerMismatch
	}
	return nil
}

// Load product and check caller may change it
func ownedProduct(ctx context.Context, repo repository.ProductRepo, identity models.Identity, productID int64) (models.Product, error) {
	p, err := repo.GetProduct(ctx, productID)
	if err != nil {
		return p, err
	}
	return p, requireOwner(identity, p)
}

func (s *ProductService) Create(ctx context.Context, identity models.Identity, p models.Product) (models.Product, error) {
	if err := requireSeller(identity); err != nil {
		return models.Product{}, err
	}

	p, err := normalizeProduct(p)
	if err != nil {
		return p, err
	}
	p.MemberID = identity.SubjectID

	options := make([]models.Option, 0, len(p.Options))
	for _, o := range p.Options {
		o, err := normalizeOption(o)
		if err != nil {
			return p, err
		}
		if err := checkOptionSet(options, o, 0); err != nil {
			return p, err
		}
		options = append(options, o)
	}
	p.Options = options

	var created models.Product
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		created, err = storage.Product().CreateProduct(ctx, p)
		return err
	})
	if err != nil {
		return created, fmt.Errorf("can't create product. Err: %w", err)
	}

	return created, nil
}

// Update product fields, options stay as is
func (s *ProductService) Update(ctx context.Context, identity models.Identity, productID int64, p models.Product) error {
	if err := requireSeller(identity); err != nil {
		return err
	}

	p, err := normalizeProduct(p)
	if err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		current, err := ownedProduct(ctx, storage.Product(), identity, productID)
		if err != nil {
			return err
		}

		p.ID = current.ID
		return storage.Product().UpdateProduct(ctx, p)
	})
}

func (s *ProductService) Delete(ctx context.Context, identity models.Identity, productID int64) error {
	if err := requireSeller(identity); err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		if _, err := ownedProduct(ctx, storage.Product(), identity, productID); err != nil {
			return err
		}
		return storage.Product().DeleteProduct(ctx, productID)
	})
}

func (s *ProductService) AddOption(ctx context.Context, identity models.Identity, productID int64, o models.Option) (models.Option, error) {
	if err := requireSeller(identity); err != nil {
		return models.Option{}, err
	}

	o, err := normalizeOption(o)
	if err != nil {
		return o, err
	}

	var created models.Option
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		p, err := ownedProduct(ctx, storage.Product(), identity, productID)
		if err != nil {
			return err
		}

		if err := checkOptionSet(p.Options, o, 0); err != nil {
			return err
		}

		o.ProductID = p.ID
		created, err = storage.Product().CreateOption(ctx, o)
		return err
	})

	return created, err
}

// Replace option name, price and choices
// Kind has to match the stored one, empty kind means keep it
func (s *ProductService) UpdateOption(ctx context.Context, identity models.Identity, productID int64, optionID int64, o models.Option) error {
	if err := requireSeller(identity); err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		p, err := ownedProduct(ctx, storage.Product(), identity, productID)
		if err != nil {
			return err
		}

		current, ok := findOption(p.Options, optionID)
		if !ok {
			return apperrors.ErrProductNotFound.WithMessage("Option not found")
		}

		if o.Kind == "" {
			o.Kind = current.Kind
		}
		if o.Kind != current.Kind {
			return invalid("Option kind can't be changed")
		}

		next, err := normalizeOption(o)
		if err != nil {
			return err
		}
		if err := checkOptionSet(p.Options, next, optionID); err != nil {
			return err
		}

		next.ID, next.ProductID = current.ID, p.ID
		return storage.Product().UpdateOption(ctx, next)
	})
}

func (s *ProductService) RemoveOption(ctx context.Context, identity models.Identity, productID int64, optionID int64) error {
	if err := requireSeller(identity); err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		if _, err := ownedProduct(ctx, storage.Product(), identity, productID); err != nil {
			return err
		}
		return storage.Product().DeleteOption(ctx, productID, optionID)
	})
}

func (s *ProductService) Get(ctx context.Context, productID int64) (models.Product, error) {
	return s.storage.Product().GetProduct(ctx, productID)
}

// List products page, newest first
func (s *ProductService) List(ctx context.Context, limit int, offset int) ([]models.Product, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.storage.Product().ListProducts(ctx, limit, offset)
}

func findOption(options []models.Option, optionID int64) (models.Option, bool) {
	for _, o := range options {
		if o.ID == optionID {
			return o, true
		}
	}
	return models.Option{}, false
}
