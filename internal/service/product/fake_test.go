package product

import (
	"context"
	"slices"
	"sync"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
	"github.com/junpakpark/productmanage/internal/repository"
)

// In memory storage with products only
type fakeStorage struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]models.Product
	inTx     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{products: make(map[int64]models.Product)}
}

func (s *fakeStorage) Member() repository.MemberRepo { return nil }

func (s *fakeStorage) Product() repository.ProductRepo { return (*fakeProductRepo)(s) }

func (s *fakeStorage) InTx(_ context.Context, fn func(repository.Storage) error) error {
	s.inTx++
	return fn(s)
}

type fakeProductRepo fakeStorage

func (r *fakeProductRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.id()
	options := p.Options
	p.Options = nil
	for _, o := range options {
		o.ID, o.ProductID = r.id(), p.ID
		p.Options = append(p.Options, o)
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeProductRepo) GetProduct(ctx context.Context, productID int64) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return p, apperrors.ErrProductNotFound
	}
	p.Options = slices.Clone(p.Options)
	return p, nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, limit int, offset int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	slices.Reverse(ids)

	products := make([]models.Product, 0, limit)
	for i := offset; i < len(ids) && len(products) < limit; i++ {
		products = append(products, r.products[ids[i]])
	}
	return products, nil
}

func (r *fakeProductRepo) UpdateProduct(ctx context.Context, p models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[p.ID]
	if !ok {
		return apperrors.ErrProductNotFound
	}
	current.Name, current.Description, current.Price, current.ShippingFee = p.Name, p.Description, p.Price, p.ShippingFee
	r.products[p.ID] = current
	return nil
}

func (r *fakeProductRepo) DeleteProduct(ctx context.Context, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return apperrors.ErrProductNotFound
	}
	delete(r.products, productID)
	return nil
}

func (r *fakeProductRepo) CreateOption(ctx context.Context, o models.Option) (models.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[o.ProductID]
	if !ok {
		return o, apperrors.ErrProductNotFound
	}
	o.ID = r.id()
	p.Options = append(p.Options, o)
	r.products[p.ID] = p
	return o, nil
}

func (r *fakeProductRepo) UpdateOption(ctx context.Context, o models.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.products[o.ProductID]
	i := slices.IndexFunc(p.Options, func(x models.Option) bool { return x.ID == o.ID })
	if i < 0 {
		return apperrors.ErrProductNotFound
	}
	p.Options[i] = o
	return nil
}

func (r *fakeProductRepo) DeleteOption(ctx context.Context, productID int64, optionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return apperrors.ErrProductNotFound
	}
	i := slices.IndexFunc(p.Options, func(x models.Option) bool { return x.ID == optionID })
	if i < 0 {
		return apperrors.ErrProductNotFound.WithMessage("Option not found")
	}
	p.Options = slices.Delete(p.Options, i, i+1)
	r.products[productID] = p
	return nil
}
