package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/audit"
	"github.com/junpakpark/productmanage/internal/models"
)

type ProductRepo struct {
	DB DBTX
}

const productColumns = `id, name, description, price, shipping_fee, member_id, created_by, updated_by, created_at, updated_at`

const optionColumns = `id, product_id, name, kind, additional_price, choices`

const createProduct = `-- name: CreateProduct
INSERT INTO products (name, description, price, shipping_fee, member_id, created_by, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + productColumns

// CreateProduct inserts product with its options
// Call it in transaction when options are given
func (r *ProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, createProduct, p.Name, p.Description, p.Price, p.ShippingFee, p.MemberID, audit.AuditorPtr(ctx))
	created, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	for _, o := range p.Options {
		o.ProductID = created.ID
		option, err := r.CreateOption(ctx, o)
		if err != nil {
			return created, err
		}
		created.Options = append(created.Options, option)
	}

	return created, nil
}

const getProduct = `-- name: GetProduct
SELECT ` + productColumns + ` FROM products
WHERE id = $1
`

const listOptions = `-- name: ListOptions
SELECT ` + optionColumns + ` FROM product_options
WHERE product_id = ANY($1)
ORDER BY id
`

func (r *ProductRepo) GetProduct(ctx context.Context, productID int64) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProduct, productID)
	p, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		return p, apperrors.ErrProductNotFound
	default:
		return p, fmt.Errorf("db error: %w", err)
	}

	products := []models.Product{p}
	if err := r.attachOptions(ctx, products); err != nil {
		return p, err
	}

	return products[0], nil
}

const listProducts = `-- name: ListProducts
SELECT ` + productColumns + ` FROM products
ORDER BY id DESC
LIMIT $1 OFFSET $2
`

func (r *ProductRepo) ListProducts(ctx context.Context, limit int, offset int) ([]models.Product, error) {
	rows, _ := r.DB.Query(ctx, listProducts, limit, offset)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.attachOptions(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

const updateProduct = `-- name: UpdateProduct
UPDATE products
SET name = $2, description = $3, price = $4, shipping_fee = $5, updated_by = $6, updated_at = now()
WHERE id = $1
`

func (r *ProductRepo) UpdateProduct(ctx context.Context, p models.Product) error {
	tag, err := r.DB.Exec(ctx, updateProduct, p.ID, p.Name, p.Description, p.Price, p.ShippingFee, audit.AuditorPtr(ctx))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products
WHERE id = $1
`

func (r *ProductRepo) DeleteProduct(ctx context.Context, productID int64) error {
	tag, err := r.DB.Exec(ctx, deleteProduct, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

const createOption = `-- name: CreateOption
INSERT INTO product_options (product_id, name, kind, additional_price, choices)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + optionColumns

func (r *ProductRepo) CreateOption(ctx context.Context, o models.Option) (models.Option, error) {
	rows, _ := r.DB.Query(ctx, createOption, o.ProductID, o.Name, o.Kind, o.AdditionalPrice, nonNil(o.Choices))
	option, err := pgx.CollectOneRow(rows, rowToOption)
	if err != nil {
		return option, optionError(err)
	}
	return option, nil
}

const updateOption = `-- name: UpdateOption
UPDATE product_options
SET name = $3, additional_price = $4, choices = $5
WHERE id = $1 AND product_id = $2
`

// UpdateOption never changes option kind
func (r *ProductRepo) UpdateOption(ctx context.Context, o models.Option) error {
	tag, err := r.DB.Exec(ctx, updateOption, o.ID, o.ProductID, o.Name, o.AdditionalPrice, nonNil(o.Choices))
	if err != nil {
		return optionError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound.WithMessage("Option not found")
	}
	return nil
}

const deleteOption = `-- name: DeleteOption
DELETE FROM product_options
WHERE id = $1 AND product_id = $2
`

func (r *ProductRepo) DeleteOption(ctx context.Context, productID int64, optionID int64) error {
	tag, err := r.DB.Exec(ctx, deleteOption, optionID, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound.WithMessage("Option not found")
	}
	return nil
}

func (r *ProductRepo) attachOptions(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	byID := make(map[int64]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = i
	}

	rows, _ := r.DB.Query(ctx, listOptions, ids)
	options, err := pgx.CollectRows(rows, rowToOption)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, o := range options {
		i := byID[o.ProductID]
		products[i].Options = append(products[i].Options, o)
	}

	return nil
}

func optionError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperrors.ErrProductInvalid.WithMessage("Option name is duplicated")
		case pgerrcode.ForeignKeyViolation:
			return apperrors.ErrProductNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func nonNil(choices []string) []string {
	if choices == nil {
		return []string{}
	}
	return choices
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ShippingFee, &p.MemberID, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func rowToOption(row pgx.CollectableRow) (models.Option, error) {
	var o models.Option
	err := row.Scan(&o.ID, &o.ProductID, &o.Name, &o.Kind, &o.AdditionalPrice, &o.Choices)
	if o.Kind == models.OptionInput {
		o.Choices = nil
	}
	return o, err
}
