package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/handlers/render"
	"github.com/junpakpark/productmanage/internal/handlers/userctx"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

type productService interface {
	Create(ctx context.Context, identity models.Identity, p models.Product) (models.Product, error)
	Update(ctx context.Context, identity models.Identity, productID int64, p models.Product) error
	Delete(ctx context.Context, identity models.Identity, productID int64) error

	AddOption(ctx context.Context, identity models.Identity, productID int64, o models.Option) (models.Option, error)
	UpdateOption(ctx context.Context, identity models.Identity, productID int64, optionID int64, o models.Option) error
	RemoveOption(ctx context.Context, identity models.Identity, productID int64, optionID int64) error

	Get(ctx context.Context, productID int64) (models.Product, error)
	List(ctx context.Context, limit int, offset int) ([]models.Product, error)
}

type ProductHandler struct {
	products productService
	logger   logger.Logger
}

type OptionRequest struct {
	Name            string          `json:"name" validate:"required,notblank,max=50"`
	Kind            string          `json:"kind" validate:"required,oneof=INPUT SELECT"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
	Choices         []string        `json:"choices" validate:"omitempty,dive,max=30"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,notblank,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Options     []OptionRequest `json:"options" validate:"max=3,dive"`
}

type OptionResponse struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Kind            string          `json:"kind"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
	Choices         []string        `json:"choices,omitempty"`
}

type ProductResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	ShippingFee decimal.Decimal  `json:"shippingFee"`
	MemberID    int64            `json:"memberId"`
	Options     []OptionResponse `json:"options"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func NewProduct(products productService, l logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: l}
}

func (o OptionRequest) toModel() models.Option {
	return models.Option{
		Name:            o.Name,
		Kind:            models.OptionKind(o.Kind),
		AdditionalPrice: o.AdditionalPrice,
		Choices:         o.Choices,
	}
}

func (p ProductRequest) toModel() models.Product {
	options := make([]models.Option, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, o.toModel())
	}

	return models.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ShippingFee: p.ShippingFee,
		Options:     options,
	}
}

func newOptionResponse(o models.Option) OptionResponse {
	return OptionResponse{
		ID:              o.ID,
		Name:            o.Name,
		Kind:            string(o.Kind),
		AdditionalPrice: o.AdditionalPrice,
		Choices:         o.Choices,
	}
}

func newProductResponse(p models.Product) ProductResponse {
	options := make([]OptionResponse, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, newOptionResponse(o))
	}

	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ShippingFee: p.ShippingFee,
		MemberID:    p.MemberID,
		Options:     options,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[ProductRequest](w, r)
	if err != nil {
		return
	}

	product, err := h.products.Create(r.Context(), identity, data.toModel())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/products/%d", product.ID))
	render.JSONWithStatus(w, newProductResponse(product), http.StatusCreated)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[ProductRequest](w, r)
	if err != nil {
		return
	}

	if err := h.products.Update(r.Context(), identity, productID, data.toModel()); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), identity, productID); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) addOption(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[OptionRequest](w, r)
	if err != nil {
		return
	}

	option, err := h.products.AddOption(r.Context(), identity, productID, data.toModel())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSONWithStatus(w, newOptionResponse(option), http.StatusCreated)
}

func (h *ProductHandler) updateOption(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	optionID, ok := h.pathID(w, r, "optionID")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[OptionRequest](w, r)
	if err != nil {
		return
	}

	if err := h.products.UpdateOption(r.Context(), identity, productID, optionID, data.toModel()); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) removeOption(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	optionID, ok := h.pathID(w, r, "optionID")
	if !ok {
		return
	}

	if err := h.products.RemoveOption(r.Context(), identity, productID, optionID); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, newProductResponse(product))
}

func (h *ProductHandler) options(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	res := make([]OptionResponse, 0, len(product.Options))
	for _, o := range product.Options {
		res = append(res, newOptionResponse(o))
	}

	render.JSON(w, res)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageFromQuery(r)

	products, err := h.products.List(r.Context(), limit, offset)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, newProductResponse(p))
	}

	render.JSON(w, res)
}

// Identity is injected by the gate pipeline, absence means route is wired without it
func (h *ProductHandler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := userctx.FromContext(r.Context())
	if !ok {
		h.logger.Error("identity is missing in request context", "path", r.URL.Path)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
	return identity, ok
}

// Ids that are not positive integers can't exist, report them as not found
func (h *ProductHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		render.AppError(w, apperrors.ErrProductNotFound)
		return 0, false
	}
	return id, true
}
