package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/junpakpark/productmanage/internal/handlers/render"
	"github.com/junpakpark/productmanage/internal/handlers/userctx"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

type memberService interface {
	// If member with the email exists has to return apperrors.ErrMemberEmailConflict
	Register(ctx context.Context, name string, email string, password string, role models.Role) (models.Member, error)
	ChangePassword(ctx context.Context, identity models.Identity, newPassword string) error
	List(ctx context.Context, limit int, offset int) ([]models.Member, error)
}

type MemberHandler struct {
	members memberService
	logger  logger.Logger
}

type MemberResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMember(members memberService, l logger.Logger) *MemberHandler {
	return &MemberHandler{members: members, logger: l}
}

func (h *MemberHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required,notblank,max=50"`
		Email    string `json:"email" validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=ADMIN SELLER BUYER"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	member, err := h.members.Register(r.Context(), data.Name, data.Email, data.Password, models.Role(data.Role))
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/members/%d", member.ID))
	w.WriteHeader(http.StatusCreated)
}

func (h *MemberHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	type ChangePasswordRequest struct {
		Password string `json:"password" validate:"required,notblank,min=8"`
	}

	identity, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[ChangePasswordRequest](w, r)
	if err != nil {
		return
	}

	if err := h.members.ChangePassword(r.Context(), identity, data.Password); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageFromQuery(r)

	members, err := h.members.List(r.Context(), limit, offset)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	res := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		res = append(res, MemberResponse{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Role:      m.Role.String(),
			CreatedAt: m.CreatedAt,
		})
	}

	render.JSON(w, res)
}

// Read limit and offset query params, bad values are treated as absent
func pageFromQuery(r *http.Request) (limit int, offset int) {
	query := r.URL.Query()
	limit, _ = strconv.Atoi(query.Get("limit"))
	offset, _ = strconv.Atoi(query.Get("offset"))
	return limit, offset
}
