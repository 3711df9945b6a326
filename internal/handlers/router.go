package handlers

import (
	"net/http"

	"github.com/junpakpark/productmanage/internal/handlers/middleware"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	members *MemberHandler,
	products *ProductHandler,
	pipeline *middleware.Pipeline,
	metrics http.Handler,
	logger logger.Logger,
) http.Handler {
	// Gate sets, authentication always goes first
	authenticated := pipeline.Protect(pipeline.Authenticate())
	seller := pipeline.Protect(pipeline.Authenticate(), pipeline.Authorize(models.RoleSeller))
	admin := pipeline.Protect(pipeline.Authenticate(), pipeline.Authorize(models.RoleAdmin))

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth", auth.login)
	mux.HandleFunc("POST /api/auth/reissue", auth.reissue)
	mux.HandleFunc("POST /api/auth/logout", auth.logout)

	mux.HandleFunc("POST /api/members", members.register)
	mux.Handle("PATCH /api/members/my/password", authenticated(http.HandlerFunc(members.changePassword)))
	mux.Handle("GET /api/admin/members", admin(http.HandlerFunc(members.list)))

	// Reads are exempt from authentication, gates only inject identity when token is given
	mux.Handle("GET /api/products", authenticated(http.HandlerFunc(products.list)))
	mux.Handle("GET /api/products/{id}", authenticated(http.HandlerFunc(products.get)))
	mux.Handle("GET /api/products/{id}/options", authenticated(http.HandlerFunc(products.options)))

	mux.Handle("POST /api/products", seller(http.HandlerFunc(products.create)))
	mux.Handle("PUT /api/products/{id}", seller(http.HandlerFunc(products.update)))
	mux.Handle("DELETE /api/products/{id}", seller(http.HandlerFunc(products.deleteProduct)))
	mux.Handle("POST /api/products/{id}/options", seller(http.HandlerFunc(products.addOption)))
	mux.Handle("PUT /api/products/{id}/options/{optionID}", seller(http.HandlerFunc(products.updateOption)))
	mux.Handle("DELETE /api/products/{id}/options/{optionID}", seller(http.HandlerFunc(products.removeOption)))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}
