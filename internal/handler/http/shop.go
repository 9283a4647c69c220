package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daffodeal/marketplace/pkg/httputil"

	"github.com/daffodeal/marketplace/internal/service"
)

// ShopHandler serves the shop endpoints.
type ShopHandler struct {
	service *service.ShopService
	logger  *slog.Logger
}

// NewShopHandler creates a shop handler.
func NewShopHandler(svc *service.ShopService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{service: svc, logger: logger}
}

// GetShopInfo handles GET /api/v2/shop/get-shop-info/{id}.
func (h *ShopHandler) GetShopInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	shop, err := h.service.GetShop(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", shop)
}

// MonthlyReport handles GET /api/v2/shop/monthly-report/{shopId}.
func (h *ShopHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopId")
	if _, ok := httputil.ParseUUID(w, shopID); !ok {
		return
	}
	if !canManageShop(r, shopID) {
		writeForbiddenShop(w)
		return
	}

	report, err := h.service.MonthlyReport(r.Context(), shopID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", report)
}
