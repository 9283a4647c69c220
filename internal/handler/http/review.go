package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/daffodeal/marketplace/pkg/httputil"
	"github.com/daffodeal/marketplace/pkg/middleware"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/service"
)

// ReviewHandler serves the review endpoint.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// CreateReviewRequest is the JSON body of a review submission. The
// reviewer's identity always comes from the session; user only supplies
// display fields.
type CreateReviewRequest struct {
	User      domain.ReviewUser `json:"user"`
	Rating    int               `json:"rating"`
	Comment   string            `json:"comment"`
	ProductID string            `json:"productId"`
	OrderID   string            `json:"orderId"`
}

// CreateReview handles PUT /api/v2/product/create-new-review.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}
	for _, id := range []string{req.ProductID, req.OrderID} {
		if id == "" {
			continue
		}
		if _, ok := httputil.ParseUUID(w, id); !ok {
			return
		}
	}

	user := req.User
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		user.ID = claims.UserID
	} else {
		user.ID = ""
	}

	result, err := h.service.SubmitReview(r.Context(), service.ReviewInput{
		User:      user,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Reviewed successfully!", result)
}
