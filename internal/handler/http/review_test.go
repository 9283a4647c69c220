package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodeal/marketplace/pkg/middleware"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/service"
)

const reviewedProductID = "aaaaaaaa-0000-4000-8000-000000000001"

func seedOrder(s *testServer, productID string) *domain.Order {
	o := &domain.Order{
		ID:     orderID,
		UserID: buyerID,
		Cart: []domain.LineItem{
			{ProductID: productID, ShopID: shopID, Name: "Lamp", Quantity: 1, Price: 1999},
		},
		TotalPrice: 1999,
		Status:     "Delivered",
		CreatedAt:  time.Now().UTC(),
	}
	s.store.orders[o.ID] = o
	return o
}

func TestCreateReview(t *testing.T) {
	s := newTestServer(t)
	seedProduct(s, reviewedProductID, shopID, time.Now().UTC())
	order := seedOrder(s, reviewedProductID)

	body := map[string]any{
		// A spoofed id is ignored in favour of the session.
		"user":      map[string]any{"_id": "someone-else", "name": "Ana", "email": "ana@example.com"},
		"rating":    4,
		"comment":   "Bright enough",
		"productId": reviewedProductID,
		"orderId":   orderID,
	}
	rec := s.do(jsonRequest(t, http.MethodPut, "/api/v2/product/create-new-review", body), s.token(t, buyerID, middleware.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Reviewed successfully!", resp.Message)

	var result service.ReviewResult
	decodeData(t, resp, &result)
	assert.InDelta(t, 4.0, result.Ratings, 1e-9)
	assert.Equal(t, 1, result.ReviewCount)
	assert.True(t, result.OrderLineMarked)

	stored := s.store.products[reviewedProductID]
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, buyerID, stored.Reviews[0].User.ID)
	assert.Equal(t, "Ana", stored.Reviews[0].User.Name)
	assert.True(t, order.Cart[0].IsReviewed)

	// Anonymous readers never see reviewer contact details.
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v2/product/"+reviewedProductID, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ana@example.com")
	assert.NotContains(t, rec.Body.String(), buyerID+"@daffodeal.io")

	// A second review by the same user replaces the first.
	body["rating"] = 2
	rec = s.do(jsonRequest(t, http.MethodPut, "/api/v2/product/create-new-review", body), s.token(t, buyerID, middleware.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, decodeResponse(t, rec), &result)
	assert.True(t, result.Replaced)
	assert.Equal(t, 1, result.ReviewCount)
	assert.InDelta(t, 2.0, result.Ratings, 1e-9)
}

func TestCreateReview_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		token  bool
		status int
	}{
		{
			name:   "no session",
			body:   map[string]any{"rating": 5, "productId": reviewedProductID, "orderId": orderID},
			status: http.StatusUnauthorized,
		},
		{
			name:   "rating out of range",
			body:   map[string]any{"rating": 6, "productId": reviewedProductID, "orderId": orderID},
			token:  true,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing order",
			body:   map[string]any{"rating": 5, "productId": reviewedProductID},
			token:  true,
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid product id",
			body:   map[string]any{"rating": 5, "productId": "p1", "orderId": orderID},
			token:  true,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown product",
			body:   map[string]any{"rating": 5, "productId": "eeeeeeee-0000-4000-8000-000000000005", "orderId": orderID},
			token:  true,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			seedProduct(s, reviewedProductID, shopID, time.Now().UTC())
			seedOrder(s, reviewedProductID)

			token := ""
			if tt.token {
				token = s.token(t, buyerID, middleware.RoleUser)
			}
			rec := s.do(jsonRequest(t, http.MethodPut, "/api/v2/product/create-new-review", tt.body), token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Empty(t, s.store.products[reviewedProductID].Reviews)
		})
	}
}

func TestCreateReview_UnmatchedOrderStillStoresReview(t *testing.T) {
	s := newTestServer(t)
	seedProduct(s, reviewedProductID, shopID, time.Now().UTC())

	body := map[string]any{"rating": 3, "productId": reviewedProductID, "orderId": orderID}
	rec := s.do(jsonRequest(t, http.MethodPut, "/api/v2/product/create-new-review", body), s.token(t, buyerID, middleware.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.ReviewResult
	decodeData(t, decodeResponse(t, rec), &result)
	assert.False(t, result.OrderLineMarked)
	assert.Len(t, s.store.products[reviewedProductID].Reviews, 1)
}
