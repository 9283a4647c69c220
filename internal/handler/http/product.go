package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/daffodeal/marketplace/pkg/httputil"
	"github.com/daffodeal/marketplace/pkg/middleware"
	"github.com/daffodeal/marketplace/pkg/pagination"

	"github.com/daffodeal/marketplace/internal/service"
)

// DefaultMaxUploadBytes bounds import files and JSON bodies carrying
// inline images.
const DefaultMaxUploadBytes = 10 << 20

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	imports        *service.ImportService
	products       *service.ProductService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewProductHandler creates a product handler. A non-positive
// maxUploadBytes uses DefaultMaxUploadBytes.
func NewProductHandler(imports *service.ImportService, products *service.ProductService, maxUploadBytes int64, logger *slog.Logger) *ProductHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ProductHandler{
		imports:        imports,
		products:       products,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// --- Request DTOs ---

// imageList accepts either one image value or an array of them.
type imageList []string

func (l *imageList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = imageList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return errors.New("images must be a string or an array of strings")
	}
	*l = many
	return nil
}

// CreateProductRequest is the JSON body of a single product create.
// Prices are minor currency units.
type CreateProductRequest struct {
	ShopID        string    `json:"shopId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ProductDetail string    `json:"productDetail"`
	Category      string    `json:"category"`
	Color         string    `json:"color"`
	Size          string    `json:"size"`
	Tags          []string  `json:"tags"`
	OriginalPrice int64     `json:"originalPrice"`
	DiscountPrice int64     `json:"discountPrice"`
	Stock         int       `json:"stock"`
	Images        imageList `json:"images"`
}

// --- Handlers ---

// ImportProducts handles POST /api/v2/product/create-products
// (multipart/form-data with shopId and file).
func (h *ProductHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", "failed to parse multipart form: "+err.Error())
		return
	}

	shopID := strings.TrimSpace(r.FormValue("shopId"))
	if !validShopID(w, shopID) {
		return
	}
	if shopID != "" && !canManageShop(r, shopID) {
		writeForbiddenShop(w)
		return
	}

	var (
		file     io.Reader
		filename string
	)
	f, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		file, filename = f, header.Filename
	case errors.Is(err, http.ErrMissingFile):
	default:
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", "could not read uploaded file: "+err.Error())
		return
	}

	products, err := h.imports.ImportProducts(r.Context(), shopID, filename, file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "CSV Imported Successfully", products)
}

// CreateProduct handles POST /api/v2/product/create-product.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	req.ShopID = strings.TrimSpace(req.ShopID)
	if !validShopID(w, req.ShopID) {
		return
	}
	if req.ShopID != "" && !canManageShop(r, req.ShopID) {
		writeForbiddenShop(w)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), &service.CreateProductInput{
		ShopID:        req.ShopID,
		Name:          req.Name,
		Description:   req.Description,
		ProductDetail: req.ProductDetail,
		Category:      req.Category,
		Color:         req.Color,
		Size:          req.Size,
		Tags:          req.Tags,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		Images:        req.Images,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Product created successfully", product)
}

// ListShopProducts handles GET /api/v2/product/get-all-products-shop/{id}.
func (h *ProductHandler) ListShopProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	products, err := h.products.ListShopProducts(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", products)
}

// ListProducts handles GET /api/v2/product/get-all-products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.products.ListProducts(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", result)
}

// AdminListProducts handles GET /api/v2/product/admin-all-products.
func (h *ProductHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.products.ListAllForAdmin(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", result)
}

// GetProduct handles GET /api/v2/product/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", product)
}

// DeleteProduct handles DELETE /api/v2/product/delete-shop-product/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := httputil.ParseUUID(w, id); !ok {
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	actor := service.Actor{}
	if claims != nil {
		actor = service.Actor{ID: claims.UserID, Role: claims.Role}
	}

	if err := h.products.DeleteProduct(r.Context(), id, actor); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Product Deleted successfully!", nil)
}
