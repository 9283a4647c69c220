package http

import (
	"net/http"
	"strings"

	"github.com/daffodeal/marketplace/pkg/httputil"
	"github.com/daffodeal/marketplace/pkg/middleware"
)

// ContentTypeJSON rejects request bodies that are neither JSON nor
// multipart form data.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteFailure(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
					"Content-Type must be application/json or multipart/form-data")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// canManageShop reports whether the caller may act on shopID. Sellers are
// identified by their shop id.
func canManageShop(r *http.Request, shopID string) bool {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	switch claims.Role {
	case middleware.RoleAdmin:
		return true
	case middleware.RoleSeller:
		return claims.UserID == shopID
	default:
		return false
	}
}

func writeForbiddenShop(w http.ResponseWriter) {
	httputil.WriteFailure(w, http.StatusForbidden, "FORBIDDEN", "you can only manage your own shop")
}

// validShopID accepts an empty id, which the services reject with their own
// message, or a UUID.
func validShopID(w http.ResponseWriter, shopID string) bool {
	if shopID == "" {
		return true
	}
	_, ok := httputil.ParseUUID(w, shopID)
	return ok
}
