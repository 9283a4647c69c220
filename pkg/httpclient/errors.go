package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
)

const maxErrorBody = 1 << 20

// upstreamError covers the two error shapes seen from upstream hosts:
// {"error":{"message":"..."}} and {"error":{"code":"...","message":"..."}}.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and turns it
// into an *apperrors.AppError. 4xx answers keep their client-facing meaning;
// everything else becomes an upstream failure.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.Upstream(
			fmt.Sprintf("%s returned status %d", upstream, resp.StatusCode), err)
	}

	message := strings.TrimSpace(string(body))
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case http.StatusUnauthorized:
		return apperrors.Upstream(qualified, apperrors.ErrUnauthorized)
	case http.StatusForbidden:
		return apperrors.Upstream(qualified, apperrors.ErrForbidden)
	case http.StatusNotFound:
		return apperrors.Upstream(qualified, apperrors.ErrNotFound)
	default:
		return apperrors.Upstream(qualified, fmt.Errorf("status %d", resp.StatusCode))
	}
}
