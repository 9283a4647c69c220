// Package cloudinary uploads product images to Cloudinary through its signed
// REST upload API.
package cloudinary

import (
	"context"
	"crypto/sha1" // #nosec G505 -- Cloudinary request signatures are SHA-1
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/httpclient"

	"github.com/daffodeal/marketplace/internal/storage"
)

// DefaultAPIBase is the public Cloudinary API root.
const DefaultAPIBase = "https://api.cloudinary.com/v1_1"

const upstreamName = "cloudinary"

// Config holds Cloudinary credentials and the target folder.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	APIBase   string
}

// Uploader implements storage.Uploader against Cloudinary.
type Uploader struct {
	cfg    Config
	client httpclient.Doer
	logger *slog.Logger
	now    func() time.Time
}

// New creates an uploader sending requests through client, normally a
// *httpclient.CircuitBreakerClient.
func New(cfg Config, client httpclient.Doer, logger *slog.Logger) (*Uploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	if cfg.Folder == "" {
		cfg.Folder = "products"
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{cfg: cfg, client: client, logger: logger, now: time.Now}, nil
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Upload sends raw (a data URI or remote URL) to the configured folder.
func (u *Uploader) Upload(ctx context.Context, raw string) (*storage.UploadResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, storage.ErrEmptyImage
	}

	form := u.signed(url.Values{"folder": {u.cfg.Folder}})
	form.Set("file", raw)

	var out uploadResponse
	if err := u.post(ctx, "upload", form, &out); err != nil {
		return nil, err
	}
	if out.PublicID == "" {
		return nil, apperrors.Upstream("image upload failed: empty public_id in response", errors.New("missing public_id"))
	}
	link := out.SecureURL
	if link == "" {
		link = out.URL
	}

	u.logger.DebugContext(ctx, "image uploaded", slog.String("public_id", out.PublicID))
	return &storage.UploadResult{PublicID: out.PublicID, URL: link}, nil
}

// Destroy deletes publicID. An already missing image is not an error.
func (u *Uploader) Destroy(ctx context.Context, publicID string) error {
	form := u.signed(url.Values{"public_id": {publicID}})

	var out destroyResponse
	if err := u.post(ctx, "destroy", form, &out); err != nil {
		return err
	}
	switch out.Result {
	case "ok", "not found":
		return nil
	default:
		return apperrors.Upstream("image delete failed: "+out.Result, fmt.Errorf("destroy %s: %s", publicID, out.Result))
	}
}

func (u *Uploader) post(ctx context.Context, action string, form url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s/image/%s", u.cfg.APIBase, url.PathEscape(u.cfg.CloudName), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build cloudinary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(ctx, req)
	if err != nil {
		return upstream(action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return upstream(action, httpclient.ParseResponseError(resp, upstreamName))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return upstream(action, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// signed adds timestamp, api_key and signature to params.
func (u *Uploader) signed(params url.Values) url.Values {
	params.Set("timestamp", strconv.FormatInt(u.now().Unix(), 10))
	params.Set("signature", Sign(params, u.cfg.APISecret))
	params.Set("api_key", u.cfg.APIKey)
	return params
}

// Sign computes the Cloudinary request signature: the SHA-1 hex digest of
// the sorted "key=value" pairs joined by "&" followed by the API secret.
// file, api_key, resource_type, cloud_name and signature are not signed.
func Sign(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		switch k {
		case "file", "api_key", "resource_type", "cloud_name", "signature":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strings.Join(params[k], ","))
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

func upstream(action string, err error) error {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return apperrors.Upstream(fmt.Sprintf("image %s failed: %s", action, message), err)
}
