package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/daffodeal/marketplace/internal/storage"
)

// Uploader keeps uploaded image references in memory. Image bytes are not
// retained; it serves local development and tests.
type Uploader struct {
	mu      sync.RWMutex
	images  map[string]string
	baseURL string
	folder  string
}

// New creates an uploader that serves URLs under baseURL/media/<folder>/.
func New(baseURL, folder string) *Uploader {
	if folder == "" {
		folder = "products"
	}
	return &Uploader{
		images:  make(map[string]string),
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  folder,
	}
}

// Upload records raw under a fresh "<folder>/<uuid>" public ID.
func (u *Uploader) Upload(ctx context.Context, raw string) (*storage.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, storage.ErrEmptyImage
	}

	publicID := u.folder + "/" + uuid.NewString()
	url := fmt.Sprintf("%s/media/%s", u.baseURL, publicID)

	u.mu.Lock()
	u.images[publicID] = url
	u.mu.Unlock()

	return &storage.UploadResult{PublicID: publicID, URL: url}, nil
}

// Destroy forgets publicID.
func (u *Uploader) Destroy(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.images[publicID]; !ok {
		return fmt.Errorf("image not found: %s", publicID)
	}
	delete(u.images, publicID)
	return nil
}

// Len returns the number of stored images.
func (u *Uploader) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.images)
}
