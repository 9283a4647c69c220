package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodeal/marketplace/internal/storage"
)

var _ storage.Uploader = (*Uploader)(nil)

func TestUploader_UploadAndDestroy(t *testing.T) {
	u := New("http://localhost:8080/", "")

	res, err := u.Upload(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PublicID, "products/"))
	assert.Equal(t, "http://localhost:8080/media/"+res.PublicID, res.URL)
	assert.Equal(t, 1, u.Len())

	require.NoError(t, u.Destroy(context.Background(), res.PublicID))
	assert.Zero(t, u.Len())
	assert.Error(t, u.Destroy(context.Background(), res.PublicID))
}

func TestUploader_DistinctIDs(t *testing.T) {
	u := New("http://x", "products")
	a, err := u.Upload(context.Background(), "a")
	require.NoError(t, err)
	b, err := u.Upload(context.Background(), "b")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicID, b.PublicID)
}

func TestUploader_RejectsEmpty(t *testing.T) {
	_, err := New("http://x", "").Upload(context.Background(), "  ")
	assert.ErrorIs(t, err, storage.ErrEmptyImage)
}

func TestUploader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("http://x", "").Upload(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
