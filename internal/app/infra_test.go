package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodeal/marketplace/internal/config"
	"github.com/daffodeal/marketplace/internal/storage/cloudinary"
	"github.com/daffodeal/marketplace/internal/storage/memory"
)

func TestNewUploader(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory", func(t *testing.T) {
		cfg, err := config.LoadFrom(map[string]string{})
		require.NoError(t, err)

		u, err := NewUploader(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &memory.Uploader{}, u)
	})

	t.Run("cloudinary", func(t *testing.T) {
		cfg, err := config.LoadFrom(map[string]string{
			"IMAGE_UPLOADER":        "cloudinary",
			"CLOUDINARY_CLOUD_NAME": "daffodeal",
			"CLOUDINARY_API_KEY":    "key",
			"CLOUDINARY_API_SECRET": "secret",
		})
		require.NoError(t, err)

		u, err := NewUploader(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &cloudinary.Uploader{}, u)
	})
}
