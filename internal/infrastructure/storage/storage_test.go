package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:           true,
		Endpoint:          "localhost:9000",
		Region:            "us-east-1",
		Bucket:            "receipts",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3Store_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3Store(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3Store(nil)
		assert.Error(t, err)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)

	got, err = normalizeEndpoint("", true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestS3Store_Presign(t *testing.T) {
	store, err := NewS3Store(validStorageConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "receipts", store.Bucket())
	ctx := context.Background()

	t.Run("upload URL is path style and signed", func(t *testing.T) {
		raw, expiresAt, err := store.GenerateUploadURL(ctx, "inv/receipts/a.jpg", "image/jpeg", 5*time.Minute)
		require.NoError(t, err)
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", u.Host)
		assert.True(t, strings.HasPrefix(u.Path, "/receipts/inv/receipts/a.jpg"))
		assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
		assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("zero expiry falls back to configured default", func(t *testing.T) {
		raw, _, err := store.GenerateDownloadURL(ctx, "inv/receipts/a.jpg", 0)
		require.NoError(t, err)
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		_, _, err := store.GenerateUploadURL(ctx, "", "image/png", time.Minute)
		assert.ErrorIs(t, err, errEmptyKey)
		_, err = store.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, errEmptyKey)
		assert.ErrorIs(t, store.DeleteObject(ctx, ""), errEmptyKey)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("object exists only after Put", func(t *testing.T) {
		store := NewMemoryStore(false)
		_, _, err := store.GenerateUploadURL(ctx, "k1", "image/png", time.Minute)
		require.NoError(t, err)

		ok, err := store.ObjectExists(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, ok)

		store.Put("k1")
		ok, err = store.ObjectExists(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, store.DeleteObject(ctx, "k1"))
		ok, _ = store.ObjectExists(ctx, "k1")
		assert.False(t, ok)
	})

	t.Run("assume uploaded covers issued keys only", func(t *testing.T) {
		store := NewMemoryStore(true)
		raw, _, err := store.GenerateUploadURL(ctx, "k2", "image/png", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, raw, "/k2?")

		ok, _ := store.ObjectExists(ctx, "k2")
		assert.True(t, ok)
		ok, _ = store.ObjectExists(ctx, "never-issued")
		assert.False(t, ok)
	})
}
