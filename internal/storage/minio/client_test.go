package minio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/export"
)

func TestObjectName(t *testing.T) {
	tests := map[string]string{
		"roza.jpg":          "roza.jpg",
		"/kwiaty/roza.jpg":  "kwiaty/roza.jpg",
		"../../etc/passwd":  "etc/passwd",
		"kwiaty/./../a.png": "a.png",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, objectName(in), in)
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(export.ErrImageNotFound))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestClient_UploadAndFetch(t *testing.T) {
	endpoint := os.Getenv("EVENTSTOCK_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("EVENTSTOCK_TEST_MINIO_ENDPOINT not set, skipping integration test")
	}

	c, err := NewClient(&config.MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("EVENTSTOCK_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("EVENTSTOCK_TEST_MINIO_SECRET_KEY"),
		Bucket:    "eventstock-test",
	})
	require.NoError(t, err)

	ctx := context.Background()
	if err := c.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	payload := []byte("\x89PNG fake")
	require.NoError(t, c.Upload(ctx, "kwiaty/test.png", bytes.NewReader(payload), int64(len(payload)), "image/png"))

	data, ext, err := c.Image(ctx, "kwiaty/test.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, ".png", ext)

	ok, err := c.Exists(ctx, "kwiaty/missing.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Image(ctx, "kwiaty/missing.png")
	assert.True(t, IsNotFound(err))
}
