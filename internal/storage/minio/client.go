package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/export"
)

// maxImageSize bounds images embedded into order sheets.
const maxImageSize = 10 << 20

// Client serves product images from an object storage bucket.
type Client struct {
	client *minio.Client
	bucket string
}

func NewClient(cfg *config.MinIOConfig) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		client: minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the image bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

func objectName(ref string) string {
	return strings.TrimPrefix(path.Clean("/"+ref), "/")
}

// Image implements export.ImageSource.
func (c *Client) Image(ctx context.Context, ref string) ([]byte, string, error) {
	name := objectName(ref)
	if name == "" || name == "." {
		return nil, "", export.ErrImageNotFound
	}

	obj, err := c.client.GetObject(ctx, c.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxImageSize+1))
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", fmt.Errorf("%w: %s", export.ErrImageNotFound, ref)
		}
		return nil, "", err
	}
	if len(data) > maxImageSize {
		return nil, "", fmt.Errorf("image %s exceeds %d bytes", ref, maxImageSize)
	}
	return data, path.Ext(name), nil
}

func (c *Client) Upload(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, objectName(ref), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (c *Client) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, objectName(ref), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ export.ImageSource = (*Client)(nil)

// IsNotFound reports whether err means the object is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, export.ErrImageNotFound) || minio.ToErrorResponse(err).Code == "NoSuchKey"
}
