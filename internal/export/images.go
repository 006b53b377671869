package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrImageNotFound = errors.New("image not found")

// ImageSource resolves a product image reference to its bytes and file
// extension (".png", ".jpg", ...).
type ImageSource interface {
	Image(ctx context.Context, ref string) (data []byte, ext string, err error)
}

// DirSource reads images from a local directory. References are resolved
// relative to Root and cannot escape it.
type DirSource struct {
	Root string
}

func (s DirSource) Image(ctx context.Context, ref string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	rel := filepath.Clean(string(filepath.Separator) + ref)
	if rel == string(filepath.Separator) {
		return nil, "", ErrImageNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.Root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	if err != nil {
		return nil, "", err
	}
	return data, strings.ToLower(filepath.Ext(rel)), nil
}

var dataURLExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
}

// decodeDataURL handles images stored inline as base64 data URLs.
func decodeDataURL(ref string) ([]byte, string, bool) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", false
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	ext, known := dataURLExt[strings.ToLower(mime)]
	if !isBase64 || !known {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, ext, true
}

func loadImage(ctx context.Context, src ImageSource, ref string) ([]byte, string, error) {
	if ref == "" {
		return nil, "", ErrImageNotFound
	}
	if data, ext, ok := decodeDataURL(ref); ok {
		return data, ext, nil
	}
	if src == nil {
		return nil, "", ErrImageNotFound
	}
	return src.Image(ctx, ref)
}
