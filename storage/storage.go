// Package storage keeps uploaded post images on the local disk or in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/blogicum/config"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured size.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrNotImage is returned when the upload does not sniff as an image.
	ErrNotImage = errors.New("file is not an image")
)

// Object identifies a stored file: Key addresses it in the backend, URL is public.
type Object struct {
	Key string
	URL string
}

// Storage is a backend for post images.
type Storage interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.StorageBackend.
func New(cfg config.AppConfig) (Storage, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "", "local":
		return NewLocal(cfg.UploadDir, cfg.UploadURLBase)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveImage validates an uploaded image and stores it under a fresh
// date-partitioned key.
func SaveImage(ctx context.Context, st Storage, header *multipart.FileHeader, maxBytes int64, now time.Time) (Object, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return Object{}, ErrTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return Object{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Object{}, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return Object{}, ErrNotImage
	}
	return st.Save(ctx, NewKey(now, ext), bytes.NewReader(data), contentType)
}

// NewKey returns "YYYY/MM/DD/<uuid><ext>".
func NewKey(now time.Time, ext string) string {
	return path.Join(now.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
