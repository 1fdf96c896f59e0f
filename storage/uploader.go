package storage

import (
	"context"
	"errors"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// NopUploader rejects uploads; wired when object storage is not configured.
type NopUploader struct{}

func (NopUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, errors.New("object storage is not configured")
}

func (NopUploader) Delete(context.Context, string) error { return nil }

func (NopUploader) GetPublicURL(string) string { return "" }
