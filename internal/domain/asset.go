package domain

import (
	"context"
	"io"
)

// Upload is an image received with a product request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AssetStorage stores product images and returns their public URL.
type AssetStorage interface {
	Upload(ctx context.Context, file *Upload) (string, error)
	Delete(ctx context.Context, url string) error
}
