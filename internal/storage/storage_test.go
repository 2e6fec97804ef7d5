package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shop_service/internal/domain"
	"shop_service/pkg/logger"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	tests := []struct {
		url    string
		folder string
		want   string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/ecommerce/abc123.jpg", "ecommerce", "ecommerce/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/v1712/ecommerce/abc123", "ecommerce", "ecommerce/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/abc.png", "", "abc"},
	}
	for _, tt := range tests {
		got, err := PublicID(tt.url, tt.folder)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := PublicID("", "ecommerce")
	assert.Error(t, err)
}

type fakeUploadAPI struct {
	uploadErr   error
	uploadResp  *uploader.UploadResult
	destroyed   []string
	destroyResp *uploader.DestroyResult
}

func (f *fakeUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResp, nil
}

func (f *fakeUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	return f.destroyResp, nil
}

func TestCloudinaryStorage(t *testing.T) {
	fake := &fakeUploadAPI{
		uploadResp:  &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/ecommerce/xyz.png"},
		destroyResp: &uploader.DestroyResult{Result: "ok"},
	}
	s := newCloudinaryStorage(fake, "ecommerce", logger.Discard())

	u, err := s.Upload(t.Context(), &domain.Upload{Filename: "a.png", Body: strings.NewReader("img")})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/ecommerce/xyz.png", u)

	require.NoError(t, s.Delete(t.Context(), u))
	assert.Equal(t, []string{"ecommerce/xyz"}, fake.destroyed)
}

func TestCloudinaryStorageErrors(t *testing.T) {
	s := newCloudinaryStorage(&fakeUploadAPI{uploadErr: errors.New("network")}, "ecommerce", logger.Discard())
	_, err := s.Upload(t.Context(), &domain.Upload{Filename: "a.png", Body: strings.NewReader("img")})
	assert.Error(t, err)

	rejected := &fakeUploadAPI{
		uploadResp: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}},
	}
	s = newCloudinaryStorage(rejected, "ecommerce", logger.Discard())
	_, err = s.Upload(t.Context(), &domain.Upload{Filename: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "Invalid image file")
}

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:3000/", logger.Discard())
	require.NoError(t, err)

	u, err := s.Upload(t.Context(), &domain.Upload{Filename: "Photo.PNG", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:3000/uploads/"))
	assert.True(t, strings.HasSuffix(u, ".png"))

	name := filepath.Base(u)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(t.Context(), u))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(t.Context(), u), "deleting twice is fine")
	assert.Error(t, s.Delete(t.Context(), "https://elsewhere.example/a.png"))
}
