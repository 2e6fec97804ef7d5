package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// URLPrefix is the route the local files are served under.
const URLPrefix = "/uploads"

// LocalStorage writes images to a directory that the HTTP server exposes
// under URLPrefix.
type LocalStorage struct {
	dir     string
	baseURL string
	log     *logrus.Logger
}

func NewLocalStorage(dir, publicBaseURL string, logger *logrus.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir %s: %w", dir, err)
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		log:     logger,
	}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(ctx context.Context, file *domain.Upload) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("could not create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file.Body); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("could not write image file: %w", err)
	}

	assetURL := s.baseURL + URLPrefix + "/" + name
	s.log.Infof("Storage: Image stored locally: %s", assetURL)
	return assetURL, nil
}

// Delete removes a file previously returned by Upload. A missing file is not
// an error.
func (s *LocalStorage) Delete(ctx context.Context, assetURL string) error {
	prefix := s.baseURL + URLPrefix + "/"
	if !strings.HasPrefix(assetURL, prefix) {
		return fmt.Errorf("asset %s is not managed by local storage", assetURL)
	}
	name := path.Base(strings.TrimPrefix(assetURL, prefix))
	if name == "." || name == "/" || name == ".." {
		return errors.New("invalid asset url")
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete image file: %w", err)
	}
	s.log.Infof("Storage: Deleted local image %s", name)
	return nil
}
