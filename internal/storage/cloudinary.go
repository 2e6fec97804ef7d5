package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"shop_service/internal/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStorage keeps product images in one Cloudinary folder.
type CloudinaryStorage struct {
	api    uploadAPI
	folder string
	log    *logrus.Logger
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string, logger *logrus.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("could not configure cloudinary: %w", err)
	}
	logger.Infof("Storage: Cloudinary configured with cloud name: %s", cloudName)
	return newCloudinaryStorage(&cld.Upload, folder, logger), nil
}

func newCloudinaryStorage(api uploadAPI, folder string, logger *logrus.Logger) *CloudinaryStorage {
	return &CloudinaryStorage{api: api, folder: folder, log: logger}
}

func (s *CloudinaryStorage) Upload(ctx context.Context, file *domain.Upload) (string, error) {
	resp, err := s.api.Upload(ctx, file.Body, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		s.log.Errorf("Storage: Cloudinary upload of %s failed: %v", file.Filename, err)
		return "", fmt.Errorf("could not upload image: %w", err)
	}
	if resp.Error.Message != "" {
		s.log.Errorf("Storage: Cloudinary rejected %s: %s", file.Filename, resp.Error.Message)
		return "", fmt.Errorf("could not upload image: %s", resp.Error.Message)
	}

	s.log.Infof("Storage: Image uploaded: %s", resp.SecureURL)
	return resp.SecureURL, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, assetURL string) error {
	publicID, err := PublicID(assetURL, s.folder)
	if err != nil {
		return err
	}
	resp, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete image from cloudinary: %s", resp.Error.Message)
	}

	s.log.Infof("Storage: Deleted image %s (%s)", publicID, resp.Result)
	return nil
}

// PublicID derives the asset id from a delivery URL: the folder followed by
// the last path segment without its extension.
func PublicID(assetURL, folder string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil || u.Path == "" {
		return "", errors.New("invalid asset url")
	}
	name := path.Base(u.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return "", errors.New("invalid asset url")
	}
	if folder == "" {
		return name, nil
	}
	return folder + "/" + name, nil
}
