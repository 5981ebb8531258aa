package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// MediaUploader stores a file with the media service and returns its public URL.
type MediaUploader interface {
	UploadFile(ctx context.Context, file io.Reader, filename string) (string, error)
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret, folder string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return NewCloudinaryServiceFromClient(cld, folder), nil
}

func NewCloudinaryServiceFromClient(cld *cloudinary.Cloudinary, folder string) *CloudinaryService {
	return &CloudinaryService{cld: cld, folder: folder}
}

func (s *CloudinaryService) UploadFile(ctx context.Context, file io.Reader, filename string) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     uuid.NewString(),
		ResourceType: "auto", // Automatically detect image, video, or raw
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %q to Cloudinary: %w", filename, err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %q: %s", filename, uploadResult.Error.Message)
	}
	if uploadResult.SecureURL == "" {
		return "", errors.New("cloudinary returned no URL")
	}

	return uploadResult.SecureURL, nil
}
