// Package imagestore uploads task images to Cloudinary.
package imagestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/taskward-app/taskward-api/internal/config"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
)

// uploadFolder groups task images under one Cloudinary folder.
const uploadFolder = "taskward/tasks"

// CloudinaryUploader stores images in Cloudinary and returns their
// delivery URLs. It implements task.ImageUploader.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	logger *slog.Logger
}

// NewCloudinaryUploader creates an uploader from a cloudinary:// URL.
func NewCloudinaryUploader(cfg config.CloudinaryConfig, log *slog.Logger) (*CloudinaryUploader, error) {
	if log == nil {
		log = slog.Default()
	}

	client, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryUploader{
		client: client,
		logger: log.With(slog.String("component", "image_store")),
	}, nil
}

// Upload stores the given image source and returns its secure delivery URL.
// The source may be a data URI, a remote URL, or a local file path; the
// Cloudinary SDK accepts all three.
func (u *CloudinaryUploader) Upload(ctx context.Context, source string) (string, error) {
	log := logger.FromContextOrDefault(ctx, u.logger)

	resp, err := u.client.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: uploadFolder,
	})
	if err != nil {
		log.Error("image upload failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		log.Error("image upload rejected", slog.String("error", resp.Error.Message))
		return "", fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	log.Debug("image uploaded", slog.String("public_id", resp.PublicID))
	return resp.SecureURL, nil
}
