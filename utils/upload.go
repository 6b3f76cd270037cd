package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"claims-management-server/config"
)

const maxAttachmentSize = 10 * 1024 * 1024 // 10MB

var allowedAttachmentExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".pdf": true, ".txt": true, ".log": true, ".csv": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

var ErrUploaderNotConfigured = errors.New("cloudinary is not configured")

// ValidateAttachment checks size and extension before anything is uploaded.
func ValidateAttachment(header *multipart.FileHeader) error {
	if header == nil || header.Size <= 0 {
		return errors.New("archivo vacío")
	}
	if header.Size > maxAttachmentSize {
		return errors.New("el archivo supera el tamaño máximo permitido (10MB)")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAttachmentExts[ext] {
		return fmt.Errorf("tipo de archivo no permitido: %s", ext)
	}
	return nil
}

// UploadAttachment pushes a claim attachment to Cloudinary and returns its
// secure URL.
func UploadAttachment(ctx context.Context, claimFolder string, header *multipart.FileHeader) (string, error) {
	cloudinaryURL := config.AppConfig.Cloudinary.URL
	if cloudinaryURL == "" {
		return "", ErrUploaderNotConfigured
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return "", fmt.Errorf("initialize cloudinary: %w", err)
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	unique := true
	up, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         config.AppConfig.Cloudinary.Folder + "/" + claimFolder,
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		UniqueFilename: &unique,
		ResourceType:   "auto",
	})
	if err != nil {
		return "", err
	}
	return up.SecureURL, nil
}
