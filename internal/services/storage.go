package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService keeps contract PDFs in a MinIO bucket. Documents are
// opaque blobs here; only the analysis provider ever reads them.
type StorageService struct {
	client *minio.Client
	bucket string
	config *config.StorageConfig
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadContractPDF stores an uploaded PDF under a fresh object name and
// returns that name together with a presigned URL for the analyzer.
func (s *StorageService) UploadContractPDF(ctx context.Context, contractID uint, filename string, reader io.Reader, size int64) (objectName, url string, err error) {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".pdf"
	}
	objectName = fmt.Sprintf("contracts/%d/%s%s", contractID, uuid.NewString(), ext)

	_, err = s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	url, err = s.GetPresignedURL(ctx, objectName)
	if err != nil {
		return "", "", err
	}
	return objectName, url, nil
}

// GetPresignedURL generates a presigned URL for the object with expiration
func (s *StorageService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// DeleteFile deletes a file from the bucket
func (s *StorageService) DeleteFile(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
