package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Storage uploads media to a MinIO/S3 bucket.
type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *logger.Logger
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base used in returned links. Defaults to the endpoint URL.
	PublicURL string
}

// NewStorage creates the client and makes sure the bucket exists.
func NewStorage(ctx context.Context, cfg Config, log *logger.Logger) (*Storage, error) {
	log = log.Named("S3Storage")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &Storage{client: client, bucket: cfg.Bucket, publicURL: publicURL, logger: log}, nil
}

// Upload stores data under folder with a random name keeping the original
// extension, and returns the public URL.
func (s *Storage) Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error) {
	objectKey := path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(fileName)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(fileName)},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	s.logger.Info("File uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size),
	)
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey), nil
}
