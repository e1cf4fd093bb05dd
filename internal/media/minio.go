package media

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig 描述对象存储连接
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base URL objects are served from; defaults to the endpoint.
	PublicURL string
}

// MinioUploader stores images in an S3 compatible bucket.
type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewMinioUploader connects to the endpoint and ensures the bucket exists.
func NewMinioUploader(ctx context.Context, cfg MinioConfig) (*MinioUploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint missing")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}

	return &MinioUploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		now:       time.Now,
	}, nil
}

func publicBase(cfg MinioConfig) string {
	if base := strings.TrimRight(cfg.PublicURL, "/"); base != "" {
		return base
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

func (u *MinioUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := "uploads/" + objectName(u.now(), file.Filename)
	_, err = u.client.PutObject(ctx, u.bucket, key, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return u.publicURL + "/" + key, nil
}
