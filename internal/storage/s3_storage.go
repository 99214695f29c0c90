package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Folders images may be uploaded into. Anything else is rejected so the
// bucket layout stays predictable.
const (
	FolderProducts = "products"
	FolderBrands   = "brands"
	FolderBanners  = "banners"
)

const presignTTL = 15 * time.Minute

var allowedFolders = map[string]struct{}{
	FolderProducts: {},
	FolderBrands:   {},
	FolderBanners:  {},
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// MaxImageSize is the largest accepted upload (8 MiB).
const MaxImageSize = 8 << 20

type ImageStorage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

func NewImageStorage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *ImageStorage {
	var cfg aws.Config

	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
		if err != nil {
			cfg = aws.Config{Region: region}
		} else {
			cfg = loaded
		}
	}

	return &ImageStorage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// PresignUpload returns a presigned PUT URL for an image. The key is
// always server-generated; the client filename only contributes the
// extension.
func (s *ImageStorage) PresignUpload(filename, contentType, folder string) (*PresignedUpload, error) {
	if _, ok := allowedFolders[folder]; !ok {
		return nil, fmt.Errorf("folder %q is not allowed", folder)
	}

	ext, err := imageExtension(filename, contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignPutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: presigned.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
		ExpiresIn: int(presignTTL.Seconds()),
	}, nil
}

// ValidateImage checks the declared content type and size before a
// presigned URL is handed out.
func (s *ImageStorage) ValidateImage(contentType string, size int64) error {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return fmt.Errorf("content type %s is not an accepted image format", contentType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("file size %d exceeds the %d byte limit", size, MaxImageSize)
	}
	return nil
}

func (s *ImageStorage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

func imageExtension(filename, contentType string) (string, error) {
	fallback, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("content type %s is not an accepted image format", contentType)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".avif":
		return ext, nil
	}
	return fallback, nil
}
