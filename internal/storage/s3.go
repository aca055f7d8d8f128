package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/easyeats/easyeats/internal/config"
)

// Folders used for uploaded images.
const (
	ProfilePictures = "profile_pictures"
	RecipeImages    = "recipe_images"
)

// Image is an uploaded image waiting to be stored.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// S3Storage stores user-uploaded images in an S3-compatible bucket.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Storage configures an uploader targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// SaveImage uploads img under folder/owner and returns its public location. Object
// keys are randomised so repeated uploads never overwrite each other.
func (s *S3Storage) SaveImage(ctx context.Context, folder, owner string, img Image) (string, error) {
	key := ObjectKey(folder, owner, img.Filename)

	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        manager.ReadSeekCloser(img.Body),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	if s.baseURL == "" {
		return "/" + key, nil
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// DeleteImage removes the object behind a location previously returned by SaveImage.
func (s *S3Storage) DeleteImage(ctx context.Context, location string) error {
	key, ok := s.keyFromLocation(location)
	if !ok {
		return fmt.Errorf("s3 storage delete: %q is not a stored image", location)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) keyFromLocation(location string) (string, bool) {
	prefix := "/"
	if s.baseURL != "" {
		prefix = s.baseURL + "/"
	}
	key, ok := strings.CutPrefix(location, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// ObjectKey builds folder/owner/<uuid><ext> keeping only the extension of filename.
func ObjectKey(folder, owner, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 8 {
		ext = ""
	}
	owner = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(owner)
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join(strings.Trim(folder, "/"), owner, uuid.NewString()+ext)
}
