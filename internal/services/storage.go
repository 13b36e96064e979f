package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// ErrUpload is returned for any storage failure. The cause is wrapped.
var ErrUpload = errors.New("upload failed")

// Uploader stores an image and returns the URL clients fetch it from.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// objectName keeps the original extension and replaces the rest with a uuid.
func objectName(filename string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}

// S3Uploader puts images in a bucket.
type S3Uploader struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Uploader builds an uploader for bucket. Static credentials are used
// when given; otherwise the SDK's default chain applies.
func NewS3Uploader(region, accessKey, secretKey, bucket string) (*S3Uploader, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &S3Uploader{uploader: s3manager.NewUploader(sess), bucket: bucket, prefix: "uploads"}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(path.Join(u.prefix, objectName(filename))),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return out.Location, nil
}

// LocalUploader writes images under dir and serves them from baseURL.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *LocalUploader) Upload(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	name := objectName(filename)
	f, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return u.baseURL + "/" + name, nil
}
