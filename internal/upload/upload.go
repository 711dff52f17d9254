// Package upload stores technical-error screenshots in S3.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ErrNotImage rejects uploads whose content type is not image/*.
var ErrNotImage = errors.New("chỉ chấp nhận file hình ảnh")

// keyPrefix mirrors the folder layout the frontend expects for error
// screenshots.
const keyPrefix = "chat-log-img/original/technical_errors/"

// Uploader stores one image and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements Uploader against an S3 bucket.
type S3Uploader struct {
	client s3API
	bucket string
	region string
}

// NewS3 creates an uploader using the ambient AWS credential chain.
func NewS3(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// UploadImage validates the content type, stores the object under a random
// key and returns its public URL.
func (u *S3Uploader) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	key := keyPrefix + objectName(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// objectName derives a collision-free object name, keeping the original file
// extension when present.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
