package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Scheme marks destinations that go to object storage.
const s3Scheme = "s3://"

// S3Config holds configuration for the S3 destination backend. Bucket and
// key come from the destination URL, not from here.
type S3Config struct {
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// IsS3URL reports whether dest addresses object storage.
func IsS3URL(dest string) bool {
	return strings.HasPrefix(dest, s3Scheme)
}

// ParseS3URL splits an "s3://bucket/key" URL into bucket and key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	if !IsS3URL(raw) {
		return "", "", fmt.Errorf("not an s3 URL: %q", raw)
	}
	parts := strings.SplitN(strings.TrimPrefix(raw, s3Scheme), "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URL %q needs both bucket and key", raw)
	}
	return bucket, key, nil
}

// s3Writer writes to one object in an S3 bucket.
type s3Writer struct {
	client      *s3.Client
	bucket      string
	key         string
	contentType string
}

// NewS3Writer creates a Writer for an s3://bucket/key destination.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM
// role).
func NewS3Writer(ctx context.Context, rawURL, contentType string, cfg S3Config) (Writer, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &s3Writer{
		client:      s3.NewFromConfig(awsConfig, s3Opts...),
		bucket:      bucket,
		key:         key,
		contentType: contentType,
	}, nil
}

func (w *s3Writer) Exists(ctx context.Context) (bool, error) {
	_, err := w.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &w.bucket,
		Key:    &w.key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", w.Destination(), err)
	}
	return true, nil
}

func (w *s3Writer) Write(ctx context.Context, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: &w.bucket,
		Key:    &w.key,
		Body:   bytes.NewReader(data),
	}
	if w.contentType != "" {
		input.ContentType = &w.contentType
	}
	if _, err := w.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", w.Destination(), err)
	}
	return nil
}

func (w *s3Writer) Destination() string {
	return s3Scheme + w.bucket + "/" + w.key
}

// Verify s3Writer implements Writer.
var _ Writer = (*s3Writer)(nil)
