package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// deleteObjectsLimit is the maximum number of keys accepted by one
// DeleteObjects request.
const deleteObjectsLimit = 1000

// s3Backoff is the wait before each retry of a failed request.
var s3Backoff = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// S3Storage removes table and partition data held in S3 (or an
// S3-compatible store).
type S3Storage struct {
	client  *s3.Client
	backoff []time.Duration
}

// S3Config holds configuration for S3 storage.
type S3Config struct {
	// Region is the AWS region of the data buckets.
	Region string
	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string
	// UsePathStyle enables path-style addressing.
	UsePathStyle bool
}

// DefaultS3Config returns the default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{Region: "us-east-1"}
}

// NewS3Storage loads the default AWS configuration chain and builds an
// S3-backed store.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for s3: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StorageWithClient(client), nil
}

// NewS3StorageWithClient wraps a pre-configured client.
func NewS3StorageWithClient(client *s3.Client) *S3Storage {
	return &S3Storage{client: client, backoff: s3Backoff}
}

// Supports reports whether location uses an s3, s3a or s3n scheme.
func (s *S3Storage) Supports(location string) bool {
	_, _, _, err := parseS3Location(location)
	return err == nil
}

// ListObjects returns the location of every object under the prefix,
// keeping the scheme the catalog recorded.
func (s *S3Storage) ListObjects(ctx context.Context, location string) ([]string, error) {
	scheme, bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}

	var objects []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(dirPrefix(key)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrListFailed, location, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, scheme+"://"+bucket+"/"+aws.ToString(obj.Key))
		}
	}
	return objects, nil
}

// Delete removes one object.
func (s *S3Storage) Delete(ctx context.Context, location string) error {
	_, bucket, key, err := parseS3Location(location)
	if err != nil {
		return err
	}

	err = s.withRetry(ctx, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeleteFailed, location, err)
	}
	return nil
}

// DeleteBatch removes objects with DeleteObjects, grouping keys by bucket
// in requests of at most 1000 keys. It returns the number of objects
// removed before the first failing request.
func (s *S3Storage) DeleteBatch(ctx context.Context, locations []string) (int, error) {
	var buckets []string
	keys := make(map[string][]string)
	for _, loc := range locations {
		_, bucket, key, err := parseS3Location(loc)
		if err != nil {
			return 0, err
		}
		if _, seen := keys[bucket]; !seen {
			buckets = append(buckets, bucket)
		}
		keys[bucket] = append(keys[bucket], key)
	}

	deleted := 0
	for _, bucket := range buckets {
		for _, chunk := range chunkKeys(keys[bucket], deleteObjectsLimit) {
			if err := s.deleteObjects(ctx, bucket, chunk); err != nil {
				return deleted, err
			}
			deleted += len(chunk)
		}
	}
	return deleted, nil
}

func (s *S3Storage) deleteObjects(ctx context.Context, bucket string, keys []string) error {
	ids := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	var out *s3.DeleteObjectsOutput
	err := s.withRetry(ctx, func() error {
		var err error
		out, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: bucket %s: %v", ErrDeleteFailed, bucket, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("%w: %d of %d objects in bucket %s, first s3://%s/%s: %s",
			ErrDeleteFailed, len(out.Errors), len(keys), bucket, bucket,
			aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// withRetry runs fn, waiting s.backoff[i] before retry i.
func (s *S3Storage) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	for _, wait := range s.backoff {
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		err = fn()
	}
	return err
}

// parseS3Location extracts scheme, bucket and key from an s3://, s3a:// or s3n:// URI.
func parseS3Location(location string) (scheme, bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: parse %q: %v", ErrUnsupportedLocation, location, err)
	}
	switch u.Scheme {
	case "s3", "s3a", "s3n":
	default:
		return "", "", "", fmt.Errorf("%w: expected s3 scheme, got %q in %q", ErrUnsupportedLocation, u.Scheme, location)
	}
	if u.Host == "" {
		return "", "", "", fmt.Errorf("%w: empty bucket in %q", ErrUnsupportedLocation, location)
	}
	return u.Scheme, u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func dirPrefix(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

func chunkKeys(keys []string, size int) [][]string {
	var chunks [][]string
	for len(keys) > size {
		chunks = append(chunks, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		chunks = append(chunks, keys)
	}
	return chunks
}
