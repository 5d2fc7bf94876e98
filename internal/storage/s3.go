package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of the S3 client the cache uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Cache keeps blobs as gzip objects under a key prefix in a bucket.
type S3Cache struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Cache creates an S3Cache using the default AWS credential chain.
func NewS3Cache(ctx context.Context, region, bucket, prefix string) (*S3Cache, error) {
	if bucket == "" {
		return nil, errors.New("s3 cache: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return newS3Cache(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3Cache(client s3API, bucket, prefix string) *S3Cache {
	return &S3Cache{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (c *S3Cache) objectKey(key string) string {
	return path.Join(c.prefix, url.PathEscape(key)+".gz")
}

// Get downloads a blob. A missing object is a miss, not an error.
func (c *S3Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting s3://%s/%s: %w", c.bucket, c.objectKey(key), err)
	}
	defer out.Body.Close() // nolint:errcheck

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading s3 object: %w", err)
	}

	data, err := decompress(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cache entry %s: %w", key, err)
	}

	return data, true, nil
}

// Put uploads a blob.
func (c *S3Cache) Put(ctx context.Context, key string, data []byte) error {
	raw, err := compress(data)
	if err != nil {
		return fmt.Errorf("compressing cache entry %s: %w", key, err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.objectKey(key)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", c.bucket, c.objectKey(key), err)
	}

	return nil
}
