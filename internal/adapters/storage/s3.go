package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"trader-portfolio-api/internal/tracing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store implements SnapshotStore on an S3 bucket
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store creates an S3Store using the default AWS credential chain
func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, NewStorageError("NewS3Store", "", fmt.Errorf("%w: SNAPSHOT_BUCKET is required", ErrInvalidConfig), false)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, NewStorageError("NewS3Store", "", err, false)
	}

	// S3 calls show up as subsegments when tracing is on
	tracing.InstrumentAWS(&cfg)

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket), nil
}

// NewS3StoreWithClient creates an S3Store over an existing client
func NewS3StoreWithClient(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put implements SnapshotStore.Put
func (s *S3Store) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}

	contentType := "application/json"
	var metadata map[string]string
	if opts != nil {
		if opts.ContentType != "" {
			contentType = opts.ContentType
		}
		metadata = opts.Metadata
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return NewStorageError("Put", key, err, true)
	}

	return nil
}

// Get implements SnapshotStore.Get
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, NewStorageError("Get", key, ErrSnapshotNotFound, false)
		}
		return nil, NewStorageError("Get", key, err, true)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, NewStorageError("Get", key, err, true)
	}
	return data, nil
}

// Exists implements SnapshotStore.Exists
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err, true)
	}
	return true, nil
}

// Close implements SnapshotStore.Close
func (s *S3Store) Close() error {
	return nil
}
