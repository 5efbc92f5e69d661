package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Options configure an S3-protocol bucket, such as the BaaS S3 endpoint.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is prefixed to "<bucket>/<path>" to build public URLs.
	PublicBaseURL string
}

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client     S3API
	bucket     string
	publicBase string
	logger     *zap.Logger
}

// NewS3Store creates an ObjectStore backed by an S3-compatible bucket
func NewS3Store(ctx context.Context, opts S3Options, logger *zap.Logger) (ObjectStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 image store configured",
		zap.String("bucket", opts.Bucket),
		zap.String("endpoint", opts.Endpoint),
	)
	return NewS3StoreWithClient(client, opts.Bucket, opts.PublicBaseURL, logger), nil
}

// NewS3StoreWithClient creates an ObjectStore over an existing S3 client
func NewS3StoreWithClient(client S3API, bucket, publicBaseURL string, logger *zap.Logger) ObjectStore {
	return &s3Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBaseURL, "/"),
		logger:     logger,
	}
}

func (s *s3Store) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("max-age=" + strconv.Itoa(cacheControlSec)),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", path, err)
	}
	return nil
}

func (s *s3Store) PublicURL(path string) string {
	return s.publicBase + "/" + s.bucket + "/" + path
}

func (s *s3Store) Remove(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete object %q: %w", path, err)
	}
	return nil
}
