package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"nutri-go/internal/config"
)

// s3Timeout bounds each object request.
const s3Timeout = 30 * time.Second

// s3API is the subset of *s3.Client used by S3Records.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Records stores each record as the object <prefix>/<name>.json.
type S3Records struct {
	client s3API
	bucket string
	prefix string
}

var _ RecordStore = (*S3Records)(nil)

// NewS3Records builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies. A
// custom endpoint switches to path-style addressing for S3-compatible
// services.
func NewS3Records(ctx context.Context, cfg config.StoreConfig) (*S3Records, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3RecordsWithClient(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

func newS3RecordsWithClient(client s3API, bucket, prefix string) *S3Records {
	return &S3Records{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Records) key(name string) string {
	return path.Join(s.prefix, name+".json")
}

func (s *S3Records) Get(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return data, nil
}

func (s *S3Records) Put(name string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

// Delete removes the object. S3 reports success for absent keys.
func (s *S3Records) Delete(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

func (s *S3Records) Close() error { return nil }
