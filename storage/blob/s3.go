package blobstore

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

// objectPutter is the part of *s3.Client the store uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client    objectPutter
	bucket    string
	keyPrefix string
	baseURL   string
}

var _ core.BlobStore = (*S3Store)(nil)

// NewS3Store connects to an S3-compatible bucket. A blank endpoint targets AWS itself.
func NewS3Store(ctx context.Context, conf core.StorageConfig) (*S3Store, error) {
	if conf.Bucket == "" {
		return nil, errors.New("storage bucket not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Region)}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, conf), nil
}

func newS3Store(client objectPutter, conf core.StorageConfig) *S3Store {
	baseURL := conf.PublicBaseURL
	if baseURL == "" {
		if conf.Endpoint != "" {
			baseURL = strings.TrimRight(conf.Endpoint, "/") + "/" + conf.Bucket
		} else {
			baseURL = "https://" + conf.Bucket + ".s3." + conf.Region + ".amazonaws.com"
		}
	}
	return &S3Store{
		client:    client,
		bucket:    conf.Bucket,
		keyPrefix: conf.KeyPrefix,
		baseURL:   baseURL,
	}
}

// Upload stores the blob under a fresh random key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, blob core.Blob) (string, error) {
	key := objectKey(s.keyPrefix, blob.Filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   blob.Body,
	}
	if blob.ContentType != "" {
		input.ContentType = aws.String(blob.ContentType)
	}
	if blob.Size > 0 {
		input.ContentLength = aws.Int64(blob.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrapf(err, "uploading s3://%s/%s", s.bucket, key)
	}
	return s.baseURL + "/" + key, nil
}

// objectKey builds `<prefix>/<uuid><ext>`, keeping only the extension of the client's filename.
func objectKey(prefix, filename string) string {
	key := uuid.NewString() + strings.ToLower(path.Ext(filename))
	if prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
