package storage

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type S3Config struct {
	Bucket string
	Region string
	// Endpoint targets S3 compatible services; empty uses AWS.
	Endpoint string
	// PublicBaseURL prefixes object keys in returned URIs.
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Uploader writes objects to a bucket with the s3 upload manager.
type S3Uploader struct {
	cfg      S3Config
	uploader objectUploader
	newID    func() string
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader loads the default AWS config chain; static keys in cfg take precedence.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3: bucket is empty")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "s3: load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(cfg, manager.NewUploader(client)), nil
}

func newS3Uploader(cfg S3Config, up objectUploader) *S3Uploader {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "uploads"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "https://" + cfg.Bucket + ".s3.amazonaws.com"
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &S3Uploader{cfg: cfg, uploader: up, newID: uuid.NewString}
}

func (u *S3Uploader) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	key := path.Join(u.cfg.KeyPrefix, u.newID(), path.Base(name))

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.uploader.Upload(ctx, input); err != nil {
		return "", errors.Wrapf(err, "s3: put %s", key)
	}
	return u.cfg.PublicBaseURL + "/" + key, nil
}
