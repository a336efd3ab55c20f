package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/frahmantamala/school-platform/internal"
)

// Uploader stores a payload and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, u *Upload) (string, error)
}

// ObjectPutter is the subset of the S3 client the gateway needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Gateway struct {
	client  ObjectPutter
	bucket  string
	region  string
	folder  string
	newName func() string
	logger  *slog.Logger
}

func NewGateway(client ObjectPutter, cfg internal.StorageConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		folder: strings.Trim(cfg.UploadFolder, "/"),
		newName: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
		logger: logger,
	}
}

// NewS3Gateway builds an S3 client from static credentials when given, otherwise from the
// default AWS credential chain.
func NewS3Gateway(ctx context.Context, cfg internal.StorageConfig, logger *slog.Logger) (*Gateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewGateway(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

// Key builds <folder>/<random hex><ext>; the client's file name is never reused.
func (g *Gateway) Key(filename string) string {
	name := g.newName() + extOf(filename)
	if g.folder == "" {
		return name
	}
	return g.folder + "/" + name
}

func (g *Gateway) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", g.bucket, g.region, key)
}

func (g *Gateway) Upload(ctx context.Context, u *Upload) (string, error) {
	key := g.Key(u.Filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(u.Data),
		ContentLength: aws.Int64(int64(u.Size())),
	}
	if u.ContentType != "" {
		input.ContentType = aws.String(u.ContentType)
	}

	if _, err := g.client.PutObject(ctx, input); err != nil {
		g.logger.ErrorContext(ctx, "object upload failed", "bucket", g.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	g.logger.InfoContext(ctx, "object uploaded", "bucket", g.bucket, "key", key, "size", u.Size())
	return g.PublicURL(key), nil
}

func extOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 || idx == len(filename)-1 || strings.ContainsAny(filename[idx:], `/\`) {
		return ""
	}
	return filename[idx:]
}
