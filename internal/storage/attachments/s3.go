package attachments

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/pkg/logger"
)

// objectPutter is the part of *s3.Client the store uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client   objectPutter
	bucket   string
	prefix   string
	maxBytes int
}

// NewS3Store loads the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, prefix string, maxBytes int) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("S3 attachment store initialized",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.String("region", cfg.Region),
	)

	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix, maxBytes: maxBytes}, nil
}

func (s *S3Store) Save(ctx context.Context, filename string, data []byte) (string, error) {
	ext, err := Validate(filename, data, s.maxBytes)
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, objectName(ext, data))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	logger.Debug("Attachment uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
