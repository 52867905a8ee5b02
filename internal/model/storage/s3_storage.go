package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

const (
	s3Scheme       = "s3"
	csvContentType = "text/csv"
	stagingPattern = "exchange-updater-"
)

var ErrBadS3URI = errors.New("bad s3 uri")

type s3Config interface {
	URI() string
	Region() string
	Endpoint() string
	Staging() string
}

type objectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain.
// A custom endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, config s3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region() != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region()))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint() != "" {
			o.BaseEndpoint = aws.String(config.Endpoint())
			o.UsePathStyle = true
		}
	}), nil
}

// ParseURI splits s3://bucket/key into its bucket and key.
func ParseURI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.Wrap(ErrBadS3URI, err.Error())
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Scheme != s3Scheme || u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", errors.Wrap(ErrBadS3URI, uri)
	}
	return u.Host, key, nil
}

// S3Storage keeps the series as a CSV object. Transfers go through a local staging file.
type S3Storage struct {
	client     objectClient
	bucket     string
	key        string
	stagingDir string
	ownsDir    bool
	staged     *FileStorage
}

func NewS3Storage(client objectClient, config s3Config) (*S3Storage, error) {
	bucket, key, err := ParseURI(config.URI())
	if err != nil {
		return nil, err
	}

	dir, owns := config.Staging(), false
	if dir == "" {
		dir, err = os.MkdirTemp("", stagingPattern)
		if err != nil {
			return nil, errors.Wrap(err, "create staging dir")
		}
		owns = true
	}

	return &S3Storage{
		client:     client,
		bucket:     bucket,
		key:        key,
		stagingDir: dir,
		ownsDir:    owns,
		staged:     NewFileStorage(filepath.Join(dir, path.Base(key))),
	}, nil
}

// Load returns an empty series when the object does not exist.
func (s *S3Storage) Load(ctx context.Context) (*series.Series, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if isNotFound(err) {
		logger.Info("Object not found, starting empty", zap.String("bucket", s.bucket), zap.String("key", s.key))
		return series.New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get object")
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			logger.Error("error closing object body", zap.Error(err))
		}
	}()

	if err = s.download(out.Body); err != nil {
		return nil, err
	}
	return s.staged.Load(ctx)
}

func (s *S3Storage) download(body io.Reader) error {
	f, err := os.Create(s.staged.Path())
	if err != nil {
		return errors.Wrap(err, "create staging file")
	}
	if _, err = io.Copy(f, body); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "download object")
	}
	return errors.Wrap(f.Close(), "close staging file")
}

func (s *S3Storage) Save(ctx context.Context, ser *series.Series) error {
	if err := s.staged.Save(ctx, ser); err != nil {
		return err
	}

	f, err := os.Open(s.staged.Path())
	if err != nil {
		return errors.Wrap(err, "open staging file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("error closing staging file", zap.Error(err))
		}
	}()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        f,
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		return errors.Wrap(err, "put object")
	}
	logger.Info("Uploaded data", zap.String("bucket", s.bucket), zap.String("key", s.key), zap.Int("rows", ser.Len()))
	return nil
}

// Close removes the staging directory if the storage created it.
func (s *S3Storage) Close() error {
	if !s.ownsDir {
		return nil
	}
	return errors.Wrap(os.RemoveAll(s.stagingDir), "remove staging dir")
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
