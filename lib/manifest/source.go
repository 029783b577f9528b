package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoS3Client is returned when an s3:// template is fetched by a Loader
// without an ObjectGetter.
var ErrNoS3Client = errors.New("manifest: s3 template without s3 client")

const (
	schemeFile = "file://"
	schemeS3   = "s3://"
)

// ObjectGetter is the part of *s3.Client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseDir sets the directory relative file:// paths resolve against.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithS3 enables s3:// templates.
func WithS3(client ObjectGetter) LoaderOption {
	return func(l *Loader) {
		l.s3 = client
	}
}

// WithLoaderLogger sets the logger for template fetches.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithReload fetches and parses templates on every resolution instead of
// once per component.
func WithReload() LoaderOption {
	return func(l *Loader) {
		l.reload = true
	}
}

// Loader fetches template sources.
type Loader struct {
	baseDir string
	s3      ObjectGetter
	logger  *slog.Logger
	reload  bool
}

// NewLoader creates a template loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{baseDir: "."}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Fetch returns the template text for source: inline markup, a file://
// path or an s3://bucket/key object.
func (l *Loader) Fetch(ctx context.Context, source string) (string, error) {
	switch {
	case strings.HasPrefix(source, schemeFile):
		return l.fetchFile(strings.TrimPrefix(source, schemeFile))
	case strings.HasPrefix(source, schemeS3):
		return l.fetchS3(ctx, strings.TrimPrefix(source, schemeS3))
	default:
		return source, nil
	}
}

func (l *Loader) fetchFile(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	l.logger.Debug("manifest: template loaded", "path", path, "bytes", len(data))
	return string(data), nil
}

func (l *Loader) fetchS3(ctx context.Context, location string) (string, error) {
	if l.s3 == nil {
		return "", ErrNoS3Client
	}
	bucket, key, ok := strings.Cut(location, "/")
	if !ok || bucket == "" || key == "" {
		return "", fmt.Errorf("invalid s3 location %q: want s3://bucket/key", location)
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("s3 get %s/%s failed: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("s3 read %s/%s failed: %w", bucket, key, err)
	}
	l.logger.Debug("manifest: template loaded", "bucket", bucket, "key", key, "bytes", len(data))
	return string(data), nil
}

// NewS3Client builds an S3 client for region with credentials from the
// standard AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// variables. endpoint, if set, overrides the service endpoint (MinIO,
// localstack) and switches to path-style addressing.
func NewS3Client(region, endpoint string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("manifest: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}
