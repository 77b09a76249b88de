// internal/adapters/media/store.go
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"swipess_api/internal/adapters/observability"
)

// Store uploads media to an S3-compatible bucket. Validation (size, type)
// is the remote side's job; this adapter only classifies its refusals.
type Store struct {
	client     *s3.Client
	bucket     string
	region     string
	publicBase string
}

var (
	ErrTooLarge         = errors.New("media: file too large")
	ErrUnsupportedType  = errors.New("media: unsupported file type")
	ErrPermissionDenied = errors.New("media: permission denied")
)

func New(ctx context.Context, region, bucket, endpoint, publicBase string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Store{client: client, bucket: bucket, region: region, publicBase: publicBase}, nil
}

// NewWithClient wires a pre-built S3 client. Used by tests and by callers
// that need custom credentials.
func NewWithClient(client *s3.Client, bucket, region, publicBase string) *Store {
	return &Store{client: client, bucket: bucket, region: region, publicBase: publicBase}
}

// Upload stores body as {ownerID}/{random}{ext} and returns the public URL.
// The random name keeps one user's uploads from colliding; the owner prefix
// keeps users out of each other's namespace.
func (s *Store) Upload(ctx context.Context, ownerID, filename, contentType string, size int64, body io.Reader) (string, error) {
	key := ownerID + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	status := 200
	if err != nil {
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			status = re.HTTPStatusCode()
		}
	}
	observability.ObserveExternal("media", "put_object", status, time.Since(start))
	if err != nil {
		mapped := classify(err)
		observability.ObserveUpload(outcomeLabel(mapped))
		return "", mapped
	}
	observability.ObserveUpload("ok")
	return s.publicURL(key), nil
}

// classify translates the provider's refusal into one of the sentinel
// errors, falling back to a generic wrapped error.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "EntityTooLarge", "MaxSizeExceeded":
			return ErrTooLarge
		case "InvalidMediaType", "UnsupportedMediaType":
			return ErrUnsupportedType
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return ErrPermissionDenied
		}
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		switch re.HTTPStatusCode() {
		case http.StatusRequestEntityTooLarge:
			return ErrTooLarge
		case http.StatusUnsupportedMediaType:
			return ErrUnsupportedType
		case http.StatusForbidden, http.StatusUnauthorized:
			return ErrPermissionDenied
		}
	}
	return fmt.Errorf("media: upload failed: %w", err)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported"
	case errors.Is(err, ErrPermissionDenied):
		return "denied"
	default:
		return "error"
	}
}

func (s *Store) publicURL(key string) string {
	if s.publicBase != "" {
		return strings.TrimRight(s.publicBase, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
