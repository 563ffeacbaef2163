package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/errs"
)

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 60 * time.Second

type PresignedUpload struct {
	UploadURL    string
	FileURL      string
	SignedHeader http.Header
}

type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (PresignedUpload, error)
}

// S3Storage presigns PUT uploads into one bucket. Presigning is local and
// does not call AWS.
type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	expires time.Duration
}

type S3Options struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	// Endpoint targets an S3-compatible service instead of AWS, using path-style URLs.
	Endpoint string
}

func NewS3Storage(opts S3Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, errs.NewConfigMissingError("S3_BUCKET_NAME")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errs.NewConfigMissingError("S3_ACCESS_KEY")
	}

	awsCfg := aws.Config{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		expires: PresignExpiry,
	}, nil
}

func NewS3StorageFromConfig(cfg config.Config) (*S3Storage, error) {
	return NewS3Storage(S3Options{
		AccessKey: config.GetString(cfg, "S3_ACCESS_KEY", ""),
		SecretKey: config.GetString(cfg, "S3_SECRET_KEY", ""),
		Region:    config.GetString(cfg, "S3_REGION", "eu-central-1"),
		Bucket:    config.GetString(cfg, "S3_BUCKET_NAME", ""),
		Endpoint:  config.GetString(cfg, "S3_ENDPOINT", ""),
	})
}

func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (PresignedUpload, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expires), withSignedContentType)
	if err != nil {
		return PresignedUpload{}, errs.NewStorageError("presign upload", err)
	}

	fileURL, err := stripQuery(req.URL)
	if err != nil {
		return PresignedUpload{}, errs.NewStorageError("parse presigned url", err)
	}

	return PresignedUpload{
		UploadURL:    req.URL,
		FileURL:      fileURL,
		SignedHeader: req.SignedHeader,
	}, nil
}

// withSignedContentType keeps Content-Type on the bodiless presign request so
// the signer binds it. S3 then rejects uploads sent with any other type.
func withSignedContentType(o *s3.PresignOptions) {
	o.ClientOptions = append(o.ClientOptions, func(so *s3.Options) {
		so.APIOptions = append(so.APIOptions, keepContentTypeHeader)
	})
}

func keepContentTypeHeader(stack *middleware.Stack) error {
	if _, ok := stack.Build.Get("RemoveContentTypeHeader"); !ok {
		return nil
	}
	_, err := stack.Build.Remove("RemoveContentTypeHeader")
	return err
}

// stripQuery returns rawURL without its query string or fragment.
func stripQuery(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
