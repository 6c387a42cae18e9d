// Package storage keeps uploaded resumes in a Cloudflare R2 bucket through
// the S3 API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/muhammadolammi/careernavigator/internal/retry"
)

// Provider is recorded with every stored object.
const Provider = "r2"

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ObjectAPI is the slice of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type R2Store struct {
	client    ObjectAPI
	bucket    string
	accountID string
}

// NewR2Store builds an S3 client pointed at the account's R2 endpoint.
func NewR2Store(ctx context.Context, cfg R2Config) (*R2Store, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(Endpoint(cfg.AccountID))
	})
	return NewR2StoreWithClient(client, cfg), nil
}

// NewR2StoreWithClient wraps an existing client.
func NewR2StoreWithClient(client ObjectAPI, cfg R2Config) *R2Store {
	return &R2Store{client: client, bucket: cfg.Bucket, accountID: cfg.AccountID}
}

func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// ResumeKey is the object key of an uploaded resume:
// resumes/<session-id>/<uuid>-<filename>.
func ResumeKey(sessionID string, id uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	return fmt.Sprintf("resumes/%s/%s-%s", sessionID, id, name)
}

// URL is the bucket-relative location recorded for key.
func (s *R2Store) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", Endpoint(s.accountID), s.bucket, key)
}

func (s *R2Store) Upload(ctx context.Context, key, mime string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// Download fetches key, retrying transient failures.
func (s *R2Store) Download(ctx context.Context, key string) ([]byte, error) {
	return retry.Do(ctx, 3, func(ctx context.Context) ([]byte, error) {
		return s.download(ctx, key)
	})
}

func (s *R2Store) download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}
