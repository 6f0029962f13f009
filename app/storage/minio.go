package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ClientMinio is the part of *minio.Client the store uses.
type ClientMinio interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

const (
	defaultContentType = "application/octet-stream"
	presignExpiry      = 15 * time.Minute
)

// MinioStore keeps images in an S3 compatible bucket. Reads are redirected to
// a presigned URL.
type MinioStore struct {
	bucketName string
	client     ClientMinio
	now        func() time.Time
}

// NewMinioStore connects to endpoint.
func NewMinioStore(endpoint, accessKeyID, secretAccessKey, bucketName string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return NewMinioStoreWithClient(client, bucketName), nil
}

func NewMinioStoreWithClient(client ClientMinio, bucketName string) *MinioStore {
	return &MinioStore{
		bucketName: bucketName,
		client:     client,
		now:        time.Now,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucketName, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucketName, err)
	}
	return nil
}

func (s *MinioStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	key := objectName(name, s.now())

	_, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return URLPrefix + "/" + key, nil
}

func (s *MinioStore) Remove(ctx context.Context, path string) error {
	key, err := nameFromPath(path)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, err := nameFromPath(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	presigned, err := s.client.PresignedGetObject(r.Context(), s.bucketName, key, presignExpiry, nil)
	if err != nil {
		http.Error(w, "image unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, presigned.String(), http.StatusTemporaryRedirect)
}
