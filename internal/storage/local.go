package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes images under Root/<bucket>/.
type LocalStore struct {
	Root    string
	BaseURL string
	now     func() time.Time
}

// NewLocalStore creates the bucket directories under root.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	for _, bucket := range SearchOrder {
		if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &LocalStore{Root: root, BaseURL: baseURL, now: time.Now}, nil
}

func (s *LocalStore) Save(_ context.Context, bucket string, file *multipart.FileHeader) (string, error) {
	if err := validBucket(bucket); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := ObjectName(bucket, file.Filename, s.now())
	dst, err := os.Create(filepath.Join(s.Root, bucket, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return PublicURL(s.BaseURL, bucket, name), nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	bucket, name, ok := ParseURL(url)
	if !ok {
		return nil
	}
	buckets := SearchOrder
	if bucket != "" {
		if validBucket(bucket) != nil {
			return nil
		}
		buckets = []string{bucket}
	}
	for _, b := range buckets {
		err := os.Remove(filepath.Join(s.Root, b, name))
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	if err := validBucket(bucket); err != nil {
		return nil, ErrImageNotFound
	}
	if err := ValidName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Root, bucket, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return f, nil
}
