// Package storage keeps uploaded catalog images on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Buckets group images by owner type. They double as URL path segments.
const (
	BucketParts      = "parts"
	BucketCategories = "categories"
)

// SearchOrder is the order buckets are probed when only a file name is known.
var SearchOrder = []string{BucketParts, BucketCategories}

var filePrefixes = map[string]string{
	BucketParts:      "part",
	BucketCategories: "category",
}

var (
	// ErrImageNotFound is returned by Open for a missing object.
	ErrImageNotFound = errors.New("image not found")
	// ErrInvalidName rejects names that could escape the bucket.
	ErrInvalidName = errors.New("invalid image name")
)

// ImageStore saves uploads and serves them back.
type ImageStore interface {
	// Save stores the upload and returns its public URL.
	Save(ctx context.Context, bucket string, file *multipart.FileHeader) (string, error)
	// Delete removes the object behind a URL returned by Save. Missing objects are ignored.
	Delete(ctx context.Context, url string) error
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// OpenAny looks name up in every bucket of SearchOrder.
func OpenAny(ctx context.Context, store ImageStore, name string) (io.ReadCloser, error) {
	for _, bucket := range SearchOrder {
		rc, err := store.Open(ctx, bucket, name)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, ErrImageNotFound) {
			return nil, err
		}
	}
	return nil, ErrImageNotFound
}

// ObjectName builds "<prefix>-<unix millis>-<short id><ext>" for an upload.
func ObjectName(bucket, original string, now time.Time) string {
	prefix, ok := filePrefixes[bucket]
	if !ok {
		prefix = "file"
	}
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%d-%s%s", prefix, now.UnixMilli(), uuid.NewString()[:8], ext)
}

// PublicURL joins the base URL with the uploads path of an object.
func PublicURL(baseURL, bucket, name string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + bucket + "/" + name
}

// ParseURL extracts bucket and name from a URL produced by PublicURL.
// A bare file name is accepted and reported without a bucket.
func ParseURL(url string) (bucket, name string, ok bool) {
	if url == "" {
		return "", "", false
	}
	if idx := strings.LastIndex(url, "/uploads/"); idx >= 0 {
		rest := url[idx+len("/uploads/"):]
		dir, file := path.Split(rest)
		dir = strings.Trim(dir, "/")
		if file == "" || ValidName(file) != nil {
			return "", "", false
		}
		return dir, file, true
	}
	file := path.Base(url)
	if ValidName(file) != nil {
		return "", "", false
	}
	return "", file, true
}

// ValidName rejects empty names and anything with a path component.
func ValidName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}

func validBucket(bucket string) error {
	if _, ok := filePrefixes[bucket]; !ok {
		return fmt.Errorf("unknown bucket %q", bucket)
	}
	return nil
}
