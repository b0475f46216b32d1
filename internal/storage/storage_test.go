package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("images", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["images"], 1)
	return form.File["images"][0]
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := ObjectName(BucketParts, "Brake Pad.PNG", now)
	assert.Regexp(t, regexp.MustCompile(`^part-1700000000123-[0-9a-f]{8}\.png$`), name)

	name = ObjectName(BucketCategories, "noext", now)
	assert.Regexp(t, regexp.MustCompile(`^category-1700000000123-[0-9a-f]{8}$`), name)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url    string
		bucket string
		name   string
		ok     bool
	}{
		{url: "http://localhost:7000/uploads/parts/part-1-abc.png", bucket: "parts", name: "part-1-abc.png", ok: true},
		{url: "/uploads/categories/c.jpg", bucket: "categories", name: "c.jpg", ok: true},
		{url: "part-1.png", name: "part-1.png", ok: true},
		{url: "http://x/uploads/parts/", ok: false},
		{url: "", ok: false},
	}
	for _, tt := range tests {
		bucket, name, ok := ParseURL(tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.bucket, bucket, tt.url)
		assert.Equal(t, tt.name, name, tt.url)
	}
}

func TestValidName(t *testing.T) {
	assert.NoError(t, ValidName("part-1.png"))
	for _, bad := range []string{"", "..", "../etc/passwd", `a\b`, "a/b"} {
		assert.ErrorIs(t, ValidName(bad), ErrInvalidName, bad)
	}
}

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:7000/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, BucketCategories, uploadHeader(t, "wheel.jpg", "jpeg-bytes"))
	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost:7000/uploads/categories/category-\d+-[0-9a-f]{8}\.jpg$`, url)

	_, name, ok := ParseURL(url)
	require.True(t, ok)

	rc, err := OpenAny(ctx, store, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(root, BucketCategories, name))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(ctx, url), "deleting twice is a no-op")

	_, err = OpenAny(ctx, store, name)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestLocalStore_RejectsTraversalAndUnknownBucket(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	_, err = store.Open(context.Background(), BucketParts, "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = store.Save(context.Background(), "avatars", uploadHeader(t, "a.png", "x"))
	assert.Error(t, err)
}
