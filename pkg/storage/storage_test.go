package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("https://cdn.example.com/")

	require.NoError(t, m.Put(ctx, "group_images/1-a.png", strings.NewReader("png"), "image/png"))

	obj, ok := m.Get("group_images/1-a.png")
	require.True(t, ok)
	assert.Equal(t, []byte("png"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, m.Delete(ctx, "group_images/1-a.png"))
	require.NoError(t, m.Delete(ctx, "group_images/1-a.png"))
	_, ok = m.Get("group_images/1-a.png")
	assert.False(t, ok)
}

func TestURLRoundTrip(t *testing.T) {
	m := NewMemory("https://cdn.example.com/")

	url := m.URL("group_images/1-a.png")
	assert.Equal(t, "https://cdn.example.com/group_images/1-a.png", url)

	key, ok := m.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "group_images/1-a.png", key)

	_, ok = m.KeyFromURL("https://elsewhere.example.com/x.png")
	assert.False(t, ok)
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(S3Config{Region: "ap-northeast-2"}, nil)
	assert.Error(t, err)
}

func TestS3StorageURLUsesCDN(t *testing.T) {
	s, err := NewS3Storage(S3Config{
		Region:  "ap-northeast-2",
		Bucket:  "memories",
		BaseURL: "https://d1.cloudfront.net",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://d1.cloudfront.net/group_images/2-b.jpg", s.URL("group_images/2-b.jpg"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestErrorWrapsCause(t *testing.T) {
	err := NewMemory("").Put(context.Background(), "k", failingReader{}, "image/png")

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "put", serr.Op)
	assert.Contains(t, err.Error(), "broken pipe")
}
