package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Storage stores binary objects under string keys
type Storage interface {
	// Put uploads body under key
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key
	URL(key string) string

	// KeyFromURL reverses URL; ok is false for URLs this store did not produce
	KeyFromURL(url string) (key string, ok bool)
}

// Error is returned for any failed storage call
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func splitURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
