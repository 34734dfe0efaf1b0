package storage

import (
	"context"
	"fmt"
	"strings"
)

// Gateway stores, fetches, and deletes opaque binary objects by key.
// Object URLs are of the form storage://<bucket>/<key> so the key can be
// recovered from a persisted URL when a record is deleted.
type Gateway interface {
	// Put stores an object and returns its URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Fetch retrieves the object behind a previously returned URL
	Fetch(ctx context.Context, objectURL string) ([]byte, error)

	// Remove deletes the object behind a previously returned URL
	Remove(ctx context.Context, objectURL string) error
}

const urlScheme = "storage://"

// ObjectURL renders the canonical URL for a bucket and key
func ObjectURL(bucket, key string) string {
	return urlScheme + bucket + "/" + key
}

// ParseObjectURL splits an object URL back into bucket and key
func ParseObjectURL(objectURL string) (bucket, key string, err error) {
	if !strings.HasPrefix(objectURL, urlScheme) {
		return "", "", fmt.Errorf("not an object URL: %s", objectURL)
	}

	rest := strings.TrimPrefix(objectURL, urlScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed object URL: %s", objectURL)
	}

	return parts[0], parts[1], nil
}
