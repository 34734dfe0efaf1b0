package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalGateway stores objects on the local filesystem under a base
// directory. Used for development and tests; production deployments use
// the Supabase backend.
type LocalGateway struct {
	baseDir string
	bucket  string
}

// NewLocalGateway creates a filesystem-backed gateway
func NewLocalGateway(baseDir, bucket string) *LocalGateway {
	return &LocalGateway{baseDir: baseDir, bucket: bucket}
}

// Put stores an object and returns its URL
func (g *LocalGateway) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(g.baseDir, g.bucket, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating object directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}

	return ObjectURL(g.bucket, key), nil
}

// Fetch retrieves the object behind a previously returned URL
func (g *LocalGateway) Fetch(ctx context.Context, objectURL string) ([]byte, error) {
	path, err := g.resolve(objectURL)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", objectURL, err)
	}

	return data, nil
}

// Remove deletes the object behind a previously returned URL
func (g *LocalGateway) Remove(ctx context.Context, objectURL string) error {
	path, err := g.resolve(objectURL)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing object %s: %w", objectURL, err)
	}

	return nil
}

func (g *LocalGateway) resolve(objectURL string) (string, error) {
	bucket, key, err := ParseObjectURL(objectURL)
	if err != nil {
		return "", err
	}

	// Keep keys inside the bucket directory
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}

	return filepath.Join(g.baseDir, bucket, clean), nil
}
