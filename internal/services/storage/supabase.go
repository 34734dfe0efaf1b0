package storage

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseGateway stores objects in a Supabase Storage bucket
type SupabaseGateway struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseGateway creates a gateway backed by Supabase Storage.
// projectURL is the storage endpoint (https://<project>.supabase.co/storage/v1)
// and serviceKey a service-role key with access to the bucket.
func NewSupabaseGateway(projectURL, serviceKey, bucket string) *SupabaseGateway {
	return &SupabaseGateway{
		client: storage_go.NewClient(projectURL, serviceKey, nil),
		bucket: bucket,
	}
}

// Put stores an object and returns its URL
func (g *SupabaseGateway) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	opts := storage_go.FileOptions{}
	if contentType != "" {
		opts.ContentType = &contentType
	}

	if _, err := g.client.UploadFile(g.bucket, key, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("uploading object %s: %w", key, err)
	}

	return ObjectURL(g.bucket, key), nil
}

// Fetch retrieves the object behind a previously returned URL
func (g *SupabaseGateway) Fetch(ctx context.Context, objectURL string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(objectURL)
	if err != nil {
		return nil, err
	}

	data, err := g.client.DownloadFile(bucket, key)
	if err != nil {
		return nil, fmt.Errorf("downloading object %s: %w", objectURL, err)
	}

	return data, nil
}

// Remove deletes the object behind a previously returned URL
func (g *SupabaseGateway) Remove(ctx context.Context, objectURL string) error {
	bucket, key, err := ParseObjectURL(objectURL)
	if err != nil {
		return err
	}

	if _, err := g.client.RemoveFile(bucket, []string{key}); err != nil {
		return fmt.Errorf("removing object %s: %w", objectURL, err)
	}

	return nil
}
