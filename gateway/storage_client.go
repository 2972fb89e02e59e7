package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// StorageClient uploads assets (logo, payment QRs, prize images, notification
// videos, ticket artifacts) to the object-storage buckets.
type StorageClient struct {
	supabase *SupabaseClient
}

func NewStorageClient(supabase *SupabaseClient) *StorageClient {
	if supabase == nil {
		panic("missing supabase client")
	}
	return &StorageClient{supabase: supabase}
}

// Upload stores an object and returns its public URL. Existing objects at the
// same path are overwritten.
func (c *StorageClient) Upload(ctx context.Context, data []byte, contentType, bucket, path string) (string, error) {
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", url.PathEscape(bucket), path))
	if err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", bucket, path, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", &StorageError{Op: "upload " + bucket + "/" + path, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	return c.PublicURL(bucket, path), nil
}

func (c *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.supabase.baseURL, bucket, path)
}
