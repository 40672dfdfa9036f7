package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"
)

// Uploader stores one object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

// SupabaseUploader writes objects into a Supabase storage bucket.
type SupabaseUploader struct {
	client        *supabase.Client
	bucket        string
	publicBaseURL string
}

// NewSupabaseUploader connects to the project at url with key. When
// publicBaseURL is set it replaces the bucket's public URL prefix (for a CDN).
func NewSupabaseUploader(url, key, bucket, publicBaseURL string) (*SupabaseUploader, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}
	return &SupabaseUploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload implements Uploader. Existing objects are overwritten.
func (u *SupabaseUploader) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := true
	_, err := u.client.Storage.UploadFile(u.bucket, objectPath, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + objectPath, nil
	}
	return u.client.Storage.GetPublicUrl(u.bucket, objectPath).SignedURL, nil
}
