package services

import (
	"context"
	"io"
	"testing"

	storage_go "github.com/supabase-community/storage-go"
)

type fakeBucket struct {
	uploaded    map[string][]byte
	contentType string
	removed     []string
}

func (b *fakeBucket) UploadFile(_ string, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return storage_go.FileUploadResponse{}, err
	}
	if b.uploaded == nil {
		b.uploaded = map[string][]byte{}
	}
	b.uploaded[relativePath] = content
	if len(opts) > 0 && opts[0].ContentType != nil {
		b.contentType = *opts[0].ContentType
	}
	return storage_go.FileUploadResponse{}, nil
}

func (b *fakeBucket) RemoveFile(_ string, paths []string) ([]storage_go.FileUploadResponse, error) {
	b.removed = append(b.removed, paths...)
	return nil, nil
}

func (b *fakeBucket) GetPublicUrl(bucketID string, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://project.supabase.co/storage/v1/object/public/" + bucketID + "/" + filePath}
}

func TestSupabaseStorageUploadAndDelete(t *testing.T) {
	bucket := &fakeBucket{}
	storage := &SupabaseStorageService{client: bucket, bucket: "gym-media"}

	url, err := storage.UploadFile(context.Background(), []byte("img"), "image/png", "/courses/../courses/42/a.png")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if url != "https://project.supabase.co/storage/v1/object/public/gym-media/courses/42/a.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if string(bucket.uploaded["courses/42/a.png"]) != "img" || bucket.contentType != "image/png" {
		t.Fatalf("unexpected upload %+v", bucket)
	}

	if err := storage.DeleteFile(context.Background(), url); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if len(bucket.removed) != 1 || bucket.removed[0] != "courses/42/a.png" {
		t.Fatalf("unexpected removal %v", bucket.removed)
	}
}

func TestSupabaseStorageRejectsForeignURL(t *testing.T) {
	storage := &SupabaseStorageService{client: &fakeBucket{}, bucket: "gym-media"}

	if err := storage.DeleteFile(context.Background(), "https://project.supabase.co/storage/v1/object/public/other/a.png"); err == nil {
		t.Fatal("expected an error for a different bucket")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := storage.UploadFile(ctx, []byte("x"), "image/png", "a.png"); err == nil {
		t.Fatal("expected a cancelled context to abort the upload")
	}
}
