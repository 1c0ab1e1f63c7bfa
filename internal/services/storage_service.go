package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

type StorageService interface {
	UploadFile(ctx context.Context, content []byte, contentType string, objectPath string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// objectStorage is the subset of the Supabase storage client we use.
type objectStorage interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	RemoveFile(bucketID string, paths []string) ([]storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

type SupabaseStorageService struct {
	client objectStorage
	bucket string
}

func NewSupabaseStorageService(baseURL, bucket, serviceKey string) (*SupabaseStorageService, error) {
	client, err := supa.NewClient(strings.TrimRight(baseURL, "/"), serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStorageService{client: client.Storage, bucket: bucket}, nil
}

func (s *SupabaseStorageService) UploadFile(ctx context.Context, content []byte, contentType string, objectPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	objectPath = strings.Trim(path.Clean("/"+objectPath), "/")
	upsert := true
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(content), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return s.client.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}

func (s *SupabaseStorageService) DeleteFile(ctx context.Context, fileURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{objectPath}); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *SupabaseStorageService) objectPathFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}

	publicPrefix := "/storage/v1/object/public/" + s.bucket + "/"
	objectPrefix := "/storage/v1/object/" + s.bucket + "/"

	switch {
	case strings.HasPrefix(parsed.Path, publicPrefix):
		return strings.TrimPrefix(parsed.Path, publicPrefix), nil
	case strings.HasPrefix(parsed.Path, objectPrefix):
		return strings.TrimPrefix(parsed.Path, objectPrefix), nil
	default:
		return "", fmt.Errorf("file url does not belong to configured bucket")
	}
}
