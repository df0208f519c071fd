package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
)

// MediaStore is the durable home of raw video bytes. Put returns a stable
// locator that is sufficient to fetch the bytes back later.
type MediaStore interface {
	Put(ctx context.Context, video io.Reader, applicantID, questionID uuid.UUID, filename string) (string, error)
	Get(ctx context.Context, locator string) (io.ReadCloser, error)
}

type gcsMediaStore struct {
	client *storage.Client
	bucket string
}

func NewGCSMediaStore(ctx context.Context, bucket string) (MediaStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsMediaStore{client: client, bucket: bucket}, nil
}

func (s *gcsMediaStore) Put(ctx context.Context, video io.Reader, applicantID, questionID uuid.UUID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}
	key := fmt.Sprintf("videos/%s/%s/%s%s", applicantID, questionID, uuid.New(), ext)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(ext); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, video); err != nil {
		_ = w.Close()
		return "", apperrors.Wrap(apperrors.KindStorage, err, "failed to write video to bucket %s", s.bucket)
	}
	if err := w.Close(); err != nil {
		return "", apperrors.Wrap(apperrors.KindStorage, err, "failed to finalize video upload to bucket %s", s.bucket)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, key), nil
}

func (s *gcsMediaStore) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	bucket, key, err := parseGCSLocator(locator)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to open %s", locator)
	}
	return r, nil
}

func parseGCSLocator(locator string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(locator, "gs://")
	if !ok {
		return "", "", apperrors.New(apperrors.KindStorage, "locator %q is not a gs:// URI", locator)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", apperrors.New(apperrors.KindStorage, "locator %q is missing bucket or object key", locator)
	}
	return bucket, key, nil
}
