package db

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
)

// ImageStore uploads public images into one bucket.
type ImageStore struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewImageStore opens bucketName through the Firebase storage client.
func NewImageStore(ctx context.Context, app *firebase.App, bucketName string) (*ImageStore, error) {
	sc, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("get storage client: %w", err)
	}
	bucket, err := sc.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketName, err)
	}
	return &ImageStore{bucket: bucket, name: bucketName}, nil
}

// Upload writes r to the object name and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish %s: %w", name, err)
	}
	return PublicURL(s.name, name), nil
}

// PublicURL is the unauthenticated download URL of an object.
func PublicURL(bucket, object string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + object}
	return u.String()
}
