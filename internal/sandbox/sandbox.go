// Package sandbox renders an embedded-code work's HTML/CSS/JS payload into a
// standalone document and publishes it to object storage.
//
// The emitted document is what the frontend loads into a sandboxed iframe,
// served from a separate origin so the snippet's scripts cannot touch the
// app's cookies or DOM. That origin isolation is the entire security story —
// the payload itself is intentionally NOT sanitized or escaped, running the
// author's code is the point.
package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Document assembles the sandbox HTML for a code payload. The output is
// deterministic: same payload, same bytes. CSS lands in a <style> block in
// the head, HTML goes into the body verbatim, JS runs from a trailing
// <script> so the markup above it exists by the time it executes.
func Document(html, css, js string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	b.WriteString(css)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(html)
	b.WriteString("\n<script>\n")
	b.WriteString(js)
	b.WriteString("\n</script>\n</body>\n</html>\n")
	return b.String()
}

// Publisher uploads sandbox documents and hands back their public URL.
type Publisher interface {
	PublishDocument(ctx context.Context, workID, doc string) (string, error)
}

// Store publishes sandbox documents to a MinIO/S3 bucket. The bucket is
// expected to be served publicly (or via a CDN) under baseURL.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewStore connects to the object store and ensures the bucket exists.
func NewStore(endpoint, accessKey, secretKey, bucket, baseURL string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("sandbox: init object store client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("sandbox: checking bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("sandbox: creating bucket %s: %w", bucket, err)
		}
	}

	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// PublishDocument uploads the document under the work's ID and returns the
// public URL it will be served from.
func (s *Store) PublishDocument(ctx context.Context, workID, doc string) (string, error) {
	key := workID + "/index.html"
	reader := strings.NewReader(doc)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(doc)), minio.PutObjectOptions{
		ContentType: "text/html; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("sandbox: uploading document for work %s: %w", workID, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}
