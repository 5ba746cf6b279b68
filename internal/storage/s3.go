package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ProductPrefix is the key prefix for catalog images.
const ProductPrefix = "products/"

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Uploader stores images in a bucket fronted by a CDN.
type S3Uploader struct {
	client   S3API
	bucket   string
	cdnBase  string
	fallback Uploader
}

// NewS3Uploader builds an uploader for bucket. When cdnBase is empty, URLs
// point at the bucket endpoint. fallback may be nil.
func NewS3Uploader(client S3API, bucket, cdnBase string, fallback Uploader) *S3Uploader {
	if cdnBase == "" {
		cdnBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Uploader{client: client, bucket: bucket, cdnBase: strings.TrimRight(cdnBase, "/"), fallback: fallback}
}

func (u *S3Uploader) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(name))
	key := ProductPrefix + uuid.New().String() + ext

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		if u.fallback == nil {
			return "", fmt.Errorf("failed to upload file to S3: %w", err)
		}
		slog.Warn("s3 upload failed, storing locally", "bucket", u.bucket, "error", err)
		return u.fallback.Save(ctx, name, bytes.NewReader(data))
	}
	return u.URL(key), nil
}

// URL returns the public address of key.
func (u *S3Uploader) URL(key string) string {
	return u.cdnBase + "/" + key
}

// KeyFromURL reports the object key behind a public URL produced by URL.
func (u *S3Uploader) KeyFromURL(url string) (string, bool) {
	prefix := u.cdnBase + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// List returns every key under prefix.
func (u *S3Uploader) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := u.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(u.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, o := range out.Contents {
			keys = append(keys, aws.ToString(o.Key))
		}
		if out.NextContinuationToken == nil {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// Delete removes keys in batches of 1000.
func (u *S3Uploader) Delete(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		objs := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objs = append(objs, s3types.ObjectIdentifier{Key: aws.String(k)})
		}
		if _, err := u.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(u.bucket),
			Delete: &s3types.Delete{Objects: objs},
		}); err != nil {
			return fmt.Errorf("failed to delete S3 objects: %w", err)
		}
	}
	return nil
}

// Remove deletes the object behind url, handing URLs from the fallback to it.
func (u *S3Uploader) Remove(ctx context.Context, url string) error {
	if key, ok := u.KeyFromURL(url); ok {
		return u.Delete(ctx, []string{key})
	}
	if u.fallback != nil {
		return u.fallback.Remove(ctx, url)
	}
	return nil
}

// DeletePrefix removes all objects under prefix and returns how many were deleted.
func (u *S3Uploader) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := u.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if err := u.Delete(ctx, keys); err != nil {
		return 0, err
	}
	slog.Info("deleted s3 objects", "prefix", prefix, "count", len(keys))
	return len(keys), nil
}
