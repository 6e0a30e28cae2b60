package views

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store persists views as JSON objects in an S3 bucket, one object per
// view under the configured key prefix. Suitable for multi-server
// deployments where share links must resolve on any instance.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := views.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "views/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a view store over an S3 bucket.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Save uploads the view as a JSON object.
func (s *S3Store) Save(ctx context.Context, v View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("views: marshal view %s: %w", v.ID, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(v.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("views: put view %s: %w", v.ID, err)
	}
	return nil
}

// Load fetches and decodes a view object.
func (s *S3Store) Load(ctx context.Context, id string) (View, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return View{}, ErrNotFound
		}
		return View{}, fmt.Errorf("views: get view %s: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return View{}, fmt.Errorf("views: read view %s: %w", id, err)
	}

	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, fmt.Errorf("views: decode view %s: %w", id, err)
	}
	return v, nil
}

// Delete removes the view object. S3 deletes are idempotent, so absent
// IDs are naturally a no-op.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("views: delete view %s: %w", id, err)
	}
	return nil
}

// List fetches every view under the prefix, paging through the bucket.
func (s *S3Store) List(ctx context.Context) ([]View, error) {
	var out []View

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("views: list views: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			id := strings.TrimPrefix(*obj.Key, s.prefix)
			v, err := s.Load(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// Close is a no-op; the S3 client is owned by the caller.
func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + id
}

var _ Store = (*S3Store)(nil)
