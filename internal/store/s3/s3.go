// Package s3 implements the store.Store interface for an S3 bucket.
//
// Remote hatches come from the object ETag when it is a plain MD5
// digest. Multipart uploads produce composite ETags, so every upload
// also records the source hatch in object metadata and List falls back
// to a HeadObject lookup for objects whose ETag is not usable. A
// multipart object uploaded by another tool carries neither, so its
// record has an empty hatch and classifies as content-unknown rather
// than as a conflict.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nrollins/bucketsync/internal/domain"
)

// hatchMetadataKey names the object metadata entry carrying the source
// hatch. The SDK lowercases metadata keys on the wire.
const hatchMetadataKey = "hatch"

// pageSize is the number of objects fetched per list request.
const pageSize = 1000

// API is the slice of the S3 client the store uses.
// *s3.Client satisfies it; tests substitute a mock.
type API interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, input *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, input *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Options configures the S3 store.
type Options struct {
	// Bucket is the bucket name (required)
	Bucket string

	// Prefix is an optional key prefix; the store only sees keys
	// below it
	Prefix string

	// Region overrides the region from the AWS default chain
	Region string

	// Endpoint overrides the service endpoint (S3-compatible stores)
	Endpoint string

	// ForcePathStyle uses path-style addressing, needed by most
	// S3-compatible stores
	ForcePathStyle bool

	// CreateBucket creates the bucket on construction if it is missing
	CreateBucket bool
}

// Store reads and mutates objects in one bucket below one prefix.
type Store struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// New creates an S3 store using credentials from the AWS default chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name cannot be empty", domain.ErrConfigInvalid)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	s, err := NewWithClient(client, opts)
	if err != nil {
		return nil, err
	}

	if opts.CreateBucket {
		if err := s.ensureBucket(ctx, cfg.Region); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewWithClient creates a store around an existing client.
// No bucket creation is attempted.
func NewWithClient(client API, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name cannot be empty", domain.ErrConfigInvalid)
	}
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   normalizePrefix(opts.Prefix),
	}, nil
}

// normalizePrefix ensures a non-empty prefix ends with exactly one slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// key maps a relative path to an object key.
func (s *Store) key(relPath string) string {
	return s.prefix + relPath
}

// relPath maps an object key back to a relative path, or "" if the key
// is outside the prefix.
func (s *Store) relPath(key string) string {
	if s.prefix == "" {
		return key
	}
	if !strings.HasPrefix(key, s.prefix) {
		return ""
	}
	return key[len(s.prefix):]
}

// ensureBucket creates the bucket, tolerating one we already own.
func (s *Store) ensureBucket(ctx context.Context, region string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}
	// us-east-1 rejects an explicit location constraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			return nil
		}
		return mapped
	}
	return nil
}

// List enumerates every object below the prefix.
func (s *Store) List(ctx context.Context) ([]domain.FileRecord, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(pageSize),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	var records []domain.FileRecord
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := s.relPath(key)
			// skip keys outside the prefix and "directory" placeholders
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}

			sum, ok := etagHatch(aws.ToString(obj.ETag))
			if !ok {
				sum, err = s.metadataHatch(ctx, key)
				if err != nil {
					return nil, err
				}
			}

			records = append(records, domain.FileRecord{
				Path:    rel,
				Hatch:   sum,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return records, nil
}

// metadataHatch fetches the hatch recorded at upload time for objects
// whose ETag is not a plain MD5 (multipart or encrypted uploads).
func (s *Store) metadataHatch(ctx context.Context, key string) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", mapError(err)
	}
	return out.Metadata[hatchMetadataKey], nil
}

// Read opens an object for reading.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out.Body, nil
}

// Write uploads an object, recording the source hatch as metadata.
// The manager uploader switches to multipart automatically for large
// content.
func (s *Store) Write(ctx context.Context, rec domain.FileRecord, r io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(rec.Path)),
		Body:   r,
	}
	if rec.Hatch != "" {
		input.Metadata = map[string]string{hatchMetadataKey: rec.Hatch}
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return mapError(err)
	}
	return nil
}

// Rename moves an object via server-side copy plus delete.
func (s *Store) Rename(ctx context.Context, oldPath, newPath string) error {
	source := url.PathEscape(s.bucket + "/" + s.key(oldPath))
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key(newPath)),
		CopySource: aws.String(source),
	})
	if err != nil {
		return mapError(err)
	}

	return s.Delete(ctx, oldPath)
}

// Delete removes an object.
func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	return mapError(err)
}

// Exists checks if an object exists.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, domain.ErrNotFound) {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

// Close releases any resources (no-op; the SDK client is stateless).
func (s *Store) Close() error {
	return nil
}

// etagHatch extracts an MD5 hatch from an ETag header value.
// Composite multipart ETags ("digest-partcount") are reported unusable.
func etagHatch(etag string) (string, bool) {
	etag = strings.Trim(etag, `"`)
	if etag == "" || strings.Contains(etag, "-") {
		return "", false
	}
	return etag, true
}
