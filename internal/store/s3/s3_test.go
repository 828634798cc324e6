package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nrollins/bucketsync/internal/domain"
)

// mockAPI implements API with canned responses per operation.
type mockAPI struct {
	listPages  []*awss3.ListObjectsV2Output
	listCalls  int
	headOutput *awss3.HeadObjectOutput
	headErr    error
	getOutput  *awss3.GetObjectOutput
	getErr     error
	putInputs  []*awss3.PutObjectInput
	copyInput  *awss3.CopyObjectInput
	deleteKeys []string
}

func (m *mockAPI) ListObjectsV2(ctx context.Context, input *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	if m.listCalls >= len(m.listPages) {
		return &awss3.ListObjectsV2Output{}, nil
	}
	page := m.listPages[m.listCalls]
	m.listCalls++
	return page, nil
}

func (m *mockAPI) GetObject(ctx context.Context, input *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	return m.getOutput, m.getErr
}

func (m *mockAPI) PutObject(ctx context.Context, input *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	m.putInputs = append(m.putInputs, input)
	return &awss3.PutObjectOutput{}, nil
}

func (m *mockAPI) HeadObject(ctx context.Context, input *awss3.HeadObjectInput, opts ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	return m.headOutput, nil
}

func (m *mockAPI) CopyObject(ctx context.Context, input *awss3.CopyObjectInput, opts ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error) {
	m.copyInput = input
	return &awss3.CopyObjectOutput{}, nil
}

func (m *mockAPI) DeleteObject(ctx context.Context, input *awss3.DeleteObjectInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	m.deleteKeys = append(m.deleteKeys, aws.ToString(input.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (m *mockAPI) CreateBucket(ctx context.Context, input *awss3.CreateBucketInput, opts ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error) {
	return &awss3.CreateBucketOutput{}, nil
}

func (m *mockAPI) CreateMultipartUpload(ctx context.Context, input *awss3.CreateMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in mock")
}

func (m *mockAPI) UploadPart(ctx context.Context, input *awss3.UploadPartInput, opts ...func(*awss3.Options)) (*awss3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported in mock")
}

func (m *mockAPI) CompleteMultipartUpload(ctx context.Context, input *awss3.CompleteMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in mock")
}

func (m *mockAPI) AbortMultipartUpload(ctx context.Context, input *awss3.AbortMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in mock")
}

func newTestStore(t *testing.T, mock *mockAPI, opts Options) *Store {
	t.Helper()
	if opts.Bucket == "" {
		opts.Bucket = "test-bucket"
	}
	s, err := NewWithClient(mock, opts)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	return s
}

func TestEtagHatch(t *testing.T) {
	tests := []struct {
		etag string
		want string
		ok   bool
	}{
		{`"5eb63bbbe01eeed093cb22bb8f5acdc3"`, "5eb63bbbe01eeed093cb22bb8f5acdc3", true},
		{"5eb63bbbe01eeed093cb22bb8f5acdc3", "5eb63bbbe01eeed093cb22bb8f5acdc3", true},
		{`"d41d8cd98f00b204e9800998ecf8427e-12"`, "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := etagHatch(tt.etag)
		if got != tt.want || ok != tt.ok {
			t.Errorf("etagHatch(%q) = (%q, %v), want (%q, %v)", tt.etag, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"backups", "backups/"},
		{"/backups/", "backups/"},
		{"a/b", "a/b/"},
	}

	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyMapping(t *testing.T) {
	s := newTestStore(t, &mockAPI{}, Options{Prefix: "backups"})

	if got := s.key("docs/a.txt"); got != "backups/docs/a.txt" {
		t.Errorf("key() = %q, want %q", got, "backups/docs/a.txt")
	}
	if got := s.relPath("backups/docs/a.txt"); got != "docs/a.txt" {
		t.Errorf("relPath() = %q, want %q", got, "docs/a.txt")
	}
	if got := s.relPath("other/docs/a.txt"); got != "" {
		t.Errorf("relPath() outside prefix = %q, want empty", got)
	}
}

func TestNewWithClientRequiresBucket(t *testing.T) {
	if _, err := NewWithClient(&mockAPI{}, Options{}); !errors.Is(err, domain.ErrConfigInvalid) {
		t.Fatalf("NewWithClient() error = %v, want ErrConfigInvalid", err)
	}
}

func TestListPaginatesAndParsesETags(t *testing.T) {
	now := time.Now()
	mock := &mockAPI{
		listPages: []*awss3.ListObjectsV2Output{
			{
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("token"),
				Contents: []types.Object{
					{
						Key:          aws.String("a.txt"),
						ETag:         aws.String(`"5eb63bbbe01eeed093cb22bb8f5acdc3"`),
						Size:         aws.Int64(11),
						LastModified: aws.Time(now),
					},
				},
			},
			{
				Contents: []types.Object{
					{
						Key:          aws.String("docs/b.txt"),
						ETag:         aws.String(`"aaaa-3"`),
						Size:         aws.Int64(100),
						LastModified: aws.Time(now),
					},
				},
			},
		},
		headOutput: &awss3.HeadObjectOutput{
			Metadata: map[string]string{"hatch": "feedfacefeedfacefeedfacefeedface"},
		},
	}

	s := newTestStore(t, mock, Options{})
	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if records[0].Path != "a.txt" || records[0].Hatch != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Path != "docs/b.txt" || records[1].Hatch != "feedfacefeedfacefeedfacefeedface" {
		t.Errorf("multipart record should use metadata hatch, got %+v", records[1])
	}
}

func TestListSkipsDirectoryPlaceholders(t *testing.T) {
	mock := &mockAPI{
		listPages: []*awss3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					{Key: aws.String("docs/"), ETag: aws.String(`"d41d8cd98f00b204e9800998ecf8427e"`), Size: aws.Int64(0)},
					{Key: aws.String("docs/a.txt"), ETag: aws.String(`"5eb63bbbe01eeed093cb22bb8f5acdc3"`), Size: aws.Int64(11)},
				},
			},
		},
	}

	s := newTestStore(t, mock, Options{})
	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Path != "docs/a.txt" {
		t.Fatalf("List() = %+v, want only docs/a.txt", records)
	}
}

func TestWriteRecordsHatchMetadata(t *testing.T) {
	mock := &mockAPI{}
	s := newTestStore(t, mock, Options{Prefix: "backups"})

	rec := domain.FileRecord{
		Path:  "a.txt",
		Hatch: "5eb63bbbe01eeed093cb22bb8f5acdc3",
		Size:  11,
	}
	if err := s.Write(context.Background(), rec, strings.NewReader("hello world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(mock.putInputs) != 1 {
		t.Fatalf("expected 1 PutObject call, got %d", len(mock.putInputs))
	}
	put := mock.putInputs[0]
	if aws.ToString(put.Key) != "backups/a.txt" {
		t.Errorf("PutObject key = %q, want %q", aws.ToString(put.Key), "backups/a.txt")
	}
	if put.Metadata["hatch"] != rec.Hatch {
		t.Errorf("PutObject metadata hatch = %q, want %q", put.Metadata["hatch"], rec.Hatch)
	}
}

func TestRead(t *testing.T) {
	mock := &mockAPI{
		getOutput: &awss3.GetObjectOutput{
			Body: io.NopCloser(bytes.NewReader([]byte("hello world"))),
		},
	}
	s := newTestStore(t, mock, Options{})

	rc, err := s.Read(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("Read() content = %q, want %q", data, "hello world")
	}
}

func TestReadNotFound(t *testing.T) {
	mock := &mockAPI{getErr: &types.NoSuchKey{}}
	s := newTestStore(t, mock, Options{})

	if _, err := s.Read(context.Background(), "missing.txt"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestRenameCopiesThenDeletes(t *testing.T) {
	mock := &mockAPI{}
	s := newTestStore(t, mock, Options{Prefix: "backups"})

	if err := s.Rename(context.Background(), "a.txt", "[rem0]a.txt"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if mock.copyInput == nil {
		t.Fatal("expected a CopyObject call")
	}
	if got := aws.ToString(mock.copyInput.Key); got != "backups/[rem0]a.txt" {
		t.Errorf("copy destination = %q, want %q", got, "backups/[rem0]a.txt")
	}
	wantSource := "test-bucket%2Fbackups%2Fa.txt"
	if got := aws.ToString(mock.copyInput.CopySource); got != wantSource {
		t.Errorf("copy source = %q, want %q", got, wantSource)
	}
	if len(mock.deleteKeys) != 1 || mock.deleteKeys[0] != "backups/a.txt" {
		t.Errorf("delete keys = %v, want [backups/a.txt]", mock.deleteKeys)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t, &mockAPI{headOutput: &awss3.HeadObjectOutput{}}, Options{})
	ok, err := s.Exists(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists() = false, want true")
	}

	s = newTestStore(t, &mockAPI{headErr: &types.NotFound{}}, Options{})
	ok, err = s.Exists(context.Background(), "missing.txt")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists() = true for missing object, want false")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &types.NoSuchKey{}, domain.ErrNotFound},
		{"no such bucket", &types.NoSuchBucket{}, domain.ErrNotFound},
		{"not found", &types.NotFound{}, domain.ErrNotFound},
		{"bucket owned", &types.BucketAlreadyOwnedByYou{}, domain.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapError(%T) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
	plain := errors.New("boom")
	if got := mapError(plain); got != plain {
		t.Errorf("mapError(plain) = %v, want passthrough", got)
	}
}

func TestListForeignMultipartObjectHasEmptyHatch(t *testing.T) {
	mock := &mockAPI{
		listPages: []*awss3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					{
						Key:          aws.String("video.mp4"),
						ETag:         aws.String(`"d41d8cd98f00b204e9800998ecf8427e-12"`),
						Size:         aws.Int64(1 << 30),
						LastModified: aws.Time(time.Now()),
					},
				},
			},
		},
		headOutput: &awss3.HeadObjectOutput{},
	}
	s := newTestStore(t, mock, Options{})

	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Hatch != "" {
		t.Errorf("Hatch = %q, want empty for a multipart object with no recorded signature", records[0].Hatch)
	}
}
