package file_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/docvault/pkg/file"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

// MockUploader drains the body like the real uploader would.
type MockUploader struct {
	mock.Mock
	received []byte
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.received = data

	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manager.UploadOutput), args.Error(1)
}

func newS3Storage(t *testing.T, client *MockS3Client, uploader *MockUploader, prefix string) *file.S3Storage {
	t.Helper()
	storage, err := file.NewS3Storage(context.Background(), file.S3Config{
		Bucket: "test-bucket",
		Region: "us-east-1",
		Prefix: prefix,
	}, file.WithS3Client(client), file.WithS3Uploader(uploader))
	require.NoError(t, err)
	return storage
}

func TestNewS3Storage(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket:      "test-bucket",
			Region:      "us-east-1",
			AccessKeyID: "test-key",
			SecretKey:   "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, storage)
	})

	t.Run("with custom endpoint", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket:         "test-bucket",
			Region:         "us-east-1",
			Endpoint:       "http://localhost:9000",
			ForcePathStyle: true,
		}, file.WithS3PartSize(8<<20))
		require.NoError(t, err)
		require.NotNil(t, storage)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "us-east-1"})
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
		assert.Nil(t, storage)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{Bucket: "test-bucket"})
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
		assert.Nil(t, storage)
	})

	t.Run("mock client without uploader", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket: "test-bucket",
			Region: "us-east-1",
		}, file.WithS3Client(new(MockS3Client)))
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
		assert.Nil(t, storage)
	})
}

func TestS3Storage_Save(t *testing.T) {
	t.Parallel()

	t.Run("successful save", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		uploader := new(MockUploader)
		uploader.On("Upload", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.Bucket) == "test-bucket" &&
				aws.ToString(in.Key) == "docs/reports/q1.pdf" &&
				aws.ToString(in.ContentType) == "application/pdf" &&
				aws.ToString(in.IfNoneMatch) == "*"
		})).Return(&manager.UploadOutput{}, nil)

		storage := newS3Storage(t, client, uploader, "/docs/")
		content := "%PDF-1.4 body"

		f, err := storage.Save(context.Background(), strings.NewReader(content), "reports/q1.pdf")
		require.NoError(t, err)

		assert.Equal(t, "q1.pdf", f.Name)
		assert.Equal(t, "reports", f.Dir)
		assert.Equal(t, "reports/q1.pdf", f.RelativePath)
		assert.Equal(t, "s3://test-bucket/docs/reports/q1.pdf", f.Location)
		assert.Equal(t, int64(len(content)), f.Size)
		assert.Equal(t, ".pdf", f.Extension)
		assert.Equal(t, content, string(uploader.received))
		uploader.AssertExpectations(t)
	})

	t.Run("existing object", func(t *testing.T) {
		t.Parallel()
		uploader := new(MockUploader)
		uploader.On("Upload", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"})

		storage := newS3Storage(t, new(MockS3Client), uploader, "")
		_, err := storage.Save(context.Background(), strings.NewReader("x"), "a.txt")
		assert.ErrorIs(t, err, file.ErrFileExists)
	})

	t.Run("invalid path", func(t *testing.T) {
		t.Parallel()
		uploader := new(MockUploader)
		storage := newS3Storage(t, new(MockS3Client), uploader, "")

		_, err := storage.Save(context.Background(), strings.NewReader("x"), "../escape.txt")
		assert.ErrorIs(t, err, file.ErrInvalidPath)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		storage := newS3Storage(t, new(MockS3Client), new(MockUploader), "")
		_, err := storage.Save(ctx, strings.NewReader("x"), "a.txt")
		assert.ErrorIs(t, err, file.ErrOperationCanceled)
	})
}

func TestS3Storage_Size(t *testing.T) {
	t.Parallel()

	t.Run("returns content length", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
			return aws.ToString(in.Key) == "root/dir/a.txt"
		})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(42)}, nil)

		storage := newS3Storage(t, client, new(MockUploader), "root")
		size, err := storage.Size(context.Background(), "dir/a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(42), size)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})

		storage := newS3Storage(t, client, new(MockUploader), "")
		_, err := storage.Size(context.Background(), "missing.txt")
		assert.ErrorIs(t, err, file.ErrFileNotFound)
	})
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	t.Run("existing object", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{}, nil)
		client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
			return aws.ToString(in.Key) == "a.txt"
		})).Return(&s3.DeleteObjectOutput{}, nil)

		storage := newS3Storage(t, client, new(MockUploader), "")
		require.NoError(t, storage.Delete(context.Background(), "a.txt"))
		client.AssertExpectations(t)
	})

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

		storage := newS3Storage(t, client, new(MockUploader), "")
		assert.ErrorIs(t, storage.Delete(context.Background(), "a.txt"), file.ErrFileNotFound)
		client.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})
}

func TestS3Storage_Exists(t *testing.T) {
	t.Parallel()
	client := new(MockS3Client)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "here.txt"
	})).Return(&s3.HeadObjectOutput{}, nil)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "gone.txt"
	})).Return(nil, &types.NotFound{})

	storage := newS3Storage(t, client, new(MockUploader), "")
	assert.True(t, storage.Exists(context.Background(), "here.txt"))
	assert.False(t, storage.Exists(context.Background(), "gone.txt"))
	assert.False(t, storage.Exists(context.Background(), "../x"))
}

func TestS3Storage_MkdirAll(t *testing.T) {
	t.Parallel()
	storage := newS3Storage(t, new(MockS3Client), new(MockUploader), "")

	assert.NoError(t, storage.MkdirAll(context.Background(), "reports"))
	assert.ErrorIs(t, storage.MkdirAll(context.Background(), "../reports"), file.ErrInvalidPath)
}

func TestS3Storage_Ping(t *testing.T) {
	t.Parallel()

	t.Run("bucket reachable", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)

		storage := newS3Storage(t, client, new(MockUploader), "")
		assert.NoError(t, storage.Ping(context.Background()))
	})

	t.Run("bucket missing", func(t *testing.T) {
		t.Parallel()
		client := new(MockS3Client)
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NoSuchBucket{})

		storage := newS3Storage(t, client, new(MockUploader), "")
		err := storage.Ping(context.Background())
		assert.ErrorIs(t, err, file.ErrStorageUnavailable)
		assert.ErrorIs(t, err, file.ErrBucketNotFound)
	})
}

func TestS3Storage_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, file.ErrAccessDenied},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, file.ErrServiceUnavailable},
		{"timeout", &smithy.GenericAPIError{Code: "RequestTimeout"}, file.ErrRequestTimeout},
		{"conflict", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}, file.ErrFileExists},
		{"deadline", context.DeadlineExceeded, file.ErrOperationTimeout},
		{"canceled", context.Canceled, file.ErrOperationCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := new(MockS3Client)
			client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			storage := newS3Storage(t, client, new(MockUploader), "")
			_, err := storage.Size(context.Background(), "a.txt")
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}
