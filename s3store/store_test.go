package s3store_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/s3store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func TestStore_Put(t *testing.T) {
	api := new(MockAPI)
	store := s3store.New(api, "docs-bucket")
	ctx := context.Background()

	body := bytes.NewReader([]byte("%PDF-1.4"))
	api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "docs-bucket" &&
			aws.ToString(in.Key) == "documents/1-a.pdf" &&
			aws.ToString(in.ContentType) == "application/pdf" &&
			aws.ToInt64(in.ContentLength) == 8 &&
			in.Body == body
	})).Return(&s3.PutObjectOutput{}, nil)

	err := store.Put(ctx, "documents/1-a.pdf", body, 8, "application/pdf")
	assert.NoError(t, err)
	api.AssertExpectations(t)
}

func TestStore_Put_Error(t *testing.T) {
	api := new(MockAPI)
	store := s3store.New(api, "docs-bucket")

	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, apiErr)

	err := store.Put(context.Background(), "documents/1-a.pdf", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestStore_Get(t *testing.T) {
	api := new(MockAPI)
	store := s3store.New(api, "docs-bucket")
	ctx := context.Background()

	api.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "docs-bucket" && aws.ToString(in.Key) == "documents/1-a.txt"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("hello"))}, nil)

	body, err := store.Get(ctx, "documents/1-a.txt")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_Get_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "typed NoSuchKey", err: &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}},
		{name: "api error code", err: &smithy.GenericAPIError{Code: "NoSuchKey"}},
		{name: "wrapped", err: fmt.Errorf("operation error S3: GetObject: %w", &types.NoSuchKey{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			store := s3store.New(api, "docs-bucket")
			api.On("GetObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := store.Get(context.Background(), "documents/missing.pdf")
			assert.ErrorIs(t, err, docrepo.ErrNotFound)
		})
	}
}

func TestStore_Get_OtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "missing bucket", err: &smithy.GenericAPIError{Code: "NoSuchBucket"}},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}},
		{name: "network", err: errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			store := s3store.New(api, "docs-bucket")
			api.On("GetObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := store.Get(context.Background(), "documents/a.pdf")
			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, docrepo.ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	api := new(MockAPI)
	store := s3store.New(api, "docs-bucket")
	ctx := context.Background()

	modified := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api.On("ListObjectsV2", ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Bucket) == "docs-bucket" &&
			aws.ToString(in.Prefix) == "documents/" &&
			in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("documents/1-a.pdf"), Size: aws.Int64(10), LastModified: aws.Time(modified)},
			{Key: aws.String("documents/2-b.txt"), Size: aws.Int64(3), LastModified: aws.Time(modified)},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil).Once()

	entries, err := store.List(ctx, "documents/")
	require.NoError(t, err)

	assert.Equal(t, []docrepo.ObjectEntry{
		{Key: "documents/1-a.pdf", Size: 10, LastModified: modified},
		{Key: "documents/2-b.txt", Size: 3, LastModified: modified},
	}, entries)
	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "ListObjectsV2", 1)
}

func TestStore_List_Empty(t *testing.T) {
	api := new(MockAPI)
	store := s3store.New(api, "docs-bucket")

	api.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&s3.ListObjectsV2Output{}, nil)

	entries, err := store.List(context.Background(), "documents/")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestNewClient(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	t.Run("custom endpoint", func(t *testing.T) {
		client, err := s3store.NewClient(context.Background(), s3store.Config{
			Region:    "eu-west-1",
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
		})
		require.NoError(t, err)

		opts := client.Options()
		assert.Equal(t, "eu-west-1", opts.Region)
		assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
		assert.True(t, opts.UsePathStyle)
		assert.Equal(t, 1, opts.RetryMaxAttempts)
	})

	t.Run("endpoint with scheme", func(t *testing.T) {
		client, err := s3store.NewClient(context.Background(), s3store.Config{
			Region:   "us-east-1",
			Endpoint: "https://s3.example.com",
			UseSSL:   false,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com", aws.ToString(client.Options().BaseEndpoint))
	})

	t.Run("aws default endpoint", func(t *testing.T) {
		client, err := s3store.NewClient(context.Background(), s3store.Config{Region: "us-east-1"})
		require.NoError(t, err)
		assert.Nil(t, client.Options().BaseEndpoint)
		assert.False(t, client.Options().UsePathStyle)
	})
}
