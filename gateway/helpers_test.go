package gateway_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sagarc03/docrepo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of gateway.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, file docrepo.DecodedFile) (docrepo.UploadResult, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(docrepo.UploadResult), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]docrepo.DocumentSummary, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]docrepo.DocumentSummary)
	return docs, args.Error(1)
}

func (m *MockService) Download(ctx context.Context, key string) (docrepo.Document, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(docrepo.Document), args.Error(1)
}

// memStorage is an in-memory docrepo.Storage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Put(_ context.Context, key string, content io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.puts++
	return nil
}

func (s *memStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, docrepo.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) List(_ context.Context, prefix string) ([]docrepo.ObjectEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []docrepo.ObjectEntry
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, docrepo.ObjectEntry{Key: key, Size: int64(len(data)), LastModified: time.Unix(0, 0).UTC()})
		}
	}
	return entries, nil
}

type observation struct {
	action string
	status int
}

type spyObserver struct {
	mu       sync.Mutex
	requests []observation
	uploaded []int64
}

func (o *spyObserver) ObserveRequest(action string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observation{action: action, status: status})
}

func (o *spyObserver) ObserveUpload(size int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uploaded = append(o.uploaded, size)
}

func directUpload(fileName, contentType string, data []byte) events.APIGatewayProxyRequest {
	query := map[string]string{"action": "uploadFile"}
	if fileName != "" {
		query["fileName"] = fileName
	}
	if contentType != "" {
		query["contentType"] = contentType
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:            "POST",
		QueryStringParameters: query,
		Body:                  base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded:       true,
	}
}

// multipartUpload builds a base64 multipart request holding one file part.
func multipartUpload(t *testing.T, fileName, contentType string, data []byte) events.APIGatewayProxyRequest {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("description", "quarterly report"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return events.APIGatewayProxyRequest{
		HTTPMethod:            "POST",
		QueryStringParameters: map[string]string{"action": "uploadFile"},
		Headers:               map[string]string{"Content-Type": w.FormDataContentType()},
		Body:                  base64.StdEncoding.EncodeToString(buf.Bytes()),
		IsBase64Encoded:       true,
	}
}

func listRequest() events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		QueryStringParameters: map[string]string{"action": "listDocuments"},
	}
}

func downloadRequest(key string) events.APIGatewayProxyRequest {
	query := map[string]string{"action": "downloadFile"}
	if key != "" {
		query["key"] = key
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		QueryStringParameters: query,
	}
}

func decodeJSON[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func assertCORS(t *testing.T, headers map[string]string) {
	t.Helper()
	require.Equal(t, "*", headers["Access-Control-Allow-Origin"])
	require.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", headers["Access-Control-Allow-Methods"])
	require.Equal(t, "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token,X-Requested-With", headers["Access-Control-Allow-Headers"])
	require.Equal(t, "true", headers["Access-Control-Allow-Credentials"])
	require.Equal(t, "86400", headers["Access-Control-Max-Age"])
}
