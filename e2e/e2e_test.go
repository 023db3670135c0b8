package e2e_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagarc03/docrepo/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_Documents_Filesystem runs the document lifecycle against the
// filesystem backend.
func TestE2E_Documents_Filesystem(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		Backend:     "filesystem",
		StoragePath: filepath.Join(t.TempDir(), "data"),
	})
	defer cleanup()

	runDocumentTests(t, baseURL)
}

// TestE2E_Documents_Minio runs the document lifecycle against MinIO.
func TestE2E_Documents_Minio(t *testing.T) {
	minio := getSharedMinio(t)

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:      getOpenPort(t),
		Backend:   "minio",
		Bucket:    "e2e-documents",
		Endpoint:  minio.Endpoint,
		AccessKey: minio.AccessKey,
		SecretKey: minio.SecretKey,
	})
	defer cleanup()

	runDocumentTests(t, baseURL)
}

// runDocumentTests contains the shared upload, list, and download checks.
func runDocumentTests(t *testing.T, baseURL string) {
	t.Helper()
	ctx := context.Background()
	client := newClient(t, baseURL)

	pdf := []byte("%PDF-1.4 quarterly report")
	var pdfKey string

	t.Run("list is empty before any upload", func(t *testing.T) {
		result, err := client.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, result.Documents)
	})

	t.Run("multipart upload stores the file", func(t *testing.T) {
		results, err := client.Upload(ctx, clientcli.UploadOptions{
			Paths: []string{writeLocalFile(t, "report.pdf", pdf)},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)

		pdfKey = results[0].Key
		assert.True(t, strings.HasPrefix(pdfKey, "documents/"), pdfKey)
		assert.True(t, strings.HasSuffix(pdfKey, "-report.pdf"), pdfKey)
		assert.Equal(t, "report.pdf", results[0].FileName)
	})

	t.Run("direct upload stores the file", func(t *testing.T) {
		results, err := client.Upload(ctx, clientcli.UploadOptions{
			Paths:  []string{writeLocalFile(t, "notes.txt", []byte("plain notes"))},
			Direct: true,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.True(t, strings.HasSuffix(results[0].Key, "-notes.txt"), results[0].Key)
	})

	t.Run("disallowed file type is rejected", func(t *testing.T) {
		results, err := client.Upload(ctx, clientcli.UploadOptions{
			Paths: []string{writeLocalFile(t, "run.exe", []byte("MZ"))},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.ErrorIs(t, results[0].Err, clientcli.ErrBadRequest)
		assert.Contains(t, results[0].Err.Error(), "Invalid file type")
		assert.Contains(t, results[0].Err.Error(), ".pdf")
	})

	t.Run("list returns uploaded documents", func(t *testing.T) {
		result, err := client.List(ctx)
		require.NoError(t, err)
		require.Len(t, result.Documents, 2)

		names := []string{result.Documents[0].FileName, result.Documents[1].FileName}
		assert.ElementsMatch(t, []string{"report.pdf", "notes.txt"}, names)
		assert.Equal(t, int64(len(pdf)+len("plain notes")), result.TotalSize())
	})

	t.Run("download returns the original bytes and name", func(t *testing.T) {
		require.NotEmpty(t, pdfKey)
		localPath := filepath.Join(t.TempDir(), "out.pdf")

		result, body, err := client.Download(ctx, clientcli.DownloadOptions{Key: pdfKey, LocalPath: localPath})
		require.NoError(t, err)
		assert.Nil(t, body)

		assert.Equal(t, "report.pdf", result.FileName)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.NotEmpty(t, result.ETag)

		data, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, pdf, data)
	})

	t.Run("download of missing key is 404", func(t *testing.T) {
		_, _, err := client.Download(ctx, clientcli.DownloadOptions{Key: "documents/0-missing.pdf", LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("preflight returns CORS headers", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodOptions, baseURL+"/?action=uploadFile", http.NoBody)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics count gateway requests", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/metrics")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `docrepo_request_duration_seconds_count{action="uploadFile",code="200"} 2`)
		assert.Contains(t, string(body), `docrepo_request_duration_seconds_count{action="uploadFile",code="400"} 1`)
	})
}

// TestE2E_CustomExtensions checks that configured extensions replace the defaults.
func TestE2E_CustomExtensions(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:              getOpenPort(t),
		Backend:           "filesystem",
		StoragePath:       t.TempDir(),
		AllowedExtensions: []string{".md"},
	})
	defer cleanup()

	ctx := context.Background()
	client := newClient(t, baseURL)

	results, err := client.Upload(ctx, clientcli.UploadOptions{
		Paths: []string{
			writeLocalFile(t, "README.md", []byte("# docs")),
			writeLocalFile(t, "report.pdf", []byte("%PDF-1.4")),
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, clientcli.ErrBadRequest)
	assert.True(t, clientcli.HasUploadErrors(results))
}
