package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout. It matches the
	// API Gateway integration limit.
	DefaultTimeout = 30 * time.Second

	// FormField is the multipart field name used for uploads.
	FormField = "file"
)

// gateway actions, see docrepo.Action
const (
	actionUpload   = "uploadFile"
	actionList     = "listDocuments"
	actionDownload = "downloadFile"
)

// Client performs operations against a docrepo gateway.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			APIKey:   cfg.APIKey,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads one or more files to the gateway.
// Continues on error, collecting results for all paths.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]UploadResult, 0, len(opts.Paths))

	for _, localPath := range opts.Paths {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := c.uploadSingle(ctx, localPath, opts.ContentType, opts.Direct)
		if err != nil {
			result = UploadResult{LocalPath: localPath, Err: err}
		}
		results = append(results, result)
	}

	return results, nil
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// uploadSingle uploads a single file to the gateway.
func (c *Client) uploadSingle(ctx context.Context, localPath, contentType string, direct bool) (UploadResult, error) {
	if localPath == "" {
		return UploadResult{}, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	// The gateway buffers the whole document, so read it up front.
	data, err := os.ReadFile(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}

	fileName := filepath.Base(localPath)

	// Auto-detect content type if not provided
	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	var (
		body        []byte
		requestType string
		query       = url.Values{}
	)
	query.Set("action", actionUpload)

	if direct {
		query.Set("fileName", fileName)
		query.Set("contentType", contentType)
		body = data
		requestType = contentType
	} else {
		body, requestType, err = multipartBody(fileName, contentType, data)
		if err != nil {
			return UploadResult{}, err
		}
	}

	respBody, err := c.do(ctx, http.MethodPost, query, requestType, body)
	if err != nil {
		return UploadResult{}, err
	}

	// Parse response
	var uploaded serverUploadResponse
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath: localPath,
		Key:       uploaded.Key,
		FileName:  uploaded.FileName,
		Size:      int64(len(data)),
	}, nil
}

func multipartBody(fileName, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     FormField,
		"filename": fileName,
	}))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// Download downloads a document from the gateway.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.Key == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyKey)
	}

	query := url.Values{}
	query.Set("action", actionDownload)
	query.Set("key", opts.Key)

	req, err := c.newRequest(ctx, http.MethodGet, query, "", nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "*/*")

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	// Extract metadata from headers
	result := &DownloadResult{
		Key:         opts.Key,
		FileName:    fileNameFromDisposition(resp.Header.Get("Content-Disposition"), opts.Key),
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	// Determine local path
	localPath := opts.LocalPath
	if localPath == "" {
		localPath = result.FileName
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	// Create the file
	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	// Copy content to file
	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// List returns every document in the repository.
func (c *Client) List(ctx context.Context) (*ListResult, error) {
	query := url.Values{}
	query.Set("action", actionList)

	body, err := c.do(ctx, http.MethodGet, query, "", nil)
	if err != nil {
		return nil, err
	}

	// Parse response
	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Documents == nil {
		result.Documents = []DocumentInfo{}
	}

	return &result, nil
}

// TotalSize calculates the total size of all documents in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, doc := range r.Documents {
		total += doc.Size
	}
	return total
}

func (c *Client) newRequest(ctx context.Context, method string, query url.Values, contentType string, body []byte) (*http.Request, error) {
	endpoint := c.config.Endpoint + "?" + query.Encode()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.config.APIKey != "" {
		req.Header.Set("X-Api-Key", c.config.APIKey)
	}
	return req, nil
}

// do sends a request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method string, query url.Values, contentType string, body []byte) ([]byte, error) {
	req, err := c.newRequest(ctx, method, query, contentType, body)
	if err != nil {
		return nil, err
	}

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// fileNameFromDisposition returns the filename parameter of an attachment
// header, or the last segment of key. Names that would escape the working
// directory are ignored.
func fileNameFromDisposition(disposition, key string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := localFileName(params["filename"]); name != "" {
			return name
		}
	}
	if name := localFileName(path.Base(key)); name != "" {
		return name
	}
	return "download"
}

// localFileName reduces name to its final element, or "" when nothing
// usable is left.
func localFileName(name string) string {
	name = filepath.Base(filepath.FromSlash(name))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return name
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil {
		apiErr.Message = se.Error
		apiErr.Details = se.Details
		if apiErr.Details == "" {
			apiErr.Details = se.Message
		}
	}

	return apiErr
}

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	Message    string // "error" field of the JSON body
	Details    string // "details" or "message" field of the JSON body
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
	}
	msg := "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested document does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned for rejected input such as a disallowed
	// file type (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrForbidden is returned by API Gateway when the API key is missing
	// or invalid (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
