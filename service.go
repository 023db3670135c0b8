package docrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Storage defines the blob store the document repository is built on.
// Implementations exist for S3, MinIO and the local filesystem.
//
// All methods accept a context for cancellation and timeout control.
// Implementations must not retry failed calls; a single failure is
// reported to the caller as is.
type Storage interface {
	// Put stores content under key, overwriting any existing object.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The destination key
	//   - content: Reader providing exactly size bytes
	//   - size: Content length in bytes
	//   - contentType: MIME type recorded with the object
	//
	// Returns:
	//   - error: Any storage or I/O error
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error

	// Get opens an object for reading.
	//
	// Returns:
	//   - io.ReadCloser: Object body. The body may be produced lazily by the
	//     backend; callers must drain and close it.
	//   - error: ErrNotFound if key doesn't exist, or other storage errors
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the objects whose key starts with prefix.
	//
	// Only the first page returned by the backend is included. Implementations
	// should return an empty slice (not nil) when nothing matches.
	List(ctx context.Context, prefix string) ([]ObjectEntry, error)
}

// BackendError reports a failed storage call. It matches both ErrBackend and
// the underlying backend error with errors.Is.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackend, e.Err}
}

// ParseError reports an upload body that could not be decoded. It matches
// both ErrParse and the decoder error with errors.Is.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse upload: " + e.Err.Error()
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Details returns the message of the backend or decoder error behind err,
// or err's own message otherwise.
func Details(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Err.Error()
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

// ServiceConfig holds configuration options for DocumentService.
type ServiceConfig struct {
	KeyPrefix         string           // default: DefaultKeyPrefix
	AllowedExtensions []string         // default: DefaultAllowedExtensions
	Now               func() time.Time // default: time.Now
}

// DocumentService implements upload, list and download on top of a Storage.
type DocumentService struct {
	storage   Storage
	policy    *Policy
	keyPrefix string
	now       func() time.Time
}

func NewDocumentService(storage Storage, cfg ServiceConfig) *DocumentService {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &DocumentService{
		storage:   storage,
		policy:    NewPolicy(cfg.AllowedExtensions),
		keyPrefix: keyPrefix,
		now:       now,
	}
}

// Policy returns the upload policy in use.
func (s *DocumentService) Policy() *Policy {
	return s.policy
}

// Upload validates file and stores it under a freshly generated key.
//
// The method performs the following steps:
//  1. Validates the file name against the policy
//  2. Generates the key <prefix><epoch-millis>-<fileName>
//  3. Puts the bytes to storage with the declared content type
//
// Error types returned:
//   - ErrInvalidRequest: empty file name
//   - ErrValidation: extension not allowed; nothing is written
//   - ErrBackend: the put failed
func (s *DocumentService) Upload(ctx context.Context, file DecodedFile) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload document: %w", err)
	}

	if err := s.policy.Validate(file.FileName); err != nil {
		return UploadResult{}, fmt.Errorf("upload document: %w", err)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	key := NewKey(s.keyPrefix, s.now(), file.FileName)

	err := s.storage.Put(ctx, key, bytes.NewReader(file.Data), file.Size(), contentType)
	if err != nil {
		return UploadResult{}, &BackendError{Op: "upload document " + key, Err: err}
	}

	return UploadResult{Key: key, FileName: file.FileName, Size: file.Size()}, nil
}

// List returns a summary of every document under the key prefix. The result
// is never nil.
func (s *DocumentService) List(ctx context.Context) ([]DocumentSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	entries, err := s.storage.List(ctx, s.keyPrefix)
	if err != nil {
		return nil, &BackendError{Op: "list documents", Err: err}
	}

	documents := make([]DocumentSummary, 0, len(entries))
	for _, e := range entries {
		documents = append(documents, DocumentSummary{
			Key:          e.Key,
			FileName:     FileNameFromKey(e.Key),
			Size:         e.Size,
			LastModified: e.LastModified,
		})
	}

	return documents, nil
}

// Download fetches the document stored under key and reads the whole body
// into memory before returning.
//
// Error types returned:
//   - ErrInvalidRequest: empty key
//   - ErrNotFound: key does not exist
//   - ErrBackend: the get or the body read failed
func (s *DocumentService) Download(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("download document: %w", err)
	}

	if key == "" {
		return Document{}, fmt.Errorf("download document: %w: key is required", ErrInvalidRequest)
	}

	body, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, fmt.Errorf("download document %s: %w", key, err)
		}
		return Document{}, &BackendError{Op: "download document " + key, Err: err}
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, fmt.Errorf("download document %s: %w", key, err)
		}
		return Document{}, &BackendError{Op: "read document " + key, Err: err}
	}

	return Document{
		Key:         key,
		FileName:    OriginalFileName(key),
		ContentType: ContentTypeForName(key),
		Data:        data,
	}, nil
}
