package clientcli

import (
	"time"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	Paths       []string
	ContentType string // optional, auto-detect if empty
	Direct      bool   // send the raw bytes instead of a multipart form
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Key       string `json:"key"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size_bytes"`
	Err       error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Key       string
	LocalPath string // empty = original file name, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	Key         string `json:"key"`
	LocalPath   string `json:"local_path"`
	FileName    string `json:"file_name"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// ListResult contains the documents stored in the repository.
type ListResult struct {
	Documents []DocumentInfo `json:"documents"`
}

// DocumentInfo represents one stored document.
type DocumentInfo struct {
	Key          string    `json:"key"`
	FileName     string    `json:"fileName"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// serverUploadResponse mirrors the JSON response of a successful upload.
type serverUploadResponse struct {
	Message  string `json:"message"`
	Key      string `json:"key"`
	FileName string `json:"fileName"`
}

// serverError mirrors the JSON body of an error response.
type serverError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// StageCheck reports a listDocuments round trip against a profile.
type StageCheck struct {
	Profile   string        `json:"profile"`
	Endpoint  string        `json:"endpoint"`
	Documents int           `json:"documents"`
	TotalSize int64         `json:"total_size_bytes"`
	Latency   time.Duration `json:"latency_ns"`
}
