package docrepo

import (
	"time"
)

// DefaultContentType is used whenever a payload does not declare its type.
const DefaultContentType = "application/octet-stream"

// Action is the logical operation requested by a caller. It travels
// out-of-band from the HTTP method, in the "action" query parameter.
type Action string

const (
	ActionUpload   Action = "uploadFile"
	ActionList     Action = "listDocuments"
	ActionDownload Action = "downloadFile"
	ActionInvalid  Action = ""
)

func (a Action) IsValid() bool {
	switch a {
	case ActionUpload, ActionList, ActionDownload:
		return true
	default:
		return false
	}
}

// ParseAction maps a raw action string to an Action. Unknown values,
// including the empty string, map to ActionInvalid.
func ParseAction(s string) Action {
	action := Action(s)
	if !action.IsValid() {
		return ActionInvalid
	}
	return action
}

// DecodedFile is a fully materialized upload payload.
type DecodedFile struct {
	Data        []byte
	FileName    string
	ContentType string
}

// Size returns the payload length in bytes.
func (f DecodedFile) Size() int64 {
	return int64(len(f.Data))
}

// ObjectEntry is a single item returned by a storage listing.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// DocumentSummary is the list projection of a stored document.
type DocumentSummary struct {
	Key          string    `json:"key"`
	FileName     string    `json:"fileName"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// UploadResult describes a stored upload.
type UploadResult struct {
	Key      string `json:"key"`
	FileName string `json:"fileName"`
	Size     int64  `json:"-"`
}

// Document is a downloaded document with its body fully read into memory.
// FileName is the name given at upload time, without the key's timestamp.
type Document struct {
	Key         string
	FileName    string
	ContentType string
	Data        []byte
}
