package docrepo

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultAllowedExtensions lists the file types accepted for upload.
var DefaultAllowedExtensions = []string{".docx", ".pdf", ".jpg", ".png", ".jpeg", ".txt", ".xlsx"}

// Policy validates uploads before they reach storage.
type Policy struct {
	allowed []string
}

// NewPolicy creates a Policy for the given extensions. Entries are
// lowercased and given a leading dot if missing. An empty list selects
// DefaultAllowedExtensions.
func NewPolicy(extensions []string) *Policy {
	if len(extensions) == 0 {
		extensions = DefaultAllowedExtensions
	}
	allowed := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed = append(allowed, ext)
	}
	return &Policy{allowed: allowed}
}

// AllowedExtensions returns the normalized allow-list.
func (p *Policy) AllowedExtensions() []string {
	return slices.Clone(p.allowed)
}

// ValidationError reports a file rejected by the upload policy. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	FileName  string
	Extension string
	Allowed   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate file %s: extension %q not allowed", e.FileName, e.Extension)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate checks that fileName is present and carries an allowed extension.
//
// Error types returned:
//   - ErrInvalidRequest: empty file name
//   - *ValidationError (ErrValidation): extension missing or not in the allow-list
func (p *Policy) Validate(fileName string) error {
	if fileName == "" {
		return fmt.Errorf("validate file: %w: file name is required", ErrInvalidRequest)
	}

	ext := Extension(fileName)
	if !slices.Contains(p.allowed, ext) {
		return &ValidationError{
			FileName:  fileName,
			Extension: ext,
			Allowed:   p.AllowedExtensions(),
		}
	}

	return nil
}
