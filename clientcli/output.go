package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfiles(w io.Writer, file *ProfileFile, showSecrets bool) error
	FormatProfile(w io.Writer, name string, profile Profile, isDefault, showSecrets bool) error
	FormatStageCheck(w io.Writer, check *StageCheck) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.FileName, formatSize(r.Size))
			_, _ = fmt.Fprintf(w, "  Key: %s\n", r.Key)
		} else {
			_, _ = fmt.Fprintln(w, r.Key)
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.Key, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.Key, result.LocalPath, formatSize(result.Size))
		}
		if result.ETag != "" {
			_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
		}
	}
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Documents) == 0 {
		_, _ = fmt.Fprintln(w, "No documents found")
		return nil
	}

	if f.Quiet {
		for i := range result.Documents {
			_, _ = fmt.Fprintln(w, result.Documents[i].Key)
		}
		return nil
	}

	// Calculate column widths
	maxKeyLen := 3 // "KEY"
	for i := range result.Documents {
		if len(result.Documents[i].Key) > maxKeyLen {
			maxKeyLen = len(result.Documents[i].Key)
		}
	}
	if maxKeyLen > 60 {
		maxKeyLen = 60
	}

	// Print header
	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxKeyLen, "KEY", "SIZE", "LAST MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxKeyLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	// Print documents
	for i := range result.Documents {
		doc := &result.Documents[i]
		key := doc.Key
		if len(key) > maxKeyLen {
			key = key[:maxKeyLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n",
			maxKeyLen,
			key,
			formatSize(doc.Size),
			doc.LastModified.Format("2006-01-02 15:04:05"),
		)
	}

	// Print summary
	_, _ = fmt.Fprintf(w, "\n%d document(s) (%s total)\n", len(result.Documents), formatSize(result.TotalSize()))

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath string `json:"local_path"`
		Key       string `json:"key,omitempty"`
		FileName  string `json:"file_name,omitempty"`
		Size      int64  `json:"size_bytes,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Key = r.Key
			jr.FileName = r.FileName
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	type jsonDocument struct {
		Key          string `json:"key"`
		FileName     string `json:"fileName"`
		Size         int64  `json:"size"`
		LastModified string `json:"lastModified"`
	}

	output := struct {
		Documents []jsonDocument `json:"documents"`
	}{
		Documents: make([]jsonDocument, len(result.Documents)),
	}

	for i := range result.Documents {
		doc := &result.Documents[i]
		output.Documents[i] = jsonDocument{
			Key:          doc.Key,
			FileName:     doc.FileName,
			Size:         doc.Size,
			LastModified: doc.LastModified.UTC().Format(time.RFC3339),
		}
	}

	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfiles prints one row per profile; the default is marked with "*".
func (f *HumanFormatter) FormatProfiles(w io.Writer, file *ProfileFile, showSecrets bool) error {
	if f.Quiet {
		for _, name := range file.Names() {
			_, _ = fmt.Fprintln(w, name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tNAME\tSTAGE\tENDPOINT\tAPI KEY")
	for _, name := range file.Names() {
		p := file.Profiles[name]
		marker := ""
		if name == file.Default {
			marker = "*"
		}
		stage := p.Stage
		if stage == "" {
			stage = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, name, stage, p.Endpoint(), redactKey(p.APIKey, showSecrets))
	}
	return tw.Flush()
}

// FormatProfile prints a single profile with its resolved endpoint.
func (f *HumanFormatter) FormatProfile(w io.Writer, name string, p Profile, isDefault, showSecrets bool) error {
	if isDefault {
		name += " (default)"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Profile:\t%s\n", name)
	_, _ = fmt.Fprintf(tw, "Invoke URL:\t%s\n", p.InvokeURL)
	if p.Stage != "" {
		_, _ = fmt.Fprintf(tw, "Stage:\t%s\n", p.Stage)
	}
	_, _ = fmt.Fprintf(tw, "Endpoint:\t%s\n", p.Endpoint())
	_, _ = fmt.Fprintf(tw, "API Key:\t%s\n", redactKey(p.APIKey, showSecrets))
	return tw.Flush()
}

// FormatStageCheck reports the result of a listDocuments round trip.
func (f *HumanFormatter) FormatStageCheck(w io.Writer, check *StageCheck) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, check.Documents)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: %s reachable in %s, %d document(s) (%s total)\n",
		check.Profile, check.Endpoint, check.Latency.Round(time.Millisecond), check.Documents, formatSize(check.TotalSize))
	return nil
}

type jsonProfile struct {
	Name      string `json:"name"`
	InvokeURL string `json:"invoke_url"`
	Stage     string `json:"stage,omitempty"`
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"api_key,omitempty"`
	Default   bool   `json:"default"`
}

func newJSONProfile(name string, p Profile, isDefault, showSecrets bool) jsonProfile {
	jp := jsonProfile{
		Name:      name,
		InvokeURL: p.InvokeURL,
		Stage:     p.Stage,
		Endpoint:  p.Endpoint(),
		Default:   isDefault,
	}
	if p.APIKey != "" {
		jp.APIKey = redactKey(p.APIKey, showSecrets)
	}
	return jp
}

// FormatProfiles formats all profiles as JSON.
func (f *JSONFormatter) FormatProfiles(w io.Writer, file *ProfileFile, showSecrets bool) error {
	profiles := make([]jsonProfile, 0, len(file.Profiles))
	for _, name := range file.Names() {
		profiles = append(profiles, newJSONProfile(name, file.Profiles[name], name == file.Default, showSecrets))
	}
	return writeJSON(w, struct {
		Profiles []jsonProfile `json:"profiles"`
	}{profiles})
}

// FormatProfile formats a single profile as JSON.
func (f *JSONFormatter) FormatProfile(w io.Writer, name string, p Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(name, p, isDefault, showSecrets))
}

// FormatStageCheck formats a stage check as JSON.
func (f *JSONFormatter) FormatStageCheck(w io.Writer, check *StageCheck) error {
	return writeJSON(w, check)
}

// redactKey hides a usage-plan key except for its last four characters,
// the way the API Gateway console lists keys.
func redactKey(key string, showSecrets bool) string {
	switch {
	case key == "":
		return "-"
	case showSecrets:
		return key
	case len(key) < 12:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}
