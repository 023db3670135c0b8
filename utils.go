package docrepo

import (
	"strconv"
	"strings"
	"time"
)

// DefaultKeyPrefix is the storage prefix all documents live under.
const DefaultKeyPrefix = "documents/"

// NewKey builds the storage key for an upload made at now:
// <prefix><epoch-millis>-<fileName>. The file name is used verbatim.
func NewKey(prefix string, now time.Time, fileName string) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + fileName
}

// FileNameFromKey returns the final path segment of a key.
func FileNameFromKey(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// OriginalFileName returns the name a document was uploaded with by dropping
// the "<epoch-millis>-" stamp NewKey puts in front of it. Keys that do not
// carry a stamp yield their final segment unchanged.
func OriginalFileName(key string) string {
	name := FileNameFromKey(key)
	stamp, rest, ok := strings.Cut(name, "-")
	if !ok || stamp == "" || rest == "" {
		return name
	}
	for _, c := range stamp {
		if c < '0' || c > '9' {
			return name
		}
	}
	return rest
}

// Extension returns the lowercase extension of name including the leading
// dot, taken after the final ".". It returns "" when name has no dot.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}
