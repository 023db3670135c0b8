package docrepo

// contentTypes is the static extension table used for download responses.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ContentTypeForName returns the MIME type for a file name or key based on
// its extension, falling back to DefaultContentType.
func ContentTypeForName(name string) string {
	if ct, ok := contentTypes[Extension(name)]; ok {
		return ct
	}
	return DefaultContentType
}
