package gateway

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cespare/xxhash/v2"

	"github.com/sagarc03/docrepo"
)

const (
	allowOrigin      = "*"
	allowMethods     = "GET,POST,PUT,DELETE,OPTIONS"
	allowHeaders     = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token,X-Requested-With"
	allowCredentials = "true"
	maxAge           = "86400"

	contentTypeJSON = "application/json"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of the preflight acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Key      string `json:"key"`
	FileName string `json:"fileName"`
}

// ListResponse is the body of a successful listing.
type ListResponse struct {
	Documents []docrepo.DocumentSummary `json:"documents"`
}

// corsHeaders returns a fresh header map built only from constants, so it is
// safe to call while recovering from a panic.
func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      allowOrigin,
		"Access-Control-Allow-Methods":     allowMethods,
		"Access-Control-Allow-Headers":     allowHeaders,
		"Access-Control-Allow-Credentials": allowCredentials,
		"Access-Control-Max-Age":           maxAge,
	}
}

// fallbackBody is used when a JSON body cannot be encoded.
const fallbackBody = `{"error":"Internal server error"}`

// JSONResponse encodes data as the JSON body of a response with status code.
func JSONResponse(code int, data any) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Content-Type"] = contentTypeJSON

	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       fallbackBody,
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    headers,
		Body:       string(body),
	}
}

// ErrorJSON writes an ErrorResponse. details and message are omitted when empty.
func ErrorJSON(code int, summary, details, message string) events.APIGatewayProxyResponse {
	return JSONResponse(code, ErrorResponse{
		Error:   summary,
		Details: details,
		Message: message,
	})
}

// BinaryResponse returns doc as a base64 body that the proxy integration
// decodes back to bytes. The browser is told to save it rather than render it.
func BinaryResponse(doc docrepo.Document) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Content-Type"] = doc.ContentType
	headers["Content-Disposition"] = contentDisposition(doc.FileName)
	headers["Content-Length"] = strconv.Itoa(len(doc.Data))
	headers["ETag"] = `"` + strconv.FormatUint(xxhash.Sum64(doc.Data), 16) + `"`

	return events.APIGatewayProxyResponse{
		StatusCode:      http.StatusOK,
		Headers:         headers,
		Body:            base64.StdEncoding.EncodeToString(doc.Data),
		IsBase64Encoded: true,
	}
}

func preflightResponse() events.APIGatewayProxyResponse {
	return JSONResponse(http.StatusOK, MessageResponse{Message: "CORS preflight successful"})
}

var quotedStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// contentDisposition builds an attachment header with the file name as a
// quoted-string. Names outside printable ASCII also get an RFC 5987
// filename* parameter, which clients prefer over the ASCII fallback.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return '_'
		}
		return r
	}, name)

	header := `attachment; filename="` + quotedStringEscaper.Replace(fallback) + `"`
	if fallback == name {
		return header
	}
	if ext := mime.FormatMediaType("attachment", map[string]string{"filename": name}); ext != "" {
		header += "; " + strings.TrimPrefix(ext, "attachment; ")
	}
	return header
}
