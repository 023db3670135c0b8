package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sagarc03/docrepo"
)

var (
	errMissingBody     = fmt.Errorf("%w: no file data provided", docrepo.ErrInvalidRequest)
	errMissingFileName = fmt.Errorf("%w: file name is required", docrepo.ErrInvalidRequest)
	errMissingKey      = fmt.Errorf("%w: document key is required", docrepo.ErrInvalidRequest)
	errInvalidAction   = fmt.Errorf("%w: invalid action", docrepo.ErrInvalidRequest)
)

// failureSummaries holds the error summary used for backend failures.
var failureSummaries = map[docrepo.Action]string{
	docrepo.ActionUpload:   "Failed to upload file",
	docrepo.ActionList:     "Failed to list documents",
	docrepo.ActionDownload: "Failed to download file",
}

// HandleError converts err into a response for action.
func HandleError(action docrepo.Action, err error) events.APIGatewayProxyResponse {
	var verr *docrepo.ValidationError

	switch {
	case errors.Is(err, errMissingBody):
		return ErrorJSON(http.StatusBadRequest, "No file data provided", "", "")
	case errors.Is(err, errMissingFileName):
		return ErrorJSON(http.StatusBadRequest, "File name is required", "", "")
	case errors.Is(err, errMissingKey):
		return ErrorJSON(http.StatusBadRequest, "Document key is required", "", "")
	case errors.Is(err, errInvalidAction):
		return ErrorJSON(http.StatusBadRequest, "Invalid action specified", "", "")
	case errors.As(err, &verr):
		return ErrorJSON(http.StatusBadRequest, "Invalid file type", "",
			"Allowed file types: "+strings.Join(verr.Allowed, ", "))
	case errors.Is(err, docrepo.ErrInvalidRequest):
		return ErrorJSON(http.StatusBadRequest, "Invalid request", docrepo.Details(err), "")
	case errors.Is(err, docrepo.ErrNotFound):
		return ErrorJSON(http.StatusNotFound, "Document not found", "", "")
	}

	slog.Error("request error", "action", string(action), "error", err)

	if errors.Is(err, docrepo.ErrParse) {
		return ErrorJSON(http.StatusInternalServerError, "Failed to process upload", docrepo.Details(err), "")
	}

	if summary, ok := failureSummaries[action]; ok && errors.Is(err, docrepo.ErrBackend) {
		return ErrorJSON(http.StatusInternalServerError, summary, docrepo.Details(err), "")
	}

	return ErrorJSON(http.StatusInternalServerError, "Internal server error", err.Error(), "")
}

// panicResponse is built without touching any request state.
func panicResponse(v any) events.APIGatewayProxyResponse {
	details, _ := json.Marshal(fmt.Sprint(v))
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":      allowOrigin,
			"Access-Control-Allow-Methods":     allowMethods,
			"Access-Control-Allow-Headers":     allowHeaders,
			"Access-Control-Allow-Credentials": allowCredentials,
			"Access-Control-Max-Age":           maxAge,
			"Content-Type":                     contentTypeJSON,
		},
		Body: `{"error":"Internal server error","details":` + string(details) + `}`,
	}
}
