package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sagarc03/docrepo"
)

// actionBody is the shape probed when the query names no action.
type actionBody struct {
	Action string `json:"action"`
}

// resolveAction picks the action for req. The query parameter wins. Without
// one, a non-empty body is probed as a JSON object that may carry "action".
func resolveAction(req events.APIGatewayProxyRequest) docrepo.Action {
	if raw := queryParam(req, "action"); raw != "" {
		return docrepo.ParseAction(raw)
	}

	if req.Body == "" {
		return docrepo.ActionInvalid
	}

	if req.IsBase64Encoded {
		return assumeRawUpload()
	}

	var body actionBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return assumeRawUpload()
	}

	return docrepo.ParseAction(body.Action)
}

// assumeRawUpload is the fallback for bodies that are binary or not JSON.
// Such a body is treated as a file being uploaded, never as malformed JSON,
// so a client may POST a file without naming the action.
func assumeRawUpload() docrepo.Action {
	return docrepo.ActionUpload
}

func isPreflight(req events.APIGatewayProxyRequest) bool {
	return strings.EqualFold(req.HTTPMethod, http.MethodOptions)
}

// header looks name up case-insensitively in the single and multi value maps.
func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, v := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func queryParam(req events.APIGatewayProxyRequest, name string) string {
	if v, ok := req.QueryStringParameters[name]; ok {
		return v
	}
	if v := req.MultiValueQueryStringParameters[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}
