package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/formdata"
)

// Service is the document API served by Handler. *docrepo.DocumentService
// implements it.
type Service interface {
	Upload(ctx context.Context, file docrepo.DecodedFile) (docrepo.UploadResult, error)
	List(ctx context.Context) ([]docrepo.DocumentSummary, error)
	Download(ctx context.Context, key string) (docrepo.Document, error)
}

// Observer receives one call per handled request. The metrics package
// provides a Prometheus implementation.
type Observer interface {
	ObserveRequest(action string, status int, duration time.Duration)
	ObserveUpload(size int64)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObserveUpload(int64)                       {}

// Labels used for requests that carry no valid action.
const (
	LabelPreflight = "preflight"
	LabelInvalid   = "invalid"
)

type HandlerConfig struct {
	MaxFileSize int64 // default: formdata.DefaultMaxFileSize
	ChunkSize   int   // default: formdata.DefaultChunkSize
}

// Handler dispatches API Gateway proxy events to a Service.
type Handler struct {
	config   HandlerConfig
	service  Service
	observer Observer
}

// NewHandler creates a Handler. A nil observer disables observation.
func NewHandler(service Service, config HandlerConfig, observer Observer) *Handler {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = formdata.DefaultMaxFileSize
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = formdata.DefaultChunkSize
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Handler{
		config:   config,
		service:  service,
		observer: observer,
	}
}

// Handle serves one proxy event. It is the Lambda entrypoint and always
// returns a nil error: every failure, panics included, becomes a response
// carrying CORS headers.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	start := time.Now()
	label := LabelInvalid

	defer func() {
		if v := recover(); v != nil {
			slog.Error("panic while handling request", "panic", v, "stack", string(debug.Stack()))
			resp = panicResponse(v)
			err = nil
		}

		duration := time.Since(start)
		h.observer.ObserveRequest(label, resp.StatusCode, duration)
		slog.Info("request",
			"method", req.HTTPMethod,
			"action", label,
			"status", resp.StatusCode,
			"duration", duration,
		)
	}()

	if isPreflight(req) {
		label = LabelPreflight
		return preflightResponse(), nil
	}

	action := resolveAction(req)
	if action.IsValid() {
		label = string(action)
	}

	switch action {
	case docrepo.ActionUpload:
		return h.handleUpload(ctx, req), nil
	case docrepo.ActionList:
		return h.handleList(ctx), nil
	case docrepo.ActionDownload:
		return h.handleDownload(ctx, req), nil
	default:
		return HandleError(action, errInvalidAction), nil
	}
}

func (h *Handler) handleUpload(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	file, err := h.decodeUpload(ctx, req)
	if err != nil {
		return HandleError(docrepo.ActionUpload, err)
	}

	result, err := h.service.Upload(ctx, file)
	if err != nil {
		return HandleError(docrepo.ActionUpload, err)
	}

	h.observer.ObserveUpload(file.Size())
	slog.Debug("document uploaded", "key", result.Key, "size", file.Size(), "content_type", file.ContentType)

	return JSONResponse(http.StatusOK, UploadResponse{
		Message:  "File uploaded successfully",
		Key:      result.Key,
		FileName: result.FileName,
	})
}

func (h *Handler) handleList(ctx context.Context) events.APIGatewayProxyResponse {
	documents, err := h.service.List(ctx)
	if err != nil {
		return HandleError(docrepo.ActionList, err)
	}
	if documents == nil {
		documents = []docrepo.DocumentSummary{}
	}

	return JSONResponse(http.StatusOK, ListResponse{Documents: documents})
}

func (h *Handler) handleDownload(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	key := queryParam(req, "key")
	if key == "" {
		return HandleError(docrepo.ActionDownload, errMissingKey)
	}

	doc, err := h.service.Download(ctx, key)
	if err != nil {
		return HandleError(docrepo.ActionDownload, err)
	}

	return BinaryResponse(doc)
}
