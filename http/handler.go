package http

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invoker handles one API Gateway proxy event. *gateway.Handler implements it.
type Invoker interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

type HandlerConfig struct {
	MaxBodySize int64               // 0 means no limit
	Gatherer    prometheus.Gatherer // nil disables /metrics
	Stage       string              // default: "local"
}

// Handler serves the gateway over net/http.
type Handler struct {
	config  HandlerConfig
	invoker Invoker
}

// NewHandler creates a new Handler with the given configuration and invoker.
func NewHandler(config *HandlerConfig, invoker Invoker) *Handler {
	cfg := *config
	if cfg.Stage == "" {
		cfg.Stage = "local"
	}
	return &Handler{
		config:  cfg,
		invoker: invoker,
	}
}

// Router returns an http.Handler with the health, metrics and proxy routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)

	r.Get("/healthz", h.handleHealth)
	if h.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.config.Gatherer, promhttp.HandlerOpts{}))
	}
	r.HandleFunc("/*", h.handleProxy)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.config.MaxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxBodySize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		HandleError(w, fmt.Errorf("read request body: %w", err))
		return
	}

	event := ProxyRequest(r, data)
	event.RequestContext.Stage = h.config.Stage

	resp, err := h.invoker.Handle(r.Context(), event)
	if err != nil {
		HandleError(w, fmt.Errorf("invoke gateway: %w", err))
		return
	}

	if err := WriteProxyResponse(w, resp); err != nil {
		HandleError(w, err)
	}
}

// ProxyRequest converts r and its already-read body into the event API
// Gateway would deliver for a {proxy+} resource.
func ProxyRequest(r *http.Request, body []byte) events.APIGatewayProxyRequest {
	event := events.APIGatewayProxyRequest{
		Resource:          "/{proxy+}",
		Path:              r.URL.Path,
		HTTPMethod:        r.Method,
		Headers:           make(map[string]string, len(r.Header)+1),
		MultiValueHeaders: make(map[string][]string, len(r.Header)+1),
		PathParameters:    map[string]string{"proxy": strings.TrimPrefix(r.URL.Path, "/")},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetReqID(r.Context()),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r.RemoteAddr),
				UserAgent: r.UserAgent(),
			},
		},
	}

	// API Gateway keeps the last value of a repeated header in Headers.
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		event.Headers[name] = values[len(values)-1]
		event.MultiValueHeaders[name] = slices.Clone(values)
	}
	if r.Host != "" {
		event.Headers["Host"] = r.Host
		event.MultiValueHeaders["Host"] = []string{r.Host}
	}

	if query := r.URL.Query(); len(query) > 0 {
		event.QueryStringParameters = make(map[string]string, len(query))
		event.MultiValueQueryStringParameters = make(map[string][]string, len(query))
		for name, values := range query {
			event.QueryStringParameters[name] = values[len(values)-1]
			event.MultiValueQueryStringParameters[name] = slices.Clone(values)
		}
	}

	if len(body) > 0 {
		if isTextBody(r.Header.Get("Content-Type"), body) {
			event.Body = string(body)
		} else {
			event.Body = base64.StdEncoding.EncodeToString(body)
			event.IsBase64Encoded = true
		}
	}

	return event
}

// WriteProxyResponse writes resp to w. Nothing is written when an error is
// returned.
func WriteProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) error {
	if resp.StatusCode < 100 || resp.StatusCode > 999 {
		return fmt.Errorf("%w: status code %d", ErrInvalidProxyResponse, resp.StatusCode)
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: decode body: %v", ErrInvalidProxyResponse, err)
		}
		body = decoded
	}

	header := w.Header()
	for name, value := range resp.Headers {
		header.Set(name, value)
	}
	for name, values := range resp.MultiValueHeaders {
		header.Del(name)
		for _, v := range values {
			header.Add(name, v)
		}
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))

	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write response body", "err", err)
	}
	return nil
}

func isTextBody(contentType string, body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	text := strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/json" ||
		strings.HasSuffix(mediaType, "+json") ||
		mediaType == "application/x-www-form-urlencoded"

	return text && utf8.Valid(body)
}

func sourceIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
