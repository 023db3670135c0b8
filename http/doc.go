// Package http runs the docrepo gateway as a plain HTTP server.
//
// In production the gateway is invoked by AWS Lambda behind API Gateway.
// This package emulates that proxy integration so the same handler can be
// served locally or in a container: each net/http request is converted into
// an events.APIGatewayProxyRequest, passed to the Invoker, and the returned
// events.APIGatewayProxyResponse is written back to the client.
//
// # Body encoding
//
// Request bodies are forwarded as text when the content type is JSON or
// text/* and the bytes are valid UTF-8. Everything else, including
// multipart/form-data, is base64 encoded with IsBase64Encoded set, which is
// what API Gateway does when binary media types are enabled. Response bodies
// marked IsBase64Encoded are decoded before they are written.
//
// # Routes
//
//	GET /healthz   liveness probe
//	GET /metrics   Prometheus exposition, when a Gatherer is configured
//	*   /*         every other request is proxied to the gateway
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    MaxBodySize: 12 << 20,
//	    Gatherer:    prometheus.DefaultGatherer,
//	}, gatewayHandler)
//	server := &nethttp.Server{Addr: ":5708", Handler: handler.Router()}
package http
