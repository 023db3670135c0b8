// Package gateway adapts DocumentService to the API Gateway REST proxy
// integration.
//
// A single Lambda function serves the whole document API. The operation is
// chosen by the "action" query parameter rather than by method or path:
//
//	OPTIONS *                              CORS preflight
//	POST    ?action=uploadFile             multipart or base64 body
//	GET     ?action=listDocuments          JSON listing
//	GET     ?action=downloadFile&key=...   base64 body, IsBase64Encoded=true
//
// # Uploads
//
// Two request shapes are accepted. A multipart/form-data body is decoded with
// the formdata package and the first file part is stored. Any other body is
// the file itself; its name and type come from the fileName and contentType
// query parameters.
//
// # Responses
//
// Handle always returns a response and a nil error. Failures become JSON
// bodies of the form
//
//	{"error": "...", "details": "...", "message": "..."}
//
// and every response, including the one produced after a panic, carries the
// CORS headers.
//
// # Usage
//
//	service := docrepo.NewDocumentService(storage, docrepo.ServiceConfig{})
//	handler := gateway.NewHandler(service, gateway.HandlerConfig{}, nil)
//	lambda.Start(handler.Handle)
package gateway
