// Package docrepo provides a small document repository on top of a blob store.
//
// A document is stored once under a generated key and can later be listed or
// downloaded again. The package holds the pieces that do not depend on how a
// request arrived: the domain types, the extension policy, the MIME table and
// DocumentService, which talks to the blob store through the Storage interface.
//
// # Key Components
//
//   - DocumentService: upload, list and download on top of a Storage
//   - Storage: interface for blob backends (S3, MinIO, local filesystem)
//   - Policy: file name and extension allow-list checks
//   - ContentTypeForName: static extension to MIME type table
//
// # Storage Keys
//
// Uploaded documents are stored under
//
//	documents/<epoch-millis>-<fileName>
//
// Two uploads of the same file name within the same millisecond produce the
// same key and the second one overwrites the first.
//
// # Example Usage
//
//	service := docrepo.NewDocumentService(storage, docrepo.ServiceConfig{})
//
//	// Store a document
//	result, err := service.Upload(ctx, docrepo.DecodedFile{
//	    Data:        data,
//	    FileName:    "report.pdf",
//	    ContentType: "application/pdf",
//	})
//
//	// Fetch it back
//	doc, err := service.Download(ctx, result.Key)
//
// See the gateway package for the Lambda proxy integration and the s3store,
// miniostore and filesystem packages for backend implementations.
package docrepo
