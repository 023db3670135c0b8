package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/formdata"
)

const multipartFormData = "multipart/form-data"

// decodeBody undoes the proxy's transport encoding.
func decodeBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	data, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, &docrepo.ParseError{Err: fmt.Errorf("decode base64 body: %w", err)}
	}
	return data, nil
}

// decodeUpload extracts the uploaded file from req.
//
// A body whose Content-Type names multipart/form-data is run through the
// multipart decoder. Anything else is taken as the file itself, named by the
// fileName query parameter.
func (h *Handler) decodeUpload(ctx context.Context, req events.APIGatewayProxyRequest) (docrepo.DecodedFile, error) {
	if req.Body == "" {
		return docrepo.DecodedFile{}, errMissingBody
	}

	body, err := decodeBody(req)
	if err != nil {
		return docrepo.DecodedFile{}, err
	}

	contentType := header(req, "Content-Type")
	if strings.Contains(strings.ToLower(contentType), multipartFormData) {
		file, err := formdata.Decode(ctx, bytes.NewReader(body), contentType,
			formdata.WithMaxFileSize(h.config.MaxFileSize),
			formdata.WithChunkSize(h.config.ChunkSize),
		)
		if err != nil {
			return docrepo.DecodedFile{}, &docrepo.ParseError{Err: err}
		}
		return docrepo.DecodedFile{
			Data:        file.Data,
			FileName:    file.FileName,
			ContentType: file.ContentType,
		}, nil
	}

	fileName := queryParam(req, "fileName")
	if fileName == "" {
		return docrepo.DecodedFile{}, errMissingFileName
	}

	fileType := queryParam(req, "contentType")
	if fileType == "" {
		fileType = docrepo.DefaultContentType
	}

	return docrepo.DecodedFile{
		Data:        body,
		FileName:    fileName,
		ContentType: fileType,
	}, nil
}
