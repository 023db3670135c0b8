// Package formdata decodes a single file from a multipart/form-data body.
//
// The decoder is an explicit state machine that pulls the body from an
// io.Reader one chunk at a time:
//
//	awaiting boundary -> headers -> body -> (headers -> body)* -> done
//
// The first part whose Content-Disposition carries a filename is collected
// into memory. Other parts, including later file parts, are read and
// discarded. Decoding finishes only after the closing "--boundary--"
// delimiter has been consumed, so a truncated body is always an error.
//
// # Usage
//
//	file, err := formdata.Decode(ctx, body, contentType,
//	    formdata.WithMaxFileSize(10<<20),
//	)
//	if errors.Is(err, formdata.ErrNoFile) {
//	    // multipart body without a file part
//	}
package formdata
