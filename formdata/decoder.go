package formdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"strings"
)

const (
	// DefaultMaxFileSize caps the collected file part at 10 MiB.
	DefaultMaxFileSize int64 = 10 << 20
	// DefaultChunkSize is the read size used to pull the body.
	DefaultChunkSize = 32 << 10

	maxHeaderBytes   = 16 << 10
	maxBoundaryBytes = 70
	defaultPartType  = "application/octet-stream"
)

// File is a file part read completely into memory.
type File struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

type state int

const (
	stateAwaitBoundary state = iota
	stateHeaders
	stateBody
	stateDone
)

func (s state) String() string {
	switch s {
	case stateAwaitBoundary:
		return "awaiting-boundary"
	case stateHeaders:
		return "in-headers"
	case stateBody:
		return "in-body"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// delimiter classification for the bytes following a boundary match
type tail int

const (
	tailMore  tail = iota // not enough input to decide
	tailNone              // not a delimiter, the match is content
	tailPart              // delimiter, another part follows
	tailFinal             // closing delimiter
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxFileSize sets the largest accepted file part in bytes.
// Values <= 0 select DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxFileSize = n
		}
	}
}

// WithChunkSize sets how many bytes are pulled from the reader at a time.
func WithChunkSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// Decoder extracts the first file part from a multipart/form-data stream.
// A Decoder is single use.
type Decoder struct {
	r           io.Reader
	chunk       []byte
	chunkSize   int
	maxFileSize int64

	delim     []byte // "--" + boundary
	bodyDelim []byte // "\n--" + boundary

	buf       []byte
	eof       bool
	discarded bool
	bodyStart bool // no byte of the current part body consumed yet
	state     state

	header      textproto.MIMEHeader
	lastKey     string
	headerBytes int

	part *File // file part being collected, nil while skipping a part
	file *File // first completed file part
}

// Boundary extracts the boundary parameter from a multipart/form-data
// content type. It returns ErrNotMultipart for any other media type.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotMultipart, err)
	}
	if mediaType != "multipart/form-data" {
		return "", fmt.Errorf("%w: got %s", ErrNotMultipart, mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" || len(boundary) > maxBoundaryBytes {
		return "", fmt.Errorf("%w: invalid boundary", ErrNotMultipart)
	}
	return boundary, nil
}

// NewDecoder creates a Decoder reading body parts delimited by boundary.
func NewDecoder(r io.Reader, boundary string, opts ...Option) *Decoder {
	d := &Decoder{
		r:           r,
		chunkSize:   DefaultChunkSize,
		maxFileSize: DefaultMaxFileSize,
		delim:       []byte("--" + boundary),
		bodyDelim:   []byte("\n--" + boundary),
		header:      make(textproto.MIMEHeader),
		state:       stateAwaitBoundary,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.chunk = make([]byte, d.chunkSize)
	return d
}

// Decode reads contentType's boundary and decodes the file part from r.
func Decode(ctx context.Context, r io.Reader, contentType string, opts ...Option) (File, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return File{}, err
	}
	return NewDecoder(r, boundary, opts...).Decode(ctx)
}

// Decode runs the state machine until the closing delimiter is consumed and
// returns the first file part.
//
// Error types returned:
//   - ErrNoFile: no part carried a filename
//   - ErrFileTooLarge: the file part exceeded the size limit
//   - ErrMalformed: invalid part headers
//   - ErrUnexpectedEnd: input ended before the closing delimiter
//   - context errors and wrapped reader errors
func (d *Decoder) Decode(ctx context.Context) (File, error) {
	for d.state != stateDone {
		progressed, err := d.step()
		if err != nil {
			return File{}, err
		}
		if progressed {
			continue
		}

		if d.eof {
			if d.state == stateAwaitBoundary {
				return File{}, ErrNoFile
			}
			return File{}, fmt.Errorf("%w: stopped %s", ErrUnexpectedEnd, d.state)
		}

		if err := ctx.Err(); err != nil {
			return File{}, fmt.Errorf("decode multipart: %w", err)
		}

		if err := d.fill(); err != nil {
			return File{}, err
		}
	}

	if d.file == nil {
		return File{}, ErrNoFile
	}

	return *d.file, nil
}

func (d *Decoder) fill() error {
	n, err := d.r.Read(d.chunk)
	d.buf = append(d.buf, d.chunk[:n]...)
	if errors.Is(err, io.EOF) {
		d.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read multipart body: %w", err)
	}
	return nil
}

func (d *Decoder) consume(n int) {
	d.buf = d.buf[n:]
}

// step advances the state machine over buffered input. It reports false
// when more input is required.
func (d *Decoder) step() (bool, error) {
	switch d.state {
	case stateAwaitBoundary:
		return d.stepPreamble()
	case stateHeaders:
		return d.stepHeaders()
	case stateBody:
		return d.stepBody()
	default:
		return false, nil
	}
}

func (d *Decoder) stepPreamble() (bool, error) {
	off := 0
	for {
		i := bytes.Index(d.buf[off:], d.delim)
		if i < 0 {
			break
		}
		i += off

		// A delimiter starts the body or a line.
		if (i == 0 && d.discarded) || (i > 0 && d.buf[i-1] != '\n') {
			off = i + 1
			continue
		}

		t, n := d.delimiterTail(d.buf[i+len(d.delim):])
		switch t {
		case tailMore:
			return false, nil
		case tailNone:
			off = i + 1
			continue
		case tailFinal:
			d.consume(i + len(d.delim) + n)
			d.state = stateDone
			return true, nil
		default:
			d.consume(i + len(d.delim) + n)
			d.state = stateHeaders
			return true, nil
		}
	}

	// Keep enough to complete a delimiter split across reads.
	if keep := len(d.delim); len(d.buf) > keep {
		d.consume(len(d.buf) - keep)
		d.discarded = true
	}
	return false, nil
}

func (d *Decoder) stepHeaders() (bool, error) {
	i := bytes.IndexByte(d.buf, '\n')
	if i < 0 {
		if d.headerBytes+len(d.buf) > maxHeaderBytes {
			return false, fmt.Errorf("%w: part headers too large", ErrMalformed)
		}
		return false, nil
	}

	line := string(bytes.TrimSuffix(d.buf[:i], []byte("\r")))
	d.consume(i + 1)
	d.headerBytes += i + 1
	if d.headerBytes > maxHeaderBytes {
		return false, fmt.Errorf("%w: part headers too large", ErrMalformed)
	}

	if line == "" {
		return true, d.beginPart()
	}

	// folded continuation of the previous header
	if line[0] == ' ' || line[0] == '\t' {
		if d.lastKey == "" {
			return false, fmt.Errorf("%w: continuation without header", ErrMalformed)
		}
		values := d.header[d.lastKey]
		values[len(values)-1] += " " + strings.TrimSpace(line)
		return true, nil
	}

	k, v, ok := strings.Cut(line, ":")
	if !ok {
		return false, fmt.Errorf("%w: invalid header line %q", ErrMalformed, line)
	}
	key := textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(k))
	d.header.Add(key, strings.TrimSpace(v))
	d.lastKey = key

	return true, nil
}

// beginPart closes the header block and decides whether the part is kept.
func (d *Decoder) beginPart() error {
	header := d.header
	d.header = make(textproto.MIMEHeader)
	d.lastKey = ""
	d.headerBytes = 0
	d.part = nil
	d.state = stateBody
	d.bodyStart = true

	disposition := header.Get("Content-Disposition")
	if disposition == "" || d.file != nil {
		return nil
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fmt.Errorf("%w: content disposition: %v", ErrMalformed, err)
	}

	fileName := params["filename"]
	if fileName == "" {
		return nil
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultPartType
	}

	d.part = &File{
		FieldName:   params["name"],
		FileName:    fileName,
		ContentType: contentType,
		Data:        []byte{},
	}
	return nil
}

func (d *Decoder) stepBody() (bool, error) {
	// An empty body may be followed by the delimiter without a line break.
	if d.bodyStart {
		if len(d.buf) < len(d.delim) && bytes.HasPrefix(d.delim, d.buf) {
			return false, nil
		}
		if bytes.HasPrefix(d.buf, d.delim) {
			t, n := d.delimiterTail(d.buf[len(d.delim):])
			switch t {
			case tailMore:
				return false, nil
			case tailPart, tailFinal:
				d.consume(len(d.delim) + n)
				d.endPart()
				d.state = stateHeaders
				if t == tailFinal {
					d.state = stateDone
				}
				return true, nil
			}
		}
		d.bodyStart = false
	}

	off := 0
	for {
		i := bytes.Index(d.buf[off:], d.bodyDelim)
		if i < 0 {
			break
		}
		i += off

		end := i
		if end > 0 && d.buf[end-1] == '\r' {
			end--
		}

		t, n := d.delimiterTail(d.buf[i+len(d.bodyDelim):])
		switch t {
		case tailMore:
			if err := d.emit(d.buf[:end]); err != nil {
				return false, err
			}
			d.consume(end)
			return end > 0, nil
		case tailNone:
			off = i + 1
			continue
		}

		if err := d.emit(d.buf[:end]); err != nil {
			return false, err
		}
		d.consume(i + len(d.bodyDelim) + n)
		d.endPart()

		if t == tailFinal {
			d.state = stateDone
		} else {
			d.state = stateHeaders
		}
		return true, nil
	}

	// Everything but a possible partial "\r\n--boundary" is content.
	safe := len(d.buf) - len(d.bodyDelim) - 1
	if safe <= 0 {
		return false, nil
	}
	if err := d.emit(d.buf[:safe]); err != nil {
		return false, err
	}
	d.consume(safe)
	return true, nil
}

func (d *Decoder) emit(p []byte) error {
	if d.part == nil || len(p) == 0 {
		return nil
	}
	if int64(len(d.part.Data)+len(p)) > d.maxFileSize {
		return fmt.Errorf("%w: %s is larger than %d bytes", ErrFileTooLarge, d.part.FileName, d.maxFileSize)
	}
	d.part.Data = append(d.part.Data, p...)
	return nil
}

func (d *Decoder) endPart() {
	if d.part != nil && d.file == nil {
		d.file = d.part
	}
	d.part = nil
}

// delimiterTail classifies the bytes after a boundary match. A delimiter is
// followed by "--" (closing) or optional linear whitespace and a newline.
func (d *Decoder) delimiterTail(rest []byte) (tail, int) {
	if len(rest) == 0 {
		return d.moreOrNone(), 0
	}

	if rest[0] == '-' {
		if len(rest) < 2 {
			return d.moreOrNone(), 0
		}
		if rest[1] == '-' {
			return tailFinal, 2
		}
		return tailNone, 0
	}

	for i, c := range rest {
		switch c {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return tailPart, i + 1
		default:
			return tailNone, 0
		}
	}

	return d.moreOrNone(), 0
}

func (d *Decoder) moreOrNone() tail {
	if d.eof {
		return tailNone
	}
	return tailMore
}
