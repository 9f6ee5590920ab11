// Package nativemsg implements the browser native messaging framing: each
// message is a JSON document preceded by its length as a 32-bit unsigned
// integer in little-endian byte order
package nativemsg

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ayoisaiah/diary/internal/apperr"
)

const (
	// MaxIncoming is the largest message a browser may send to a host.
	MaxIncoming = 64 << 20
	// MaxOutgoing is the largest message a host may send to the browser.
	MaxOutgoing = 1 << 20
)

var (
	errTooLarge = &apperr.Error{
		Message: "native message of %d bytes exceeds the %d byte limit",
	}

	errTruncated = &apperr.Error{
		Message: "native message truncated",
	}
)

// Reader decodes length-prefixed messages.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader that reads frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read decodes the next message into v. It returns io.EOF when the stream
// ends cleanly between messages.
func (r *Reader) Read(v any) error {
	b, err := r.ReadFrame()
	if err != nil {
		return err
	}

	return json.Unmarshal(b, v)
}

// ReadFrame returns the raw payload of the next message.
func (r *Reader) ReadFrame() ([]byte, error) {
	var header [4]byte

	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errTruncated.Wrap(err)
		}

		return nil, err
	}

	n := binary.LittleEndian.Uint32(header[:])
	if n > MaxIncoming {
		return nil, errTooLarge.Fmt(n, MaxIncoming)
	}

	b := make([]byte, n)

	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, errTruncated.Wrap(err)
	}

	return b, nil
}

// Writer encodes length-prefixed messages. It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter returns a Writer that writes frames to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes v as JSON and writes it as a single frame.
func (w *Writer) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding native message: %w", err)
	}

	if len(b) > MaxOutgoing {
		return errTooLarge.Fmt(len(b), MaxOutgoing)
	}

	frame := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(frame, uint32(len(b)))
	copy(frame[4:], b)

	w.mu.Lock()
	defer w.mu.Unlock()

	_, err = w.w.Write(frame)

	return err
}
