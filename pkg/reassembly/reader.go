// ABOUTME: Boundary reassembler: reads fixed-size chunks and releases only confirmed tokens
// ABOUTME: A trailing literal is carried into the next read so split escapes re-tokenize whole

package reassembly

import (
	"errors"
	"fmt"
	"io"

	"github.com/mauromedda/ansicursor/pkg/ansi"
)

// DefaultSize is the scratch buffer capacity used when none is given.
const DefaultSize = 4096

// MinSize is the smallest usable scratch buffer: one held byte plus one new byte.
const MinSize = 2

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// Sentinel errors for the reassembly package.
var (
	// ErrBufferOverflow is returned when a held literal leaves no room for
	// new bytes in the scratch buffer.
	ErrBufferOverflow = errors.New("scratch buffer overflow")

	// ErrInvalidSize is returned for a scratch size below MinSize.
	ErrInvalidSize = errors.New("invalid scratch buffer size")
)

// InputError wraps a failure reported by the underlying reader.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return "reading input: " + e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// Reader turns an io.Reader into an ordered sequence of resolved tokens.
//
// It keeps a two-slot pipeline: the lookahead token and the tokenizer over
// the rest of the current chunk. The lookahead is released only once the
// tokenizer proves a later token boundary exists, or once it is a control
// (controls are never emitted incomplete), or at end of stream.
type Reader struct {
	src     io.Reader
	scratch []byte
	carry   []byte

	tz        *ansi.Tokenizer
	lookahead ansi.Token
	has       bool

	// refill is set after a trailing control was released; the next call
	// reads a fresh chunk from offset 0.
	refill bool
	eof    bool
	rerr   error
	err    error
}

// NewReader allocates a scratch buffer of size bytes and performs the first
// read. A zero-byte first read yields an exhausted Reader.
func NewReader(src io.Reader, size int) (*Reader, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	r := &Reader{
		src:     src,
		scratch: make([]byte, size),
		carry:   make([]byte, size),
	}
	if err := r.load(0); err != nil {
		r.err = err
		return nil, err
	}
	return r, nil
}

// Size returns the scratch buffer capacity.
func (r *Reader) Size() int { return len(r.scratch) }

// Pending returns the number of bytes waiting in the lookahead slot.
func (r *Reader) Pending() int {
	if !r.has {
		return 0
	}
	return len(r.lookahead.Raw)
}

// Next returns the next confirmed token. The token does not alias internal
// buffers. At end of stream Next returns io.EOF; after a failure it keeps
// returning the same error.
func (r *Reader) Next() (ansi.Token, error) {
	for {
		if r.err != nil {
			return ansi.Token{}, r.err
		}
		if r.refill {
			r.refill = false
			if err := r.load(0); err != nil {
				return ansi.Token{}, r.fail(err)
			}
		}
		if !r.has {
			return ansi.Token{}, io.EOF
		}

		if next, ok := r.tz.Next(); ok {
			cur := r.lookahead.Clone()
			r.lookahead = next
			return cur, nil
		}

		cur := r.lookahead
		if cur.IsControl() {
			r.has = false
			r.refill = true
			return cur.Clone(), nil
		}

		// An unconfirmed literal: move it to the front and read behind it.
		held := len(cur.Raw)
		if held >= len(r.scratch) {
			return ansi.Token{}, r.fail(fmt.Errorf("%w: %d held bytes in %d byte buffer",
				ErrBufferOverflow, held, len(r.scratch)))
		}
		copy(r.carry, cur.Raw)
		copy(r.scratch, r.carry[:held])

		if err := r.load(held); err != nil {
			return ansi.Token{}, r.fail(err)
		}
		if !r.has {
			// End of stream: the held literal is final.
			return ansi.Literal(r.carry[:held]).Clone(), nil
		}
	}
}

// load reads into scratch after offset bytes that are already in place and
// re-tokenizes scratch[:offset+n]. When nothing more can be read the
// lookahead slot is left empty.
func (r *Reader) load(offset int) error {
	n, err := r.read(r.scratch[offset:])
	if err != nil {
		return err
	}
	if n == 0 {
		r.has = false
		r.tz = ansi.Tokenize(nil)
		return nil
	}
	r.tz = ansi.Tokenize(r.scratch[:offset+n])
	r.lookahead, r.has = r.tz.Next()
	return nil
}

// read performs one read following the io.Reader contract. It returns
// (0, nil) for end of stream.
func (r *Reader) read(p []byte) (int, error) {
	if r.eof {
		return 0, nil
	}
	if r.rerr != nil {
		return 0, r.rerr
	}
	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.src.Read(p)
		if errors.Is(err, io.EOF) {
			r.eof = true
			return n, nil
		}
		if err != nil {
			// Bytes delivered alongside an error are still consumed; the
			// error surfaces on the following read.
			if n > 0 {
				r.rerr = &InputError{Err: err}
				return n, nil
			}
			return 0, &InputError{Err: err}
		}
		if n > 0 {
			return n, nil
		}
	}
	return 0, &InputError{Err: io.ErrNoProgress}
}

func (r *Reader) fail(err error) error {
	r.err = err
	r.has = false
	return err
}
