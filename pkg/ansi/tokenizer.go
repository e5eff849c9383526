// ABOUTME: Lazy tokenizer that splits bytes into literal runs and complete control sequences
// ABOUTME: Escape framing and CSI parameters come from x/ansi; unfinished tails become the final literal

package ansi

import (
	"bytes"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	esc = 0x1b
	bel = 0x07
	st  = 0x9c

	// maxParam caps numeric CSI parameters.
	maxParam = 1 << 16

	// maxParamDigits keeps the decoder's int accumulator far from overflow;
	// longer parameters make a sequence unrecognised.
	maxParamDigits = 9

	// parserParams is the decoder's parameter capacity. Sequences with more
	// than two parameters are never decoded, so this only needs headroom.
	parserParams = 8
)

// scanResult classifies the escape sequence found at the start of a slice.
type scanResult uint8

const (
	scanComplete scanResult = iota
	scanIncomplete
	scanMalformed
)

// Tokenizer yields tokens from a fixed byte slice. It is finite and cannot
// be restarted; tokens alias the input slice.
type Tokenizer struct {
	buf    []byte
	pos    int
	parser *xansi.Parser
}

// Tokenize returns a Tokenizer over b.
//
// A control token is only produced when its full sequence is present in b.
// Literal runs stop at every escape byte, so text before an unfinished
// trailing escape is its own token and only the escape itself is held in
// the final literal.
func Tokenize(b []byte) *Tokenizer {
	return &Tokenizer{buf: b}
}

// Next returns the next token, or false when the input is exhausted.
func (t *Tokenizer) Next() (Token, bool) {
	if t.pos >= len(t.buf) {
		return Token{}, false
	}
	rest := t.buf[t.pos:]

	start := 0
	if rest[0] == esc {
		n, res := scanEscape(rest)
		switch res {
		case scanComplete:
			t.pos += n
			return t.control(rest[:n]), true
		case scanIncomplete:
			t.pos = len(t.buf)
			return Literal(rest), true
		}
		// Malformed: its bytes are text and open the literal run.
		start = n
	}

	end := start + literalEnd(rest[start:])
	t.pos += end
	return Literal(rest[:end]), true
}

// Remaining returns the bytes not yet handed out as tokens.
func (t *Tokenizer) Remaining() []byte {
	return t.buf[t.pos:]
}

// All drains the tokenizer into a slice.
func All(b []byte) []Token {
	var toks []Token
	tz := Tokenize(b)
	for {
		tok, ok := tz.Next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}

// literalEnd returns the length of the text run at the start of b, which
// ends at the next escape byte.
func literalEnd(b []byte) int {
	if i := bytes.IndexByte(b, esc); i >= 0 {
		return i
	}
	return len(b)
}

// scanEscape frames the escape sequence at b[0] with the x/ansi decoder and
// returns its length. For malformed sequences the length is the number of
// bytes to treat as text.
func scanEscape(b []byte) (int, scanResult) {
	_, _, n, state := xansi.DecodeSequence(b, xansi.NormalState, nil)
	if state != xansi.NormalState {
		return len(b), scanIncomplete
	}
	n = max(n, 1)
	seq := b[:n]

	if isStringSeq(b) {
		if stringTerminated(seq) {
			return n, scanComplete
		}
		// The decoder cancels a string at an ESC it cannot see past; a
		// trailing ESC may still be the start of ST.
		if n == len(b)-1 && b[n] == esc {
			return len(b), scanIncomplete
		}
		return n, scanMalformed
	}

	last := seq[n-1]
	switch {
	case n >= 3 && b[1] == '[' && last >= 0x40 && last <= 0x7e:
		return n, scanComplete
	case n >= 2 && b[1] != '[' && last >= 0x30 && last <= 0x7e:
		return n, scanComplete
	default:
		return n, scanMalformed
	}
}

// isStringSeq reports whether b opens an OSC, DCS, SOS, PM or APC string.
func isStringSeq(b []byte) bool {
	return xansi.HasOscPrefix(b) || xansi.HasDcsPrefix(b) || xansi.HasSosPrefix(b) ||
		xansi.HasPmPrefix(b) || xansi.HasApcPrefix(b)
}

func stringTerminated(seq []byte) bool {
	switch {
	case bytes.HasSuffix(seq, []byte{esc, '\\'}), seq[len(seq)-1] == st:
		return true
	case seq[len(seq)-1] == bel:
		return xansi.HasOscPrefix(seq)
	}
	return false
}

// control maps a complete sequence onto the recognised op set.
func (t *Tokenizer) control(raw []byte) Token {
	if !xansi.HasCsiPrefix(raw) || !plainParams(raw[2:len(raw)-1]) {
		return Control(OpOther, raw)
	}

	if t.parser == nil {
		t.parser = new(xansi.Parser)
		t.parser.SetParamsSize(parserParams)
		t.parser.SetDataSize(1)
	}
	xansi.DecodeSequence(raw, xansi.NormalState, t.parser)

	cmd := xansi.Cmd(t.parser.Command())
	if cmd.Prefix() != 0 || cmd.Intermediate() != 0 {
		return Control(OpOther, raw)
	}
	nparams := len(t.parser.Params())

	switch cmd.Final() {
	case 'H', 'f':
		return CursorPosition(t.param(0, 1)-1, t.param(1, 1)-1, raw)
	case 'A':
		return t.move(OpCursorUp, nparams, raw)
	case 'B':
		return t.move(OpCursorDown, nparams, raw)
	case 'C':
		return t.move(OpCursorForward, nparams, raw)
	case 'D':
		return t.move(OpCursorBackward, nparams, raw)
	case 'K':
		if nparams <= 1 {
			if n := t.param(0, 0); n == 0 || n == 2 {
				return Control(OpEraseToEndOfLine, raw)
			}
		}
	case 'J':
		if nparams <= 1 && t.param(0, 0) == 0 {
			return Control(OpEraseToEndOfDisplay, raw)
		}
	}
	return Control(OpOther, raw)
}

func (t *Tokenizer) move(op Op, nparams int, raw []byte) Token {
	if nparams > 1 {
		return Control(OpOther, raw)
	}
	return Move(op, t.param(0, 1), raw)
}

// param returns parameter i of the last decoded sequence, or def when it
// is missing or zero.
func (t *Tokenizer) param(i, def int) int {
	v, _ := t.parser.Param(i, 0)
	if v <= 0 {
		return def
	}
	return min(v, maxParam)
}

// plainParams reports whether a CSI parameter section has at most two
// numeric parameters, no sub-parameters and no overlong numbers. Anything
// else maps to OpOther without decoding.
func plainParams(body []byte) bool {
	seps, run := 0, 0
	for _, c := range body {
		switch {
		case c >= '0' && c <= '9':
			run++
			if run > maxParamDigits {
				return false
			}
		case c == ';':
			seps++
			run = 0
			if seps > 1 {
				return false
			}
		case c == ':':
			return false
		default:
			run = 0
		}
	}
	return true
}
