// ABOUTME: Token model for the ANSI stream: literal text runs and control sequences
// ABOUTME: Control ops form a closed set; anything else is carried as OpOther with raw bytes

package ansi

import "fmt"

// Kind discriminates the two token variants.
type Kind uint8

const (
	// KindLiteral is a run of bytes to be written at the cursor.
	KindLiteral Kind = iota
	// KindControl is one fully matched control sequence.
	KindControl
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindControl:
		return "control"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Op is the closed set of control operations the screen understands.
type Op uint8

const (
	// OpOther is any complete control sequence outside the recognised set.
	OpOther Op = iota
	OpSetCursorPosition
	OpCursorUp
	OpCursorDown
	OpCursorForward
	OpCursorBackward
	OpEraseToEndOfLine
	OpEraseToEndOfDisplay
)

var opNames = [...]string{
	OpOther:               "Other",
	OpSetCursorPosition:   "SetCursorPosition",
	OpCursorUp:            "CursorUp",
	OpCursorDown:          "CursorDown",
	OpCursorForward:       "CursorForward",
	OpCursorBackward:      "CursorBackward",
	OpEraseToEndOfLine:    "EraseToEndOfLine",
	OpEraseToEndOfDisplay: "EraseToEndOfDisplay",
}

// String returns the operation name.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Token is a literal run or a control sequence.
//
// Raw always holds the exact bytes the token was cut from. For literals
// these are the bytes to write; for controls they are kept for diagnostics.
// Row and Col are 0-based and only set for OpSetCursorPosition; N is the
// repeat count of the cursor movement ops.
type Token struct {
	Kind Kind
	Op   Op
	Raw  []byte
	Row  int
	Col  int
	N    int
}

// Literal builds a literal token over text.
func Literal(text []byte) Token {
	return Token{Kind: KindLiteral, Raw: text}
}

// Control builds a control token for op with no parameters.
func Control(op Op, raw []byte) Token {
	return Token{Kind: KindControl, Op: op, Raw: raw}
}

// CursorPosition builds a SetCursorPosition token with 0-based coordinates.
func CursorPosition(row, col int, raw []byte) Token {
	return Token{Kind: KindControl, Op: OpSetCursorPosition, Raw: raw, Row: row, Col: col}
}

// Move builds one of the relative cursor movement tokens.
func Move(op Op, n int, raw []byte) Token {
	return Token{Kind: KindControl, Op: op, Raw: raw, N: n}
}

// IsLiteral reports whether t is a literal run.
func (t Token) IsLiteral() bool { return t.Kind == KindLiteral }

// IsControl reports whether t is a control sequence.
func (t Token) IsControl() bool { return t.Kind == KindControl }

// Clone returns a copy of t that does not share Raw with the input it was
// tokenized from.
func (t Token) Clone() Token {
	if t.Raw != nil {
		raw := make([]byte, len(t.Raw))
		copy(raw, t.Raw)
		t.Raw = raw
	}
	return t
}

// Equal reports whether two tokens carry the same variant, parameters and bytes.
func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.Op == o.Op && t.Row == o.Row && t.Col == o.Col &&
		t.N == o.N && string(t.Raw) == string(o.Raw)
}

// String renders the token for logs and test failures.
func (t Token) String() string {
	if t.Kind == KindLiteral {
		return fmt.Sprintf("Literal(%q)", t.Raw)
	}
	switch t.Op {
	case OpSetCursorPosition:
		return fmt.Sprintf("SetCursorPosition(%d, %d)", t.Row, t.Col)
	case OpCursorUp, OpCursorDown, OpCursorForward, OpCursorBackward:
		return fmt.Sprintf("%s(%d)", t.Op, t.N)
	case OpOther:
		return fmt.Sprintf("Other(%q)", t.Raw)
	default:
		return t.Op.String()
	}
}
