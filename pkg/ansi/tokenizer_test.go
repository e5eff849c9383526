// ABOUTME: Tests for the ANSI tokenizer: op mapping, literal runs, incomplete tails
// ABOUTME: Covers CSI parameters, OSC/DCS strings, malformed escapes and Token helpers

package ansi

import (
	"strings"
	"testing"
)

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestTokenize_ControlMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Token
	}{
		{name: "cup row col", input: "\x1b[2;4H", want: CursorPosition(1, 3, []byte("\x1b[2;4H"))},
		{name: "cup home", input: "\x1b[H", want: CursorPosition(0, 0, []byte("\x1b[H"))},
		{name: "hvp", input: "\x1b[5;6f", want: CursorPosition(4, 5, []byte("\x1b[5;6f"))},
		{name: "cup missing row", input: "\x1b[;7H", want: CursorPosition(0, 6, []byte("\x1b[;7H"))},
		{name: "cup zero params", input: "\x1b[0;0H", want: CursorPosition(0, 0, []byte("\x1b[0;0H"))},
		{name: "up default", input: "\x1b[A", want: Move(OpCursorUp, 1, []byte("\x1b[A"))},
		{name: "up n", input: "\x1b[3A", want: Move(OpCursorUp, 3, []byte("\x1b[3A"))},
		{name: "down n", input: "\x1b[2B", want: Move(OpCursorDown, 2, []byte("\x1b[2B"))},
		{name: "forward n", input: "\x1b[10C", want: Move(OpCursorForward, 10, []byte("\x1b[10C"))},
		{name: "backward default", input: "\x1b[D", want: Move(OpCursorBackward, 1, []byte("\x1b[D"))},
		{name: "erase line", input: "\x1b[K", want: Control(OpEraseToEndOfLine, []byte("\x1b[K"))},
		{name: "erase line 0", input: "\x1b[0K", want: Control(OpEraseToEndOfLine, []byte("\x1b[0K"))},
		{name: "erase line 2", input: "\x1b[2K", want: Control(OpEraseToEndOfLine, []byte("\x1b[2K"))},
		{name: "erase line 1 unrecognised", input: "\x1b[1K", want: Control(OpOther, []byte("\x1b[1K"))},
		{name: "erase display", input: "\x1b[J", want: Control(OpEraseToEndOfDisplay, []byte("\x1b[J"))},
		{name: "erase display 0", input: "\x1b[0J", want: Control(OpEraseToEndOfDisplay, []byte("\x1b[0J"))},
		{name: "erase display 2 unrecognised", input: "\x1b[2J", want: Control(OpOther, []byte("\x1b[2J"))},
		{name: "sgr", input: "\x1b[31;1m", want: Control(OpOther, []byte("\x1b[31;1m"))},
		{name: "private mode", input: "\x1b[?25h", want: Control(OpOther, []byte("\x1b[?25h"))},
		{name: "intermediate", input: "\x1b[2 q", want: Control(OpOther, []byte("\x1b[2 q"))},
		{name: "move with two params", input: "\x1b[1;2A", want: Control(OpOther, []byte("\x1b[1;2A"))},
		{name: "osc bel", input: "\x1b]0;title\x07", want: Control(OpOther, []byte("\x1b]0;title\x07"))},
		{name: "osc st", input: "\x1b]2;t\x1b\\", want: Control(OpOther, []byte("\x1b]2;t\x1b\\"))},
		{name: "dcs", input: "\x1bPq#0\x1b\\", want: Control(OpOther, []byte("\x1bPq#0\x1b\\"))},
		{name: "charset", input: "\x1b(B", want: Control(OpOther, []byte("\x1b(B"))},
		{name: "two byte", input: "\x1b7", want: Control(OpOther, []byte("\x1b7"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := All([]byte(tt.input))
			if len(got) != 1 {
				t.Fatalf("All(%q) = %v; want one token", tt.input, got)
			}
			if !got[0].Equal(tt.want) {
				t.Errorf("All(%q)[0] = %v; want %v", tt.input, got[0], tt.want)
			}
		})
	}
}

func TestTokenize_Sequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{name: "empty", input: "", want: nil},
		{name: "plain", input: "hello", want: []Token{Literal([]byte("hello"))}},
		{
			name:  "text around control",
			input: "ab\x1b[2Kcd",
			want: []Token{
				Literal([]byte("ab")),
				Control(OpEraseToEndOfLine, []byte("\x1b[2K")),
				Literal([]byte("cd")),
			},
		},
		{
			name:  "adjacent controls",
			input: "\x1b[H\x1b[J",
			want: []Token{
				CursorPosition(0, 0, []byte("\x1b[H")),
				Control(OpEraseToEndOfDisplay, []byte("\x1b[J")),
			},
		},
		{
			name:  "text before incomplete csi is its own literal",
			input: "ab\x1b[",
			want:  []Token{Literal([]byte("ab")), Literal([]byte("\x1b["))},
		},
		{
			name:  "incomplete csi with params",
			input: "\x1b[Hab\x1b[12;",
			want: []Token{
				CursorPosition(0, 0, []byte("\x1b[H")),
				Literal([]byte("ab")),
				Literal([]byte("\x1b[12;")),
			},
		},
		{name: "lone esc", input: "x\x1b", want: []Token{Literal([]byte("x")), Literal([]byte("\x1b"))}},
		{name: "incomplete osc", input: "\x1b]0;ti", want: []Token{Literal([]byte("\x1b]0;ti"))}},
		{name: "osc waiting for st", input: "\x1b]0;ti\x1b", want: []Token{Literal([]byte("\x1b]0;ti\x1b"))}},
		{
			name:  "malformed csi is text",
			input: "a\x1b[\x01b",
			want:  []Token{Literal([]byte("a")), Literal([]byte("\x1b[\x01b"))},
		},
		{
			name:  "malformed escape then text",
			input: "\x1b\x01xy\x1b[K",
			want: []Token{
				Literal([]byte("\x1b\x01xy")),
				Control(OpEraseToEndOfLine, []byte("\x1b[K")),
			},
		},
		{
			name:  "eight bit c1 bytes stay text",
			input: "a\x9b2Kb\x9d0;t\x07",
			want:  []Token{Literal([]byte("a\x9b2Kb\x9d0;t\x07"))},
		},
		{
			name:  "dcs cancelled by can",
			input: "\x1bPq#0\x18z",
			want:  []Token{Literal([]byte("\x1bPq#0\x18z"))},
		},
		{
			name:  "bel does not end an apc",
			input: "\x1b_x\x07y",
			want:  []Token{Literal([]byte("\x1b_x\x07y"))},
		},
		{
			name:  "esc esc",
			input: "\x1b\x1b[K",
			want: []Token{
				Literal([]byte("\x1b")),
				Control(OpEraseToEndOfLine, []byte("\x1b[K")),
			},
		},
		{
			name:  "malformed osc then two byte escape",
			input: "\x1b]x\x1bcz",
			want: []Token{
				Literal([]byte("\x1b]x")),
				Control(OpOther, []byte("\x1bc")),
				Literal([]byte("z")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := All([]byte(tt.input))
			if !tokensEqual(got, tt.want) {
				t.Errorf("All(%q) = %v; want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize_NeverEmitsPartialControl(t *testing.T) {
	t.Parallel()

	full := "\x1b[12;34H"
	for i := 1; i < len(full); i++ {
		prefix := "xy" + full[:i]
		for _, tok := range All([]byte(prefix)) {
			if tok.IsControl() {
				t.Errorf("All(%q) emitted control %v from an incomplete prefix", prefix, tok)
			}
		}
	}
}

func TestTokenize_ConcatenationCoversInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"hello\x1b[31mworld\x1b[0m\r\n",
		"\x1b]0;t\x07\x1b[2;3H\x1b[K",
		"a\x1b[\x01\x1b[1Kb\x1b",
	}
	for _, in := range inputs {
		var got []byte
		for _, tok := range All([]byte(in)) {
			got = append(got, tok.Raw...)
		}
		if string(got) != in {
			t.Errorf("tokens of %q concatenate to %q", in, got)
		}
	}
}

func TestTokenize_ParamClamp(t *testing.T) {
	t.Parallel()

	got := All([]byte("\x1b[999999999C"))
	if len(got) != 1 || got[0].Op != OpCursorForward {
		t.Fatalf("got %v; want one CursorForward", got)
	}
	if got[0].N != maxParam {
		t.Errorf("N = %d; want %d", got[0].N, maxParam)
	}
}

func TestTokenize_UnrecognisedParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "overlong number", input: "\x1b[99999999999999999999C"},
		{name: "three params", input: "\x1b[1;2;3H"},
		{name: "sub params", input: "\x1b[1:2H"},
		{name: "more params than the decoder holds", input: "\x1b[" + strings.Repeat("1;", 40) + "1H"},
		{name: "separators only", input: "\x1b[" + strings.Repeat(";", 64) + "m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := All([]byte(tt.input))
			want := Control(OpOther, []byte(tt.input))
			if len(got) != 1 || !got[0].Equal(want) {
				t.Errorf("All(%q) = %v; want [%v]", tt.input, got, want)
			}
		})
	}
}

func TestTokenize_ParserReuse(t *testing.T) {
	t.Parallel()

	got := All([]byte("\x1b[5;6H\x1b[C\x1b[K"))
	want := []Token{
		CursorPosition(4, 5, []byte("\x1b[5;6H")),
		Move(OpCursorForward, 1, []byte("\x1b[C")),
		Control(OpEraseToEndOfLine, []byte("\x1b[K")),
	}
	if !tokensEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestTokenizer_Remaining(t *testing.T) {
	t.Parallel()

	tz := Tokenize([]byte("ab\x1b[Kcd"))
	if _, ok := tz.Next(); !ok {
		t.Fatal("expected first token")
	}
	if got := string(tz.Remaining()); got != "\x1b[Kcd" {
		t.Errorf("Remaining() = %q; want %q", got, "\x1b[Kcd")
	}
}

func TestToken_Clone(t *testing.T) {
	t.Parallel()

	src := []byte("abc")
	tok := Literal(src[:2])
	c := tok.Clone()
	src[0] = 'z'
	if string(c.Raw) != "ab" {
		t.Errorf("clone shares memory with source: %q", c.Raw)
	}
	if string(tok.Raw) != "zb" {
		t.Errorf("original should alias source, got %q", tok.Raw)
	}
}

func TestToken_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tok  Token
		want string
	}{
		{Literal([]byte("hi")), `Literal("hi")`},
		{CursorPosition(1, 3, nil), "SetCursorPosition(1, 3)"},
		{Move(OpCursorDown, 2, nil), "CursorDown(2)"},
		{Control(OpEraseToEndOfLine, nil), "EraseToEndOfLine"},
		{Control(OpOther, []byte("\x1b[m")), `Other("\x1b[m")`},
	}
	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}

func TestKindAndOpString(t *testing.T) {
	t.Parallel()

	if KindLiteral.String() != "literal" || KindControl.String() != "control" {
		t.Errorf("unexpected kind names %q %q", KindLiteral, KindControl)
	}
	if got := Op(200).String(); got != "op(200)" {
		t.Errorf("Op(200).String() = %q", got)
	}
}
