// ABOUTME: Converts raw screen bytes into display rows for the render sinks
// ABOUTME: Decodes ascii or cp437, blanks control bytes, pads each row to the screen width

package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"
)

// Decoder turns one row of screen bytes into display text.
type Decoder func(row []byte) string

// NewDecoder returns the decoder for an encoding name ("ascii" or "cp437").
func NewDecoder(encoding string) (Decoder, error) {
	switch encoding {
	case "", "ascii":
		return decodeASCII, nil
	case "cp437":
		return decodeCP437, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func decodeASCII(row []byte) string {
	return blankControls(strings.ToValidUTF8(string(row), "?"))
}

func decodeCP437(row []byte) string {
	out, err := charmap.CodePage437.NewDecoder().Bytes(row)
	if err != nil {
		return decodeASCII(row)
	}
	return blankControls(string(out))
}

// blankControls replaces C0 controls and DEL with spaces so literal CR/LF
// bytes stored in the buffer do not break the row layout.
func blankControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

// Lines splits buf into rows of width bytes and decodes each one, clipped
// and padded to width display cells.
func Lines(buf []byte, width int, dec Decoder) []string {
	if width <= 0 {
		return nil
	}
	if dec == nil {
		dec = decodeASCII
	}
	lines := make([]string, 0, len(buf)/width)
	for start := 0; start+width <= len(buf); start += width {
		line := dec(buf[start : start+width])
		line = runewidth.Truncate(line, width, "")
		lines = append(lines, runewidth.FillRight(line, width))
	}
	return lines
}
