// ABOUTME: Fixed-size linear cell store addressed by x + y*width
// ABOUTME: Writes and fills are bounds checked and fail with ErrBufferOverflow

package vscreen

import "fmt"

// Buffer is a width*height byte grid stored row-major in one slice. Its
// length never changes after construction.
type Buffer struct {
	width  int
	height int
	fill   byte
	cells  []byte
}

// Size limits. A dimension must fit a terminal window size field.
const (
	MaxDimension = 65535
	MaxCells     = 1 << 24
)

// NewBuffer allocates a buffer filled with fill.
func NewBuffer(width, height int, fill byte) (*Buffer, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	b := &Buffer{
		width:  width,
		height: height,
		fill:   fill,
		cells:  make([]byte, width*height),
	}
	b.Clear()
	return b, nil
}

// CheckSize reports whether width x height is a usable screen size.
func CheckSize(width, height int) error {
	switch {
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	case width > MaxDimension || height > MaxDimension:
		return fmt.Errorf("%w: %dx%d exceeds %d per side", ErrInvalidSize, width, height, MaxDimension)
	case int64(width)*int64(height) > MaxCells:
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidSize, width, height, MaxCells)
	}
	return nil
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Len returns width*height.
func (b *Buffer) Len() int { return len(b.cells) }

// FillByte returns the blank byte used for init and erase.
func (b *Buffer) FillByte() byte { return b.fill }

// Index returns the linear index of cell (x, y).
func (b *Buffer) Index(x, y int) int {
	return x + y*b.width
}

// Bytes returns the backing cells. Callers must treat it as read-only.
func (b *Buffer) Bytes() []byte { return b.cells }

// Row returns the cells of row y.
func (b *Buffer) Row(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.cells[y*b.width : (y+1)*b.width]
}

// WriteAt copies data into the cells starting at linear index at.
func (b *Buffer) WriteAt(at int, data []byte) error {
	if at < 0 || at+len(data) > len(b.cells) {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds %d cells",
			ErrBufferOverflow, len(data), at, len(b.cells))
	}
	copy(b.cells[at:], data)
	return nil
}

// Blank sets cells [from, to) to the fill byte.
func (b *Buffer) Blank(from, to int) error {
	if from < 0 || to > len(b.cells) || from > to {
		return fmt.Errorf("%w: erase [%d, %d) outside %d cells",
			ErrBufferOverflow, from, to, len(b.cells))
	}
	for i := from; i < to; i++ {
		b.cells[i] = b.fill
	}
	return nil
}

// Clear blanks every cell.
func (b *Buffer) Clear() {
	for i := range b.cells {
		b.cells[i] = b.fill
	}
}
