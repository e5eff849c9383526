// ABOUTME: Forwards host keystrokes to the child PTY while the host is in raw mode
// ABOUTME: Forward stops on context cancellation, EOF, or the first write failure

package hostterm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Forward copies src to dst until src ends, a write fails, or ctx is
// cancelled. Cancellation is only observed between reads, so callers
// should close src or exit once ctx is done. Reaching EOF returns nil.
func Forward(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := src.Read(buf)
		if n > 0 {
			if ctx.Err() != nil {
				return nil
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("forwarding input: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}
}
