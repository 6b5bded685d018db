package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// Close closes c and logs a failure. Nil closers are ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "type", fmt.Sprintf("%T", c), "error", err.Error())
	}
}

// Write writes data to w and logs a failure or a short write. Nil writers are
// ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("write failed", "written", n, "size", len(data), "error", err.Error())
	}
}

// Drain discards the rest of r so the underlying connection can be reused.
func Drain(ctx context.Context, r io.Reader) {
	if r == nil {
		return
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		logging.From(ctx).Debug("drain failed", "error", err.Error())
	}
}
