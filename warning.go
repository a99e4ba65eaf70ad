package pagevisuals

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem met while extracting. The visuals that
// could be extracted are still returned.
type Warning struct {
	Page    int // 0-based; -1 for document-wide warnings
	Message string
	Err     error
}

func (w Warning) String() string {
	msg := w.Message
	if w.Err != nil {
		msg += ": " + w.Err.Error()
	}
	if w.Page < 0 {
		return msg
	}
	return fmt.Sprintf("page %d: %s", w.Page+1, msg)
}

// Unwrap returns the underlying error, if any.
func (w Warning) Unwrap() error { return w.Err }

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
