package launcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// openTranscript opens path for the raw PTY transcript copy described
// by spec.md §6: a plain append-mode byte copy of the PTY output
// stream, with no structure and no rotation. An empty path disables
// the transcript.
func openTranscript(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open transcript file: %w", err)
	}

	return file, nil
}
