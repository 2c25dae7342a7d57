package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const summaryHeading = "## 🚨 Geodata Check Failed"

// Sink receives failure lines for an external summary surface.
type Sink interface {
	WriteFailures(lines []string) error
}

// FileSink appends a Markdown failure section to a file.
type FileSink struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileSink creates a sink appending to path on fs.
func NewFileSink(fs afero.Fs, path string) *FileSink {
	return &FileSink{fs: fs, path: path}
}

// SinkFromEnv returns a FileSink for the file named by the environment
// variable env, or nil if the variable is unset or empty.
func SinkFromEnv(fs afero.Fs, env string) Sink {
	if env == "" {
		return nil
	}
	path := strings.TrimSpace(os.Getenv(env))
	if path == "" {
		return nil
	}
	return NewFileSink(fs, path)
}

// WriteFailures appends a heading and one bullet per line to the file.
func (s *FileSink) WriteFailures(lines []string) error {
	var b strings.Builder
	b.WriteString(summaryHeading)
	b.WriteString("\n\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "- `%s`\n", line)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path provided by the CI environment.
	if err != nil {
		return fmt.Errorf("open summary file: %w", err)
	}
	if _, err := file.WriteString(b.String()); err != nil {
		_ = file.Close()
		return fmt.Errorf("write summary file: %w", err)
	}
	return file.Close()
}
