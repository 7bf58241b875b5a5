package httpclient

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileLogger writes one file per HTTP transaction.
type FileLogger struct {
	dir string
}

// NewFileLogger creates dir if needed and returns a logger writing into it.
func NewFileLogger(dir string) (*FileLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", dir, err)
	}
	return &FileLogger{dir: dir}, nil
}

// Dir returns the directory transaction files are written to.
func (f *FileLogger) Dir() string {
	return f.dir
}

// LogTransaction writes the request and response dumps of one exchange to a
// single file and returns its path.
func (f *FileLogger) LogTransaction(id, url string, reqDump, respDump []byte, duration time.Duration) (string, error) {
	name := fmt.Sprintf("txn_%s_%s_%d.log", sanitizeFileComponent(id), sanitizeFileComponent(url), time.Now().UnixNano())
	path := filepath.Join(f.dir, name)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Transaction ID: %s\n", id)
	fmt.Fprintf(&buf, "URL: %s\n", url)
	fmt.Fprintf(&buf, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Duration: %d ms\n", duration.Milliseconds())
	buf.WriteString("\n----- REQUEST -----\n\n")
	buf.Write(reqDump)
	buf.WriteString("\n\n----- RESPONSE -----\n\n")
	buf.Write(respDump)

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write transaction log file: %w", err)
	}
	return path, nil
}

// sanitizeFileComponent keeps file names portable and short.
func sanitizeFileComponent(s string) string {
	s = strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", "=", "_").Replace(s)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
