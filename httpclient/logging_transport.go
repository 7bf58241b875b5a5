package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/GoCodeAlone/networking"
	"github.com/GoCodeAlone/networking/logging"
)

// loggingTransport provides verbose logging of HTTP requests and responses.
// Credentials in dumps are masked before they reach the logger or a file.
type loggingTransport struct {
	transport      http.RoundTripper
	logger         networking.Logger
	fileLogger     *FileLogger
	logHeaders     bool
	logBody        bool
	maxBodyLogSize int
}

// RoundTrip implements the http.RoundTripper interface and adds logging.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(networking.RequestIDHeader)
	if id == "" {
		id = fmt.Sprintf("%p", req)
	}
	start := time.Now()
	requestLine := fmt.Sprintf("%s %s", req.Method, req.URL.String())

	var reqDump []byte
	if t.detailed() {
		dump, err := httputil.DumpRequestOut(req, t.logBody)
		if err != nil {
			t.logger.Info("Outgoing request (dump failed)", "id", id, "request", requestLine, "error", err)
		} else {
			reqDump = []byte(logging.MaskCredentials(string(dump)))
			if t.fileLogger == nil {
				t.logger.Info("Outgoing request", "id", id, "request", requestLine, "details", t.truncate(reqDump))
			}
		}
	} else {
		t.logger.Info("Outgoing request",
			"id", id,
			"request", requestLine,
			"content_length", req.ContentLength,
			"important_headers", importantHeaders(req.Header),
		)
	}

	resp, err := t.transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.Error("Request failed",
			"id", id,
			"request", requestLine,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	status := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if !t.detailed() {
		t.logger.Info("Received response",
			"id", id,
			"response", status,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"content_length", resp.ContentLength,
			"important_headers", importantHeaders(resp.Header),
		)
		return resp, nil
	}

	// DumpResponse restores resp.Body after reading it.
	dump, err := httputil.DumpResponse(resp, t.logBody)
	if err != nil {
		t.logger.Info("Received response (dump failed)", "id", id, "response", status, "error", err)
		return resp, nil
	}
	respDump := []byte(logging.MaskCredentials(string(dump)))

	if t.fileLogger != nil && reqDump != nil {
		path, err := t.fileLogger.LogTransaction(id, req.URL.String(), reqDump, respDump, duration)
		if err != nil {
			t.logger.Error("Failed to write transaction to log file", "id", id, "error", err)
		} else {
			t.logger.Info("Received response (logged to file)",
				"id", id,
				"response", status,
				"duration_ms", duration.Milliseconds(),
				"file", path,
			)
		}
		return resp, nil
	}

	t.logger.Info("Received response",
		"id", id,
		"response", status,
		"url", req.URL.String(),
		"duration_ms", duration.Milliseconds(),
		"details", t.truncate(respDump),
	)
	return resp, nil
}

func (t *loggingTransport) detailed() bool {
	return t.logHeaders || t.logBody
}

func (t *loggingTransport) truncate(dump []byte) string {
	if t.maxBodyLogSize <= 0 || len(dump) <= t.maxBodyLogSize {
		return string(dump)
	}
	return smartTruncate(string(dump), t.maxBodyLogSize) + " [truncated]"
}

// smartTruncate shortens an HTTP dump to maxSize bytes, keeping the start
// line and headers whole whenever they fit.
func smartTruncate(dump string, maxSize int) string {
	if len(dump) <= maxSize {
		return dump
	}
	headerEnd := strings.Index(dump, "\r\n\r\n")
	sepLen := 4
	if headerEnd == -1 {
		headerEnd = strings.Index(dump, "\n\n")
		sepLen = 2
	}
	if headerEnd > 0 && headerEnd+sepLen <= maxSize {
		return dump[:maxSize]
	}
	if headerEnd > 0 {
		// Headers alone exceed the budget: keep the start line and the
		// important headers.
		lines := strings.Split(dump[:headerEnd], "\n")
		kept := []string{strings.TrimSpace(lines[0])}
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if isImportantHeaderLine(line) {
				kept = append(kept, line)
			}
		}
		return strings.Join(kept, "\n")
	}
	return dump[:maxSize]
}

var importantHeaderNames = map[string]struct{}{
	"content-type":     {},
	"content-length":   {},
	"user-agent":       {},
	"accept":           {},
	"cache-control":    {},
	"x-request-id":     {},
	"x-correlation-id": {},
	"x-trace-id":       {},
	"location":         {},
}

func isImportantHeader(name string) bool {
	_, ok := importantHeaderNames[strings.ToLower(name)]
	return ok
}

func isImportantHeaderLine(line string) bool {
	colon := strings.Index(line, ":")
	return colon > 0 && isImportantHeader(line[:colon])
}

func importantHeaders(h http.Header) map[string]string {
	out := make(map[string]string)
	for key, values := range h {
		if len(values) > 0 && isImportantHeader(key) {
			out[key] = values[0]
		}
	}
	return out
}
