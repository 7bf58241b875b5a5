package feeders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// JSONFeeder is a feeder that reads JSON files
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) *JSONFeeder {
	return &JSONFeeder{Path: filePath}
}

// Feed decodes the whole file into target.
func (j *JSONFeeder) Feed(target any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return wrapFileReadError(j.Path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return wrapFileDecodeError("json", j.Path, err)
	}
	return nil
}

// FeedKey decodes the object stored under key into target. A missing key is
// not an error.
func (j *JSONFeeder) FeedKey(key string, target any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return wrapFileReadError(j.Path, err)
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return wrapFileDecodeError("json", j.Path, err)
	}
	raw, ok := root[key]
	if !ok {
		return nil
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: %s", ErrKeyNotMapping, key)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return wrapFileDecodeError("json", j.Path, err)
	}
	return nil
}
