package networking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// BodyEncoder turns a typed value into a request body.
// Encode returns nil bytes for an absent (nil) input.
type BodyEncoder interface {
	Encode(input any) ([]byte, error)
	// ContentType is the media type of the encoded body.
	ContentType() string
}

// BodyDecoder turns a response body into a typed value. out must be a
// non-nil pointer.
type BodyDecoder interface {
	Decode(data []byte, out any) error
}

// Codec pairs an encoder and a decoder of the same format.
type Codec interface {
	BodyEncoder
	BodyDecoder
}

// isAbsent reports whether input is nil or a nil pointer, map or slice.
func isAbsent(input any) bool {
	if input == nil {
		return true
	}
	v := reflect.ValueOf(input)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func checkDecodeTarget(out any) error {
	v := reflect.ValueOf(out)
	if out == nil || v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w, got %T", ErrDecodeTargetNotPointer, out)
	}
	return nil
}

// JSONCodec encodes and decodes bodies with encoding/json.
type JSONCodec struct {
	// Indent, when set, pretty-prints encoded bodies.
	Indent string
	// DisallowUnknownFields makes Decode reject objects with fields the
	// target type does not declare.
	DisallowUnknownFields bool
}

// Encode implements BodyEncoder.
func (c JSONCodec) Encode(input any) ([]byte, error) {
	if isAbsent(input) {
		return nil, nil
	}
	if c.Indent != "" {
		return json.MarshalIndent(input, "", c.Indent)
	}
	return json.Marshal(input)
}

// ContentType implements BodyEncoder.
func (JSONCodec) ContentType() string { return "application/json" }

// Decode implements BodyDecoder.
func (c JSONCodec) Decode(data []byte, out any) error {
	if err := checkDecodeTarget(out); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}

// YAMLCodec encodes and decodes bodies with gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Encode implements BodyEncoder.
func (YAMLCodec) Encode(input any) ([]byte, error) {
	if isAbsent(input) {
		return nil, nil
	}
	data, err := yaml.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return data, nil
}

// ContentType implements BodyEncoder.
func (YAMLCodec) ContentType() string { return "application/yaml" }

// Decode implements BodyDecoder.
func (YAMLCodec) Decode(data []byte, out any) error {
	if err := checkDecodeTarget(out); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}
	return nil
}
