// Package feeders provides configuration feeders for reading data from
// YAML, TOML and JSON files and from environment variables.
package feeders

import (
	"errors"
	"fmt"
)

// File feeder errors
var (
	ErrFileRead      = errors.New("cannot read config file")
	ErrFileDecode    = errors.New("cannot decode config file")
	ErrKeyNotMapping = errors.New("config key is not a mapping")
)

// Env feeder errors
var (
	ErrEnvInvalidStructure     = errors.New("env: invalid structure")
	ErrEnvEmptyPrefixAndSuffix = errors.New("env: prefix or suffix cannot be empty")
	ErrEnvFieldCannotBeSet     = errors.New("env: field cannot be set")
	ErrEnvConversion           = errors.New("env: cannot convert value")
)

func wrapFileReadError(path string, err error) error {
	return fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
}

func wrapFileDecodeError(format, path string, err error) error {
	return fmt.Errorf("%w as %s %s: %w", ErrFileDecode, format, path, err)
}

// debugLogger is the subset of a structured logger feeders report to.
type debugLogger interface {
	Debug(msg string, args ...any)
}
