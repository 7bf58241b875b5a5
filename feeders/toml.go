package feeders

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) *TomlFeeder {
	return &TomlFeeder{Path: filePath}
}

// Feed decodes the whole file into target.
func (t *TomlFeeder) Feed(target any) error {
	data, err := t.read()
	if err != nil {
		return err
	}
	if _, err := toml.Decode(data, target); err != nil {
		return wrapFileDecodeError("toml", t.Path, err)
	}
	return nil
}

// FeedKey decodes the table stored under key into target. A missing key is
// not an error.
func (t *TomlFeeder) FeedKey(key string, target any) error {
	data, err := t.read()
	if err != nil {
		return err
	}
	var tables map[string]toml.Primitive
	md, err := toml.Decode(data, &tables)
	if err != nil {
		return wrapFileDecodeError("toml", t.Path, err)
	}
	prim, ok := tables[key]
	if !ok {
		return nil
	}
	if md.Type(key) != "Hash" {
		return fmt.Errorf("%w: %s", ErrKeyNotMapping, key)
	}
	if err := md.PrimitiveDecode(prim, target); err != nil {
		return wrapFileDecodeError("toml", t.Path, err)
	}
	return nil
}

func (t *TomlFeeder) read() (string, error) {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", wrapFileReadError(t.Path, err)
	}
	return string(data), nil
}
