package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files
type YamlFeeder struct {
	Path         string
	verboseDebug bool
	logger       debugLogger
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) *YamlFeeder {
	return &YamlFeeder{Path: filePath}
}

// SetVerboseDebug enables or disables verbose debug logging
func (y *YamlFeeder) SetVerboseDebug(enabled bool, logger debugLogger) {
	y.verboseDebug = enabled
	y.logger = logger
}

// Feed decodes the whole file into target. Keys missing from the file leave
// the corresponding fields untouched.
func (y *YamlFeeder) Feed(target any) error {
	data, err := y.read()
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return wrapFileDecodeError("yaml", y.Path, err)
	}
	y.debug("YamlFeeder: fed structure", "path", y.Path, "target", fmt.Sprintf("%T", target))
	return nil
}

// FeedKey decodes the mapping stored under key into target. A missing key
// is not an error.
func (y *YamlFeeder) FeedKey(key string, target any) error {
	data, err := y.read()
	if err != nil {
		return err
	}
	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return wrapFileDecodeError("yaml", y.Path, err)
	}
	node, ok := root[key]
	if !ok {
		y.debug("YamlFeeder: key not found", "path", y.Path, "key", key)
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s", ErrKeyNotMapping, key)
	}
	if err := node.Decode(target); err != nil {
		return wrapFileDecodeError("yaml", y.Path, err)
	}
	y.debug("YamlFeeder: fed key", "path", y.Path, "key", key)
	return nil
}

func (y *YamlFeeder) read() ([]byte, error) {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return nil, wrapFileReadError(y.Path, err)
	}
	return data, nil
}

func (y *YamlFeeder) debug(msg string, args ...any) {
	if y.verboseDebug && y.logger != nil {
		y.logger.Debug(msg, args...)
	}
}
