package networking

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	tagDefault  = "default"
	tagRequired = "required"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ProcessConfigDefaults sets every zero-valued field carrying a
// `default:"value"` tag. Durations use time.ParseDuration syntax, slices and
// maps of strings use JSON.
//
//	type Config struct {
//	    Timeout time.Duration     `default:"30s"`
//	    Headers map[string]string `default:"{\"Accept\":\"application/json\"}"`
//	}
func ProcessConfigDefaults(cfg any) error {
	v, err := configStruct(cfg)
	if err != nil {
		return err
	}
	return processStructDefaults(v)
}

func processStructDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := processStructDefaults(field); err != nil {
				return err
			}
			continue
		}
		// Nil struct pointers stay nil.
		if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
			if !field.IsNil() {
				if err := processStructDefaults(field.Elem()); err != nil {
					return err
				}
			}
			continue
		}

		defaultVal, ok := fieldType.Tag.Lookup(tagDefault)
		if !ok || !isZeroValue(field) {
			continue
		}
		if err := setDefaultValue(field, defaultVal); err != nil {
			return fmt.Errorf("failed to set default value for %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

// ValidateConfigRequired checks that every field tagged `required:"true"` is
// set. All missing fields are reported in one error.
func ValidateConfigRequired(cfg any) error {
	v, err := configStruct(cfg)
	if err != nil {
		return err
	}
	var missing []string
	validateRequiredFields(v, "", &missing)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigRequiredFieldMissing, strings.Join(missing, ", "))
	}
	return nil
}

func validateRequiredFields(v reflect.Value, prefix string, missing *[]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}
		name := fieldType.Name
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case field.Kind() == reflect.Struct:
			validateRequiredFields(field, name, missing)
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
			if !field.IsNil() {
				validateRequiredFields(field.Elem(), name, missing)
			} else if isFieldRequired(&fieldType) {
				*missing = append(*missing, name)
			}
		case isFieldRequired(&fieldType) && isZeroValue(field):
			*missing = append(*missing, name)
		}
	}
}

// ValidateConfig applies defaults, checks required fields and finally calls
// Validate when cfg implements ConfigValidator.
func ValidateConfig(cfg any) error {
	if err := ProcessConfigDefaults(cfg); err != nil {
		return err
	}
	if err := ValidateConfigRequired(cfg); err != nil {
		return err
	}
	if validator, ok := cfg.(ConfigValidator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// GenerateSampleConfig renders a defaults-only instance of cfg's type as
// "yaml", "json" or "toml".
func GenerateSampleConfig(cfg any, format string) ([]byte, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	t := reflect.TypeOf(cfg)
	if t.Kind() != reflect.Ptr {
		return nil, ErrConfigNotPointer
	}
	sample := reflect.New(t.Elem()).Interface()
	if err := ProcessConfigDefaults(sample); err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		data, err := yaml.Marshal(sample)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		return data, nil
	case "toml":
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(sample); err != nil {
			return nil, fmt.Errorf("failed to marshal to TOML: %w", err)
		}
		return []byte(buf.String()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormatType, format)
	}
}

func configStruct(cfg any) (reflect.Value, error) {
	if cfg == nil {
		return reflect.Value{}, ErrConfigNil
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, ErrConfigNotPointer
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrConfigNotStruct
	}
	return v, nil
}

func isFieldRequired(field *reflect.StructField) bool {
	required, ok := field.Tag.Lookup(tagRequired)
	return ok && required == "true"
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Invalid:
		return true
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return v.IsZero()
	default:
		return false
	}
}

func setDefaultValue(field reflect.Value, defaultVal string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(defaultVal)
		if err != nil {
			return fmt.Errorf("failed to parse duration value: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() { //nolint:exhaustive // unsupported kinds share the default branch
	case reflect.String:
		field.SetString(defaultVal)
	case reflect.Bool:
		b, err := strconv.ParseBool(defaultVal)
		if err != nil {
			return fmt.Errorf("failed to parse bool value: %w", err)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(defaultVal, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int value: %w", err)
		}
		if field.OverflowInt(i) {
			return fmt.Errorf("%w: %d overflows %s", ErrDefaultValueOverflow, i, field.Type())
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(defaultVal, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse uint value: %w", err)
		}
		if field.OverflowUint(u) {
			return fmt.Errorf("%w: %d overflows %s", ErrDefaultValueOverflow, u, field.Type())
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(defaultVal, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float value: %w", err)
		}
		if field.OverflowFloat(f) {
			return fmt.Errorf("%w: %f overflows %s", ErrDefaultValueOverflow, f, field.Type())
		}
		field.SetFloat(f)
	case reflect.Slice:
		return setDefaultSlice(field, defaultVal)
	case reflect.Map:
		return setDefaultMap(field, defaultVal)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Kind())
	}
	return nil
}

func setDefaultSlice(field reflect.Value, defaultVal string) error {
	if field.Type().Elem().Kind() != reflect.String {
		return fmt.Errorf("%w: slice of %s", ErrIncompatibleFieldKind, field.Type().Elem().Kind())
	}
	var strs []string
	if err := json.Unmarshal([]byte(defaultVal), &strs); err != nil {
		return fmt.Errorf("failed to unmarshal JSON array: %w", err)
	}
	slice := reflect.MakeSlice(field.Type(), len(strs), len(strs))
	for i, s := range strs {
		slice.Index(i).SetString(s)
	}
	field.Set(slice)
	return nil
}

func setDefaultMap(field reflect.Value, defaultVal string) error {
	if field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
		return fmt.Errorf("%w: map of %s", ErrIncompatibleFieldKind, field.Type())
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(defaultVal), &m); err != nil {
		return fmt.Errorf("failed to unmarshal JSON map: %w", err)
	}
	mapVal := reflect.MakeMapWithSize(field.Type(), len(m))
	for k, v := range m {
		mapVal.SetMapIndex(reflect.ValueOf(k).Convert(field.Type().Key()), reflect.ValueOf(v).Convert(field.Type().Elem()))
	}
	field.Set(mapVal)
	return nil
}
