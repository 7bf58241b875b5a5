package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// AffixedEnvFeeder is a feeder that reads environment variables with a prefix and/or suffix.
//
// A field tagged `env:"BASE_URL"` is read from PREFIX_BASE_URL_SUFFIX, with
// empty affixes and their separator omitted.
type AffixedEnvFeeder struct {
	Prefix string
	Suffix string
}

// NewAffixedEnvFeeder creates a new AffixedEnvFeeder with the specified prefix and suffix
func NewAffixedEnvFeeder(prefix, suffix string) AffixedEnvFeeder {
	return AffixedEnvFeeder{Prefix: prefix, Suffix: suffix}
}

// Feed reads environment variables and populates the provided structure
func (f AffixedEnvFeeder) Feed(structure any) error {
	if f.Prefix == "" && f.Suffix == "" {
		return ErrEnvEmptyPrefixAndSuffix
	}
	return feedEnv(structure, strings.ToUpper(f.Prefix), strings.ToUpper(f.Suffix))
}

// EnvFeeder reads environment variables named exactly as the env tags.
type EnvFeeder struct{}

// Feed reads environment variables and populates the provided structure
func (EnvFeeder) Feed(structure any) error {
	return feedEnv(structure, "", "")
}

func feedEnv(structure any, prefix, suffix string) error {
	t := reflect.TypeOf(structure)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct || reflect.ValueOf(structure).IsNil() {
		return ErrEnvInvalidStructure
	}
	return processStructFields(reflect.ValueOf(structure).Elem(), prefix, suffix)
}

func processStructFields(rv reflect.Value, prefix, suffix string) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)
		if err := processField(field, &fieldType, prefix, suffix); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func processField(field reflect.Value, fieldType *reflect.StructField, prefix, suffix string) error {
	switch {
	case field.Kind() == reflect.Struct:
		return processStructFields(field, prefix, suffix)
	case field.Kind() == reflect.Pointer && !field.IsNil() && field.Elem().Kind() == reflect.Struct:
		return processStructFields(field.Elem(), prefix, suffix)
	}
	envTag, ok := fieldType.Tag.Lookup("env")
	if !ok || envTag == "" {
		return nil
	}
	if value := os.Getenv(envName(envTag, prefix, suffix)); value != "" {
		return setFieldValue(field, value)
	}
	return nil
}

func envName(tag, prefix, suffix string) string {
	name := strings.ToUpper(tag)
	if prefix != "" {
		name = prefix + "_" + name
	}
	if suffix != "" {
		name = name + "_" + suffix
	}
	return name
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return ErrEnvFieldCannotBeSet
	}
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w to %v: %w", ErrEnvConversion, field.Type(), err)
		}
		field.SetInt(int64(d))
		return nil
	}
	converted, err := cast.FromType(value, field.Type())
	if err != nil {
		return fmt.Errorf("%w to %v: %w", ErrEnvConversion, field.Type(), err)
	}
	field.Set(reflect.ValueOf(converted).Convert(field.Type()))
	return nil
}
