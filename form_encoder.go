package networking

import (
	"fmt"
	"net/url"
	"strconv"
)

// FormMarshaler is implemented by types that describe their own flat form
// representation. It is the supported way to send structs as form bodies.
//
//	func (c Credentials) MarshalForm() (url.Values, error) {
//	    return url.Values{"username": {c.Username}, "password": {c.Password}}, nil
//	}
type FormMarshaler interface {
	MarshalForm() (url.Values, error)
}

// FormEncoder produces application/x-www-form-urlencoded bodies.
//
// Only flat inputs are supported: FormMarshaler, url.Values,
// map[string]string and map[string]any whose values are scalars (string,
// bool, integers, floats, fmt.Stringer). Nested maps, slices or structs are
// rejected with ErrUnsupportedFormValue rather than stringified.
type FormEncoder struct{}

// Encode implements BodyEncoder.
func (FormEncoder) Encode(input any) ([]byte, error) {
	if isAbsent(input) {
		return nil, nil
	}
	values, err := formValues(input)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

// ContentType implements BodyEncoder.
func (FormEncoder) ContentType() string { return "application/x-www-form-urlencoded" }

func formValues(input any) (url.Values, error) {
	switch in := input.(type) {
	case FormMarshaler:
		values, err := in.MarshalForm()
		if err != nil {
			return nil, fmt.Errorf("marshal form: %w", err)
		}
		return values, nil
	case url.Values:
		return in, nil
	case map[string]string:
		values := make(url.Values, len(in))
		for k, v := range in {
			values.Set(k, v)
		}
		return values, nil
	case map[string]any:
		values := make(url.Values, len(in))
		for k, v := range in {
			s, err := formScalar(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			values.Set(k, s)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFormInput, input)
	}
}

func formScalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedFormValue, v)
	}
}
