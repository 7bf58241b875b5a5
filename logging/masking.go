package logging

import (
	"regexp"
	"strings"

	"github.com/GoCodeAlone/networking"
)

// Redacted replaces masked values.
const Redacted = "[REDACTED]"

// DefaultSensitiveKeys are the argument keys MaskingLogger redacts when no
// keys are configured. Matching ignores case.
var DefaultSensitiveKeys = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"password",
	"token",
	"access_token",
	"refresh_token",
	"client_secret",
}

var bearerPattern = regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9\-._~+/]+=*`)

// MaskingLogger is a Logger decorator that redacts credentials before they
// reach the wrapped logger. Values of sensitive keys are replaced entirely;
// bearer and basic credentials embedded in other string values are replaced
// in place.
type MaskingLogger struct {
	inner networking.Logger
	keys  map[string]struct{}
}

// NewMaskingLogger wraps inner. With no keys, DefaultSensitiveKeys apply.
func NewMaskingLogger(inner networking.Logger, keys ...string) *MaskingLogger {
	if len(keys) == 0 {
		keys = DefaultSensitiveKeys
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &MaskingLogger{inner: inner, keys: set}
}

// GetInnerLogger returns the wrapped logger.
func (l *MaskingLogger) GetInnerLogger() networking.Logger {
	return l.inner
}

func (l *MaskingLogger) Info(msg string, args ...any)  { l.inner.Info(msg, l.maskArgs(args)...) }
func (l *MaskingLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.maskArgs(args)...) }
func (l *MaskingLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.maskArgs(args)...) }
func (l *MaskingLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.maskArgs(args)...) }

// maskArgs returns a masked copy of the key/value pairs in args.
func (l *MaskingLogger) maskArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	copy(out, args)
	for i := 1; i < len(out); i += 2 {
		if key, ok := out[i-1].(string); ok {
			if _, sensitive := l.keys[strings.ToLower(key)]; sensitive {
				out[i] = Redacted
				continue
			}
		}
		out[i] = maskValue(out[i])
	}
	return out
}

func maskValue(v any) any {
	switch x := v.(type) {
	case string:
		return MaskCredentials(x)
	case error:
		if masked := MaskCredentials(x.Error()); masked != x.Error() {
			return masked
		}
	}
	return v
}

// MaskCredentials replaces bearer and basic credentials in s.
func MaskCredentials(s string) string {
	return bearerPattern.ReplaceAllString(s, "$1 "+Redacted)
}

var _ networking.Logger = (*MaskingLogger)(nil)
