package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Param is one query string entry. A nil Value (or nil pointer) is omitted;
// an empty string is written as a bare key.
type Param struct {
	Key   string
	Value any
}

// P is shorthand for Param{key, value}.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// Flag yields a bare key when on and nothing otherwise.
func Flag(key string, on bool) Param {
	if on {
		return Param{Key: key, Value: ""}
	}
	return Param{Key: key}
}

// NonEmpty omits the key when value is "".
func NonEmpty(key, value string) Param {
	if value == "" {
		return Param{Key: key}
	}
	return Param{Key: key, Value: value}
}

// QueryParameters renders params in order, e.g. "?active&limit=25".
// It returns "" when every value is omitted.
func QueryParameters(params ...Param) string {
	var b strings.Builder
	for _, p := range params {
		value, ok := paramValue(p.Value)
		if !ok {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		if value != "" {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

func paramValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		v = rv.Elem().Interface()
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
