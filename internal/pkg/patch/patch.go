// Package patch models partial updates as a set of field name → new value
// pairs. A key that is present means "change this field"; absent keys are
// left untouched. Each entity declares a Schema listing the keys it accepts
// and the value kind each key must carry.
package patch

import (
	"fmt"
	"math"
	"sort"

	"github.com/setlistr/setlistr/internal/pkg/errors"
)

// Check reports whether v is an acceptable value for a field.
type Check func(v any) bool

// Schema maps accepted field names to their value checks.
type Schema map[string]Check

// Fields is a field update set.
type Fields map[string]any

// String accepts string values.
func String(v any) bool {
	_, ok := v.(string)
	return ok
}

// Int accepts integers, including integral float64 values decoded from JSON.
func Int(v any) bool {
	_, ok := toInt(v)
	return ok
}

// Bool accepts bool values.
func Bool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// TypeOf accepts values of exactly type T.
func TypeOf[T any]() Check {
	return func(v any) bool {
		_, ok := v.(T)
		return ok
	}
}

// FieldError is one rejected key in a patch.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Empty reports whether the patch changes nothing.
func (f Fields) Empty() bool { return len(f) == 0 }

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Keys returns the present keys in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects keys missing from s and values failing their check.
func (f Fields) Validate(s Schema) error {
	var problems []FieldError
	for _, key := range f.Keys() {
		check, ok := s[key]
		if !ok {
			problems = append(problems, FieldError{Field: key, Message: fmt.Sprintf("%s cannot be updated", key)})
			continue
		}
		if !check(f[key]) {
			problems = append(problems, FieldError{Field: key, Message: fmt.Sprintf("%s has an invalid value", key)})
		}
	}
	if len(problems) > 0 {
		return errors.ValidationError("Invalid update", problems)
	}
	return nil
}

// String returns the string stored under key.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

// Int returns the integer stored under key.
func (f Fields) Int(key string) (int, bool) {
	v, present := f[key]
	if !present {
		return 0, false
	}
	return toInt(v)
}

// Bool returns the bool stored under key.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key].(bool)
	return v, ok
}

// Get returns the value stored under key as T.
func Get[T any](f Fields, key string) (T, bool) {
	v, ok := f[key].(T)
	return v, ok
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
