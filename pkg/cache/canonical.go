package cache

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/matzehuels/photonkit/pkg/errors"
)

// DefaultDigits is the number of decimal places floats are rounded to
// before hashing.
const DefaultDigits = 6

// Canonicaler lets a value choose its own canonical form. Components use it
// so that a parameter holding a sub-component keys on its identity.
type Canonicaler interface {
	Canonical() any
}

// Canonicalize reduces v to a tree of map[string]any, []any, string, bool,
// int64, uint64, float64 and nil whose JSON encoding is independent of map
// iteration order. Struct fields are keyed by their json name, floats are
// rounded to digits decimal places with -0 folded to 0, and NaN or infinite
// values are rejected.
func Canonicalize(v any, digits int) (any, error) {
	return canonical(reflect.ValueOf(v), digits, "params")
}

var canonicalerType = reflect.TypeOf((*Canonicaler)(nil)).Elem()

func canonical(v reflect.Value, digits int, at string) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type().Implements(canonicalerType) {
		if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return nil, nil
		}
		return canonical(reflect.ValueOf(v.Interface().(Canonicaler).Canonical()), digits, at)
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return canonicalFloat(v.Float(), digits, at)
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return canonical(v.Elem(), digits, at)
	case reflect.Slice:
		if v.IsNil() {
			return []any{}, nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			c, err := canonical(v.Index(i), digits, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key(), at)
			if err != nil {
				return nil, err
			}
			c, err := canonical(iter.Value(), digits, at+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			c, err := canonical(v.Field(i), digits, at+"."+name)
			if err != nil {
				return nil, err
			}
			out[name] = c
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidParameter, "%s: cannot canonicalize %s", at, v.Type())
}

func canonicalFloat(f float64, digits int, at string) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "%s: non-finite value %v", at, f)
	}
	r := scalar.Round(f, digits)
	if r == 0 {
		r = 0 // folds -0
	}
	return r, nil
}

func mapKey(k reflect.Value, at string) (string, error) {
	if s, ok := k.Interface().(fmt.Stringer); ok {
		return s.String(), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprint(k.Interface()), nil
	}
	return "", errors.New(errors.ErrCodeInvalidParameter, "%s: unsupported map key type %s", at, k.Type())
}
