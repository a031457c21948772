package cells

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/photonkit/pkg/errors"
)

// ParseParams turns "key=value" assignments into a parameter map. Values
// that parse as JSON keep their JSON type, so length=5 is a number and
// size={"x":1,"y":2} an object; anything else is a string. Dotted keys
// nest: size.x=1 sets params["size"]["x"].
func ParseParams(assignments []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, a := range assignments {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "parameter %q is not key=value", a)
		}
		if err := assign(params, strings.Split(k, "."), ParseValue(v)); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// ParseValue decodes s as JSON, falling back to the plain string.
func ParseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func assign(m map[string]any, path []string, v any) error {
	for i, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			if _, taken := m[k]; taken {
				return errors.New(errors.ErrCodeInvalidParameter,
					"parameter %s is not an object", strings.Join(path[:i+1], "."))
			}
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
	return nil
}
