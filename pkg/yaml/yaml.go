package yaml

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

func Unmarshal(in []byte, out any) error {
	return yaml.Unmarshal(in, out)
}

func Encode(v any, indent int) ([]byte, error) {
	b := bytes.NewBuffer(nil)
	e := yaml.NewEncoder(b)
	e.SetIndent(indent)

	if err := e.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Override turns "decode.width=320" into a YAML document that sets the
// value. The value is parsed as YAML, so numbers and lists keep their type.
func Override(s string) ([]byte, error) {
	path, raw, ok := strings.Cut(s, "=")
	if !ok || path == "" {
		return nil, errors.New("yaml: override must be key=value: " + s)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}

	keys := strings.Split(path, ".")
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] == "" {
			return nil, errors.New("yaml: empty key in " + path)
		}
		value = map[string]any{keys[i]: value}
	}

	return Encode(value, 2)
}
