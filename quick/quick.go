package quick

import (
	"fmt"
	"strings"
)

// config parses "key=value" statements into store values.
// Keys are case-insensitive, values are kept verbatim apart from surrounding spaces.
func config(args ...string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, err := parseKeyValue(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid config format: %s", arg)
		}
		values[key] = value
	}
	return values, nil
}

// parseKeyValue splits a "key=value" string. Only the first '=' separates, so
// values such as format patterns may contain more.
func parseKeyValue(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("missing '='")
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", fmt.Errorf("empty key")
	}
	return key, strings.TrimSpace(value), nil
}
