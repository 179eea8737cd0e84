// Query string helpers for the GET endpoints.
package params

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

// String returns the trimmed value of key, or fallback when absent or blank.
func String(q url.Values, key, fallback string) string {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		return v
	}
	return fallback
}

// Int parses key as an integer. Absent or blank gives fallback; anything
// unparsable is an invalid argument.
func Int(q url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", genome.ErrInvalidArgument, key, raw)
	}
	return n, nil
}

// Bool accepts 1/0, true/false, yes/no and on/off.
func Bool(q url.Values, key string, fallback bool) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(q.Get(key)))
	switch raw {
	case "":
		return fallback, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", genome.ErrInvalidArgument, key, raw)
	}
}

// Classes reads enhancer classes from repeated classes[] keys or from a
// comma separated classes value. Nil means "use the default set".
func Classes(q url.Values) []string {
	raw := q["classes[]"]
	if len(raw) == 0 {
		raw = q["classes"]
	}
	var out []string
	for _, v := range raw {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
