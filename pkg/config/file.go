package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/regland/regland/internal/util"
)

// Show writes the effective configuration as YAML.
func Show(w io.Writer, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Get returns the effective value of a dotted key.
func Get(v *viper.Viper, key string) (any, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !v.IsSet(key) {
		return nil, fmt.Errorf("key %q is not set", key)
	}
	return v.Get(key), nil
}

// parseValue turns command line text into a YAML scalar.
func parseValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// Set writes key=value into the YAML file at path, creating it when missing
// and keeping every other key. The result must still validate.
func Set(path, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return errors.New("key cannot be empty")
	}

	doc := map[string]any{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := setPath(doc, strings.Split(key, "."), parseValue(value)); err != nil {
		return err
	}

	// validate before touching the file
	v := viper.New()
	setDefaults(v)
	if err := v.MergeConfigMap(doc); err != nil {
		return err
	}
	if _, err := Decode(v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := util.EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func setPath(doc map[string]any, parts []string, value any) error {
	node := doc
	for i, p := range parts[:len(parts)-1] {
		next, ok := node[p]
		if !ok {
			child := map[string]any{}
			node[p] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is not a section", strings.Join(parts[:i+1], "."))
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}
