package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// lookupFunc matches os.LookupEnv
type lookupFunc func(key string) (string, bool)

// applyEnv overrides every field of cfg tagged `env:"NAME"` whose variable
// lookup reports as set. Nested structs are walked recursively.
func applyEnv(cfg interface{}, lookup lookupFunc) error {
	root := reflect.ValueOf(cfg)
	if root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to a struct, got %T", cfg)
	}
	return applyEnvTo(root.Elem(), lookup)
}

func applyEnvTo(section reflect.Value, lookup lookupFunc) error {
	for i := 0; i < section.NumField(); i++ {
		field := section.Field(i)
		if field.Kind() == reflect.Struct {
			if err := applyEnvTo(field, lookup); err != nil {
				return err
			}
			continue
		}

		key := section.Type().Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if err := assign(field, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func assign(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected a boolean, got %q", raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
