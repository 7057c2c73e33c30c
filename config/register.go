// File: stratus/config/register.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Register declares path with the value Get returns until a source sets it.
// Every dot-separated segment must be a TOML bare key. Registering a path
// again replaces its default and drops values loaded for it.
func (c *Config) Register(path string, defaultValue any) error {
	if path == "" {
		return fmt.Errorf("registration path cannot be empty")
	}
	if segment, ok := validatePath(path); !ok {
		return fmt.Errorf("invalid path segment %q in path %q", segment, path)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[path] = configItem{defaultValue: defaultValue, currentValue: defaultValue}
	return nil
}

// RegisterStruct registers every exported leaf field of a struct or struct
// pointer under prefix, using the field's current value as default. Paths
// follow the Config's struct tag (toml unless changed); a "-" tag skips the
// field, nested structs become tables and time.Time stays a leaf. Nil struct
// pointers inside the struct are skipped.
func (c *Config) RegisterStruct(prefix string, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	c.mutex.RLock()
	tagName := c.tagName
	c.mutex.RUnlock()

	var errs []error
	c.registerFields(v, tagName, strings.TrimSuffix(prefix, "."), &errs)
	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func (c *Config) registerFields(v reflect.Value, tagName, prefix string, errs *[]error) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key, _, _ := strings.Cut(field.Tag.Get(tagName), ",")
		switch key {
		case "-":
			continue
		case "":
			key = field.Name
		}
		path := joinPath(prefix, key)

		value := v.Field(i)
		if nested, ok := structValue(value); ok {
			if nested.IsValid() {
				c.registerFields(nested, tagName, path, errs)
			}
			continue
		}

		if err := c.Register(path, value.Interface()); err != nil {
			*errs = append(*errs, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err))
		}
	}
}

// structValue reports whether v is a table-like struct or struct pointer and
// returns the struct, invalid for a nil pointer.
func structValue(v reflect.Value) (reflect.Value, bool) {
	switch {
	case v.Kind() == reflect.Struct && v.Type() != timeType:
		return v, true
	case v.Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Struct && v.Type().Elem() != timeType:
		if v.IsNil() {
			return reflect.Value{}, true
		}
		return v.Elem(), true
	}
	return reflect.Value{}, false
}

// Paths returns the registered paths starting with prefix, sorted.
func (c *Config) Paths(prefix string) []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var paths []string
	for path := range c.items {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
