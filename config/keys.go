package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LiveKeys are the settings a running watch view applies without a restart.
var LiveKeys = []string{"trader_id", "language"}

var durationType = reflect.TypeOf(time.Duration(0))

// eachKey calls fn for every field of v that has a JSON name, stopping early
// when fn returns false.
func eachKey(v reflect.Value, fn func(key string, field reflect.Value) bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if key == "" || key == "-" {
			continue
		}
		if !fn(key, v.Field(i)) {
			return
		}
	}
}

// Set assigns value to the field whose JSON name is key. Durations take Go
// duration strings such as "15s".
func (c *Config) Set(key, value string) error {
	var (
		found bool
		err   error
	)
	eachKey(reflect.ValueOf(c).Elem(), func(k string, field reflect.Value) bool {
		if k != key {
			return true
		}
		found = true
		err = setField(field, value)
		return false
	})
	if !found {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(value)
	case field.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// ChangedKeys lists the JSON names of the settings that differ between a and b.
func ChangedKeys(a, b Config) []string {
	var keys []string
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	for i := 0; i < av.NumField(); i++ {
		key := strings.Split(av.Type().Field(i).Tag.Get("json"), ",")[0]
		if key == "" || key == "-" {
			continue
		}
		if !reflect.DeepEqual(av.Field(i).Interface(), bv.Field(i).Interface()) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Change is a config reload that touched at least one setting.
type Change struct {
	Config Config
	Keys   []string
}

// Has reports whether key changed.
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Live reports whether the change touches a setting the view applies live.
func (c Change) Live() bool {
	for _, k := range LiveKeys {
		if c.Has(k) {
			return true
		}
	}
	return false
}

// RestartKeys lists changed settings that only take effect on the next start.
func (c Change) RestartKeys() []string {
	var out []string
	for _, k := range c.Keys {
		live := false
		for _, l := range LiveKeys {
			live = live || k == l
		}
		if !live {
			out = append(out, k)
		}
	}
	return out
}
