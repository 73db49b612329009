// Package store holds the registry of object-store backends
// and operations that span more than one store.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobg/vcs"
)

// Factory creates a store from a configuration map,
// typically decoded from JSON.
type Factory func(context.Context, map[string]interface{}) (vcs.Store, error)

var registry = make(map[string]Factory)

// Register makes a store type available to Create.
// It is meant to be called from the init function of a backend package.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a store of a registered type.
func Create(ctx context.Context, key string, conf map[string]interface{}) (vcs.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// FromConfig creates a store from a configuration map
// whose "type" member names a registered store type.
func FromConfig(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, fmt.Errorf("config missing `type` parameter")
	}
	return Create(ctx, typ, conf)
}

// Types lists the registered store types in sorted order.
func Types() []string {
	result := make([]string, 0, len(registry))
	for k := range registry {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Nested creates the store described by conf["nested"],
// for use by factories of wrapper stores.
func Nested(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
	nested, ok := conf["nested"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(`missing "nested" parameter`)
	}
	return FromConfig(ctx, nested)
}

// Int reads an integer parameter from a configuration map.
// JSON decoding produces float64 for numbers,
// so that is accepted along with the integer types.
func Int(conf map[string]interface{}, key string) (int, bool) {
	switch v := conf[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// List reads a list of nested configuration maps from a configuration map.
// JSON decoding produces []interface{} for arrays,
// so that is accepted along with []map[string]interface{}.
func List(conf map[string]interface{}, key string) ([]map[string]interface{}, bool) {
	switch v := conf[key].(type) {
	case []map[string]interface{}:
		return v, true
	case []interface{}:
		result := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, false
			}
			result = append(result, m)
		}
		return result, true
	}
	return nil, false
}
