package script

import (
	"fmt"
	"reflect"

	"github.com/d5/tengo/v2"
)

// toObject converts a native component to a tengo object. Structs are
// flattened into maps keyed by field name; anything else goes through
// tengo.FromInterface.
func toObject(v any) (tengo.Object, error) {
	if obj, ok := v.(tengo.Object); ok {
		return obj, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return tengo.FromInterface(normalize(v))
	}
	out := make(map[string]tengo.Object, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		obj, err := toObject(rv.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("script: field %s: %w", f.Name, err)
		}
		out[f.Name] = obj
	}
	return &tengo.ImmutableMap{Value: out}, nil
}

func normalize(v any) any {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return v
}

// toAny converts a tengo object to plain Go values suitable for printing or
// YAML encoding.
func toAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Char:
		return string(v.Value)
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, toAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, toAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = toAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = toAny(item)
		}
		return out
	case *tengo.Error:
		return fmt.Sprintf("error: %s", toAny(v.Value))
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}

// ToAny converts a script component value to plain Go values.
func ToAny(obj tengo.Object) any {
	return toAny(obj)
}

// FromAny converts plain Go values, such as decoded YAML, to a tengo object.
func FromAny(v any) (tengo.Object, error) {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]tengo.Object, len(n))
		for k, item := range n {
			obj, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			out[k] = obj
		}
		return &tengo.Map{Value: out}, nil
	case []any:
		out := make([]tengo.Object, 0, len(n))
		for _, item := range n {
			obj, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			out = append(out, obj)
		}
		return &tengo.Array{Value: out}, nil
	}
	return toObject(v)
}
