package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Object is an ordered string-keyed node destined for JSON serialization.
// Keys are emitted in insertion order, so type discriminators stay in front
// of their payload keys the way the remote service formats them.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{
		values: map[string]any{},
	}
}

// Set stores value under key, unconditionally overwriting any previous value.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Nest merges {subkey: subvalue} into the mapping stored at key, creating it
// when absent. The merge is shallow and last-write-wins per subkey. A
// non-mapping value at key is replaced by a fresh mapping.
func (o *Object) Nest(key, subkey string, subvalue any) {
	existing, ok := o.values[key]
	if ok {
		switch nested := existing.(type) {
		case *Object:
			nested.Set(subkey, subvalue)
			return
		case map[string]any:
			nested[subkey] = subvalue
			return
		}
	}

	nested := NewObject()
	nested.Set(subkey, subvalue)
	o.Set(key, nested)
}

// SetArray replaces the value at key with a materialized copy of values.
func (o *Object) SetArray(key string, values []any) {
	materialized := make([]any, len(values))
	copy(materialized, values)
	o.Set(key, materialized)
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Merge copies all of other's keys into o in order, overwriting on collision.
func (o *Object) Merge(other *Object) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		o.Set(k, other.values[k])
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	first := true
	for _, k := range o.keys {
		v, keep := pruned(o.values[k])
		if !keep {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value at %s: %w", k, err)
		}
		buf.Write(vb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Expander is implemented by builder types that expose their top level node
// so that Payload can merge several of them into one request body.
type Expander interface {
	WireObject() *Object
}

// Payload folds any number of objects into a single JSON request body.
// Top level keys merge shallowly in argument order (later objects win) and
// keys holding null values are pruned before serialization. Plain maps merge
// with their keys sorted, since they carry no insertion order of their own.
func Payload(objects ...any) ([]byte, error) {
	merged := NewObject()

	for _, obj := range objects {
		switch o := obj.(type) {
		case *Object:
			merged.Merge(o)
		case Expander:
			merged.Merge(o.WireObject())
		case map[string]any:
			keys := make([]string, 0, len(o))
			for k := range o {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				merged.Set(k, o[k])
			}
		case nil:
			continue
		default:
			return nil, fmt.Errorf("payload objects must be wire objects or maps, not %T", obj)
		}
	}

	return merged.MarshalJSON()
}

// pruned strips null values recursively, reporting whether the value should
// be kept at all. Empty mappings survive: the query grammar uses them as
// sentinel values for conditions like is_empty.
func pruned(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	switch typed := v.(type) {
	case *Object:
		if typed == nil {
			return nil, false
		}
		return typed, true
	case json.Marshaler:
		return typed, true
	case map[string]any:
		clean := make(map[string]any, len(typed))
		for k, mv := range typed {
			if cv, keep := pruned(mv); keep {
				clean[k] = cv
			}
		}
		return clean, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Slice, reflect.Array:
		clean := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if cv, keep := pruned(rv.Index(i).Interface()); keep {
				clean = append(clean, cv)
			}
		}
		return clean, true
	}

	return v, true
}
