package domain

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// jsonKeys returns the JSON object keys produced by the exported, tagged
// fields of struct type t. Fields tagged "-" are skipped.
func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	return keys
}

// encodedKeys returns the member names json.Marshal produces for v.
func encodedKeys(v any) (map[string]struct{}, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &obj); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(obj))
	for k := range obj {
		keys[k] = struct{}{}
	}
	return keys, nil
}

// splitExtra decodes data as a JSON object and returns every member whose
// key is not in emitted. Returns nil when there are none.
func splitExtra(data []byte, emitted map[string]struct{}) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for k := range emitted {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// mergeExtra adds the extra members to an already encoded JSON object.
// A member the encoding already carries wins over its extra copy, except
// for the keys named in override.
func mergeExtra(encoded []byte, extra map[string]json.RawMessage, override ...string) ([]byte, error) {
	if len(extra) == 0 {
		return encoded, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, set := obj[k]; set && !slices.Contains(override, k) {
			continue
		}
		obj[k] = v
	}
	return json.Marshal(obj)
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
