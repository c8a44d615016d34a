// Package jsonx converts Go values into loosely typed JSON shapes.
package jsonx

import json "github.com/goccy/go-json"

// ToDynamicJSON round-trips val through its JSON encoding into a
// map[string]any. The result honors the value's json tags, so fields marked
// omitempty disappear when unset.
func ToDynamicJSON(val any) (map[string]any, error) {
	result := make(map[string]any)
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}
