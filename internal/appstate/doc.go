package appstate

import (
	"encoding/json"
	"fmt"
)

// The persistence gateway speaks untyped field maps; entities here are typed
// structs. DocOf and FromDoc bridge the two via a JSON round trip. The id is
// the document key, never one of its fields.

// DocOf flattens a record into its field map, excluding the id.
func DocOf(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten record: %w", err)
	}
	delete(fields, "id")

	return fields, nil
}

// FromDoc rebuilds a typed record from a field map, injecting the document id.
func FromDoc[T any](id string, fields map[string]any) (T, error) {
	var out T

	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["id"] = id

	raw, err := json.Marshal(merged)
	if err != nil {
		return out, fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}

	return out, nil
}
