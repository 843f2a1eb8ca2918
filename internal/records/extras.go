package records

import (
	"encoding/json"
	"strings"
)

// DecodeExtras parses the extras payload into a map. Anything that is not a
// flat JSON object (including the empty string) decodes to an empty map;
// malformed payloads are treated as absent rather than surfaced.
func DecodeExtras(raw string) map[string]string {
	out := map[string]string{}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return out
	}
	var generic map[string]any
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		return out
	}
	for k, v := range generic {
		switch value := v.(type) {
		case string:
			out[k] = value
		case nil:
			out[k] = ""
		default:
			encoded, err := json.Marshal(value)
			if err != nil {
				continue
			}
			out[k] = string(encoded)
		}
	}
	return out
}

// EncodeExtras serializes a map back to the compact JSON form. An empty map
// encodes to the empty string so records without extras keep a NULL-ish
// column.
func EncodeExtras(extras map[string]string) string {
	if len(extras) == 0 {
		return ""
	}
	encoded, err := json.Marshal(extras)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// MergeExtras unions the incoming extras into the existing payload. On key
// collision the existing value wins unless it is empty or whitespace-only.
func MergeExtras(existing, incoming string) string {
	merged := DecodeExtras(existing)
	for k, v := range DecodeExtras(incoming) {
		current, ok := merged[k]
		if !ok || strings.TrimSpace(current) == "" {
			merged[k] = v
		}
	}
	return EncodeExtras(merged)
}
