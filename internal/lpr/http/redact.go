package http

import (
	"bytes"
	"encoding/json"
	"strings"
)

// redactedPlaceholder replaces the value of every masked field.
const redactedPlaceholder = "[REDACTED]"

// RedactJSON masks the named fields anywhere in a JSON document, however
// deeply nested, matching field names case-insensitively. Input that is
// not valid JSON comes back unchanged; redaction must never corrupt a
// response it does not understand.
func RedactJSON(body []byte, fields []string) []byte {
	if len(fields) == 0 || len(bytes.TrimSpace(body)) == 0 {
		return body
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return body
	}

	names := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		names[strings.ToLower(f)] = struct{}{}
	}

	out, err := json.Marshal(redactValue(doc, names))
	if err != nil {
		return body
	}
	return out
}

func redactValue(v any, names map[string]struct{}) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if _, hit := names[strings.ToLower(k)]; hit {
				t[k] = redactedPlaceholder
				continue
			}
			t[k] = redactValue(val, names)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = redactValue(val, names)
		}
		return t
	default:
		return v
	}
}
