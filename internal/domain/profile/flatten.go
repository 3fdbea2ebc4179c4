// Package profile flattens a nested profile record into (key, text) leaves
// for embedding. Keys are dotted paths with [i] list indices, e.g.
// skills.languages[0]; the same profile always flattens to the same keys, so
// re-indexing overwrites record-for-record.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is one flattened leaf of a profile record. Immutable once
// produced; superseded only by re-running the flatten step.
type Document struct {
	Key  string
	Text string
}

type member struct {
	key   string
	value any
}

// Flatten parses a profile JSON record and returns its leaves in document
// order.
func Flatten(data []byte) ([]Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	var docs []Document
	walk(root, "", &docs)
	return docs, nil
}

// parseValue reads one JSON value, preserving object member order (a plain
// map would lose it).
func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		var obj []member
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key token %v", keyTok)
			}
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: val})
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil

	case '[':
		var arr []any
		for dec.More() {
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func walk(v any, key string, out *[]Document) {
	switch val := v.(type) {
	case []member:
		for _, m := range val {
			child := m.key
			if key != "" {
				child = key + "." + m.key
			}
			walk(m.value, child, out)
		}
	case []any:
		for i, item := range val {
			walk(item, key+"["+strconv.Itoa(i)+"]", out)
		}
	default:
		*out = append(*out, Document{Key: key, Text: scalarText(val)})
	}
}

func scalarText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
