// Package brands reduces brand exports to the id and name fields.
package brands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"elafcatalog/internal/models"
)

// Decode reads a JSON array of brand objects with arbitrary fields.
func Decode(r io.Reader) ([]map[string]json.RawMessage, error) {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid brand JSON: %w", err)
	}
	if raw == nil {
		return nil, errors.New("invalid brand JSON: expected an array, got null")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("extra data after top-level value")
		}
		return nil, fmt.Errorf("invalid brand JSON: %w", err)
	}
	return raw, nil
}

// Clean keeps only id and name of every brand, in input order.
func Clean(raw []map[string]json.RawMessage) []models.Brand {
	out := make([]models.Brand, 0, len(raw))
	for _, b := range raw {
		out = append(out, models.Brand{ID: b["id"], Name: b["name"]})
	}
	return out
}

// Encode writes brands as indented JSON without escaping non-ASCII or HTML.
func Encode(w io.Writer, cleaned []models.Brand) error {
	if cleaned == nil {
		cleaned = []models.Brand{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cleaned)
}
