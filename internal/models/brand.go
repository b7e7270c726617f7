package models

import "encoding/json"

// Brand is a brand record reduced to the fields the storefront consumes.
// Values are kept verbatim; a missing field is encoded as null.
type Brand struct {
	ID   json.RawMessage `json:"id"`
	Name json.RawMessage `json:"name"`
}
