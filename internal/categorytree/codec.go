package categorytree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"elafcatalog/internal/models"
)

// DecodeRecords reads a JSON array of flat category records. The array must be
// the only value in r.
func DecodeRecords(r io.Reader) ([]models.FlatRecord, error) {
	var records []models.FlatRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: expected an array, got null", ErrInvalidJSON)
	}
	if err := expectEOF(dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return records, nil
}

func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New("extra data after top-level value")
}

// EncodeForest writes the forest as two-space indented JSON. Non-ASCII text
// and HTML characters are written literally.
func EncodeForest(w io.Writer, forest []models.Node) error {
	if forest == nil {
		forest = []models.Node{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(forest)
}

// MarshalForest returns the bytes EncodeForest would write.
func MarshalForest(forest []models.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeForest(&buf, forest); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
