package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// JSONReader reads blocks saved as a JSON array, or as an object with a
// "blocks" array.
type JSONReader struct{}

// Format returns the reader name.
func (*JSONReader) Format() string { return "json" }

// Read decodes the snapshot.
func (*JSONReader) Read(r io.Reader) ([]model.Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var blocks []model.Block
		if err := json.Unmarshal(data, &blocks); err != nil {
			return nil, fmt.Errorf("decoding block array: %w", err)
		}
		return blocks, nil
	}

	var doc struct {
		Blocks []model.Block `json:"blocks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return doc.Blocks, nil
}
