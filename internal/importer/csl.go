package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matsen/bibnow/internal/reference"
)

// ParseCSL parses CSL-JSON: a single item object or an array of items.
// Numbers are kept as json.Number so years and page counts round-trip exactly.
func ParseCSL(data []byte) ([]reference.SourceRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing CSL-JSON: %w", err)
	}

	switch v := doc.(type) {
	case map[string]any:
		return []reference.SourceRecord{cslRecord(v)}, nil
	case []any:
		records := make([]reference.SourceRecord, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("parsing CSL-JSON: item %d is not an object", i+1)
			}
			records = append(records, cslRecord(obj))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("parsing CSL-JSON: expected an object or an array, got %T", doc)
	}
}

func cslRecord(item map[string]any) reference.SourceRecord {
	rec := reference.NewSourceRecord(reference.ValueString(item["type"]), reference.ValueString(item["id"]))
	for k, v := range item {
		rec.Fields[k] = v
	}
	return rec
}
