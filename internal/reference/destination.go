package reference

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DestinationRecord is a record in the citation manager's schema.
// Fields only ever holds names allowed for ItemType; ItemType, Creators, Tags
// and Extra are always present in the serialized form.
type DestinationRecord struct {
	ItemType string
	Fields   map[string]string
	Creators []Creator
	Tags     []Tag
	Extra    string
}

// NewDestinationRecord creates an empty record of the given item type.
func NewDestinationRecord(itemType string) DestinationRecord {
	return DestinationRecord{
		ItemType: itemType,
		Fields:   make(map[string]string),
	}
}

// Get returns a field value or "".
func (d DestinationRecord) Get(name string) string {
	return d.Fields[name]
}

// Title returns the record's title-like field for its item type.
func (d DestinationRecord) Title() string {
	for _, name := range []string{"title", "caseName", "nameOfAct", "subject"} {
		if v := d.Fields[name]; v != "" {
			return v
		}
	}
	return ""
}

// FieldNames returns the field names in sorted order.
func (d DestinationRecord) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reservedKeys are serialized from the struct members, never from Fields.
var reservedKeys = map[string]bool{
	"itemType": true,
	"creators": true,
	"tags":     true,
	"extra":    true,
}

// MarshalJSON writes the flat item object expected by the Zotero API.
func (d DestinationRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+4)
	for k, v := range d.Fields {
		if reservedKeys[k] {
			continue
		}
		out[k] = v
	}
	out["itemType"] = d.ItemType
	creators := d.Creators
	if creators == nil {
		creators = []Creator{}
	}
	out["creators"] = creators
	tags := d.Tags
	if tags == nil {
		tags = []Tag{}
	}
	out["tags"] = tags
	out["extra"] = d.Extra
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat item object. Non-string field values are kept
// in their JSON text form.
func (d *DestinationRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := NewDestinationRecord("")
	for k, v := range raw {
		switch k {
		case "itemType":
			if err := json.Unmarshal(v, &rec.ItemType); err != nil {
				return fmt.Errorf("itemType: %w", err)
			}
		case "creators":
			if err := json.Unmarshal(v, &rec.Creators); err != nil {
				return fmt.Errorf("creators: %w", err)
			}
		case "tags":
			if err := json.Unmarshal(v, &rec.Tags); err != nil {
				return fmt.Errorf("tags: %w", err)
			}
		case "extra":
			if err := json.Unmarshal(v, &rec.Extra); err != nil {
				return fmt.Errorf("extra: %w", err)
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				s = string(v)
			}
			rec.Fields[k] = s
		}
	}

	*d = rec
	return nil
}
