package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Override is one schema directive. Empty DataType or DataModel means the
// directive does not force that layer.
type Override struct {
	Column    string    `json:"column"`
	DataType  DataType  `json:"dataType,omitempty"`
	DataModel DataModel `json:"dataModel,omitempty"`
}

// Schema is an ordered list of overrides, applied after inference in order.
type Schema []Override

type overrideFields struct {
	DataType  string `json:"dataType"`
	DataModel string `json:"dataModel"`
}

// UnmarshalJSON accepts both the flat form
//
//	{"column": "age", "dataModel": "measure"}
//
// and the keyed form
//
//	{"age": {"dataModel": "measure"}}
//
// A "column" key holding a string selects the flat form; holding an object,
// it is the keyed form for a column named "column". Labels are lower-cased;
// validation happens when the schema is applied.
func (o *Override) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("override: %w", err)
	}

	var col string
	if c, ok := raw["column"]; ok && json.Unmarshal(c, &col) == nil {
		var flat struct {
			Column string `json:"column"`
			overrideFields
		}
		if err := json.Unmarshal(b, &flat); err != nil {
			return fmt.Errorf("override: %w", err)
		}
		*o = newOverride(flat.Column, flat.overrideFields)
		return nil
	}

	if len(raw) != 1 {
		return fmt.Errorf("override: keyed form needs exactly one column, got %d keys", len(raw))
	}
	for name, body := range raw {
		var f overrideFields
		if err := json.Unmarshal(body, &f); err != nil {
			return fmt.Errorf("override %q: %w", name, err)
		}
		*o = newOverride(name, f)
	}
	return nil
}

func newOverride(column string, f overrideFields) Override {
	return Override{
		Column:    strings.TrimSpace(column),
		DataType:  DataType(strings.ToLower(strings.TrimSpace(f.DataType))),
		DataModel: DataModel(strings.ToLower(strings.TrimSpace(f.DataModel))),
	}
}

// ParseSchema decodes a JSON array of overrides.
func ParseSchema(b []byte) (Schema, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return s, nil
}

// LoadSchema reads and decodes a schema file.
func LoadSchema(path string) (Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(b)
}
