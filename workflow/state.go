package workflow

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"
)

// State is the record threaded through a run. Fields are absent until written.
//
// A State is owned by one run at a time and is not safe for concurrent
// mutation.
type State struct {
	schema *Schema
	values map[string]string
}

// NewState creates a state bound to schema and seeded with input fields.
// It rejects unknown fields, non-input fields and values outside a label set.
func NewState(schema *Schema, inputs map[string]string) (*State, error) {
	s := &State{schema: schema, values: make(map[string]string, len(schema.fields))}
	for _, f := range schema.fields {
		v, ok := inputs[f.Name]
		if !ok {
			continue
		}
		if err := s.Set(f.Name, v); err != nil {
			return nil, err
		}
	}
	for name := range inputs {
		if _, ok := schema.Field(name); !ok {
			return nil, structural("", name, "unknown field")
		}
	}
	return s, nil
}

// DecodeState is like NewState for loosely typed input such as a decoded
// JSON object. Scalars are converted to their string form.
func DecodeState(schema *Schema, raw map[string]any) (*State, error) {
	var inputs map[string]string
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &inputs,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("workflow: decode state: %w", err)
	}
	return NewState(schema, inputs)
}

// Schema returns the schema the state is bound to.
func (s *State) Schema() *Schema {
	return s.schema
}

// Get returns the value of a field and whether it is present.
func (s *State) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether a field is present.
func (s *State) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Set seeds an input field. Fields produced by steps are written through
// their Scope instead.
func (s *State) Set(name, value string) error {
	f, ok := s.schema.Field(name)
	if !ok {
		return structural("", name, "unknown field")
	}
	if !f.Input {
		return structural("", name, "field is not an input")
	}
	if s.Has(name) {
		return structural("", name, "field is already set")
	}
	if err := s.schema.check(name, value); err != nil {
		return err
	}
	s.values[name] = value
	return nil
}

// Snapshot returns a copy of the present fields.
func (s *State) Snapshot() map[string]string {
	return maps.Clone(s.values)
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	values := maps.Clone(s.values)
	if values == nil {
		values = make(map[string]string)
	}
	return &State{schema: s.schema, values: values}
}

// MarshalJSON encodes the present fields as a JSON object.
func (s *State) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

func (s *State) write(name, value string) {
	s.values[name] = value
}
