package workflow

import (
	"fmt"
	"slices"
)

// End is the terminal sentinel. It lies outside the step namespace.
const End = "__end__"

// Field declares one slot of the state.
type Field struct {
	// Name identifies the field.
	Name string `mapstructure:"name" yaml:"name"`

	// Input marks fields supplied by the caller before the run.
	Input bool `mapstructure:"input" yaml:"input"`

	// Labels, when non-empty, is the closed set of values the field accepts.
	Labels []string `mapstructure:"labels" yaml:"labels"`
}

// Allows reports whether value is acceptable for the field.
func (f Field) Allows(value string) bool {
	return len(f.Labels) == 0 || slices.Contains(f.Labels, value)
}

// Schema is an ordered, immutable set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates and returns a schema of fields.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, structural("", "", "field with empty name")
		}
		if f.Name == End {
			return nil, structural("", f.Name, "field name is reserved")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, structural("", f.Name, "duplicate field")
		}
		seen := make(map[string]bool, len(f.Labels))
		for _, l := range f.Labels {
			if l == "" || seen[l] {
				return nil, structural("", f.Name, "empty or duplicate label %q", l)
			}
			seen[l] = true
		}
		f.Labels = slices.Clone(f.Labels)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Inputs returns the names of the input fields in declaration order.
func (s *Schema) Inputs() []string {
	var names []string
	for _, f := range s.fields {
		if f.Input {
			names = append(names, f.Name)
		}
	}
	return names
}

// Labels returns the label set of a field, or nil.
func (s *Schema) Labels(name string) []string {
	f, ok := s.Field(name)
	if !ok {
		return nil
	}
	return slices.Clone(f.Labels)
}

// check validates a value for a field.
func (s *Schema) check(name, value string) error {
	f, ok := s.Field(name)
	if !ok {
		return structural("", name, "unknown field")
	}
	if !f.Allows(value) {
		return structural("", name, "value %q is not one of %v", value, f.Labels)
	}
	return nil
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema%v", s.fieldNames())
}

func (s *Schema) fieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}
