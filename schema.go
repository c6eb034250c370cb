package warden

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: false,
}

// SchemaFor derives a JSON Schema for the parameters struct T.
//
// Field names come from json tags; `jsonschema:"required"` and
// `jsonschema:"description=..."` tags are honoured. The $schema and $id
// keys are stripped since providers reject them in tool definitions.
func SchemaFor[T any]() json.RawMessage {
	var zero T
	s := reflector.Reflect(&zero)
	s.Version = ""
	s.ID = ""
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}
