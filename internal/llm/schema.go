package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

var reflector = jsonschema.Reflector{
	DoNotReference:             true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  false,
	RequiredFromJSONSchemaTags: false,
}

// SchemaFor renders the JSON schema of v for embedding in a prompt
func SchemaFor(v any) string {
	schema := reflector.Reflect(v)
	// Drop the draft URL, models do not need it
	schema.Version = ""

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
