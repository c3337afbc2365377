package repoconfig

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema renders the JSON Schema for the repository sync file, suitable for
// editor validation of .github/sync.yml.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Config{})
	return json.MarshalIndent(schema, "", "  ")
}
