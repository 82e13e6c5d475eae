package ai

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// OutletQuery mirrors core's unexported generatedQuery shape so the Outlet
// SQL Gate's schema can be reflected here, in the one package allowed to
// depend on invopop/jsonschema, rather than hand-maintained in core.
type OutletQuery struct {
	Kind string `json:"kind" jsonschema:"enum=list,enum=count,enum=single" jsonschema_description:"the shape of the expected result"`
	SQL  string `json:"sql" jsonschema_description:"a single read-only SELECT statement against the outlets table"`
}

// GenerateSchema reflects T into the map[string]any shape the Responses API's
// strict JSON-schema mode expects, via invopop/jsonschema rather than a
// hand-maintained schema literal.
func GenerateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var zero T
	schema := reflector.Reflect(zero)

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal reflected schema: %w", err)
	}
	return out, nil
}
