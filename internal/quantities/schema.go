package quantities

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"jcwest/internal/domain"
)

//go:embed schema_v0.json
var schemaV0 string

var compiledV0 = jsonschema.MustCompileString("quantities_v0.json", schemaV0)

// ValidateDocument checks raw quantities JSON against the v0 schema.
// Schema failures are ErrSchemaViolation; a version mismatch is reported
// as ErrUnsupportedVersion so callers can distinguish the two.
func ValidateDocument(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}

	if m, ok := doc.(map[string]any); ok {
		if v, ok := m["version"].(string); ok && v != domain.QuantitiesVersion {
			return fmt.Errorf("%w: %q", domain.ErrUnsupportedVersion, v)
		}
	}

	if err := compiledV0.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	return nil
}
