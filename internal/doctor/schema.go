package doctor

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaJSON)

// validateConfigJSON checks the JSON config mirror against the embedded
// schema. A missing file is a warn, not a fail: only config.toml is
// mandatory and the mirror exists only when --json was requested.
func validateConfigJSON(path string) Check {
	check := Check{Name: "validate config.json"}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			check.Status = statusWarn
			check.Detail = "not present (run link --json to generate)"
			return check
		}
		check.Status = statusFail
		check.Detail = err.Error()
		return check
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		check.Status = statusFail
		check.Detail = fmt.Sprintf("not valid JSON: %v", err)
		return check
	}
	if err := configSchema.Validate(doc); err != nil {
		detail := err.Error()
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			detail = flattenValidationError(ve)
		}
		check.Status = statusFail
		check.Detail = detail
		return check
	}
	check.Status = statusPass
	check.Detail = path
	return check
}

func flattenValidationError(ve *jsonschema.ValidationError) string {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if loc == "" {
		return leaf.Message
	}
	return loc + ": " + leaf.Message
}
