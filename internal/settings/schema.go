// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package settings

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the settings file schema.
const SchemaID = "https://holomush.dev/schemas/resto-settings.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	errSchema      error
)

// GenerateSchema generates a JSON Schema from the File struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&File{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "resto client settings"
	schema.Description = "Schema for the settings.yaml file of the resto client"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_ENCODE_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the settings schema. An empty
// document is valid.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("SETTINGS_INVALID").Wrapf(err, "invalid YAML")
	}
	if doc == nil {
		return nil
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code("SETTINGS_INVALID").Wrapf(err, "schema validation failed")
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaBytes, err := GenerateSchema()
		if err != nil {
			errSchema = err
			return
		}
		var schemaData any
		if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("settings.schema.json", schemaData); err != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
			return
		}
		compiledSchema, errSchema = c.Compile("settings.schema.json")
		if errSchema != nil {
			errSchema = oops.Code("SCHEMA_COMPILE_FAILED").Wrap(errSchema)
		}
	})
	return compiledSchema, errSchema
}

// toJSONTypes converts YAML-decoded values into the types the validator
// expects. YAML scalars such as timestamps go through a JSON round trip.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var out any
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		}
		return val
	}
}
