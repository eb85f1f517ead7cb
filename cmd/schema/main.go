// Command schema emits the JSON schema for config/kits/catalog.json so
// designer edits can be validated in editors and CI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"emberveil/combat/kit/catalog"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", filepath.Join("config", "kits", "catalog.schema.json"), "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	entrySchema := reflector.ReflectFromType(reflect.TypeOf(catalog.EntryDocument{}))
	entrySchema.Version = ""
	entrySchema.Title = "Kit Loadout Entry"
	entrySchema.Description = "Names a built-in kit and optionally overrides its numeric tuning."

	arraySchema := &jsonschema.Schema{
		Type:        "array",
		Title:       "Array Catalog",
		Description: "Kit catalog expressed as an array of loadout entries.",
		Items:       entrySchema,
	}

	objectSchema := &jsonschema.Schema{
		Type:                 "object",
		Title:                "Object Catalog",
		Description:          "Kit catalog expressed as an object keyed by loadout ID.",
		AdditionalProperties: entrySchema,
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Emberveil Kit Catalog",
		Description: "Designer-authored kit loadouts consumed by the combat core.",
		OneOf: []*jsonschema.Schema{
			arraySchema,
			objectSchema,
		},
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
