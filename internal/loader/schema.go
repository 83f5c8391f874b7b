package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

// compileSchemas compiles every embedded schema exactly once
func compileSchemas() {
	schemas = make(map[string]*jsonschema.Schema)
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemaErr = err
		return
	}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(entry.Name(), bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("bad embedded schema %s: %w", entry.Name(), err)
			return
		}
		schema, err := compiler.Compile(entry.Name())
		if err != nil {
			schemaErr = fmt.Errorf("bad embedded schema %s: %w", entry.Name(), err)
			return
		}
		// buildings.schema.json guards buildings.json
		target := entry.Name()[:len(entry.Name())-len(".schema.json")] + ".json"
		schemas[target] = schema
	}
}

// validateAgainstSchema checks raw file content against the schema embedded
// for that file name. Files without a schema pass unchecked.
func validateAgainstSchema(name string, data []byte) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	schema, ok := schemas[name]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
