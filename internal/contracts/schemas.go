package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"adoption-tracker-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Имена документов, для которых есть схемы
const (
	DocumentKeys     = "keys"
	DocumentSnapshot = "snapshot"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(schemas.SchemasFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := fs.ReadFile(schemas.SchemasFS, path)
		if err != nil {
			return err
		}
		if err := compiler.AddResource(path, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		log.Fatalf("error walking and adding schema resources: %v", err)
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Fatalf("failed to compile schema %s: %v", path, err)
		}
		compiledSchemas[keyFromPath(path)] = schema
	}
}

// keyFromPath: "keys/v1.json" -> "keys/v1"
func keyFromPath(path string) string {
	return strings.TrimSuffix(path, ".json")
}

// ValidateKeys проверяет документ ключей (уже без комментариев)
func ValidateKeys(body []byte) error {
	return validate(DocumentKeys, "v1", body)
}

// ValidateSnapshot проверяет файл снимка
func ValidateSnapshot(body []byte) error {
	return validate(DocumentSnapshot, "v1", body)
}

func validate(document, version string, body []byte) error {
	key := document + "/" + version
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for document '%s' version '%s' not found", document, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%s document is not a valid JSON: %w", document, err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s JSON schema validation failed: %w", document, err)
	}
	return nil
}
