// Package schemas provides JSON Schema validation for the synchronized datasets.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ResolveSchemaPath attempts to find a schema file by trying multiple common path resolutions.
// It tries paths relative to the current working directory, then paths relative to likely repo root locations.
// Returns the first path that exists, or empty string if none found.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Schema is a compiled JSON Schema that can validate many documents.
type Schema struct {
	path   string
	schema *gojsonschema.Schema
}

// Load compiles the schema file at path. A relative path that does not
// exist from the working directory is also looked up from its parents
// (see ResolveSchemaPath).
func Load(path string) (*Schema, error) {
	absPath := ResolveSchemaPath(path)
	if absPath == "" {
		notFound := path
		if abs, err := filepath.Abs(path); err == nil {
			notFound = abs
		}
		return nil, &SchemaLoadError{Path: notFound, Message: "schema file not found", Cause: os.ErrNotExist}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + absPath))
	if err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "invalid schema", Cause: err}
	}
	return &Schema{path: absPath, schema: schema}, nil
}

// Path returns the absolute location the schema was loaded from.
func (s *Schema) Path() string {
	return s.path
}

// Validate checks one JSON document and returns a *ValidationError listing
// every violation.
func (s *Schema) Validate(document []byte) error {
	return s.validate(document, "")
}

func (s *Schema) validate(document []byte, prefix string) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		if prefix != "" {
			return fmt.Errorf("failed to validate %s against %s: %w", prefix, s.path, err)
		}
		return fmt.Errorf("failed to validate against %s: %w", s.path, err)
	}
	return toValidationError(result, prefix)
}

// ValidateCollection validates each raw item of a collection and merges all
// violations into one *ValidationError. Field paths are prefixed with
// "<collection>[i]".
func ValidateCollection(s *Schema, collection string, items []json.RawMessage) error {
	var all []FieldError
	for i, item := range items {
		err := s.validate(item, fmt.Sprintf("%s[%d]", collection, i))
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		all = append(all, verr.Errors...)
	}
	if len(all) == 0 {
		return nil
	}
	return &ValidationError{Errors: all}
}

// toValidationError converts a failed result into a *ValidationError, with
// every field path placed under prefix when one is given.
func toValidationError(result *gojsonschema.Result, prefix string) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		if prefix != "" {
			if field == "(root)" {
				field = prefix
			} else {
				field = prefix + "." + field
			}
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
