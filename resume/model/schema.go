package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "resume document invalid: " + strings.Join(e.Violations, "; ")
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// ValidateJSON checks raw JSON against the résumé schema.
func ValidateJSON(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile resume schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &SchemaError{Violations: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	out := &SchemaError{}
	for _, e := range res.Errors() {
		out.Violations = append(out.Violations, e.String())
	}
	return out
}

// DecodeDocument validates raw JSON and decodes it into a ResumeDocument.
func DecodeDocument(raw []byte) (ResumeDocument, error) {
	if err := ValidateJSON(raw); err != nil {
		return ResumeDocument{}, err
	}
	var doc ResumeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ResumeDocument{}, fmt.Errorf("decode resume document: %w", err)
	}
	return doc, nil
}
