package rest

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaValidator checks raw request bodies before they are decoded.
type schemaValidator struct {
	schema *gojsonschema.Schema
}

func loadSchema(name string) (*schemaValidator, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &schemaValidator{schema: schema}, nil
}

func mustLoadSchema(name string) *schemaValidator {
	v, err := loadSchema(name)
	if err != nil {
		panic(err)
	}
	return v
}

var (
	evaluateSchema = mustLoadSchema("evaluate.json")
	submitSchema   = mustLoadSchema("submit_application.json")
)

// validationError lists every schema violation in one message.
type validationError struct {
	violations []string
}

func (e *validationError) Error() string {
	return "request validation failed: " + strings.Join(e.violations, "; ")
}

func (v *schemaValidator) validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &validationError{violations: []string{"malformed JSON"}}
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return &validationError{violations: violations}
}
