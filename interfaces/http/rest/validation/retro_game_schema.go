// Package validation checks request bodies against the structural RetroGame
// schema before they reach the catalog service.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"retrogames/domain/catalog"
)

// MismatchMessage is shown to clients whose body fails validation.
const MismatchMessage = "Incorrect type. Must match RetroGame schema"

// ErrSchemaMismatch is returned for bodies that do not match the RetroGame schema.
var ErrSchemaMismatch = errors.New("body does not match the retro game schema")

var retroGameSchema = newRetroGameSchema()

func newRetroGameSchema() *openapi3.Schema {
	properties := map[string]*openapi3.Schema{
		"id":             openapi3.NewIntegerSchema(),
		"title":          openapi3.NewStringSchema(),
		"genre":          openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
		"platform":       openapi3.NewStringSchema(),
		"release_date":   openapi3.NewStringSchema(),
		"developer":      openapi3.NewStringSchema(),
		"publisher":      openapi3.NewStringSchema(),
		"description":    openapi3.NewStringSchema(),
		"cover_art_path": openapi3.NewStringSchema(),
		"screenshots":    openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
		"rating":         openapi3.NewFloat64Schema(),
		"popularity":     openapi3.NewFloat64Schema(),
		"multiplayer":    openapi3.NewBoolSchema(),
		"average_score":  openapi3.NewFloat64Schema(),
		"review_count":   openapi3.NewIntegerSchema(),
	}

	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)

	// userId is not a property, so additionalProperties=false rejects it.
	return openapi3.NewObjectSchema().
		WithProperties(properties).
		WithRequired(required).
		WithoutAdditionalProperties()
}

// RetroGameSchema returns the schema bodies are validated against. The value
// is shared; callers must not modify it.
func RetroGameSchema() *openapi3.Schema {
	return retroGameSchema
}

// SchemaError reports a body that failed validation. Schema is echoed back to
// the client so it can see the expected shape.
type SchemaError struct {
	Reason string
	Schema *openapi3.Schema
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaMismatch.Error(), e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// DecodeRetroGame validates raw against the RetroGame schema and decodes it.
func DecodeRetroGame(raw []byte) (catalog.RetroGame, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return catalog.RetroGame{}, &SchemaError{Reason: err.Error(), Schema: retroGameSchema}
	}

	if err := retroGameSchema.VisitJSON(value); err != nil {
		return catalog.RetroGame{}, &SchemaError{Reason: err.Error(), Schema: retroGameSchema}
	}

	var game catalog.RetroGame
	if err := json.Unmarshal(raw, &game); err != nil {
		return catalog.RetroGame{}, &SchemaError{Reason: err.Error(), Schema: retroGameSchema}
	}
	return game, nil
}
