package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/board.schema.json
var boardSchemaJSON string

const boardSchemaURL = "kanby://board.schema.json"

var (
	boardSchemaOnce sync.Once
	boardSchema     *jsonschema.Schema
	boardSchemaErr  error
)

func compiledBoardSchema() (*jsonschema.Schema, error) {
	boardSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(boardSchemaURL, strings.NewReader(boardSchemaJSON)); err != nil {
			boardSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		boardSchema, boardSchemaErr = compiler.Compile(boardSchemaURL)
	})
	return boardSchema, boardSchemaErr
}

// SchemaError reports where a board document deviates from the expected shape.
type SchemaError struct {
	Path    string
	Message string
}

func (e SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// validateDocument checks raw JSON against the board schema.
func validateDocument(b []byte) error {
	schema, err := compiledBoardSchema()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after document")
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return firstSchemaError(ve)
		}
		return err
	}
	return nil
}

// firstSchemaError descends to the first leaf cause, which names the
// offending value instead of the top-level "doesn't validate" summary.
func firstSchemaError(ve *jsonschema.ValidationError) SchemaError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return SchemaError{Path: jsonPointerToPath(ve.InstanceLocation), Message: ve.Message}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
