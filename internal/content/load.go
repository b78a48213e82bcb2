package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed questionnaire.yaml
var defaultData []byte

//go:embed questionnaire.schema.json
var schemaData []byte

const schemaURL = "schema://questionnaire.json"

var (
	defaultOnce sync.Once
	defaultQ    *Questionnaire
	defaultErr  error

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Default returns the embedded questionnaire. It is loaded and validated on
// first use and shared for the lifetime of the process. An invalid embedded
// dataset is a build defect and panics.
func Default() *Questionnaire {
	defaultOnce.Do(func() {
		defaultQ, defaultErr = Load(defaultData)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded questionnaire: %v", defaultErr))
	}
	return defaultQ
}

// Load parses a YAML questionnaire document, checks it against the JSON
// schema and validates the scoring invariants.
func Load(data []byte) (*Questionnaire, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}

	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}

	if err := Validate(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// checkSchema validates the generic YAML tree against the embedded schema.
func checkSchema(raw any) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile questionnaire schema: %w", err)
	}

	// The validator expects JSON values, so round-trip the YAML tree.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert questionnaire to JSON: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("convert questionnaire to JSON: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("questionnaire schema: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
